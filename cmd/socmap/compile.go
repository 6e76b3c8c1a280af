package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/daveroberts0321/socmap/generator"
	"github.com/daveroberts0321/socmap/hdrgen"
	"github.com/daveroberts0321/socmap/parser/socmap"
	"github.com/daveroberts0321/socmap/project"
)

var (
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed, color.Bold)
)

type compileOptions struct {
	strict    bool
	addrWidth int
	header    string
}

func addCompileFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("strict", false, "reject duplicate names, overlapping regions and out-of-range limits")
	cmd.Flags().Int("addr-width", 64, "fabric address width checked by --strict (32|64)")
	cmd.Flags().String("header", "", "also write a C header to this file")
}

func compileOptionsFrom(cmd *cobra.Command) (compileOptions, error) {
	var opts compileOptions
	var err error
	if opts.strict, err = cmd.Flags().GetBool("strict"); err != nil {
		return opts, err
	}
	if opts.addrWidth, err = cmd.Flags().GetInt("addr-width"); err != nil {
		return opts, err
	}
	if opts.header, err = cmd.Flags().GetString("header"); err != nil {
		return opts, err
	}
	return opts, socmap.CheckAddrWidth(opts.addrWidth)
}

// runCompile is the classic two-argument mode. Any other arity prints the
// usage text and succeeds.
func runCompile(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		fmt.Fprint(cmd.OutOrStdout(), usageText)
		return nil
	}
	opts, err := compileOptionsFrom(cmd)
	if err != nil {
		return err
	}
	return compile(cmd.OutOrStdout(), progress(cmd), args[0], args[1], opts)
}

// compile reads inFile, prints diagnostics and a summary, and writes the
// generated package to outFile. Nothing is written if parsing or strict
// validation fails.
func compile(out, log io.Writer, inFile, outFile string, opts compileOptions) error {
	fmt.Fprintf(log, "  Reading input file:  %s\n", inFile)
	m, err := project.ParseMapFile(inFile)
	if err != nil {
		return err
	}
	printDiagnostics(out, m.Diagnostics)

	if opts.strict {
		findings := socmap.Validate(m, socmap.ValidateOptions{AddrWidth: opts.addrWidth})
		if len(findings) > 0 {
			for _, d := range findings {
				errorColor.Fprint(out, "error")
				fmt.Fprintf(out, ": %s: %s\n", d.Pos, d.Message)
			}
			return fmt.Errorf("%s: %w", inFile, socmap.ErrValidation)
		}
	}

	printSummary(log, m)

	lines := generator.Generate(m)
	fmt.Fprintf(log, "  Writing output file: %s\n", outFile)
	if err := generator.WriteLines(lines, outFile); err != nil {
		return err
	}
	if opts.header != "" {
		fmt.Fprintf(log, "  Writing header file: %s\n", opts.header)
		if err := generator.WriteLines(hdrgen.Generate(m, hdrgen.GuardFor(opts.header)), opts.header); err != nil {
			return err
		}
	}
	return nil
}

func printDiagnostics(w io.Writer, diags []*socmap.Diagnostic) {
	for _, d := range diags {
		warnColor.Fprintf(w, "Ignoring this line: %s\n", d.Message)
		fmt.Fprintf(w, "  L%d: %s\n", d.Pos.Line, d.Text)
	}
}

func printSummary(w io.Writer, m *socmap.Map) {
	fmt.Fprintln(w, "  ----------------")
	fmt.Fprintln(w, "  Constants")
	for _, c := range m.Constants {
		fmt.Fprintf(w, "    %s  %s\n", c.Name, socmap.FormatHex(c.Value, 1))
	}
	fmt.Fprintln(w, "  Regions")
	for _, r := range m.Regions {
		fmt.Fprintf(w, "    %-3s  0x%s  0x%s  %s\n",
			r.Kind, socmap.FormatHex(r.Base, 8), socmap.FormatHex(r.Size, 8), r.Name)
	}
	fmt.Fprintln(w, "  ----------------")
}
