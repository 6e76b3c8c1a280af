package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daveroberts0321/socmap/generator"
	"github.com/daveroberts0321/socmap/hdrgen"
	"github.com/daveroberts0321/socmap/project"
	"github.com/daveroberts0321/socmap/spec/mapdoc"
)

var exportCmd = &cobra.Command{
	Use:   "export <in_file> <out_file>",
	Short: "Write a map as a YAML or JSON document",
	Long: `Write a map as a YAML document, or JSON when <out_file> ends in .json.
The document lists every constant and region with its computed limit.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := project.ParseMapFile(args[0])
		if err != nil {
			return err
		}
		printDiagnostics(cmd.OutOrStdout(), m.Diagnostics)
		if err := mapdoc.WriteFile(m, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(progress(cmd), "Exported %s to %s\n", args[0], args[1])
		return nil
	},
}

var headerCmd = &cobra.Command{
	Use:   "header <in_file> <out_file>",
	Short: "Generate a C header from a map or map document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, out := args[0], args[1]
		if mapdoc.IsDocument(in) {
			if err := hdrgen.GenerateFromDoc(in, out); err != nil {
				return err
			}
		} else {
			m, err := project.ParseMapFile(in)
			if err != nil {
				return err
			}
			printDiagnostics(cmd.OutOrStdout(), m.Diagnostics)
			if err := generator.WriteLines(hdrgen.Generate(m, hdrgen.GuardFor(out)), out); err != nil {
				return err
			}
		}
		fmt.Fprintf(progress(cmd), "Generated %s\n", out)
		return nil
	},
}
