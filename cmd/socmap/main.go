package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/daveroberts0321/socmap/version"
)

const usageText = `Usage:  socmap  <in_file>  <out_file>
    <in_file>    SoC Map, usually .txt
    <out_file>   BSV file, usually .bsv
`

var rootCmd = &cobra.Command{
	Use:   "socmap <in_file> <out_file>",
	Short: "Generate the Bluespec SoC_Map package from an address map",
	Long: `socmap compiles an SoC address map into the Bluespec SoC_Map package.

` + usageText + `
Map lines:
    VAL <name> <hex-value>
    MEM <name> <hex-base> <hex-size>
    IO  <name> <hex-base> <hex-size>
Everything after // is a comment.`,
	Args:              cobra.ArbitraryArgs,
	SilenceUsage:      true,
	PersistentPreRunE: setupOutput,
	RunE:              runCompile,
}

// main registers subcommands and flags and executes the root command.
// If command execution returns an error, the process exits with status code 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(headerCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress progress output")
	addCompileFlags(rootCmd)

	defaultHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != rootCmd {
			defaultHelp(cmd, args)
			return
		}
		printRootHelp(cmd.OutOrStdout(), cmd)
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// printRootHelp prints the classic usage text followed by the subcommands.
func printRootHelp(w io.Writer, cmd *cobra.Command) {
	fmt.Fprint(w, usageText)
	fmt.Fprintln(w, "\nProject commands:")
	for _, sub := range cmd.Commands() {
		if !sub.IsAvailableCommand() {
			continue
		}
		fmt.Fprintf(w, "    %-10s %s\n", sub.Name(), sub.Short)
	}
	fmt.Fprintln(w, "\nRun 'socmap <command> --help' for details on a command.")
}

// setupOutput applies the --color flag before any command runs.
func setupOutput(cmd *cobra.Command, args []string) error {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return err
	}
	switch strings.ToLower(mode) {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = os.Getenv("NO_COLOR") != "" || !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("unsupported color mode %q (must be auto, on or off)", mode)
	}
	return nil
}

// isTerminal reports whether f is a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// progress returns the writer for progress messages, honoring --quiet.
func progress(cmd *cobra.Command) io.Writer {
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		return io.Discard
	}
	return cmd.OutOrStdout()
}
