package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/daveroberts0321/socmap/project"
	"github.com/daveroberts0321/socmap/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [<in_file> <out_file>]",
	Short: "Rebuild on every change",
	Long: `With two arguments, recompile <in_file> into <out_file> whenever it changes.
Without arguments, rebuild the project whenever a map under its map paths changes.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("accepts 0 or 2 arg(s), received %d", len(args))
		}
		return nil
	},
	RunE: runWatch,
}

func init() {
	addCompileFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	log := progress(cmd)

	var paths []string
	var build func() error
	if len(args) == 2 {
		opts, err := compileOptionsFrom(cmd)
		if err != nil {
			return err
		}
		inFile, outFile := args[0], args[1]
		paths = []string{inFile}
		build = func() error {
			return compile(out, log, inFile, outFile, opts)
		}
	} else {
		cfg, err := loadProjectConfig(cmd, nil)
		if err != nil {
			return err
		}
		paths = cfg.MapPaths()
		build = func() error {
			_, err := project.Build(ctx, cfg, log)
			return err
		}
	}

	// initial build; failures are reported and watching continues
	if err := build(); err != nil {
		fmt.Fprintf(out, "Build failed: %v\n", err)
	}
	fmt.Fprintln(log, "Watching for changes... (press Ctrl+C to stop)")
	return watch.Watch(ctx, watch.Options{Paths: paths, Out: log}, build)
}
