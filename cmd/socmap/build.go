package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daveroberts0321/socmap/parser/socmap"
	"github.com/daveroberts0321/socmap/project"
)

const noConfigMessage = "no " + project.ConfigFileName + " found\nrun 'socmap init <name>' or compile a single map with 'socmap <in_file> <out_file>'"

var buildCmd = &cobra.Command{
	Use:   "build [dir]",
	Short: "Compile every map of the project",
	Long: `Compile every map listed in socmap.toml. The manifest is searched for in
[dir] (default: current directory) and its parents.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

var cleanCmd = &cobra.Command{
	Use:   "clean [dir]",
	Short: "Remove generated files and the build cache",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadProjectConfig(cmd, args)
		if err != nil {
			return err
		}
		if err := project.Clean(cfg); err != nil {
			return err
		}
		fmt.Fprintf(progress(cmd), "Removed %s\n", cfg.OutDir())
		return nil
	},
}

func init() {
	addBuildFlags(buildCmd)
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().Int("jobs", 0, "parallel build workers (0 = manifest or GOMAXPROCS)")
	cmd.Flags().Bool("strict", false, "validate maps and fail on findings (overrides manifest)")
	cmd.Flags().Bool("no-cache", false, "ignore and do not update the build cache")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadProjectConfig(cmd, args)
	if err != nil {
		return err
	}
	_, err = project.Build(cmd.Context(), cfg, progress(cmd))
	var verr *project.ValidationError
	if errors.As(err, &verr) {
		for _, d := range verr.Findings {
			errorColor.Fprint(cmd.OutOrStdout(), "error")
			fmt.Fprintf(cmd.OutOrStdout(), ": %s: %s\n", d.Pos, d.Message)
		}
		return fmt.Errorf("%s: %w", verr.File, socmap.ErrValidation)
	}
	return err
}

// loadProjectConfig finds and loads the manifest and applies flag overrides.
func loadProjectConfig(cmd *cobra.Command, args []string) (*project.Config, error) {
	start := "."
	if len(args) > 0 {
		start = args[0]
	}
	path, ok, err := project.FindConfig(start)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New(noConfigMessage)
	}
	cfg, err := project.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if f := cmd.Flags().Lookup("jobs"); f != nil && f.Changed {
		cfg.Build.Jobs, _ = cmd.Flags().GetInt("jobs")
	}
	if f := cmd.Flags().Lookup("strict"); f != nil && f.Changed {
		cfg.Build.Strict, _ = cmd.Flags().GetBool("strict")
	}
	if f := cmd.Flags().Lookup("no-cache"); f != nil && f.Changed {
		cfg.Build.NoCache, _ = cmd.Flags().GetBool("no-cache")
	}
	return cfg, nil
}
