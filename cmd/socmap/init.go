package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daveroberts0321/socmap/project"
)

var initCmd = &cobra.Command{
	Use:   "init <project-name>",
	Short: "Initialize a new socmap project",
	Long: `Initialize a new socmap project: a socmap.toml manifest, an example map
in maps/soc_map.soc and an empty generated/ directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := project.Init(name); err != nil {
			return fmt.Errorf("error initializing project: %w", err)
		}
		out := progress(cmd)
		fmt.Fprintf(out, "Project '%s' initialized successfully!\n", name)
		fmt.Fprintf(out, "   cd %s\n", name)
		fmt.Fprintf(out, "   socmap build\n")
		return nil
	},
}
