package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/pizzapack/internal/domain"
	"github.com/aalvaropc/pizzapack/internal/infra/fsworkspace"
	"github.com/aalvaropc/pizzapack/internal/usecase"
)

func initCmd() *cobra.Command {
	var force bool

	c := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create pizzapack.yaml, the .pizzapack state folder and tmp/",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			root, err := resolveStartDir(dir)
			if err != nil {
				return err
			}

			if err := usecase.NewInitWorkspace(fsworkspace.NewInitializer()).Execute(root, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized pizzapack workspace in %s\n", root)
			return nil
		},
	}
	c.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing "+domain.ConfigFile)
	return c
}
