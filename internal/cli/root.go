package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/pizzapack/internal/buildinfo"
	"github.com/aalvaropc/pizzapack/internal/domain"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		if hint := hintFor(err); hint != "" {
			fmt.Fprintln(os.Stderr, "hint:", hint)
		}
		os.Exit(1)
	}
}

// hintFor suggests a next step for failures users can fix themselves.
func hintFor(err error) string {
	switch domain.KindOf(err) {
	case domain.KindConflict:
		return "an archive with this name already exists; wait for the next minute or pass --output"
	case domain.KindNotFound:
		if errors.Is(err, domain.ErrNoMatches) {
			return "no file matched backup.patterns; run with --dry-run or adjust " + domain.ConfigFile
		}
	case domain.KindInvalidConfig:
		return "check " + domain.ConfigFile + " and the command flags"
	case domain.KindMismatch:
		return "the archive is damaged or differs from its manifest; take a fresh backup"
	}
	return ""
}

type globalFlags struct {
	debug bool

	// Set before each command runs.
	command string
	stderr  io.Writer
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:          "pizzapack",
		Short:        "pizzapack: source backups and tmp output housekeeping for script projects",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			g.command = cmd.CommandPath()
			g.stderr = cmd.ErrOrStderr()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.SetErrPrefix("pizzapack:")

	cmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "enable verbose logging to .pizzapack/logs/pizzapack.log")

	cmd.AddCommand(
		backupCmd(g),
		backupsCmd(g),
		verifyCmd(g),
		tmpCmd(g),
		initCmd(),
		versionCmd(),
	)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	}
}
