package cli

import (
	"github.com/spf13/cobra"

	"github.com/aalvaropc/pizzapack/internal/infra/digest"
	"github.com/aalvaropc/pizzapack/internal/infra/fsscan"
	"github.com/aalvaropc/pizzapack/internal/infra/sysidentity"
	"github.com/aalvaropc/pizzapack/internal/infra/ziparchive"
	"github.com/aalvaropc/pizzapack/internal/usecase"
)

func backupCmd(g *globalFlags) *cobra.Command {
	var dryRun bool
	var output string
	var noManifest bool
	var format string

	c := &cobra.Command{
		Use:   "backup [dir]",
		Short: "Archive source files (*.m, *.py, *.sh, *.txt, ...) into <dir>_<user>@<host>_<timestamp>.zip",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			start, err := resolveStartDir(dir)
			if err != nil {
				return err
			}

			ws, err := loadWorkspace(start, g)
			if err != nil {
				return err
			}
			defer ws.Close()

			bc := ws.cfg.Backup
			uc := usecase.NewCreateBackup(
				bc,
				fsscan.NewScanner(),
				digest.New(digest.WithConcurrency(bc.Concurrency)),
				ziparchive.NewWriter(ziparchive.WithCompression(bc.Compression), ziparchive.WithLevel(bc.Level)),
				ws.store,
				sysidentity.New(),
				usecase.WithLogger(ws.log),
			)
			req := usecase.BackupRequest{Dir: start, OutputDir: output, NoManifest: noManifest}

			if dryRun {
				plan, err := uc.Plan(cmd.Context(), req)
				if err != nil {
					return err
				}
				warnSkipped(cmd.ErrOrStderr(), plan)
				return printPlan(cmd.OutOrStdout(), plan, format)
			}

			res, err := uc.Execute(cmd.Context(), req)
			warnSkipped(cmd.ErrOrStderr(), res.Plan)
			if err != nil && res.Manifest.ArchivePath != "" {
				// Archive exists even though the manifest failed; still report it.
				_ = printBackup(cmd.OutOrStdout(), res, format)
				return err
			}
			if err != nil {
				return err
			}
			return printBackup(cmd.OutOrStdout(), res, format)
		},
	}

	c.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "List the files that would be archived without writing anything")
	c.Flags().StringVarP(&output, "output", "o", "", "Directory for the archive (default: the scanned directory)")
	c.Flags().BoolVar(&noManifest, "no-manifest", false, "Do not record a manifest under .pizzapack/backups")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	return c
}

func backupsCmd(g *globalFlags) *cobra.Command {
	c := &cobra.Command{
		Use:   "backups",
		Short: "Inspect recorded backups",
	}
	c.AddCommand(backupsListCmd(g))
	return c
}

func backupsListCmd(g *globalFlags) *cobra.Command {
	var workspace string
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List backups recorded in the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			ws, err := loadWorkspace(workspace, g)
			if err != nil {
				return err
			}
			defer ws.Close()

			refs, err := usecase.NewListBackups(ws.store).Execute()
			if err != nil {
				return err
			}
			return printBackupRefs(cmd.OutOrStdout(), ws.root, refs, format)
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	cmd.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	return cmd
}

func verifyCmd(g *globalFlags) *cobra.Command {
	var workspace string
	var format string

	cmd := &cobra.Command{
		Use:   "verify ARCHIVE",
		Short: "Check an archive's integrity and compare it with its recorded manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			archive, err := resolveStartDir(args[0])
			if err != nil {
				return err
			}

			start := workspace
			if start == "" {
				start = archiveDir(archive)
			}
			ws, err := loadWorkspace(start, g)
			if err != nil {
				return err
			}
			defer ws.Close()

			report, verr := usecase.NewVerifyBackup(ziparchive.NewReader(), ws.store).Execute(archive)
			if perr := printVerify(cmd.OutOrStdout(), report, format); perr != nil && verr == nil {
				return perr
			}
			return verr
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (default: found from the archive location)")
	cmd.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	return cmd
}
