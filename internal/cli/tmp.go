package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/aalvaropc/pizzapack/internal/domain"
	"github.com/aalvaropc/pizzapack/internal/infra/tmpdir"
	"github.com/aalvaropc/pizzapack/internal/ui/tui"
	"github.com/aalvaropc/pizzapack/internal/usecase"
)

var errNeedsConfirmation = errors.New("refusing to delete without confirmation: pass --yes or run in a terminal")

type tmpFlags struct {
	workspace string
	stems     []string
	kinds     []string
	olderThan string
	format    string
}

func (f *tmpFlags) register(c *cobra.Command) {
	c.Flags().StringVarP(&f.workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringArrayVar(&f.stems, "stem", nil, "Only groups with this stem (repeatable)")
	c.Flags().StringArrayVar(&f.kinds, "kind", nil, "Only groups containing this kind: script|dscript|report|dump|forcefield|other (repeatable)")
	c.Flags().StringVar(&f.olderThan, "older-than", "", "Only groups whose newest file is older than this age (e.g. 36h, 7d)")
	c.Flags().StringVar(&f.format, "format", "pretty", "Output format: pretty|json")
}

func (f *tmpFlags) filter() (domain.TmpFilter, error) {
	var out domain.TmpFilter
	for _, s := range f.stems {
		if s = strings.TrimSpace(s); s != "" {
			out.Stems = append(out.Stems, s)
		}
	}
	for _, s := range f.kinds {
		k, ok := domain.ParseTmpKind(s)
		if !ok {
			return domain.TmpFilter{}, &domain.OpError{
				Op:   "cli.tmp",
				Kind: domain.KindInvalidConfig,
				Err:  fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidConfig, s),
			}
		}
		out.Kinds = append(out.Kinds, k)
	}
	if strings.TrimSpace(f.olderThan) != "" {
		d, err := parseAge(f.olderThan)
		if err != nil {
			return domain.TmpFilter{}, &domain.OpError{
				Op:   "cli.tmp",
				Kind: domain.KindInvalidConfig,
				Err:  fmt.Errorf("%w: --older-than: %v", domain.ErrInvalidConfig, err),
			}
		}
		out.OlderThan = d
	}
	return out, nil
}

// parseAge accepts time.ParseDuration syntax plus a whole-day suffix ("7d").
func parseAge(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid age %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative age %q", s)
	}
	return d, nil
}

func tmpCmd(g *globalFlags) *cobra.Command {
	c := &cobra.Command{
		Use:   "tmp",
		Short: "List and clean generator outputs in the tmp folder",
	}
	c.AddCommand(tmpListCmd(g), tmpCleanCmd(g))
	return c
}

type tmpContext struct {
	ws      *workspaceCtx
	catalog *tmpdir.Catalog
}

func openTmp(workspace string, g *globalFlags) (*tmpContext, error) {
	ws, err := loadWorkspace(workspace, g)
	if err != nil {
		return nil, err
	}
	catalog, err := tmpdir.NewCatalog(ws.cfg.Tmp.Kinds)
	if err != nil {
		ws.Close()
		return nil, err
	}
	return &tmpContext{ws: ws, catalog: catalog}, nil
}

func tmpListCmd(g *globalFlags) *cobra.Command {
	f := &tmpFlags{}
	c := &cobra.Command{
		Use:   "list",
		Short: "Show tmp outputs grouped by run stem",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(f.format); err != nil {
				return err
			}
			filter, err := f.filter()
			if err != nil {
				return err
			}
			tc, err := openTmp(f.workspace, g)
			if err != nil {
				return err
			}
			defer tc.ws.Close()

			uc := usecase.NewListTmp(tc.catalog, tc.ws.tmpDir(), usecase.WithTmpLogger(tc.ws.log))
			groups, err := uc.Execute(filter)
			if err != nil {
				return err
			}
			return printTmpGroups(cmd.OutOrStdout(), uc.Dir(), groups, f.format)
		},
	}
	f.register(c)
	return c
}

func tmpCleanCmd(g *globalFlags) *cobra.Command {
	f := &tmpFlags{}
	var yes bool

	c := &cobra.Command{
		Use:   "clean",
		Short: "Delete tmp output groups (interactive picker unless --yes)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(f.format); err != nil {
				return err
			}
			filter, err := f.filter()
			if err != nil {
				return err
			}
			tc, err := openTmp(f.workspace, g)
			if err != nil {
				return err
			}
			defer tc.ws.Close()

			dir := tc.ws.tmpDir()
			groups, err := usecase.NewListTmp(tc.catalog, dir, usecase.WithTmpLogger(tc.ws.log)).Execute(filter)
			if err != nil {
				return err
			}
			if len(groups) == 0 {
				return printTmpGroups(cmd.OutOrStdout(), dir, groups, f.format)
			}

			if !yes {
				if !interactive() {
					return errNeedsConfirmation
				}
				picked, ok, err := tui.PickGroups(dir, groups, tui.Deps{Logger: tc.ws.log})
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.ErrOrStderr(), "canceled, nothing removed")
					return nil
				}
				groups = picked
			}

			res, err := usecase.NewCleanTmp(tc.catalog, dir, usecase.WithTmpLogger(tc.ws.log)).Execute(groups)
			if perr := printClean(cmd.OutOrStdout(), res, f.format); perr != nil && err == nil {
				return perr
			}
			return err
		},
	}
	f.register(c)
	c.Flags().BoolVarP(&yes, "yes", "y", false, "Delete every matching group without asking")
	return c
}

var interactive = func() bool {
	in, out := os.Stdin.Fd(), os.Stdout.Fd()
	return (isatty.IsTerminal(in) || isatty.IsCygwinTerminal(in)) &&
		(isatty.IsTerminal(out) || isatty.IsCygwinTerminal(out))
}
