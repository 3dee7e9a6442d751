package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aalvaropc/pizzapack/internal/domain"
	"github.com/aalvaropc/pizzapack/internal/infra/config"
	"github.com/aalvaropc/pizzapack/internal/infra/logger"
	"github.com/aalvaropc/pizzapack/internal/infra/manifeststore"
	"github.com/aalvaropc/pizzapack/internal/infra/workspacefinder"
	"github.com/aalvaropc/pizzapack/internal/ports"
)

var locator ports.WorkspaceLocator = workspacefinder.NewFinder()

type workspaceCtx struct {
	// root is the directory holding pizzapack.yaml, or the start dir when none exists.
	root  string
	found bool
	cfg   domain.Config

	store *manifeststore.JSONStore
	log   *slog.Logger

	cleanup func() error
}

func (ws *workspaceCtx) Close() {
	if ws.cleanup != nil {
		_ = ws.cleanup()
	}
}

// loadWorkspace resolves the workspace around startDir (or the working
// directory), loads its configuration and starts logging.
func loadWorkspace(startDir string, g *globalFlags) (*workspaceCtx, error) {
	start, err := resolveStartDir(startDir)
	if err != nil {
		return nil, err
	}

	ws := &workspaceCtx{root: start}
	if root, ferr := locator.FindRoot(start); ferr == nil {
		ws.root = root
		ws.found = true
	}

	cfg, err := config.Load(ws.root)
	if err != nil {
		return nil, err
	}
	ws.cfg = cfg
	ws.store = manifeststore.NewJSONStore(ws.root)

	debug := g != nil && g.debug
	if ws.found || debug {
		lc := logger.Config{Root: ws.root, Debug: debug}
		if g != nil {
			lc.Command = g.command
		}
		cleanup, lerr := logger.Setup(lc)
		ws.cleanup = cleanup
		if debug && g.stderr != nil {
			if lerr != nil {
				fmt.Fprintf(g.stderr, "debug log disabled: %v\n", lerr)
			} else {
				fmt.Fprintf(g.stderr, "debug log: %s\n", logger.Path())
			}
		}
	}
	ws.log = logger.L()
	ws.log.Debug("workspace.loaded", "root", ws.root, "found", ws.found)

	return ws, nil
}

func resolveStartDir(arg string) (string, error) {
	w := strings.TrimSpace(arg)
	if w != "" {
		abs, err := filepath.Abs(w)
		if err != nil {
			return "", fmt.Errorf("invalid path: %w", err)
		}
		return abs, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return wd, nil
}

// tmpDir resolves the configured tmp folder against the workspace root.
func (ws *workspaceCtx) tmpDir() string {
	d := ws.cfg.Tmp.Dir
	if filepath.IsAbs(d) {
		return filepath.Clean(d)
	}
	return filepath.Join(ws.root, d)
}
