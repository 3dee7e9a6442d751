package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aalvaropc/pizzapack/internal/domain"
	"github.com/aalvaropc/pizzapack/internal/usecase"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// --- command structure ---

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	cmd := newRootCmd()
	want := map[string]bool{"backup": false, "backups": false, "verify": false, "tmp": false, "init": false, "version": false}
	for _, c := range cmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if cmd.PersistentFlags().Lookup("debug") == nil {
		t.Error("expected persistent --debug flag")
	}
}

func TestBackupCmd_Flags(t *testing.T) {
	c := backupCmd(&globalFlags{})
	for _, name := range []string{"dry-run", "output", "no-manifest", "format"} {
		if c.Flags().Lookup(name) == nil {
			t.Errorf("expected --%s on backup", name)
		}
	}
}

func TestTmpCleanCmd_Flags(t *testing.T) {
	c := tmpCleanCmd(&globalFlags{})
	for _, name := range []string{"stem", "kind", "older-than", "format", "yes", "workspace"} {
		if c.Flags().Lookup(name) == nil {
			t.Errorf("expected --%s on tmp clean", name)
		}
	}
}

// --- helpers ---

func TestParseAge(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"36h", 36 * time.Hour, true},
		{"90m", 90 * time.Minute, true},
		{"7d", 7 * 24 * time.Hour, true},
		{"0d", 0, true},
		{"xd", 0, false},
		{"-2h", 0, false},
		{"soon", 0, false},
	}
	for _, c := range cases {
		got, err := parseAge(c.in)
		if c.ok && err != nil {
			t.Errorf("parseAge(%q): unexpected error %v", c.in, err)
			continue
		}
		if !c.ok {
			if err == nil {
				t.Errorf("parseAge(%q): expected error", c.in)
			}
			continue
		}
		if got != c.want {
			t.Errorf("parseAge(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestTmpFlags_UnknownKind(t *testing.T) {
	f := &tmpFlags{kinds: []string{"script", "video"}}
	if _, err := f.filter(); !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid_config, got %v", err)
	}
}

func TestTmpFlags_Filter(t *testing.T) {
	f := &tmpFlags{stems: []string{" run1 ", ""}, kinds: []string{"Report"}, olderThan: "2d"}
	got, err := f.filter()
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Stems) != 1 || got.Stems[0] != "run1" {
		t.Errorf("stems = %v", got.Stems)
	}
	if len(got.Kinds) != 1 || got.Kinds[0] != domain.TmpReport {
		t.Errorf("kinds = %v", got.Kinds)
	}
	if got.OlderThan != 48*time.Hour {
		t.Errorf("older-than = %v", got.OlderThan)
	}
}

func TestResolveStartDir_Explicit(t *testing.T) {
	tmp := t.TempDir()
	got, err := resolveStartDir(tmp)
	if err != nil {
		t.Fatal(err)
	}
	if got != tmp {
		t.Errorf("expected %s, got %s", tmp, got)
	}
}

func TestCheckFormat(t *testing.T) {
	for _, ok := range []string{"pretty", "json", "JSON"} {
		if err := checkFormat(ok); err != nil {
			t.Errorf("checkFormat(%q): %v", ok, err)
		}
	}
	if err := checkFormat("xml"); !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Errorf("expected invalid_config for xml, got %v", err)
	}
}

func TestHintFor(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"conflict", &domain.OpError{Kind: domain.KindConflict}, "--output"},
		{"no matches", &domain.OpError{Kind: domain.KindNotFound, Err: domain.ErrNoMatches}, "--dry-run"},
		{"plain not found", &domain.OpError{Kind: domain.KindNotFound, Err: domain.ErrNotFound}, ""},
		{"mismatch", &domain.OpError{Kind: domain.KindMismatch}, "fresh backup"},
		{"unclassified", errors.New("boom"), ""},
	}
	for _, c := range cases {
		got := hintFor(c.err)
		if c.want == "" && got != "" {
			t.Errorf("%s: expected no hint, got %q", c.name, got)
		}
		if c.want != "" && !strings.Contains(got, c.want) {
			t.Errorf("%s: expected hint containing %q, got %q", c.name, c.want, got)
		}
	}
}

// --- end to end ---

func TestBackupVerifyAndList(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "proj")
	writeFile(t, filepath.Join(dir, "main.py"), "print('hi')\n")
	writeFile(t, filepath.Join(dir, "sub", "notes.txt"), "notes\n")
	writeFile(t, filepath.Join(dir, "data.csv"), "1,2\n")

	out, err := run(t, "backup", dir, "--format", "json")
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	var m domain.Manifest
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("decode manifest: %v\n%s", err, out)
	}
	if len(m.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", m.Entries)
	}
	if m.ID == "" {
		t.Error("expected a manifest id")
	}
	if !strings.HasPrefix(filepath.Base(m.ArchivePath), "proj_") {
		t.Errorf("unexpected archive name %s", m.ArchivePath)
	}
	if _, err := os.Stat(m.ArchivePath); err != nil {
		t.Fatalf("archive missing: %v", err)
	}

	out, err = run(t, "verify", m.ArchivePath)
	if err != nil {
		t.Fatalf("verify: %v\n%s", err, out)
	}
	if !strings.HasPrefix(out, "OK") {
		t.Errorf("expected OK report, got %q", out)
	}

	out, err = run(t, "backups", "list", "-w", dir, "--format", "json")
	if err != nil {
		t.Fatalf("backups list: %v", err)
	}
	var refs []domain.ManifestRef
	if err := json.Unmarshal([]byte(out), &refs); err != nil {
		t.Fatalf("decode refs: %v\n%s", err, out)
	}
	if len(refs) != 1 || refs[0].ID != m.ID {
		t.Errorf("unexpected refs %+v", refs)
	}
}

func TestVerify_UnreadableArchiveIsNeverOK(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.zip")
	writeFile(t, broken, "not a zip")

	cases := []struct {
		name string
		path string
		kind domain.ErrorKind
	}{
		{"corrupt", broken, domain.KindMismatch},
		{"missing", filepath.Join(dir, "missing.zip"), domain.KindNotFound},
	}
	for _, c := range cases {
		out, err := run(t, "verify", c.path)
		if !domain.IsKind(err, c.kind) {
			t.Errorf("%s: expected %s error, got %v", c.name, c.kind, err)
		}
		if !strings.HasPrefix(out, "UNREADABLE") || strings.HasPrefix(out, "OK") {
			t.Errorf("%s: expected UNREADABLE report, got %q", c.name, out)
		}

		out, err = run(t, "verify", c.path, "--format", "json")
		if err == nil {
			t.Errorf("%s: expected error with --format json", c.name)
		}
		var rep struct {
			OK    bool   `json:"ok"`
			Error string `json:"error"`
		}
		if jerr := json.Unmarshal([]byte(out), &rep); jerr != nil {
			t.Fatalf("%s: decode: %v\n%s", c.name, jerr, out)
		}
		if rep.OK || rep.Error == "" {
			t.Errorf("%s: expected ok=false with an error, got %+v", c.name, rep)
		}
	}
}

func TestBackup_DryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "run.sh"), "#!/bin/sh\n")

	out, err := run(t, "backup", dir, "--dry-run")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "run.sh") {
		t.Errorf("expected planned file in output, got %q", out)
	}
	zips, _ := filepath.Glob(filepath.Join(dir, "*.zip"))
	if len(zips) != 0 {
		t.Errorf("dry run wrote %v", zips)
	}
}

func TestDebug_PrintsLogPathAndTagsCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "run.sh"), "#!/bin/sh\n")

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--debug", "backup", dir, "--dry-run"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	logPath := filepath.Join(dir, domain.StateDir, "logs", "pizzapack.log")
	if !strings.Contains(errOut.String(), "debug log: "+logPath) {
		t.Fatalf("expected log path on stderr, got %q", errOut.String())
	}
	b, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), `"cmd":"pizzapack backup"`) {
		t.Fatalf("expected command on log records:\n%s", b)
	}
}

func TestBackup_NoMatches(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "image.png"), "x")

	_, err := run(t, "backup", dir)
	if !errors.Is(err, domain.ErrNoMatches) {
		t.Fatalf("expected ErrNoMatches, got %v", err)
	}
}

func TestInit_CreatesWorkspace(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(t, "init", dir); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{domain.ConfigFile, "tmp", filepath.Join(domain.StateDir, "logs")} {
		if _, err := os.Stat(filepath.Join(dir, p)); err != nil {
			t.Errorf("expected %s: %v", p, err)
		}
	}
}

func seedTmp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tmp", "run1.inp"), "units real\n")
	writeFile(t, filepath.Join(dir, "tmp", "run1.html"), "<html></html>")
	writeFile(t, filepath.Join(dir, "tmp", "dump.run1.lammpstrj"), "ITEM: TIMESTEP\n")
	writeFile(t, filepath.Join(dir, "tmp", "run2.inp"), "units metal\n")
	return dir
}

func TestTmpList_GroupsByStem(t *testing.T) {
	dir := seedTmp(t)

	out, err := run(t, "tmp", "list", "-w", dir, "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var groups []tmpGroupView
	if err := json.Unmarshal([]byte(out), &groups); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(groups) != 2 || groups[0].Stem != "run1" || len(groups[0].Files) != 3 {
		t.Fatalf("unexpected groups %+v", groups)
	}
}

func TestTmpClean_RefusesWithoutTerminal(t *testing.T) {
	dir := seedTmp(t)
	prev := interactive
	interactive = func() bool { return false }
	t.Cleanup(func() { interactive = prev })

	_, err := run(t, "tmp", "clean", "-w", dir)
	if !errors.Is(err, errNeedsConfirmation) {
		t.Fatalf("expected confirmation error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "tmp", "run1.inp")); statErr != nil {
		t.Errorf("file removed without confirmation: %v", statErr)
	}
}

func TestTmpClean_YesRemovesSelectedStem(t *testing.T) {
	dir := seedTmp(t)

	out, err := run(t, "tmp", "clean", "-w", dir, "--stem", "run1", "--yes", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var res usecase.CleanResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if res.Groups != 1 || res.Files != 3 {
		t.Errorf("unexpected result %+v", res)
	}
	left, _ := os.ReadDir(filepath.Join(dir, "tmp"))
	if len(left) != 1 || left[0].Name() != "run2.inp" {
		t.Errorf("unexpected leftovers %v", left)
	}
}
