package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// helperRun executes the CLI with the given args, returning its
// output and error.
func helperRun(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := new(bytes.Buffer)
	cmd := newRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenFiles(t *testing.T) {
	dir := t.TempDir()
	out, err := helperRun(t, "gen", "-n", "2", "--seed", "5", "--solvable", "-o", dir)
	if err != nil {
		t.Fatalf("gen failed: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read output dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Got %d output files, expected 2", len(entries))
	}
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "gen-") || filepath.Ext(entry.Name()) != ".json" {
			t.Errorf("Unexpected output file name %q", entry.Name())
		}
		level, err := readLevel(filepath.Join(dir, entry.Name()))
		if err != nil {
			t.Errorf("Generated level %q won't decode: %v", entry.Name(), err)
			continue
		}
		if level.GridSize != 5 {
			t.Errorf("Generated level %q size got %v, expected 5", entry.Name(), level.GridSize)
		}
	}
	if !strings.Contains(out, "seed 5") || !strings.Contains(out, "seed 6") {
		t.Errorf("Seeded batch did not report successive seeds: %q", out)
	}
}

func TestGenBadDifficulty(t *testing.T) {
	if _, err := helperRun(t, "gen", "--difficulty", "9"); err == nil {
		t.Errorf("Out-of-range difficulty did not fail")
	}
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	if _, err := helperRun(t, "gen", "--seed", "11", "--solvable", "-o", dir); err != nil {
		t.Fatalf("gen failed: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("Expected one generated file, got %v (%v)", len(entries), err)
	}
	path := filepath.Join(dir, entries[0].Name())

	out, err := helperRun(t, "check", path)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(out, "finished (0 leaks)") {
		t.Errorf("Check of a solvable level did not report it finished: %q", out)
	}

	// a corrupt file fails the run
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}
	out, err = helperRun(t, "check", path, bad)
	if err == nil {
		t.Errorf("Check of a corrupt file did not fail")
	}
	if !strings.Contains(out, "1 of 2") && err != nil && !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("Check did not report the failure count: %q / %v", out, err)
	}
}

func TestShow(t *testing.T) {
	dir := t.TempDir()
	if _, err := helperRun(t, "gen", "--seed", "23", "--solvable", "-o", dir); err != nil {
		t.Fatalf("gen failed: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	path := filepath.Join(dir, entries[0].Name())

	out, err := helperRun(t, "show", path)
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if !strings.Contains(out, "Complete: no leaks, all tiles connected") {
		t.Errorf("Unscrambled solvable level is not shown complete: %q", out)
	}

	out, err = helperRun(t, "show", "--scramble", "7", "--leaks", path)
	if err != nil {
		t.Fatalf("show --scramble failed: %v", err)
	}
	if len(out) == 0 {
		t.Errorf("Scrambled show produced no output")
	}
}
