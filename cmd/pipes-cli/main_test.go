package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hugoPeyronCode/pipes.go/dbprep"
	"github.com/hugoPeyronCode/pipes.go/pipe"
	"github.com/hugoPeyronCode/pipes.go/storage"
)

type tLogger struct {
	t   *testing.T
	log bytes.Buffer
}

func (t *tLogger) Write(p []byte) (n int, e error) {
	n, e = t.log.Write(p)
	t.t.Log(string(p[:n-1]))
	return
}

// testSetup routes logging through the test, connects the
// global store, and resets the client globals, skipping the
// test when the storage services aren't there.
func testSetup(t *testing.T) {
	t.Helper()
	tlog := &tLogger{t: t}
	if !testing.Short() {
		log.SetOutput(tlog)
	} else {
		log.SetOutput(os.Stderr)
	}
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	cacheURL := os.Getenv("REDIS_URL")
	if cacheURL == "" {
		cacheURL = "redis://localhost:6379/"
	}
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = "postgres://localhost/pipes?sslmode=disable"
	}
	p := dbprep.Params{
		CacheURL:      cacheURL,
		DatabaseURL:   databaseURL,
		MigrationsDir: "../../dbprep/migrations",
	}
	if err := dbprep.EnsureData(p); err != nil {
		t.Skipf("Storage services unavailable: %v", err)
	}
	s, err := storage.Connect("pipes-cli-test", cacheURL, databaseURL)
	if err != nil {
		t.Skipf("Storage services unavailable: %v", err)
	}
	store = s
	t.Cleanup(func() {
		store.Close()
		store = nil
	})

	// isolate each test's session and client state
	defaultCookie = fmt.Sprintf("cli-test-%s-%d", t.Name(), os.Getpid())
	showLeaks = false
	editor = nil
}

func TestNullInput(t *testing.T) {
	null := new(bytes.Buffer)
	out := new(bytes.Buffer)
	if err := listener(out, null); err != nil {
		t.Fatalf("CLI failure: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("Empty input produced output %q", out.String())
	}
}

func TestQuitWithoutDispatch(t *testing.T) {
	// quit and exit return before any session work, so no
	// storage is needed
	for _, inline := range []string{"quit\n", "exit\n", "QUIT\n"} {
		in := bytes.NewBufferString(inline)
		out := new(bytes.Buffer)
		if err := listener(out, in); err != nil {
			t.Fatalf("CLI failure on %q: %v", inline, err)
		}
	}
}

func TestLeaksToggle(t *testing.T) {
	testSetup(t)

	in := bytes.NewBufferString("leaks\n")
	out := new(bytes.Buffer)
	if err := listener(out, in); err != nil {
		t.Fatalf("CLI failure: %v", err)
	}
	expected := "Leak detail is off\n"
	if result := out.String(); result != expected {
		t.Errorf("Got %q, expected %q", result, expected)
	}

	in = bytes.NewBufferString("leaks bogus\nleaks\n")
	out = new(bytes.Buffer)
	if err := listener(out, in); err != nil {
		t.Fatalf("CLI failure: %v", err)
	}
	if result := out.String(); !strings.Contains(result, "must be 'on' or 'off'") {
		t.Errorf("Bad toggle argument did not show usage: %q", result)
	}
}

func TestUnknownCommand(t *testing.T) {
	testSetup(t)

	in := bytes.NewBufferString("frobnicate\n")
	out := new(bytes.Buffer)
	if err := listener(out, in); err != nil {
		t.Fatalf("CLI failure: %v", err)
	}
	result := out.String()
	if !strings.Contains(result, `"frobnicate" is not a known command`) {
		t.Errorf("Unknown command did not report itself: %q", result)
	}
	if !strings.Contains(result, "Usage:") {
		t.Errorf("Unknown command did not show usage: %q", result)
	}
}

func TestPlayCommands(t *testing.T) {
	testSetup(t)

	in := bytes.NewBufferString("reset builtin-starter-3\nstate\nrotate a0\nundo\nsummary\n")
	out := new(bytes.Buffer)
	if err := listener(out, in); err != nil {
		t.Fatalf("CLI failure: %v", err)
	}
	result := out.String()
	if !strings.Contains(result, "Complete: no leaks, all tiles connected\n") {
		t.Errorf("Starter level state is not complete: %q", result)
	}
	if !strings.Contains(result, `playing level "builtin-starter-3"`) {
		t.Errorf("Summary does not name the level: %q", result)
	}
	if !strings.Contains(result, "Grid size: 3;") {
		t.Errorf("Summary does not show the grid size: %q", result)
	}
}

func TestRotateBadIndex(t *testing.T) {
	testSetup(t)

	in := bytes.NewBufferString("rotate z99\nrotate a\nrotate\n")
	out := new(bytes.Buffer)
	if err := listener(out, in); err != nil {
		t.Fatalf("CLI failure: %v", err)
	}
	result := out.String()
	if !strings.Contains(result, "is not on the board") {
		t.Errorf("Bad index did not show usage: %q", result)
	}
	if !strings.Contains(result, "requires one argument") {
		t.Errorf("Missing index did not show usage: %q", result)
	}
}

func TestLevelsCommand(t *testing.T) {
	testSetup(t)

	in := bytes.NewBufferString("levels\n")
	out := new(bytes.Buffer)
	if err := listener(out, in); err != nil {
		t.Fatalf("CLI failure: %v", err)
	}
	if result := out.String(); !strings.Contains(result, "builtin-starter-3") {
		t.Errorf("Level list is missing the starter level: %q", result)
	}
}

func TestEditorCommands(t *testing.T) {
	testSetup(t)

	exported := filepath.Join(t.TempDir(), "edited.json")
	script := fmt.Sprintf("place a0 corner 1\nedit 3\nplace a0 deadend 2\nsource b1\ntry 7\nexport %s\n", exported)
	in := bytes.NewBufferString(script)
	out := new(bytes.Buffer)
	if err := listener(out, in); err != nil {
		t.Fatalf("CLI failure: %v", err)
	}
	result := out.String()
	if !strings.Contains(result, "No level being edited") {
		t.Errorf("Editing before 'edit' was not refused: %q", result)
	}
	if !strings.Contains(result, "Scramble with seed 7:") {
		t.Errorf("Play-test did not show the scramble: %q", result)
	}

	file, err := os.Open(exported)
	if err != nil {
		t.Fatalf("Exported level is missing: %v", err)
	}
	defer file.Close()
	level, err := pipe.DecodeLevel(file)
	if err != nil {
		t.Fatalf("Exported level won't decode: %v", err)
	}
	if level.GridSize != 3 {
		t.Errorf("Exported level size got %v, expected 3", level.GridSize)
	}
}
