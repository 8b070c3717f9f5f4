package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/hugoPeyronCode/pipes.go/dbprep"
	"github.com/hugoPeyronCode/pipes.go/pipe"
	"github.com/hugoPeyronCode/pipes.go/storage"
)

// helperConnect prepares the test services and sets the server's
// global store, or skips the test if the services aren't there.
func helperConnect(t *testing.T) {
	t.Helper()
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
	s, err := storage.Connect("pipes-server-test", cacheURL, databaseURL)
	if err != nil {
		t.Skipf("Storage services unavailable: %v", err)
	}
	store = s
	t.Cleanup(func() {
		store.Close()
		store = nil
	})
}

// helperClient makes an http client with a cookie jar, so each
// client keeps its own server session.
func helperClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("Failed to create cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

// helperState gets a decoded state from the given path, failing
// the test on any transport or status problem.
func helperState(t *testing.T, client *http.Client, base, path string) pipe.State {
	t.Helper()
	r, err := client.Get(base + path)
	if err != nil {
		t.Fatalf("Request error on %s: %v", path, err)
	}
	defer r.Body.Close()
	if r.StatusCode != http.StatusOK {
		t.Fatalf("%s returned status %v, expected 200", path, r.StatusCode)
	}
	var state pipe.State
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		t.Fatalf("Failed to decode state from %s: %v", path, err)
	}
	return state
}

func TestServerSession(t *testing.T) {
	helperConnect(t)
	srv := httptest.NewServer(http.HandlerFunc(rootHandler))
	defer srv.Close()
	client := helperClient(t)

	// a fresh client gets a default procedural board
	start := helperState(t, client, srv.URL, "/api/state/")
	if start.Size != pipe.DefaultSize {
		t.Errorf("Fresh state size got %v, expected %v", start.Size, pipe.DefaultSize)
	}

	// rotate a corner tile and check the update
	body, err := json.Marshal(pipe.Position{Row: 0, Col: 0})
	if err != nil {
		t.Fatalf("Failed to marshal position: %v", err)
	}
	r, err := client.Post(srv.URL+"/api/rotate/", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Request error on rotate: %v", err)
	}
	var update pipe.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		t.Fatalf("Failed to decode rotate update: %v", err)
	}
	r.Body.Close()
	if !update.Changed {
		t.Errorf("Rotate of in-bounds position reported no change")
	}

	// undo restores the starting state
	after := helperState(t, client, srv.URL, "/api/undo/")
	if !reflect.DeepEqual(after, start) {
		t.Errorf("State after undo got %+v, expected %+v", after, start)
	}

	// a new procedural level at a different size
	sized := helperState(t, client, srv.URL, "/api/level/random?difficulty=1&size=7")
	if sized.Size != 7 {
		t.Errorf("Sized state size got %v, expected 7", sized.Size)
	}

	// reset replays the sized board from scratch
	reset := helperState(t, client, srv.URL, "/api/reset/")
	if !reflect.DeepEqual(reset, sized) {
		t.Errorf("State after reset got %+v, expected %+v", reset, sized)
	}
}

func TestServerStoredLevel(t *testing.T) {
	helperConnect(t)
	srv := httptest.NewServer(http.HandlerFunc(rootHandler))
	defer srv.Close()
	client := helperClient(t)

	state := helperState(t, client, srv.URL, "/api/level/builtin-starter-3")
	if state.Size != 3 {
		t.Errorf("Starter level size got %v, expected 3", state.Size)
	}
	expected := pipe.Position{Row: 1, Col: 1}
	if state.Source != expected {
		t.Errorf("Starter level source got %v, expected %v", state.Source, expected)
	}
}

func TestServerLevelCatalog(t *testing.T) {
	helperConnect(t)
	srv := httptest.NewServer(http.HandlerFunc(rootHandler))
	defer srv.Close()
	client := helperClient(t)

	r, err := client.Get(srv.URL + "/api/levels/")
	if err != nil {
		t.Fatalf("Request error on levels: %v", err)
	}
	defer r.Body.Close()
	if r.StatusCode != http.StatusOK {
		t.Fatalf("Levels returned status %v, expected 200", r.StatusCode)
	}
	var infos []*storage.LevelInfo
	if err := json.NewDecoder(r.Body).Decode(&infos); err != nil {
		t.Fatalf("Failed to decode level catalog: %v", err)
	}
	found := false
	for _, info := range infos {
		if info.LevelId == "builtin-starter-3" {
			found = true
		}
	}
	if !found {
		t.Errorf("Level catalog is missing the starter level")
	}
}

func TestServerSessionsDistinct(t *testing.T) {
	helperConnect(t)
	srv := httptest.NewServer(http.HandlerFunc(rootHandler))
	defer srv.Close()

	// two clients with separate jars get separate sessions, so a
	// rotation by one doesn't show up in the other's state
	first, second := helperClient(t), helperClient(t)
	firstStart := helperState(t, first, srv.URL, "/api/state/")
	secondStart := helperState(t, second, srv.URL, "/api/state/")

	body, err := json.Marshal(pipe.Position{Row: 0, Col: 0})
	if err != nil {
		t.Fatalf("Failed to marshal position: %v", err)
	}
	if _, err := first.Post(srv.URL+"/api/rotate/", "application/json", bytes.NewReader(body)); err != nil {
		t.Fatalf("Request error on rotate: %v", err)
	}

	firstAfter := helperState(t, first, srv.URL, "/api/state/")
	secondAfter := helperState(t, second, srv.URL, "/api/state/")
	if reflect.DeepEqual(firstAfter, firstStart) {
		t.Errorf("First session state did not change after its rotation")
	}
	if !reflect.DeepEqual(secondAfter, secondStart) {
		t.Errorf("Second session state changed after the first session's rotation")
	}
}

func TestServerBadRequests(t *testing.T) {
	helperConnect(t)
	srv := httptest.NewServer(http.HandlerFunc(rootHandler))
	defer srv.Close()
	client := helperClient(t)

	cases := []struct {
		name   string
		get    string
		status int
	}{
		{"unknown path", "/nowhere/", http.StatusNotFound},
		{"bad difficulty", "/api/level/random?difficulty=hard", http.StatusBadRequest},
		{"bad size", "/api/level/random?size=big", http.StatusBadRequest},
	}
	for _, c := range cases {
		r, err := client.Get(srv.URL + c.get)
		if err != nil {
			t.Fatalf("%s: request error: %v", c.name, err)
		}
		r.Body.Close()
		if r.StatusCode != c.status {
			t.Errorf("%s: got status %v, expected %v", c.name, r.StatusCode, c.status)
		}
	}

	// undecodable rotate body
	r, err := client.Post(srv.URL+"/api/rotate/", "application/json",
		bytes.NewReader([]byte("not json")))
	if err != nil {
		t.Fatalf("Request error on bad rotate: %v", err)
	}
	r.Body.Close()
	if r.StatusCode != http.StatusBadRequest {
		t.Errorf("Bad rotate body got status %v, expected 400", r.StatusCode)
	}

	// an unknown level id is a storage panic, which the recovery
	// wrapper turns into a 500
	id := fmt.Sprintf("no-such-level-%d", os.Getpid())
	r, err = client.Get(srv.URL + "/api/level/" + id)
	if err != nil {
		t.Fatalf("Request error on unknown level: %v", err)
	}
	r.Body.Close()
	if r.StatusCode != http.StatusInternalServerError {
		t.Errorf("Unknown level got status %v, expected 500", r.StatusCode)
	}
}
