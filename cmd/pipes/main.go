// Web server for the pipes puzzle
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hugoPeyronCode/pipes.go/config"
	"github.com/hugoPeyronCode/pipes.go/dbprep"
	"github.com/hugoPeyronCode/pipes.go/pipe"
	"github.com/hugoPeyronCode/pipes.go/storage"
)

const cookieName = "pipesID"
const cookiePath = "/"

var (
	startTime    = time.Now()
	store        *storage.Store
	sessions     = make(map[string]*storage.Session)
	sessionMutex sync.RWMutex
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Configuration failure: %v", err)
	}

	// storage must be migrated and loaded before we serve
	if err := dbprep.EnsureData(dbprep.Params{
		CacheURL:      cfg.CacheURL,
		DatabaseURL:   cfg.DatabaseURL,
		MigrationsDir: cfg.MigrationsDir,
	}); err != nil {
		log.Fatalf("Storage preparation failure: %v", err)
	}
	store, err = storage.Connect(cfg.Env, cfg.CacheURL, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Storage connection failure: %v", err)
	}
	defer store.Close()

	http.HandleFunc("/", rootHandler)

	log.Printf("Listening on %s...", cfg.Addr())
	if err := http.ListenAndServe(cfg.Addr(), nil); err != nil {
		log.Fatal("Listener failure: ", err)
	}
}

/*

request routing

*/

// rootHandler dispatches on the URL path.  The storage layer
// panics on infrastructure failures, so every request runs under
// a recovery wrapper that turns those panics into 500s.
func rootHandler(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if err := recover(); err != nil {
			log.Printf("Server error handling %s %s: %v", r.Method, r.URL.Path, err)
			http.Error(w, fmt.Sprintf("%v", err), http.StatusInternalServerError)
		}
	}()
	log.Printf("Handling %s %s...", r.Method, r.URL.Path)

	// the level catalog needs no session
	if strings.HasPrefix(r.URL.Path, "/api/levels/") {
		respondJSON(store.LevelInfos(), w)
		return
	}

	session := sessionSelect(w, r)
	switch {
	case strings.HasPrefix(r.URL.Path, "/api/state/"):
		session.Board.StateHandler(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/rotate/"):
		rotateHandler(session, w, r)
	case strings.HasPrefix(r.URL.Path, "/api/undo/"):
		session.RemoveMove()
		session.Board.StateHandler(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/reset/"):
		session.RemoveAllMoves()
		session.Board.StateHandler(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/level/"):
		levelHandler(session, w, r)
	default:
		http.NotFound(w, r)
	}
}

// rotateHandler is a POST handler that rotates the posted
// position on the session's board, recording the move so the
// session can be replayed.  The client gets the Update from the
// rotation; out-of-bounds positions are a 200 with Changed=false,
// only an undecodable body is a 400.
func rotateHandler(session *storage.Session, w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	var pos pipe.Position
	if err := dec.Decode(&pos); err != nil {
		log.Printf("Rotate decode failure in session %v: %v", session.SID, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	update := session.AddMove(pos)
	respondJSON(update, w)
	log.Printf("Rotated %v in session %v (changed %v).", pos, session.SID, update.Changed)
}

// levelHandler starts the session over on the level named in the
// URL path ("random" for a procedural board, empty to replay the
// current level from scratch).  Optional difficulty and size
// query arguments tune procedural boards.
func levelHandler(session *storage.Session, w http.ResponseWriter, r *http.Request) {
	lid := r.URL.Path[len("/api/level/"):]
	difficulty := pipe.Difficulty(session.Difficulty)
	if difficulty == 0 {
		difficulty = pipe.Medium
	}
	if arg := r.FormValue("difficulty"); arg != "" {
		val, err := strconv.Atoi(arg)
		if err != nil {
			http.Error(w, fmt.Sprintf("difficulty (%q) must be a number", arg), http.StatusBadRequest)
			return
		}
		difficulty = pipe.Difficulty(val)
	}
	if arg := r.FormValue("size"); arg != "" {
		val, err := strconv.Atoi(arg)
		if err != nil {
			http.Error(w, fmt.Sprintf("size (%q) must be a number", arg), http.StatusBadRequest)
			return
		}
		session.Size = val
	}
	session.StartLevel(lid, difficulty)
	session.Board.StateHandler(w, r)
}

// respondJSON encodes an object as a 200 response.  Encoding
// failures panic into the recovery wrapper.
func respondJSON(obj interface{}, w http.ResponseWriter) {
	bytes, err := json.Marshal(obj)
	if err != nil {
		panic(fmt.Errorf("Failed to encode response: %v", err))
	}
	hs := w.Header()
	hs.Add("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(bytes)
}

/*

session handling

*/

// getCookie gets the session cookie, or sets a new one.  It
// returns the session ID associated with the cookie.
//
// Session IDs are prefixed with the protocol the browser used,
// because proxied deployments serve HTTP and HTTPS from the same
// instance: a browser that starts on HTTP and moves to HTTPS
// presents the same cookie on what it considers a new session,
// so the two protocols must map to different server sessions.
func getCookie(w http.ResponseWriter, r *http.Request) string {
	proto := "httpx" // absent other indicators, protocol is unknown
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		proto = forwarded
	}

	// check for an existing cookie whose value matches the protocol
	if sc, e := r.Cookie(cookieName); e == nil {
		if m, e := regexp.MatchString(proto+"-[0-9a-z]{3,}", sc.Value); e == nil && m {
			return sc.Value
		}
	}

	// no session cookie or not a valid session cookie,
	// start a new session with a new cookie
	sid := proto + "-" + strconv.FormatInt(int64(time.Now().Sub(startTime)), 36)
	sc := &http.Cookie{Name: cookieName, Value: sid, Path: cookiePath}
	http.SetCookie(w, sc)
	return sid
}

// sessionSelect: find or create the session for the current
// connection.  Selection can happen concurrently from
// simultaneous goroutines, so the in-memory map is interlocked;
// on a miss we rebuild the session's board from its persisted
// record, so sessions survive server restarts.
func sessionSelect(w http.ResponseWriter, r *http.Request) *storage.Session {
	sessionID := getCookie(w, r)
	sessionMutex.RLock()
	session, ok := sessions[sessionID]
	sessionMutex.RUnlock()
	if ok && session != nil && session.Board != nil {
		return session
	}
	session = storage.NewSession(store, sessionID)
	if session.Lookup() {
		session.LoadBoard()
		log.Printf("Rebuilt session %v from storage.", sessionID)
	} else {
		session.StartLevel("random", pipe.Medium)
	}
	sessionMutex.Lock()
	sessions[sessionID] = session
	sessionMutex.Unlock()
	return session
}
