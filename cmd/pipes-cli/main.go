// Command-line client for the pipes puzzle
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/hugoPeyronCode/pipes.go/config"
	"github.com/hugoPeyronCode/pipes.go/dbprep"
	"github.com/hugoPeyronCode/pipes.go/pipe"
	"github.com/hugoPeyronCode/pipes.go/storage"
)

var store *storage.Store

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Printf("Configuration failure: %v", err)
		shutdown(startupFailureShutdown)
	}
	if err := dbprep.EnsureData(dbprep.Params{
		CacheURL:      cfg.CacheURL,
		DatabaseURL:   cfg.DatabaseURL,
		MigrationsDir: cfg.MigrationsDir,
	}); err != nil {
		log.Printf("Storage preparation failure: %v", err)
		shutdown(startupFailureShutdown)
	}
	store, err = storage.Connect(cfg.Env, cfg.CacheURL, cfg.DatabaseURL)
	if err != nil {
		log.Printf("Storage connection failure: %v", err)
		shutdown(startupFailureShutdown)
	}
	defer store.Close()

	// catch signals
	shutdownOnSignal()

	// serve
	if err := listener(os.Stdout, os.Stdin); err != nil {
		log.Printf("CLI failure: %v", err)
		shutdown(listenerFailureShutdown)
	}
}

/*

CLI listener

*/

type request struct {
	inline  string
	command string
	args    []string
}

// listener reads lines and dispatches them to handlers
func listener(out io.Writer, in io.Reader) error {
	// if we are on a terminal, we do prompting
	// (see http://stackoverflow.com/questions/22744443/ for source)
	prompt := false
	if f, ok := out.(*os.File); ok {
		if stat, _ := f.Stat(); (stat.Mode() & os.ModeCharDevice) != 0 {
			prompt = true
		}
	}

	input := make([]byte, 4096)
	for {
		if prompt {
			fmt.Fprintf(out, "pipes> ")
		}
		n, err := in.Read(input)
		switch err {
		case nil:
			// piped input can carry several lines in one read
			for _, line := range strings.Split(string(input[:n]), "\n") {
				r := &request{inline: strings.Trim(line, " \t\r")}
				args := strings.Split(r.inline, " ")
				r.command = strings.ToLower(args[0])
				switch r.command {
				case "":
					continue
				case "quit":
					fallthrough
				case "exit":
					return nil
				}
				for _, arg := range args[1:] {
					if len(arg) > 0 {
						r.args = append(r.args, strings.ToLower(arg))
					}
				}
				dispatchCommand(out, r)
			}
		case io.EOF:
			// ignore any input before the EOF
			if prompt {
				fmt.Fprintf(out, " (EOF)\n")
			}
			return nil
		default:
			if prompt {
				fmt.Fprintf(out, " (read error)\n")
			}
			return err
		}
	}
}

// command dispatching
type commandInfo struct {
	command     string
	argInfo     string
	description string
	handler     func(*storage.Session, io.Writer, *request)
}

// the command dispatch info is sorted for easy usage printing,
// and then hashed for rapid dispatching
var (
	dispatchInfo  []commandInfo
	dispatchTable map[string]*commandInfo
)

func init() {
	dispatchInfo = []commandInfo{
		{"clear", "index", "clear an editor cell back to the filler tile", clearHandler},
		{"edit", "size", "start editing a new level of the given size", editHandler},
		{"export", "file", "write the edited level as JSON", exportHandler},
		{"leaks", "on|off", "show leak detail in board state", leaksHandler},
		{"levels", "", "list the stored levels", levelsHandler},
		{"place", "index type rot", "place a tile in the editor", placeHandler},
		{"reset", "[levelID]", "restart this or another level", stateHandler},
		{"rotate", "index", "rotate a tile a quarter turn clockwise", rotateHandler},
		{"save", "levelID", "store the edited level", saveHandler},
		{"session", "[sessionID]", "get/set session info", summaryHandler},
		{"source", "index", "move the editor's source", sourceHandler},
		{"state", "", "show current board state", stateHandler},
		{"summary", "", "show current session summary", summaryHandler},
		{"try", "[seed]", "play-test a scramble of the edited level", tryHandler},
		{"undo", "", "take back the last rotation", undoHandler},
	}
	dispatchTable = make(map[string]*commandInfo, len(dispatchInfo))
	for i := range dispatchInfo {
		dispatchTable[dispatchInfo[i].command] = &dispatchInfo[i]
	}
}

func dispatchCommand(w io.Writer, r *request) {
	defer func() {
		if err := recover(); err != nil {
			errorHandler(err, w, r)
		}
	}()

	session := sessionSelect(w, r)
	ci := dispatchTable[r.command]
	if ci == nil {
		usageHandler(fmt.Sprintf("%q is not a known command", r.command), w, r)
	} else {
		ci.handler(session, w, r)
	}
}

/*

play handlers

*/

// client state
var showLeaks = false

func leaksHandler(session *storage.Session, w io.Writer, r *request) {
	if len(r.args) > 0 {
		switch r.args[0] {
		case "on":
			showLeaks = true
			stateHandler(session, w, r)
		case "off":
			showLeaks = false
			stateHandler(session, w, r)
		default:
			usageHandler(fmt.Sprintf("argument to %s must be 'on' or 'off'", r.command), w, r)
		}
	} else {
		if showLeaks {
			fmt.Fprintf(w, "Leak detail is on\n")
		} else {
			fmt.Fprintf(w, "Leak detail is off\n")
		}
	}
}

func rotateHandler(session *storage.Session, w io.Writer, r *request) {
	if len(r.args) != 1 {
		usageHandler(fmt.Sprintf("%s requires one argument", r.command), w, r)
		return
	}
	pos, ok := parseIndex(r.args[0], session.Board.Size())
	if !ok {
		usageHandler(fmt.Sprintf("%s index (%s) is not on the board", r.command, r.args[0]), w, r)
		return
	}
	update := session.AddMove(pos)
	if !update.Changed {
		fmt.Fprintf(w, "Rotation had no effect.\n")
		return
	}
	if update.Complete {
		fmt.Fprintf(w, "That one did it!\n")
	}
	stateHandler(session, w, r)
}

func undoHandler(session *storage.Session, w io.Writer, r *request) {
	session.RemoveMove()
	stateHandler(session, w, r)
}

func stateHandler(session *storage.Session, w io.Writer, r *request) {
	fmt.Fprintf(w, "%s", session.Board.String())
	if showLeaks {
		fmt.Fprintf(w, "%s", session.Board.LeaksString())
	}
}

func summaryHandler(session *storage.Session, w io.Writer, r *request) {
	lid := session.LID
	if lid == "" {
		lid = "random"
	}
	fmt.Fprintf(w, "Session %q playing level %q (difficulty %d, seed %d)\n",
		session.SID, lid, session.Difficulty, session.Seed)
	state := session.Board.State()
	fmt.Fprintf(w, "Grid size: %d; Leaks: %d; Connected tiles: %d of %d\n",
		state.Size, len(state.Leaking), len(state.Reachable), state.Size*state.Size-1)
}

func levelsHandler(session *storage.Session, w io.Writer, r *request) {
	infos := store.LevelInfos()
	if len(infos) == 0 {
		fmt.Fprintf(w, "No stored levels.\n")
		return
	}
	for _, info := range infos {
		fmt.Fprintf(w, "    %-24s %s difficulty %d, %dx%d grid\n",
			info.LevelId, info.Kind, info.Difficulty, info.GridSize, info.GridSize)
	}
}

func usageHandler(msg string, w io.Writer, r *request) {
	fmt.Fprintf(w, "Error: %s\nUsage:\n", msg)
	for _, ci := range dispatchInfo {
		fmt.Fprintf(w, "    %8s %-15s\t%s\n", ci.command, ci.argInfo, ci.description)
	}
	fmt.Fprintf(w, "  and 'quit' or EOF to exit.\n")
}

func errorHandler(err interface{}, w io.Writer, r *request) {
	fmt.Fprintf(w, "Panic executing %q: %v\n", r.inline, err)
	log.Printf("CLI error executing %q: %v\n", r.inline, err)
}

// parseIndex turns a board index like "b3" (row letter, then
// column number as shown in the board printout) into a position.
func parseIndex(idx string, size int) (pipe.Position, bool) {
	if len(idx) < 2 {
		return pipe.Position{}, false
	}
	row := int(idx[0] - 'a')
	col, err := strconv.Atoi(idx[1:])
	if err != nil || row < 0 || row >= size || col < 0 || col >= size {
		return pipe.Position{}, false
	}
	return pipe.Position{Row: row, Col: col}, true
}

/*

editor handlers

*/

// the level under construction, nil until an edit command
var editor *pipe.Editor

func editHandler(session *storage.Session, w io.Writer, r *request) {
	if len(r.args) != 1 {
		usageHandler(fmt.Sprintf("%s requires one argument", r.command), w, r)
		return
	}
	size, err := strconv.Atoi(r.args[0])
	if err != nil {
		usageHandler(fmt.Sprintf("%s size (%s) is not a number", r.command, r.args[0]), w, r)
		return
	}
	e, err := pipe.NewEditor(size, pipe.Difficulty(session.Difficulty))
	if err != nil {
		fmt.Fprintf(w, "Can't start editing: %v\n", err)
		return
	}
	editor = e
	editorStateHandler(w)
}

func placeHandler(session *storage.Session, w io.Writer, r *request) {
	if editor == nil {
		fmt.Fprintf(w, "No level being edited; use 'edit' to start one.\n")
		return
	}
	if len(r.args) != 3 {
		usageHandler(fmt.Sprintf("%s requires three arguments", r.command), w, r)
		return
	}
	pos, ok := parseIndex(r.args[0], editor.Board().Size())
	if !ok {
		usageHandler(fmt.Sprintf("%s index (%s) is not on the board", r.command, r.args[0]), w, r)
		return
	}
	tileType, ok := pipe.LookupTileType(r.args[1])
	if !ok {
		usageHandler(fmt.Sprintf("%s type (%s) is not a tile type", r.command, r.args[1]), w, r)
		return
	}
	rotation, err := strconv.Atoi(r.args[2])
	if err != nil {
		usageHandler(fmt.Sprintf("%s rotation (%s) is not a number", r.command, r.args[2]), w, r)
		return
	}
	if err := editor.Place(pos, tileType, rotation); err != nil {
		fmt.Fprintf(w, "Place failed: %v\n", err)
		return
	}
	editorStateHandler(w)
}

func clearHandler(session *storage.Session, w io.Writer, r *request) {
	if editor == nil {
		fmt.Fprintf(w, "No level being edited; use 'edit' to start one.\n")
		return
	}
	if len(r.args) != 1 {
		usageHandler(fmt.Sprintf("%s requires one argument", r.command), w, r)
		return
	}
	pos, ok := parseIndex(r.args[0], editor.Board().Size())
	if !ok {
		usageHandler(fmt.Sprintf("%s index (%s) is not on the board", r.command, r.args[0]), w, r)
		return
	}
	if err := editor.Clear(pos); err != nil {
		fmt.Fprintf(w, "Clear failed: %v\n", err)
		return
	}
	editorStateHandler(w)
}

func sourceHandler(session *storage.Session, w io.Writer, r *request) {
	if editor == nil {
		fmt.Fprintf(w, "No level being edited; use 'edit' to start one.\n")
		return
	}
	if len(r.args) != 1 {
		usageHandler(fmt.Sprintf("%s requires one argument", r.command), w, r)
		return
	}
	pos, ok := parseIndex(r.args[0], editor.Board().Size())
	if !ok {
		usageHandler(fmt.Sprintf("%s index (%s) is not on the board", r.command, r.args[0]), w, r)
		return
	}
	if err := editor.MoveSource(pos); err != nil {
		fmt.Fprintf(w, "Source move failed: %v\n", err)
		return
	}
	editorStateHandler(w)
}

func tryHandler(session *storage.Session, w io.Writer, r *request) {
	if editor == nil {
		fmt.Fprintf(w, "No level being edited; use 'edit' to start one.\n")
		return
	}
	seed := time.Now().UnixNano()
	if len(r.args) > 0 {
		val, err := strconv.ParseInt(r.args[0], 10, 64)
		if err != nil {
			usageHandler(fmt.Sprintf("%s seed (%s) is not a number", r.command, r.args[0]), w, r)
			return
		}
		seed = val
	}
	b, err := editor.TestBoard(seed)
	if err != nil {
		fmt.Fprintf(w, "Play-test failed: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Scramble with seed %d:\n%s", seed, b.String())
}

func saveHandler(session *storage.Session, w io.Writer, r *request) {
	if editor == nil {
		fmt.Fprintf(w, "No level being edited; use 'edit' to start one.\n")
		return
	}
	if len(r.args) != 1 {
		usageHandler(fmt.Sprintf("%s requires one argument", r.command), w, r)
		return
	}
	level := editor.Level(r.args[0])
	if err := level.Validate(); err != nil {
		fmt.Fprintf(w, "Level %q won't validate: %v\n", level.ID, err)
		return
	}
	store.SaveLevel(level)
	fmt.Fprintf(w, "Stored level %q.\n", level.ID)
}

func exportHandler(session *storage.Session, w io.Writer, r *request) {
	if editor == nil {
		fmt.Fprintf(w, "No level being edited; use 'edit' to start one.\n")
		return
	}
	if len(r.args) != 1 {
		usageHandler(fmt.Sprintf("%s requires one argument", r.command), w, r)
		return
	}
	level := editor.Level("")
	file, err := os.Create(r.args[0])
	if err != nil {
		fmt.Fprintf(w, "Export failed: %v\n", err)
		return
	}
	defer file.Close()
	if err := level.Encode(file); err != nil {
		fmt.Fprintf(w, "Export failed: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Wrote level %q to %s.\n", level.ID, r.args[0])
}

func editorStateHandler(w io.Writer) {
	b := editor.Board()
	fmt.Fprintf(w, "%s", b.String())
	if showLeaks {
		fmt.Fprintf(w, "%s", b.LeaksString())
	}
}

/*

session handling

*/

// cookie for the command line
var defaultCookie string

var startTime = time.Now() // instance start-up time

// getCookie gets the session cookie, or sets a new one.  It
// returns the session ID associated with the cookie.
func getCookie(w io.Writer, r *request) string {
	// look to see if the user is specifying a cookie
	if r.command == "session" && len(r.args) > 0 {
		defaultCookie = r.args[0]
	}

	// look for an existing session cookie
	if len(defaultCookie) != 0 {
		return defaultCookie
	}

	// no session cookie: start a new session with a new ID
	// poor man's UUID for the session in local mode: time since startup.
	sid := strconv.FormatInt(int64(time.Now().Sub(startTime)), 36)
	log.Printf("No session cookie found, created new session ID %q", sid)
	defaultCookie = sid
	return sid
}

// sessionSelect: find or create the session for the current
// command.  A "reset" command restarts the session's level (or
// another level named in the argument) before its handler runs.
func sessionSelect(w io.Writer, r *request) *storage.Session {
	id := getCookie(w, r)
	forceReset, resetID := r.command == "reset", ""
	if forceReset && len(r.args) > 0 {
		resetID = r.args[0]
	}
	session := storage.NewSession(store, id)
	if session.Lookup() {
		session.LoadBoard()
		log.Printf("Found session %v on level %q.", session.SID, session.LID)
		if forceReset {
			if resetID == "" {
				session.RemoveAllMoves()
			} else {
				session.StartLevel(resetID, pipe.Difficulty(session.Difficulty))
			}
		}
	} else if resetID != "" {
		session.StartLevel(resetID, pipe.Medium)
	} else {
		session.StartLevel("random", pipe.Medium)
	}
	return session
}

/*

coordinate shutdown from signals and listener failures

*/

type shutdownCause int

const (
	unknownShutdown shutdownCause = iota
	normalShutdown
	startupFailureShutdown
	caughtSignalShutdown
	listenerFailureShutdown
)

// shutdown: process exit with logging.
func shutdown(reason shutdownCause) {
	if store != nil {
		store.Close()
	}
	switch reason {
	case normalShutdown:
		log.Fatal("Exiting: normal shutdown.")
	case startupFailureShutdown:
		log.Fatal("Exiting: initialization failure.")
	case caughtSignalShutdown:
		log.Fatal("Exiting: caught signal.")
	case listenerFailureShutdown:
		log.Fatal("Exiting: command listener failure.")
	default:
		log.Fatal("Exiting: unknown cause.")
	}
}

// shutdownOnSignal: catch signals and exit.
func shutdownOnSignal() {
	// based on example in os.signal godoc
	c := make(chan os.Signal, 1)
	signal.Notify(c) // die on all signals
	go func() {
		s := <-c
		log.Printf("Received OS-level signal: %v", s)
		shutdown(caughtSignalShutdown)
	}()
}
