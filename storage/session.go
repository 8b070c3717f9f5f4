package storage

/*

sessions

A Session tracks one player's current board.  Behind the scenes
we persist the generation recipe (level id, seed, size, tier)
and the full move list, so the exact board can be rebuilt on any
process by replaying the moves over the regenerated layout.  The
board itself is never serialized.

*/

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/hugoPeyronCode/pipes.go/pipe"
)

// A Session is the stored record of a player's game in progress.
type Session struct {
	store *Store

	// these elements are persisted in the session hash
	SID        string // session ID
	LID        string // ID of the level being played; empty for procedural boards
	Size       int    // side length, for procedural boards
	Difficulty int    // difficulty tier
	Seed       int64  // generator seed the board was built from
	Created    string // RFC3339 time when the session was created
	Saved      string // RFC3339 time when the session was last saved

	// the live board is rebuilt, never persisted
	Board *pipe.Board `redis:"-"`
}

// NewSession makes an in-memory session bound to a store.  Use
// Lookup to find its persisted state, or StartLevel to begin a
// game.
func NewSession(store *Store, sid string) *Session {
	return &Session{
		store:   store,
		SID:     sid,
		Size:    pipe.DefaultSize,
		Created: time.Now().Format(time.RFC3339),
	}
}

/*

session manipulation

*/

// StartLevel: build a fresh board for the session and clear any
// recorded moves.  An empty level ID keeps the session's current
// level; the special value "random" (or an empty current level)
// plays a procedural board instead of a stored one.
func (s *Session) StartLevel(lid string, difficulty pipe.Difficulty) {
	if lid == "" {
		lid = s.LID
	} else if lid == "random" {
		lid = ""
	}

	// the session owns the seed so the board can be replayed,
	// so it never lets the generator derive one
	seed := time.Now().UnixNano()
	s.LID, s.Difficulty, s.Seed = lid, int(difficulty), seed
	s.Board = s.buildBoard()
	s.Size = s.Board.Size()

	// update the cache
	s.Saved = time.Now().Format(time.RFC3339)
	body := func(conn redis.Conn) (err error) {
		conn.Send("HMSET", redis.Args{}.Add(s.key()).AddFlat(s)...)
		_, err = conn.Do("DEL", s.movesKey())
		if err != nil {
			log.Printf("Redis error on save of session %q after reset: %v", s.SID, err)
		}
		return
	}
	s.store.rdExecute(body)
	log.Printf("Reset session %v to start level %q (seed %d).", s.SID, s.displayLID(), seed)
}

// AddMove: rotate the given position on the session's board and
// record the move.  Out-of-bounds rotations are no-ops on the
// board and are not recorded.
func (s *Session) AddMove(pos pipe.Position) *pipe.Update {
	update := s.Board.Rotate(pos)
	if !update.Changed {
		return &update
	}

	// update the cache
	s.Saved = time.Now().Format(time.RFC3339)
	bytes := marshalMove(pos)
	body := func(conn redis.Conn) (err error) {
		conn.Send("HMSET", redis.Args{}.Add(s.key()).AddFlat(s)...)
		_, err = conn.Do("RPUSH", s.movesKey(), bytes)
		if err != nil {
			log.Printf("Redis error on save of %s:%q move: %v", s.SID, s.displayLID(), err)
		}
		return
	}
	s.store.rdExecute(body)
	return &update
}

// RemoveMove: remove the last recorded move and restore the
// prior board.  Rotations cycle, so undoing a quarter turn is
// three more quarter turns at the same position.
func (s *Session) RemoveMove() {
	var bytes []byte
	found := false
	s.Saved = time.Now().Format(time.RFC3339)
	body := func(conn redis.Conn) (err error) {
		bytes, err = redis.Bytes(conn.Do("LINDEX", s.movesKey(), -1))
		if err == redis.ErrNil {
			return nil
		}
		if err != nil {
			log.Printf("Redis error on undo of %s:%q: %v", s.SID, s.displayLID(), err)
			return
		}
		found = true
		conn.Send("HMSET", redis.Args{}.Add(s.key()).AddFlat(s)...)
		_, err = conn.Do("LTRIM", s.movesKey(), 0, -2)
		return
	}
	s.store.rdExecute(body)
	if !found {
		// no moves to undo
		return
	}
	pos := unmarshalMove(bytes)
	for i := 0; i < 3; i++ {
		s.Board.Rotate(pos)
	}
	log.Printf("Reverted session %v:%v by one move.", s.SID, s.displayLID())
}

// RemoveAllMoves: clear the recorded moves and restore the
// session's board to its starting point.
func (s *Session) RemoveAllMoves() {
	s.Saved = time.Now().Format(time.RFC3339)
	body := func(conn redis.Conn) (err error) {
		conn.Send("HMSET", redis.Args{}.Add(s.key()).AddFlat(s)...)
		_, err = conn.Do("DEL", s.movesKey())
		return
	}
	s.store.rdExecute(body)
	s.Board.Reset()
	log.Printf("Reset session %v:%v to its starting board.", s.SID, s.displayLID())
}

// Lookup: find the session's persisted state, if any.
func (s *Session) Lookup() (found bool) {
	body := func(conn redis.Conn) error {
		vals, err := redis.Values(conn.Do("HGETALL", s.key()))
		if len(vals) > 0 {
			if err := redis.ScanStruct(vals, s); err != nil {
				log.Printf("Redis error on parse of saved session %q: %v", s.SID, err)
				return err
			}
			found = true
			return nil
		}
		if err != nil {
			log.Printf("Redis error on lookup of session %q: %v", s.SID, err)
			return err
		}
		return nil
	}
	s.store.rdExecute(body)
	return
}

// LoadBoard: rebuild the session's board from its recipe and
// replay the recorded moves over it.
func (s *Session) LoadBoard() {
	s.Board = s.buildBoard()
	for _, pos := range s.moves() {
		s.Board.Rotate(pos)
	}
}

/*

board construction

*/

// buildBoard makes the session's starting board from its
// persisted recipe.
func (s *Session) buildBoard() *pipe.Board {
	opts := pipe.DefaultOptions(pipe.Difficulty(s.Difficulty))
	if s.Size >= pipe.MinGridSize {
		opts.Size = s.Size
	}
	opts.Seed = s.Seed
	g, err := pipe.NewGenerator(opts)
	if err != nil {
		panic(fmt.Errorf("Failed to create generator for session %q: %v", s.SID, err))
	}
	if s.LID == "" {
		b, err := g.Generate()
		if err != nil {
			panic(fmt.Errorf("Failed to generate board for session %q: %v", s.SID, err))
		}
		return b
	}
	b, err := g.Load(s.store.LoadLevel(s.LID))
	if err != nil {
		panic(fmt.Errorf("Failed to load level %q for session %q: %v", s.LID, s.SID, err))
	}
	return b
}

// moves reads the recorded move list from the cache.
func (s *Session) moves() []pipe.Position {
	var raw [][]byte
	body := func(conn redis.Conn) (err error) {
		raw, err = redis.ByteSlices(conn.Do("LRANGE", s.movesKey(), 0, -1))
		if err != nil {
			log.Printf("Redis error on move list of %s:%q: %v", s.SID, s.displayLID(), err)
		}
		return
	}
	s.store.rdExecute(body)
	positions := make([]pipe.Position, len(raw))
	for i, bytes := range raw {
		positions[i] = unmarshalMove(bytes)
	}
	return positions
}

/*

serialization of moves into and out of the cache

*/

// marshalMove - get JSON for one move
func marshalMove(pos pipe.Position) []byte {
	bytes, err := json.Marshal(pos)
	if err != nil {
		panic(fmt.Errorf("Failed to marshal move %v as JSON: %v", pos, err))
	}
	return bytes
}

// unmarshalMove - get the position for a saved move
func unmarshalMove(bytes []byte) pipe.Position {
	var pos pipe.Position
	if err := json.Unmarshal(bytes, &pos); err != nil {
		panic(fmt.Errorf("Failed to unmarshal saved move: %v", err))
	}
	return pos
}

/*

session key generation

*/

// key - returns the session key
func (s *Session) key() string {
	return s.store.env + ":SID:" + s.SID
}

// movesKey - returns the key for the session's move list
func (s *Session) movesKey() string {
	return s.key() + ":Moves"
}

// displayLID - the level id as shown in logs
func (s *Session) displayLID() string {
	if s.LID == "" {
		return "random"
	}
	return s.LID
}
