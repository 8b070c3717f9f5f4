package storage

/*

stored levels

Levels live durably in Postgres and are cached in Redis on first
read.  The stored form is the level envelope, so the database
never interprets a payload: the kind's registered decoder does
that, at load time.

*/

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/jackc/pgx/v5"

	"github.com/hugoPeyronCode/pipes.go/pipe"
)

// A levelEntry is the stored form of a level.  It is JSON
// serializable so it can go into the cache as well as the
// database.
type levelEntry struct {
	LevelId    string
	Kind       string
	Difficulty int32
	GridSize   int32
	Data       []byte // the envelope payload
}

// loadLevelEntry first checks the cache, then the database, to
// find the level's entry.  If it loads from the database, it
// caches the result.  Panics if there is no such stored entry.
func (s *Store) loadLevelEntry(id string) *levelEntry {
	le := &levelEntry{LevelId: id}
	if s.cacheLoad(le) {
		return le
	}
	// cache miss, load from database and save to cache
	s.databaseLoad(le)
	s.cacheInsert(le)
	return le
}

// envelope: reconstitute the stored envelope.
func (le *levelEntry) envelope() *pipe.LevelEnvelope {
	return &pipe.LevelEnvelope{
		ID:         le.LevelId,
		Kind:       pipe.LevelKind(le.Kind),
		Difficulty: int(le.Difficulty),
		Data:       json.RawMessage(le.Data),
	}
}

// key: compute the cache key for a levelEntry.
func (s *Store) levelKey(id string) string {
	return s.env + ":LID:" + id
}

// cacheLoad: load an already cached level entry.  Returns
// whether the entry was found in the cache.
func (s *Store) cacheLoad(le *levelEntry) bool {
	var bytes []byte
	body := func(conn redis.Conn) (err error) {
		bytes, err = redis.Bytes(conn.Do("GET", s.levelKey(le.LevelId)))
		if err == redis.ErrNil {
			return nil
		}
		if err != nil {
			err = fmt.Errorf("Cache failure loading levelEntry %q: %v", le.LevelId, err)
		}
		return
	}
	s.rdExecute(body)
	if len(bytes) == 0 {
		return false
	}
	var sle *levelEntry
	err := json.Unmarshal(bytes, &sle)
	if err != nil {
		panic(fmt.Errorf("Failed to unmarshal levelEntry %q: %v", le.LevelId, err))
	}
	if sle.LevelId != le.LevelId {
		panic(fmt.Errorf("Cached levelEntry (id: %q) found for level %q!",
			sle.LevelId, le.LevelId))
	}
	*le = *sle
	return true
}

// databaseLoad: load a level entry from the database.  Panics
// if there is no saved entry with the given id.
func (s *Store) databaseLoad(le *levelEntry) {
	body := func(tx pgx.Tx) error {
		row := tx.QueryRow(txContext(),
			"SELECT kind, difficulty, gridSize, levelData FROM levels "+
				"WHERE levelId = $1", le.LevelId)
		if err := row.Scan(&le.Kind, &le.Difficulty, &le.GridSize, &le.Data); err != nil {
			return fmt.Errorf("Failure looking up level %q: %v", le.LevelId, err)
		}
		return nil
	}
	s.pgExecute(body)
}

// cacheInsert: insert a level entry into the cache.  Replaces
// any existing entry with the same id.
func (s *Store) cacheInsert(le *levelEntry) {
	bytes, e := json.Marshal(le)
	if e != nil {
		panic(fmt.Errorf("Failed to marshal levelEntry %q: %v", le.LevelId, e))
	}
	body := func(conn redis.Conn) (err error) {
		_, err = conn.Do("SET", s.levelKey(le.LevelId), bytes)
		if err != nil {
			err = fmt.Errorf("Cache failure saving level entry %q: %v", le.LevelId, err)
		}
		return
	}
	s.rdExecute(body)
}

// databaseInsert: insert a new level entry into the database.
// Panics if there is already a saved entry with the given id.
func (s *Store) databaseInsert(le *levelEntry) {
	body := func(tx pgx.Tx) (err error) {
		_, err = tx.Exec(txContext(),
			"INSERT INTO levels (levelId, kind, difficulty, gridSize, levelData, created) "+
				"VALUES ($1, $2, $3, $4, $5, $6)",
			le.LevelId, le.Kind, le.Difficulty, le.GridSize, le.Data, time.Now())
		if err != nil {
			err = fmt.Errorf("Database error saving level entry %q: %v", le.LevelId, err)
		}
		return
	}
	s.pgExecute(body)
}

/*

level operations

*/

// SaveLevel stores a level durably under its envelope kind.
// Panics on storage failure or on a duplicate id.
func (s *Store) SaveLevel(level *pipe.Level) {
	env, err := level.Envelope()
	if err != nil {
		panic(err)
	}
	le := &levelEntry{
		LevelId:    env.ID,
		Kind:       string(env.Kind),
		Difficulty: int32(env.Difficulty),
		GridSize:   int32(level.GridSize),
		Data:       []byte(env.Data),
	}
	s.databaseInsert(le)
	s.cacheInsert(le)
}

// LoadLevel fetches a stored level and decodes it through its
// kind's registered decoder.  Panics if the level doesn't exist
// or won't decode.
func (s *Store) LoadLevel(id string) *pipe.Level {
	level, err := pipe.DecodeEnvelope(s.loadLevelEntry(id).envelope())
	if err != nil {
		panic(fmt.Errorf("Failed to decode stored level %q: %v", id, err))
	}
	return level
}

/*

level listings

*/

// A LevelInfo is the catalogue form of a stored level: enough
// to render a picker without decoding any payload.
type LevelInfo struct {
	LevelId    string    // unique ID for this level
	Kind       string    // puzzle family
	Difficulty int       // difficulty tier
	GridSize   int       // side length
	Created    time.Time // time when the level was stored
}

// LevelInfos lists every stored level.  Panics on storage
// failure.
func (s *Store) LevelInfos() []*LevelInfo {
	var infos []*LevelInfo
	body := func(tx pgx.Tx) error {
		rows, err := tx.Query(txContext(),
			"SELECT levelId, kind, difficulty, gridSize, created FROM levels")
		if err != nil {
			return fmt.Errorf("Failure listing levels: %v", err)
		}
		defer rows.Close()
		for rows.Next() {
			var li LevelInfo
			var difficulty, gridSize int32
			if err := rows.Scan(&li.LevelId, &li.Kind, &difficulty, &gridSize, &li.Created); err != nil {
				return fmt.Errorf("Failure scanning level row: %v", err)
			}
			li.Difficulty, li.GridSize = int(difficulty), int(gridSize)
			infos = append(infos, &li)
		}
		return rows.Err()
	}
	s.pgExecute(body)
	sort.Sort(ByDifficulty(infos))
	return infos
}

// sorting of info sequences by difficulty, then id
type ByDifficulty []*LevelInfo

func (li ByDifficulty) Len() int      { return len(li) }
func (li ByDifficulty) Swap(i, j int) { li[i], li[j] = li[j], li[i] }
func (li ByDifficulty) Less(i, j int) bool {
	if li[i].Difficulty != li[j].Difficulty {
		return li[i].Difficulty < li[j].Difficulty
	}
	return li[i].LevelId < li[j].LevelId
}

// sorting of info sequences by newest first
type ByNewest []*LevelInfo

func (li ByNewest) Len() int           { return len(li) }
func (li ByNewest) Swap(i, j int)      { li[i], li[j] = li[j], li[i] }
func (li ByNewest) Less(i, j int) bool { return li[i].Created.After(li[j].Created) }
