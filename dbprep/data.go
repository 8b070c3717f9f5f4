package dbprep

/*

builtin level catalogue

The builtin levels give a fresh install something to play: one
hand-authored starter and a ladder of generated boards.  The
generated ones come from fixed seeds, so every install gets the
same catalogue.

*/

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hugoPeyronCode/pipes.go/pipe"
)

type dataFunction func(pgx.Tx) error

var (
	upFunctions = []dataFunction{
		insertBuiltins,
	}
	downFunctions = []dataFunction{
		deleteBuiltins,
	}
)

// DataUp: load the builtin levels into the database.  You
// should do this after you get the schema up!
func DataUp(p Params) error {
	return applyFunctions(p, upFunctions)
}

// DataDown: remove the builtin levels from the database.  You
// should do this before you tear the schema down!
func DataDown(p Params) error {
	return applyFunctions(p, downFunctions)
}

// apply dataFunctions to the database.  Each is applied in a
// separate transaction, so later ones can rely on the effect of
// earlier ones having been committed.
func applyFunctions(p Params, fns []dataFunction) error {
	p = p.withDefaults()
	ctx := context.Background()

	// open the database, defer the close
	conn, err := pgx.Connect(ctx, p.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	// helper that runs each function inside a transaction, and
	// ensures that any problems are rolled back.
	runFunc := func(fn dataFunction) error {
		tx, err := conn.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if e := recover(); e != nil {
				tx.Rollback(ctx)
				panic(e)
			}
		}()
		if err := fn(tx); err != nil {
			tx.Rollback(ctx)
			return err
		}
		return tx.Commit(ctx)
	}

	// run the functions
	for _, fn := range fns {
		if err := runFunc(fn); err != nil {
			return fmt.Errorf("%v failed: %v", fn, err)
		}
	}
	return nil
}

/*

the builtin levels

*/

// builtinPrefix marks catalogue level ids, so they can be
// removed without touching user-saved levels.
const builtinPrefix = "builtin-"

// starterLevel is the hand-authored first level: a 3x3 full
// spanning layout around a center t-junction.
func starterLevel() *pipe.Level {
	return &pipe.Level{
		ID:             builtinPrefix + "starter-3",
		Difficulty:     int(pipe.Light),
		GridSize:       3,
		SourcePosition: pipe.Position{Row: 1, Col: 1},
		Pipes: []pipe.LevelPipe{
			{Row: 0, Col: 0, Type: pipe.DeadEnd, Rotation: 1},
			{Row: 0, Col: 1, Type: pipe.TJunction, Rotation: 2},
			{Row: 0, Col: 2, Type: pipe.DeadEnd, Rotation: 3},
			{Row: 1, Col: 0, Type: pipe.Corner, Rotation: 1},
			{Row: 1, Col: 1, Type: pipe.TJunction, Rotation: 0},
			{Row: 1, Col: 2, Type: pipe.Corner, Rotation: 2},
			{Row: 2, Col: 0, Type: pipe.Corner, Rotation: 0},
			{Row: 2, Col: 1, Type: pipe.Straight, Rotation: 1},
			{Row: 2, Col: 2, Type: pipe.Corner, Rotation: 3},
		},
	}
}

// generated builtins: a ladder of sizes and tiers, all from
// fixed seeds so the catalogue is identical on every install.
var builtinRecipes = []struct {
	id         string
	size       int
	difficulty pipe.Difficulty
	seed       int64
}{
	{builtinPrefix + "light-5", 5, pipe.Light, 1001},
	{builtinPrefix + "medium-5", 5, pipe.Medium, 1002},
	{builtinPrefix + "heavy-5", 5, pipe.Heavy, 1003},
	{builtinPrefix + "medium-7", 7, pipe.Medium, 1004},
	{builtinPrefix + "heavy-7", 7, pipe.Heavy, 1005},
	{builtinPrefix + "heavy-9", 9, pipe.Heavy, 1006},
}

// builtinLevels builds the whole catalogue.
func builtinLevels() ([]*pipe.Level, error) {
	levels := []*pipe.Level{starterLevel()}
	for _, r := range builtinRecipes {
		g, err := pipe.NewGenerator(&pipe.Options{
			Size:            r.size,
			Difficulty:      r.difficulty,
			Seed:            r.seed,
			RequireSolvable: true,
		})
		if err != nil {
			return nil, fmt.Errorf("Bad builtin recipe %q: %v", r.id, err)
		}
		level, err := g.GenerateLevel(r.id)
		if err != nil {
			return nil, fmt.Errorf("Couldn't generate builtin %q: %v", r.id, err)
		}
		levels = append(levels, level)
	}
	return levels, nil
}

// insertBuiltins: create and insert the builtin levels.  Skips
// the load if any builtin is already present.
func insertBuiltins(tx pgx.Tx) error {
	ctx := context.Background()
	var count int
	row := tx.QueryRow(ctx,
		"SELECT COUNT(*) FROM levels WHERE levelId LIKE $1", builtinPrefix+"%")
	if err := row.Scan(&count); err != nil {
		return fmt.Errorf("Couldn't look for existing builtins: %v", err)
	}
	if count > 0 {
		return nil
	}
	levels, err := builtinLevels()
	if err != nil {
		return err
	}
	for _, level := range levels {
		env, err := level.Envelope()
		if err != nil {
			return fmt.Errorf("Couldn't wrap builtin %q: %v", level.ID, err)
		}
		_, err = tx.Exec(ctx,
			"INSERT INTO levels (levelId, kind, difficulty, gridSize, levelData, created) "+
				"VALUES ($1, $2, $3, $4, $5, $6)",
			env.ID, string(env.Kind), env.Difficulty, level.GridSize, []byte(env.Data), time.Now())
		if err != nil {
			return fmt.Errorf("Couldn't insert builtin %q: %v", level.ID, err)
		}
	}
	return nil
}

// deleteBuiltins: remove the builtin levels.
func deleteBuiltins(tx pgx.Tx) error {
	_, err := tx.Exec(context.Background(),
		"DELETE FROM levels WHERE levelId LIKE $1", builtinPrefix+"%")
	if err != nil {
		return fmt.Errorf("Couldn't delete builtins: %v", err)
	}
	return nil
}
