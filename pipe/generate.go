package pipe

/*

Board generation and scrambling

The generator builds a solved (or at least locally-connected)
layout and then scrambles it into a puzzle.  Scrambling is
best-effort: it randomizes rotations without proving the result
can be rotated back into a full-coverage layout.  Callers who
need the stronger guarantee opt into RequireSolvable, which
validates the pre-scramble layout and retries.

All randomness flows from one seed, so the same options produce
the same board every time.  That's what lets a session replay a
board from its stored seed and move list.

*/

import (
	"math/rand"
	"time"
)

// Difficulty tiers.  The tier drives both the tile mix of
// procedural layouts and the scramble intensity.
type Difficulty int

// Constants for the difficulty tiers.
const (
	Light Difficulty = iota + 1
	Medium
	Heavy
)

// clamp an arbitrary difficulty value into the known tiers.
func (d Difficulty) clamp() Difficulty {
	if d < Light {
		return Light
	}
	if d > Heavy {
		return Heavy
	}
	return d
}

// Options configure a generator.
type Options struct {
	Size       int        // side length of generated boards
	Difficulty Difficulty // tile mix and scramble intensity
	Seed       int64      // 0 means derive from the clock
	// RequireSolvable makes procedural generation validate the
	// pre-scramble layout for full coverage and retry until it
	// finds one (or runs out of attempts).  Off by default:
	// best-effort scrambling is the accepted behavior, and a
	// degenerate board still plays, it just can't be finished.
	RequireSolvable bool
	MaxAttempts     int // retry bound for RequireSolvable
}

// Generation size limits and retry default.
const (
	DefaultSize        = 5
	DefaultMaxAttempts = 25
)

// DefaultOptions returns the standard generator options for a
// given difficulty tier.
func DefaultOptions(difficulty Difficulty) *Options {
	return &Options{
		Size:        DefaultSize,
		Difficulty:  difficulty.clamp(),
		MaxAttempts: DefaultMaxAttempts,
	}
}

// A Generator builds fresh boards, procedurally or from level
// descriptions.  Generators are not safe for concurrent use
// (they own a rand.Rand).
type Generator struct {
	opts Options
	seed int64
	rng  *rand.Rand
}

// NewGenerator creates a generator with the given options.  A
// nil options pointer gets the medium-tier defaults.
func NewGenerator(opts *Options) (*Generator, error) {
	if opts == nil {
		opts = DefaultOptions(Medium)
	}
	if opts.Size < MinGridSize || opts.Size > MaxGridSize {
		return nil, rangeError(GridSizeAttribute, opts.Size, MinGridSize, MaxGridSize)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Generator{
		opts: *opts,
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
	if g.opts.MaxAttempts <= 0 {
		g.opts.MaxAttempts = DefaultMaxAttempts
	}
	g.opts.Difficulty = g.opts.Difficulty.clamp()
	return g, nil
}

// Seed returns the seed the generator is running from.  Sessions
// persist it so they can rebuild the same board later.
func (g *Generator) Seed() int64 {
	return g.seed
}

/*

Procedural generation

*/

// Generate builds a scrambled procedural board.
func (g *Generator) Generate() (*Board, error) {
	layout, err := g.layout()
	if err != nil {
		return nil, err
	}
	g.scramble(layout)
	layout.rebuild = g.rebuildProcedural()
	layout.validate()
	return layout, nil
}

// GenerateLevel builds an unscrambled procedural layout and
// exports it as a level description under the given id.  Levels
// store solved layouts; every consumer scrambles at load time.
func (g *Generator) GenerateLevel(id string) (*Level, error) {
	layout, err := g.layout()
	if err != nil {
		return nil, err
	}
	return layout.Level(id, int(g.opts.Difficulty)), nil
}

// layout builds the pre-scramble board.  The default path is
// best-effort: source at center as a t-junction at rotation 0, a
// correctly-oriented neighbourhood around it, and difficulty-
// dependent fill everywhere else.  The RequireSolvable path
// instead carves a random spanning tree of the grid, validates
// it for full coverage, and retries until it has one.
func (g *Generator) layout() (*Board, error) {
	if !g.opts.RequireSolvable {
		return g.buildLayout(), nil
	}
	for i := 0; i < g.opts.MaxAttempts; i++ {
		b := g.carveLayout()
		b.validate()
		if b.IsComplete() {
			return b, nil
		}
	}
	return nil, Error{
		Scope:     GeneratorScope,
		Structure: ScopeStructure,
		Condition: NotSolvableCondition,
		Values:    ErrorData{g.opts.MaxAttempts},
	}
}

// buildLayout assembles one candidate layout.
func (g *Generator) buildLayout() *Board {
	size := g.opts.Size
	source := Position{size / 2, size / 2}
	b := newBoard(size, source)
	b.tiles[source.Row][source.Col] = Tile{Type: TJunction, Rotation: 0}

	// Seed the neighbourhood: one reciprocating tile on each of
	// the source's three arms.  This guarantees a local sub-path
	// only, not global solvability.
	for _, d := range Connections(TJunction, 0).Directions() {
		pos := source.Adjacent(d)
		if !b.InBounds(pos) {
			continue
		}
		b.tiles[pos.Row][pos.Col] = g.armTile(d)
	}

	// Fill the remaining cells according to the tier.
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			pos := Position{row, col}
			if pos == source || g.isArm(source, pos) {
				continue
			}
			b.tiles[row][col] = g.fillTile()
		}
	}
	return b
}

// armTile picks a tile that reciprocates a source connection in
// direction d: a straight aligned with d, so the arm continues
// outward.
func (g *Generator) armTile(d Direction) Tile {
	if d == Up || d == Down {
		return Tile{Type: Straight, Rotation: 0}
	}
	return Tile{Type: Straight, Rotation: 1}
}

// isArm reports whether pos is one of the seeded neighbourhood
// cells around the source.
func (g *Generator) isArm(source, pos Position) bool {
	for _, d := range Connections(TJunction, 0).Directions() {
		if source.Adjacent(d) == pos {
			return true
		}
	}
	return false
}

// fillTile picks a filler tile for one cell.  Light boards stay
// on the neutral tile; higher tiers mix in the other types.
func (g *Generator) fillTile() Tile {
	switch g.opts.Difficulty {
	case Light:
		return defaultTile
	case Medium:
		types := []TileType{Straight, Straight, Corner}
		return Tile{Type: types[g.rng.Intn(len(types))], Rotation: g.rng.Intn(4)}
	default:
		types := []TileType{Straight, Corner, TJunction, DeadEnd}
		return Tile{Type: types[g.rng.Intn(len(types))], Rotation: g.rng.Intn(4)}
	}
}

// carveLayout builds a layout by carving a random spanning tree
// of the grid, depth-first from the source, then converting each
// cell's tree edges into a tile.  A spanning tree touches every
// cell and reciprocates every edge, so the result is complete by
// construction; the caller still validates because a cell that
// sprouted four branches has no matching tile type.
func (g *Generator) carveLayout() *Board {
	size := g.opts.Size
	source := Position{size / 2, size / 2}
	edges := make(map[Position]DirectionSet, size*size)
	visited := make(map[Position]bool, size*size)
	carve := func(pos Position, d Direction) Position {
		next := pos.Adjacent(d)
		edges[pos] = edges[pos].Add(d)
		edges[next] = edges[next].Add(d.Opposite())
		visited[next] = true
		return next
	}

	// The source's arms come first, so its edge set matches the
	// t-junction convention whenever the grid has room for it.
	visited[source] = true
	var stack []Position
	for _, d := range Connections(TJunction, 0).Directions() {
		if next := source.Adjacent(d); next.Row >= 0 && next.Row < size && next.Col >= 0 && next.Col < size {
			stack = append(stack, carve(source, d))
		}
	}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		dirs := []Direction{Up, Right, Down, Left}
		g.rng.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })
		carved := false
		for _, d := range dirs {
			next := cur.Adjacent(d)
			if next.Row < 0 || next.Row >= size || next.Col < 0 || next.Col >= size || visited[next] {
				continue
			}
			stack = append(stack, carve(cur, d))
			carved = true
			break
		}
		if !carved {
			stack = stack[:len(stack)-1]
		}
	}

	b := newBoard(size, source)
	for pos, set := range edges {
		b.tiles[pos.Row][pos.Col] = inferTile(set)
	}
	return b
}

// rebuildProcedural returns the recipe a procedural board resets
// with.  Explicitly-seeded generators reproduce the same board;
// clock-seeded ones produce a fresh puzzle.
func (g *Generator) rebuildProcedural() func() *Board {
	opts := g.opts
	return func() *Board {
		fresh, err := NewGenerator(&opts)
		if err != nil {
			panic(err) // options were already accepted once
		}
		b, err := fresh.Generate()
		if err != nil {
			panic(err)
		}
		return b
	}
}

/*

Scrambling

*/

// maxExtraTurns maps each tier to the scramble intensity: every
// non-source tile gets between 1 and this many random quarter
// turns.
var maxExtraTurns = map[Difficulty]int{
	Light:  1,
	Medium: 2,
	Heavy:  3,
}

// scramble randomizes the rotation of every non-source tile.
// The source is never touched: that the source tile keeps its
// generated orientation is a scrambler convention, not a board
// invariant.
func (g *Generator) scramble(b *Board) {
	turns := maxExtraTurns[g.opts.Difficulty.clamp()]
	for row := 0; row < b.size; row++ {
		for col := 0; col < b.size; col++ {
			if (Position{row, col}) == b.source {
				continue
			}
			n := 1 + g.rng.Intn(turns)
			for i := 0; i < n; i++ {
				b.tiles[row][col].Rotate()
			}
		}
	}
}

/*

Declarative load

*/

// Load builds a board from a level description and scrambles it
// exactly as the procedural path does.  Cells absent from the
// description get the default tile.  Loading is deterministic:
// the same level and the same generator seed always produce the
// same board.
func (g *Generator) Load(level *Level) (*Board, error) {
	b, err := buildLevel(level)
	if err != nil {
		return nil, err
	}
	g.scramble(b)
	opts, lvl := g.opts, *level
	b.rebuild = func() *Board {
		fresh, err := NewGenerator(&opts)
		if err != nil {
			panic(err)
		}
		rebuilt, err := fresh.Load(&lvl)
		if err != nil {
			panic(err)
		}
		return rebuilt
	}
	b.validate()
	return b, nil
}

// buildLevel assembles the unscrambled board a level describes.
// The level has already passed Validate; this just places tiles.
func buildLevel(level *Level) (*Board, error) {
	if err := level.Validate(); err != nil {
		return nil, err
	}
	b := newBoard(level.GridSize, level.SourcePosition)
	for _, p := range level.Pipes {
		b.tiles[p.Row][p.Col] = p.tile()
	}
	b.validate()
	return b, nil
}

/*

Export

*/

// Level exports the board's current layout as a level
// description.  The editor and the level generator both use
// this; the exported pipes are in reading order so repeated
// exports of the same board are byte-identical.
func (b *Board) Level(id string, difficulty int) *Level {
	level := &Level{
		ID:             id,
		Difficulty:     difficulty,
		GridSize:       b.size,
		SourcePosition: b.source,
	}
	for row := 0; row < b.size; row++ {
		for col := 0; col < b.size; col++ {
			tile := b.tiles[row][col]
			level.Pipes = append(level.Pipes, LevelPipe{
				Row:      row,
				Col:      col,
				Type:     tile.Type,
				Rotation: tile.Rotation,
			})
		}
	}
	return level
}
