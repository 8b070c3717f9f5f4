package pipe

/*

Level editor

The editor maintains a parallel, unscrambled working board for
manual tile placement and source relocation.  It exports and
imports the level transport schema, and it can build a
disposable scrambled test board through the generator's
declarative-load path without disturbing the working board.

The editor is not part of the validated core algorithm; it is
specified only because its schema crosses the system boundary.

*/

import (
	"github.com/google/uuid"
)

// An Editor holds a working board under construction.  The
// working board is revalidated after every edit so a hosting UI
// can show leaks and coverage live.
type Editor struct {
	board      *Board
	difficulty Difficulty
}

// NewEditor creates an editor with a blank working board of the
// given size.  The source starts at the grid center as a
// t-junction at rotation 0, matching what the generator would
// produce.
func NewEditor(size int, difficulty Difficulty) (*Editor, error) {
	if size < MinGridSize || size > MaxGridSize {
		return nil, rangeError(GridSizeAttribute, size, MinGridSize, MaxGridSize)
	}
	source := Position{size / 2, size / 2}
	b := newBoard(size, source)
	b.tiles[source.Row][source.Col] = Tile{Type: TJunction, Rotation: 0}
	b.validate()
	return &Editor{board: b, difficulty: difficulty.clamp()}, nil
}

// LoadEditor creates an editor over the unscrambled board a
// level describes.
func LoadEditor(level *Level) (*Editor, error) {
	b, err := buildLevel(level)
	if err != nil {
		return nil, err
	}
	return &Editor{board: b, difficulty: Difficulty(level.Difficulty).clamp()}, nil
}

// Board returns the working board.  Callers read its query
// surface; they don't mutate it directly.
func (e *Editor) Board() *Board {
	return e.board
}

// Place puts a tile of the given type and rotation at a
// position.  Out-of-bounds positions are an error here, unlike
// gameplay rotation: the editor surfaces placement mistakes
// instead of swallowing them.
func (e *Editor) Place(pos Position, t TileType, rotation int) error {
	if !e.board.InBounds(pos) {
		return e.boundsError(pos)
	}
	if _, ok := tileTypeNames[t]; !ok {
		return Error{
			Scope:     ArgumentScope,
			Structure: AttributeValueStructure,
			Attribute: TileTypeAttribute,
			Condition: UnknownNameCondition,
			Values:    ErrorData{int(t)},
		}
	}
	if rotation < 0 || rotation > 3 {
		return rangeError(RotationAttribute, rotation, 0, 3)
	}
	e.board.tiles[pos.Row][pos.Col] = Tile{Type: t, Rotation: rotation}
	e.board.validate()
	return nil
}

// Clear resets a cell to the default tile.
func (e *Editor) Clear(pos Position) error {
	if !e.board.InBounds(pos) {
		return e.boundsError(pos)
	}
	e.board.tiles[pos.Row][pos.Col] = defaultTile
	e.board.validate()
	return nil
}

// MoveSource relocates the source.  The vacated cell keeps its
// tile; the new source cell keeps its tile too, so the editor
// can put the source on any shape it likes.
func (e *Editor) MoveSource(pos Position) error {
	if !e.board.InBounds(pos) {
		return e.boundsError(pos)
	}
	e.board.source = pos
	e.board.validate()
	return nil
}

// Level exports the working board as a level description.  An
// empty id gets a fresh UUID so every exported level is
// addressable in storage.
func (e *Editor) Level(id string) *Level {
	if id == "" {
		id = uuid.NewString()
	}
	return e.board.Level(id, int(e.difficulty))
}

// TestBoard builds an independent, disposable scrambled board
// from the working layout, for "try this level" flows.  The
// working board is untouched.
func (e *Editor) TestBoard(seed int64) (*Board, error) {
	gen, err := NewGenerator(&Options{
		Size:       e.board.size,
		Difficulty: e.difficulty,
		Seed:       seed,
	})
	if err != nil {
		return nil, err
	}
	return gen.Load(e.Level(""))
}

func (e *Editor) boundsError(pos Position) error {
	return Error{
		Scope:     ArgumentScope,
		Structure: AttributeValueStructure,
		Attribute: PositionAttribute,
		Condition: OutOfBoundsCondition,
		Values:    ErrorData{pos, e.board.size, e.board.size},
	}
}
