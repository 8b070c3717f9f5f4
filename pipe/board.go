package pipe

/*

Board representation and mutation

*/

// A Board is a fixed-size square grid of tiles around one water
// source.  Every mutation is followed by a full revalidation, so
// the derived leak and reachability results always describe the
// current tile layout; a caller never sees a rotated tile paired
// with stale results.
//
// Boards are not safe for concurrent use.  Each puzzle session
// owns exactly one board; a host that shares boards across
// goroutines must treat the board as a single atomic unit.
type Board struct {
	size   int
	tiles  [][]Tile
	source Position
	result validationResult
	// rebuild regenerates the board from its generation recipe.
	// Left nil on hand-assembled boards, where Reset only
	// revalidates.
	rebuild func() *Board
}

// newBoard makes a board of the given size with every cell set
// to the default tile and the source at the given position.
// Callers (the generator and the editor) have already checked
// the size and source bounds.
func newBoard(size int, source Position) *Board {
	tiles := make([][]Tile, size)
	for i := range tiles {
		tiles[i] = make([]Tile, size)
		for j := range tiles[i] {
			tiles[i][j] = defaultTile
		}
	}
	return &Board{size: size, tiles: tiles, source: source}
}

// Size returns the side length of the board.
func (b *Board) Size() int {
	return b.size
}

// Source returns the source tile's position.
func (b *Board) Source() Position {
	return b.source
}

// InBounds reports whether a position names a cell of this
// board.
func (b *Board) InBounds(pos Position) bool {
	return pos.Row >= 0 && pos.Row < b.size && pos.Col >= 0 && pos.Col < b.size
}

// TileAt returns the tile at the given position, and whether the
// position was in bounds.
func (b *Board) TileAt(pos Position) (Tile, bool) {
	if !b.InBounds(pos) {
		return Tile{}, false
	}
	return b.tiles[pos.Row][pos.Col], true
}

// tileConnections is the validator's view of a cell.
func (b *Board) tileConnections(pos Position) DirectionSet {
	return b.tiles[pos.Row][pos.Col].Connections()
}

/*

Mutation

*/

// An Update describes the result of a rotation: the rotated
// tile, the derived values after revalidation, and the positions
// whose leak or reachability status changed.  Hosts that need
// change notification read the Changed flag and the Affected
// diff instead of observing board internals.
type Update struct {
	Changed  bool       `json:"changed"`
	Position Position   `json:"position"`
	Tile     Tile       `json:"tile"`
	Leaks    int        `json:"leaks"`
	Complete bool       `json:"complete"`
	Affected []Position `json:"affected,omitempty"`
}

// Rotate turns the tile at the given position one quarter turn
// clockwise and revalidates the whole board.  An out-of-bounds
// position is a silent no-op, not an error: the UI pre-validates
// positions against the rendered grid, and a board has no
// invalid states to protect.  The returned Update reports what
// changed.
func (b *Board) Rotate(pos Position) Update {
	if !b.InBounds(pos) {
		return Update{
			Changed:  false,
			Position: pos,
			Leaks:    b.TotalLeaks(),
			Complete: b.IsComplete(),
		}
	}
	before := b.result
	b.tiles[pos.Row][pos.Col].Rotate()
	b.validate()
	return Update{
		Changed:  true,
		Position: pos,
		Tile:     b.tiles[pos.Row][pos.Col],
		Leaks:    b.TotalLeaks(),
		Complete: b.IsComplete(),
		Affected: b.affectedSince(before),
	}
}

// affectedSince compares a prior validation result against the
// current one and collects, in reading order, every position
// whose leak or reachability status changed.
func (b *Board) affectedSince(before validationResult) []Position {
	var affected []Position
	for row := 0; row < b.size; row++ {
		for col := 0; col < b.size; col++ {
			pos := Position{row, col}
			if before.leaksAt[pos] != b.result.leaksAt[pos] ||
				before.reachable[pos] != b.result.reachable[pos] {
				affected = append(affected, pos)
			}
		}
	}
	return affected
}

// Reset regenerates the board via its generator recipe and
// revalidates.  A board built without a generator (the editor's
// working board) just revalidates in place.
func (b *Board) Reset() {
	if b.rebuild != nil {
		*b = *b.rebuild()
		return
	}
	b.validate()
}

/*

Derived state

*/

// A TilePlacement is a tile at a position, used in the exported
// board state.
type TilePlacement struct {
	Position Position `json:"position"`
	Tile     Tile     `json:"tile"`
}

// A State is the full derived description of a board, suitable
// for sending to a rendering client.  It is a snapshot: it
// shares no storage with the board.
type State struct {
	Size      int                 `json:"size"`
	Source    Position            `json:"source"`
	Tiles     []TilePlacement     `json:"tiles"`
	Leaking   []DirectedConnection `json:"leaking,omitempty"`
	Reachable []Position          `json:"reachable,omitempty"`
	Complete  bool                `json:"complete"`
}

// State returns the board's current state, with tiles, leaks,
// and reachable positions all in reading order.
func (b *Board) State() State {
	tiles := make([]TilePlacement, 0, b.size*b.size)
	for row := 0; row < b.size; row++ {
		for col := 0; col < b.size; col++ {
			tiles = append(tiles, TilePlacement{Position{row, col}, b.tiles[row][col]})
		}
	}
	return State{
		Size:      b.size,
		Source:    b.source,
		Tiles:     tiles,
		Leaking:   append([]DirectedConnection(nil), b.result.leaking...),
		Reachable: b.reachablePositions(),
		Complete:  b.IsComplete(),
	}
}

// reachablePositions lists the reachable set in reading order.
// The source is excluded by convention.
func (b *Board) reachablePositions() []Position {
	var positions []Position
	for row := 0; row < b.size; row++ {
		for col := 0; col < b.size; col++ {
			if pos := (Position{row, col}); b.result.reachable[pos] {
				positions = append(positions, pos)
			}
		}
	}
	return positions
}

// copy returns a deep copy of a board.  The copy shares the
// rebuild recipe (recipes are invariant) but nothing else.
func (b *Board) copy() *Board {
	c := &Board{
		size:    b.size,
		source:  b.source,
		rebuild: b.rebuild,
	}
	c.tiles = make([][]Tile, b.size)
	for i := range c.tiles {
		c.tiles[i] = append([]Tile(nil), b.tiles[i]...)
	}
	c.validate()
	return c
}

// Copy returns a copy of the board (no shared tile storage).
func (b *Board) Copy() *Board {
	return b.copy()
}
