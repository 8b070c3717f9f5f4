package pipe

/*

Connectivity and leak validation

The validator runs synchronously after every mutation and fully
recomputes both derived sets.  Boards are small (side length
rarely above 10), so the O(size²) recomputation is cheaper than
any bookkeeping that would let us do less.

*/

// A DirectedConnection is one tile's outward connection in one
// direction.  A connection leaks when the cell it points at is
// off the grid, or holds a tile that doesn't point back.
type DirectedConnection struct {
	Position  Position  `json:"position"`
	Direction Direction `json:"direction"`
}

// AdjacentPosition returns the cell the connection points at.
func (dc DirectedConnection) AdjacentPosition() Position {
	return dc.Position.Adjacent(dc.Direction)
}

// ReturnDirection returns the direction a reciprocating
// connection from the adjacent cell would point in.
func (dc DirectedConnection) ReturnDirection() Direction {
	return dc.Direction.Opposite()
}

// A validationResult holds the two derived sets.  The leaking
// slice is in scan order (reading order by position, clockwise
// by direction), so it is a pure deterministic function of the
// board state.  The reachable set excludes the source by
// convention; leaksAt is a per-position rollup of the leaking
// connections for O(1) queries.
type validationResult struct {
	leaking   []DirectedConnection
	leaksAt   map[Position]bool
	reachable map[Position]bool
}

// validate recomputes the derived results from the current tile
// layout.  It is total: every board state, however degenerate,
// validates without error.
func (b *Board) validate() {
	result := validationResult{
		leaksAt:   make(map[Position]bool),
		reachable: make(map[Position]bool),
	}

	// Leak scan: every outward connection either reaches a
	// reciprocating neighbour or leaks.
	for row := 0; row < b.size; row++ {
		for col := 0; col < b.size; col++ {
			pos := Position{row, col}
			for _, d := range AllDirections {
				if !b.tileConnections(pos).Has(d) {
					continue
				}
				dc := DirectedConnection{pos, d}
				adjacent := dc.AdjacentPosition()
				if b.InBounds(adjacent) &&
					b.tileConnections(adjacent).Has(dc.ReturnDirection()) {
					continue
				}
				result.leaking = append(result.leaking, dc)
				result.leaksAt[pos] = true
			}
		}
	}

	// Reachability scan: breadth-first from the source over
	// mutually-reciprocated connections only.
	visited := map[Position]bool{b.source: true}
	queue := []Position{b.source}
	for len(queue) > 0 {
		pos := queue[0]
		queue = queue[1:]
		for _, d := range b.tileConnections(pos).Directions() {
			next := pos.Adjacent(d)
			if !b.InBounds(next) || visited[next] {
				continue
			}
			if !b.tileConnections(next).Has(d.Opposite()) {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	delete(visited, b.source) // trivially connected, not "reachable"
	result.reachable = visited

	b.result = result
}

/*

Query surface

*/

// HasLeak reports whether the tile at the given position has at
// least one leaking connection.  Out-of-bounds positions have no
// tile and so no leak.
func (b *Board) HasLeak(pos Position) bool {
	return b.result.leaksAt[pos]
}

// IsReachableFromSource reports whether water from the source
// reaches the given position.  The source itself is trivially
// connected.
func (b *Board) IsReachableFromSource(pos Position) bool {
	if pos == b.source {
		return true
	}
	return b.result.reachable[pos]
}

// TotalLeaks returns the number of leaking connections on the
// board.
func (b *Board) TotalLeaks() int {
	return len(b.result.leaking)
}

// Leaking returns the leaking connections in scan order.  The
// returned slice doesn't share storage with the board.
func (b *Board) Leaking() []DirectedConnection {
	return append([]DirectedConnection(nil), b.result.leaking...)
}

// IsComplete reports whether the puzzle is solved: no leaking
// connections, and every non-source tile reachable from the
// source.
func (b *Board) IsComplete() bool {
	return len(b.result.leaking) == 0 &&
		len(b.result.reachable) == b.size*b.size-1
}
