package pipe

/*

Tiles and rotations

*/

import (
	"encoding/json"
	"fmt"
)

// A TileType names the connection shape of a tile: how many
// directions it connects in, and how they relate to each other.
// The rotation of a tile picks which concrete directions those
// are.
type TileType int

// Constants for the four tile types.
const (
	DeadEnd TileType = iota
	Straight
	Corner
	TJunction
)

// tileTypeNames maps each type to its wire name.
var tileTypeNames = map[TileType]string{
	DeadEnd:   "deadEnd",
	Straight:  "straight",
	Corner:    "corner",
	TJunction: "tJunction",
}

// Tile types implement Stringer, producing the wire name.
func (t TileType) String() string {
	if name, ok := tileTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("<tileType %d>", int(t))
}

// MarshalJSON writes the type's wire name.
func (t TileType) MarshalJSON() ([]byte, error) {
	name, ok := tileTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("can't marshal tile type %d", int(t))
	}
	return json.Marshal(name)
}

// UnmarshalJSON reads a type's wire name.
func (t *TileType) UnmarshalJSON(bytes []byte) error {
	var name string
	if err := json.Unmarshal(bytes, &name); err != nil {
		return err
	}
	lookup, ok := LookupTileType(name)
	if !ok {
		return fmt.Errorf("%q is not a tile type", name)
	}
	*t = lookup
	return nil
}

// LookupTileType finds the tile type with the given wire name.
// There's a boolean return value to tell you whether the name
// was known, similar to a map lookup.
func LookupTileType(name string) (TileType, bool) {
	for t, n := range tileTypeNames {
		if n == name {
			return t, true
		}
	}
	return DeadEnd, false
}

/*

The connection table

*/

// connectionTable holds the connection set for every (type,
// rotation) pair.  It is total: rotation is always taken mod 4,
// so there is no invalid input.
//
// Dead ends cycle through the four directions clockwise.
// Straights alternate vertical/horizontal by rotation parity.
// Corners take the four adjacent pairs clockwise.  T-junctions
// omit one direction, cycling the omission clockwise from Down,
// so a t-junction at rotation 0 connects {up, left, right}.
var connectionTable = [4][4]DirectionSet{
	DeadEnd: {
		0: NewDirectionSet(Up),
		1: NewDirectionSet(Right),
		2: NewDirectionSet(Down),
		3: NewDirectionSet(Left),
	},
	Straight: {
		0: NewDirectionSet(Up, Down),
		1: NewDirectionSet(Left, Right),
		2: NewDirectionSet(Up, Down),
		3: NewDirectionSet(Left, Right),
	},
	Corner: {
		0: NewDirectionSet(Up, Right),
		1: NewDirectionSet(Right, Down),
		2: NewDirectionSet(Down, Left),
		3: NewDirectionSet(Left, Up),
	},
	TJunction: {
		0: NewDirectionSet(Up, Left, Right),
		1: NewDirectionSet(Up, Right, Down),
		2: NewDirectionSet(Right, Down, Left),
		3: NewDirectionSet(Down, Left, Up),
	},
}

// Connections returns the set of directions a tile of the given
// type connects in at the given rotation.  Total over all
// inputs; unknown types get an empty set rather than a panic,
// since the validator must be total over every board state.
func Connections(t TileType, rotation int) DirectionSet {
	if t < DeadEnd || t > TJunction {
		return 0
	}
	return connectionTable[t][((rotation%4)+4)%4]
}

// Arity returns the fixed connection count of a tile type,
// which is independent of rotation.
func Arity(t TileType) int {
	return Connections(t, 0).Count()
}

/*

Tiles

*/

// A Tile is a tile type at a rotation.  The connection set is
// always derived from those two via the connection table, never
// stored.
type Tile struct {
	Type     TileType `json:"type"`
	Rotation int      `json:"rotation"`
}

// defaultTile is the neutral tile used to fill cells that no one
// asked for anything better in.
var defaultTile = Tile{Type: Straight, Rotation: 0}

// Rotate advances the tile one quarter turn clockwise.  The
// rotation cycle has no terminal state: four rotations return
// the tile to where it started.
func (t *Tile) Rotate() {
	t.Rotation = (t.Rotation + 1) % 4
}

// Connections returns the directions this tile connects in.
func (t Tile) Connections() DirectionSet {
	return Connections(t.Type, t.Rotation)
}

// Tiles implement Stringer.
func (t Tile) String() string {
	return fmt.Sprintf("%v@%d%v", t.Type, t.Rotation, t.Connections())
}

// inferTile finds the tile whose connection set exactly matches
// the declared set: the type comes from the shape of the set
// (one member is a dead end, two opposite members a straight,
// two adjacent members a corner, three members a t-junction),
// and the rotation from searching that type's four rotations for
// an exact match.  If the set matches no rotation of its
// inferred type, or its shape matches no type at all, we fall
// back to the inferred type (or the default tile) at rotation 0.
func inferTile(declared DirectionSet) Tile {
	var inferred TileType
	switch declared.Count() {
	case 1:
		inferred = DeadEnd
	case 2:
		if declared.Has(Up) == declared.Has(Down) {
			// both or neither vertical member: opposite pair
			inferred = Straight
		} else {
			inferred = Corner
		}
	case 3:
		inferred = TJunction
	default:
		// empty or full sets describe no rotatable tile
		return defaultTile
	}
	for rotation := 0; rotation < 4; rotation++ {
		if Connections(inferred, rotation) == declared {
			return Tile{Type: inferred, Rotation: rotation}
		}
	}
	return Tile{Type: inferred, Rotation: 0}
}
