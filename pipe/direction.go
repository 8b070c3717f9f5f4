package pipe

/*

Directions and positions

*/

import (
	"encoding/json"
	"fmt"
)

// A Direction is one of the four cardinal directions a tile
// connection can point in.  The numeric order is clockwise from
// Up, which is what lets rotation be simple modular arithmetic.
type Direction int

// Constants for the four directions.
const (
	Up Direction = iota
	Right
	Down
	Left
)

// AllDirections lists the directions in clockwise order starting
// at Up.  Iteration order over directions is always this order,
// so derived results are deterministic.
var AllDirections = [4]Direction{Up, Right, Down, Left}

// Opposite returns the direction pointing the other way.  It is
// an involution: d.Opposite().Opposite() == d.
func (d Direction) Opposite() Direction {
	return Direction((int(d) + 2) % 4)
}

var directionNames = [4]string{"up", "right", "down", "left"}

// Directions implement Stringer, producing the lowercase names
// used on the wire.
func (d Direction) String() string {
	if d < Up || d > Left {
		return fmt.Sprintf("<direction %d>", int(d))
	}
	return directionNames[d]
}

// MarshalJSON writes the direction's wire name.
func (d Direction) MarshalJSON() ([]byte, error) {
	if d < Up || d > Left {
		return nil, fmt.Errorf("can't marshal direction %d", int(d))
	}
	return json.Marshal(directionNames[d])
}

// UnmarshalJSON reads a direction's wire name.
func (d *Direction) UnmarshalJSON(bytes []byte) error {
	var name string
	if err := json.Unmarshal(bytes, &name); err != nil {
		return err
	}
	for i, n := range directionNames {
		if n == name {
			*d = Direction(i)
			return nil
		}
	}
	return fmt.Errorf("%q is not a direction", name)
}

// A Position is a (row, column) cell location on a board.  Rows
// grow downward and columns grow rightward, both starting at 0.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Adjacent returns the position one unit away in the given
// direction.  There is no wraparound and no bounds checking: the
// result may lie outside any particular board, and it's up to
// the caller to check that.
func (p Position) Adjacent(d Direction) Position {
	switch d {
	case Up:
		return Position{p.Row - 1, p.Col}
	case Right:
		return Position{p.Row, p.Col + 1}
	case Down:
		return Position{p.Row + 1, p.Col}
	case Left:
		return Position{p.Row, p.Col - 1}
	}
	return p
}

// Positions implement Stringer.
func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.Row, p.Col)
}

/*

Direction sets

*/

// A DirectionSet is a set of directions, stored as a 4-bit mask.
// We use direction sets for tile connection patterns, both the
// derived ones and the declared ones in level descriptions.
type DirectionSet uint8

// NewDirectionSet makes a set holding the given directions.
func NewDirectionSet(ds ...Direction) DirectionSet {
	var set DirectionSet
	for _, d := range ds {
		set = set.Add(d)
	}
	return set
}

// Add returns the set with the given direction included.
func (s DirectionSet) Add(d Direction) DirectionSet {
	return s | 1<<uint(d)
}

// Has reports whether the set contains the given direction.
func (s DirectionSet) Has(d Direction) bool {
	return s&(1<<uint(d)) != 0
}

// Count returns the number of directions in the set.
func (s DirectionSet) Count() (count int) {
	for _, d := range AllDirections {
		if s.Has(d) {
			count++
		}
	}
	return
}

// Directions returns the set's members in clockwise order.
func (s DirectionSet) Directions() []Direction {
	ds := make([]Direction, 0, 4)
	for _, d := range AllDirections {
		if s.Has(d) {
			ds = append(ds, d)
		}
	}
	return ds
}

// Direction sets implement Stringer.
func (s DirectionSet) String() string {
	result := "{"
	for i, d := range s.Directions() {
		if i > 0 {
			result += ", "
		}
		result += d.String()
	}
	return result + "}"
}
