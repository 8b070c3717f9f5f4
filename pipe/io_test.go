package pipe

/*

Tests for the print forms.

*/

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

func helperGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestGlyphs(t *testing.T) {
	cases := []struct {
		tile     Tile
		expected rune
	}{
		{Tile{DeadEnd, 0}, '╵'},
		{Tile{DeadEnd, 2}, '╷'},
		{Tile{Straight, 0}, '│'},
		{Tile{Straight, 1}, '─'},
		{Tile{Corner, 3}, '┘'},
		{Tile{TJunction, 0}, '┴'},
		{Tile{TJunction, 6}, '┬'},
		{Tile{TileType(9), 0}, '?'},
	}
	for _, c := range cases {
		if g := c.tile.Glyph(); g != c.expected {
			t.Errorf("Glyph of %v: got %q, expected %q", c.tile, g, c.expected)
		}
	}
}

func TestBoardStringComplete(t *testing.T) {
	b := helperCompleteBoard()
	helperGoldie(t).Assert(t, "board_complete", []byte(b.String()))
}

func TestBoardStringLeaky(t *testing.T) {
	source := Position{1, 1}
	b := helperBoard(3, source, map[Position]Tile{
		source: {Type: TJunction, Rotation: 0},
		{0, 1}: {Type: DeadEnd, Rotation: 2},
		{1, 0}: {Type: DeadEnd, Rotation: 1},
		{1, 2}: {Type: DeadEnd, Rotation: 3},
	})
	helperGoldie(t).Assert(t, "board_leaky", []byte(b.String()))
	helperGoldie(t).Assert(t, "board_leaky_leaks", []byte(b.LeaksString()))
}

func TestSummaryString(t *testing.T) {
	b := helperCompleteBoard()
	if s := b.SummaryString(); s != "Complete: no leaks, all tiles connected\n" {
		t.Errorf("Complete summary: got %q", s)
	}
	b.Rotate(Position{0, 0})
	if s := b.SummaryString(); s != "Leaks: 2; unconnected tiles: 1\n" {
		t.Errorf("Broken summary: got %q", s)
	}
}

func TestLeaksStringEmpty(t *testing.T) {
	b := helperCompleteBoard()
	if s := b.LeaksString(); s != "  no leaks\n" {
		t.Errorf("Leak list of a complete board: got %q", s)
	}
}

func TestNilBoardStrings(t *testing.T) {
	var b *Board
	if b.String() != "" || b.SummaryString() != "" || b.LeaksString() != "" {
		t.Errorf("Nil board printed something")
	}
}
