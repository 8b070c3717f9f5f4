package pipe

/*

Print forms of boards, for the CLI and debugging.

*/

import (
	"fmt"
)

// tileGlyphs maps every (type, rotation) pair to a box-drawing
// glyph whose open ends match the tile's connection set.
var tileGlyphs = [4][4]rune{
	DeadEnd:   {'╵', '╶', '╷', '╴'},
	Straight:  {'│', '─', '│', '─'},
	Corner:    {'└', '┌', '┐', '┘'},
	TJunction: {'┴', '├', '┬', '┤'},
}

// Glyph returns the print glyph for a tile.
func (t Tile) Glyph() rune {
	if t.Type < DeadEnd || t.Type > TJunction {
		return '?'
	}
	return tileGlyphs[t.Type][((t.Rotation%4)+4)%4]
}

// String gives a pretty-printed view of a board: a column
// header, one lettered row per grid row, the source cell in
// parentheses, a '!' after any leaking tile, and a summary
// line with the leak count and completion flag.
//
// Cells are three characters wide: a left mark ('(' for the
// source), the tile glyph, and a right mark ('!' when the tile
// leaks, ')' for a non-leaking source).
func (b *Board) String() (result string) {
	if b == nil {
		return
	}
	result += "  "
	for col := 0; col < b.size; col++ {
		result += fmt.Sprintf("%2d ", col)
	}
	result += "\n"
	for row, rowhdr := 0, 'a'; row < b.size; row, rowhdr = row+1, rowhdr+1 {
		result += string(rowhdr) + " "
		for col := 0; col < b.size; col++ {
			pos := Position{row, col}
			left, right := " ", " "
			if pos == b.source {
				left, right = "(", ")"
			}
			if b.HasLeak(pos) {
				right = "!"
			}
			result += fmt.Sprintf("%s%c%s", left, b.tiles[row][col].Glyph(), right)
		}
		result += "\n"
	}
	result += b.SummaryString()
	return
}

// SummaryString gives the one-line derived summary of a board.
func (b *Board) SummaryString() string {
	if b == nil {
		return ""
	}
	if b.IsComplete() {
		return "Complete: no leaks, all tiles connected\n"
	}
	unreached := b.size*b.size - 1 - len(b.result.reachable)
	return fmt.Sprintf("Leaks: %d; unconnected tiles: %d\n", b.TotalLeaks(), unreached)
}

// LeaksString lists the leaking connections, one per line, in
// scan order.
func (b *Board) LeaksString() (result string) {
	if b == nil {
		return
	}
	for _, dc := range b.result.leaking {
		result += fmt.Sprintf("  %v leaks %v\n", dc.Position, dc.Direction)
	}
	if result == "" {
		result = "  no leaks\n"
	}
	return
}
