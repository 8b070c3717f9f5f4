package pipe

/*

Tests for the level editor.

*/

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewEditor(t *testing.T) {
	e, err := NewEditor(5, Medium)
	if err != nil {
		t.Fatal(err)
	}
	b := e.Board()
	if b.Size() != 5 || b.Source() != (Position{2, 2}) {
		t.Errorf("Blank board: size %d, source %v", b.Size(), b.Source())
	}
	if tile, _ := b.TileAt(b.Source()); tile != (Tile{Type: TJunction, Rotation: 0}) {
		t.Errorf("Source tile: got %v, expected a t-junction at 0", tile)
	}
	if _, err = NewEditor(1, Medium); err == nil {
		t.Errorf("Size 1 accepted, expected a range error")
	}
}

func TestEditorPlace(t *testing.T) {
	e, err := NewEditor(3, Light)
	if err != nil {
		t.Fatal(err)
	}
	if err = e.Place(Position{0, 1}, DeadEnd, 2); err != nil {
		t.Fatal(err)
	}
	if tile, _ := e.Board().TileAt(Position{0, 1}); tile != (Tile{Type: DeadEnd, Rotation: 2}) {
		t.Errorf("Placed tile: got %v, expected a dead end at 2", tile)
	}
	// the working board revalidates after the edit
	if !e.Board().IsReachableFromSource(Position{0, 1}) {
		t.Errorf("Placed arm unreachable, expected reachable")
	}

	// placement mistakes are errors, not silent no-ops
	if err = e.Place(Position{9, 9}, DeadEnd, 0); err == nil {
		t.Errorf("Out-of-bounds placement accepted")
	}
	if err = e.Place(Position{0, 0}, TileType(12), 0); err == nil {
		t.Errorf("Unknown tile type accepted")
	}
	if err = e.Place(Position{0, 0}, Corner, 5); err == nil {
		t.Errorf("Out-of-range rotation accepted")
	}
}

func TestEditorClear(t *testing.T) {
	e, err := NewEditor(3, Light)
	if err != nil {
		t.Fatal(err)
	}
	if err = e.Place(Position{0, 0}, Corner, 1); err != nil {
		t.Fatal(err)
	}
	if err = e.Clear(Position{0, 0}); err != nil {
		t.Fatal(err)
	}
	if tile, _ := e.Board().TileAt(Position{0, 0}); tile != defaultTile {
		t.Errorf("Cleared cell: got %v, expected %v", tile, defaultTile)
	}
	if err = e.Clear(Position{-1, 0}); err == nil {
		t.Errorf("Out-of-bounds clear accepted")
	}
}

func TestEditorMoveSource(t *testing.T) {
	e, err := NewEditor(3, Light)
	if err != nil {
		t.Fatal(err)
	}
	old := e.Board().Source()
	if err = e.MoveSource(Position{0, 0}); err != nil {
		t.Fatal(err)
	}
	if e.Board().Source() != (Position{0, 0}) {
		t.Errorf("Source: got %v, expected (0, 0)", e.Board().Source())
	}
	// the vacated cell keeps its tile
	if tile, _ := e.Board().TileAt(old); tile.Type != TJunction {
		t.Errorf("Vacated cell: got %v, expected the old t-junction", tile)
	}
	if err = e.MoveSource(Position{5, 5}); err == nil {
		t.Errorf("Out-of-bounds source accepted")
	}
}

func TestEditorExportImport(t *testing.T) {
	e, err := NewEditor(3, Medium)
	if err != nil {
		t.Fatal(err)
	}
	for pos, tile := range map[Position]Tile{
		{0, 1}: {Type: DeadEnd, Rotation: 2},
		{1, 0}: {Type: DeadEnd, Rotation: 1},
		{1, 2}: {Type: DeadEnd, Rotation: 3},
	} {
		if err = e.Place(pos, tile.Type, tile.Rotation); err != nil {
			t.Fatal(err)
		}
	}
	level := e.Level("editor-export")
	if level.ID != "editor-export" || level.Difficulty != int(Medium) {
		t.Errorf("Exported header: %+v", level)
	}

	reloaded, err := LoadEditor(level)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(e.Board().State(), reloaded.Board().State()); diff != "" {
		t.Errorf("Reloaded board differs:\n%s", diff)
	}
}

func TestEditorLevelFreshID(t *testing.T) {
	e, err := NewEditor(2, Light)
	if err != nil {
		t.Fatal(err)
	}
	first, second := e.Level(""), e.Level("")
	if first.ID == "" || second.ID == "" {
		t.Fatalf("Empty id exported")
	}
	if first.ID == second.ID {
		t.Errorf("Fresh ids collide: %q", first.ID)
	}
}

func TestEditorTestBoard(t *testing.T) {
	e, err := NewEditor(3, Heavy)
	if err != nil {
		t.Fatal(err)
	}
	before := e.Board().State()
	b, err := e.TestBoard(77)
	if err != nil {
		t.Fatal(err)
	}
	if b == e.Board() {
		t.Fatalf("Test board is the working board")
	}
	if diff := cmp.Diff(e.Board().State(), before); diff != "" {
		t.Errorf("Building a test board disturbed the working board:\n%s", diff)
	}
	// same seed, same test board
	again, err := e.TestBoard(77)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(b.State(), again.State()); diff != "" {
		t.Errorf("Same seed, different test boards:\n%s", diff)
	}
}
