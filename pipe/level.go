package pipe

/*

Level descriptions and the transport codec

A Level is the declarative description of a board: the schema
that crosses the system boundary to the editor and to storage.
Levels describe the solved layout; consumers scramble at load
time, so a stored level never reveals less than the whole
solution and never needs to.

*/

import (
	"encoding/json"
	"io"
)

// Grid size limits.  The upper bound is generous: gameplay grids
// stay at 10 or below, but the editor is allowed to experiment.
const (
	MinGridSize = 2
	MaxGridSize = 32
)

// A LevelPipe declares one cell of a level.  Cells are normally
// declared by tile type and rotation (the §transport schema),
// but a declaration may instead carry an explicit connection
// set, in which case the type and rotation are inferred from it.
// Cells omitted from a level default to a neutral tile.
type LevelPipe struct {
	Row         int         `json:"row"`
	Col         int         `json:"col"`
	Type        TileType    `json:"type"`
	Rotation    int         `json:"rotation"`
	Connections []Direction `json:"connections,omitempty"`
}

// tile resolves a pipe declaration to a concrete tile.  An
// explicit connection set wins over the type/rotation pair; a
// set that matches no rotation of its inferred type falls back
// to rotation 0 of that type.
func (lp LevelPipe) tile() Tile {
	if len(lp.Connections) > 0 {
		return inferTile(NewDirectionSet(lp.Connections...))
	}
	return Tile{Type: lp.Type, Rotation: ((lp.Rotation % 4) + 4) % 4}
}

// A Level is a serializable board description.
type Level struct {
	ID             string      `json:"id"`
	Difficulty     int         `json:"difficulty"`
	GridSize       int         `json:"gridSize"`
	SourcePosition Position    `json:"sourcePosition"`
	Pipes          []LevelPipe `json:"pipes"`
}

// Validate checks a level description for structural problems:
// grid size limits, source and pipe positions in bounds,
// rotations in range, duplicate cell declarations.  Partially-
// specified boards are fine; missing cells get a default tile at
// load time.
func (l *Level) Validate() error {
	if l.GridSize < MinGridSize || l.GridSize > MaxGridSize {
		return rangeError(GridSizeAttribute, l.GridSize, MinGridSize, MaxGridSize)
	}
	if !inBounds(l.SourcePosition, l.GridSize) {
		return Error{
			Scope:     LevelScope,
			Structure: AttributeValueStructure,
			Attribute: SourceAttribute,
			Condition: OutOfBoundsCondition,
			Values:    ErrorData{l.SourcePosition, l.GridSize, l.GridSize},
		}
	}
	seen := make(map[Position]bool, len(l.Pipes))
	for _, p := range l.Pipes {
		pos := Position{p.Row, p.Col}
		if !inBounds(pos, l.GridSize) {
			return Error{
				Scope:     LevelScope,
				Structure: AttributeValueStructure,
				Attribute: PositionAttribute,
				Condition: OutOfBoundsCondition,
				Values:    ErrorData{pos, l.GridSize, l.GridSize},
			}
		}
		if seen[pos] {
			return Error{
				Scope:     LevelScope,
				Structure: AttributeStructure,
				Attribute: PositionAttribute,
				Condition: DuplicatePipeCondition,
				Values:    ErrorData{pos},
			}
		}
		seen[pos] = true
		if p.Rotation < 0 || p.Rotation > 3 {
			return rangeError(RotationAttribute, p.Rotation, 0, 3)
		}
	}
	return nil
}

// inBounds reports whether a position fits a grid of the given
// size.
func inBounds(pos Position, size int) bool {
	return pos.Row >= 0 && pos.Row < size && pos.Col >= 0 && pos.Col < size
}

// DecodeLevel reads and validates a JSON level description.
// Decode failures are reported here, at the loader boundary;
// the engine only ever receives already-validated levels.
func DecodeLevel(r io.Reader) (*Level, error) {
	dec := json.NewDecoder(r)
	var level Level
	if e := dec.Decode(&level); e != nil {
		return nil, Error{
			Scope:     LevelScope,
			Structure: AttributeStructure,
			Attribute: DecodeAttribute,
			Condition: GeneralCondition,
			Values:    ErrorData{e.Error()},
		}
	}
	if err := level.Validate(); err != nil {
		return nil, err
	}
	return &level, nil
}

// Encode writes the level as JSON.
func (l *Level) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if e := enc.Encode(l); e != nil {
		return Error{
			Scope:     InternalScope,
			Structure: AttributeStructure,
			Attribute: EncodeAttribute,
			Condition: GeneralCondition,
			Values:    ErrorData{e.Error()},
		}
	}
	return nil
}

/*

Level kinds

Stored levels travel in an envelope with an explicit kind
discriminant.  The envelope payload is only decoded by the
decoder registered for its kind; there is no "any level data"
blob that gets decoded by assumption.  The almanac carries
several puzzle families; only the pipe family is registered in
this module, but the registry is how the others plug in.

*/

// A LevelKind discriminates the puzzle family a stored level
// belongs to.
type LevelKind string

// PipesLevelKind is the kind for levels this package decodes.
const PipesLevelKind LevelKind = "pipes"

// A LevelEnvelope wraps a level payload with its identity and
// kind.  The payload stays raw until the kind's decoder runs.
type LevelEnvelope struct {
	ID         string          `json:"id"`
	Kind       LevelKind       `json:"kind"`
	Difficulty int             `json:"difficulty"`
	Data       json.RawMessage `json:"data"`
}

// The registry of known level kinds.  A linear list is fine:
// there are only a handful of puzzle families, and registration
// happens at initialization time.
type kindDescriptor struct {
	kind   LevelKind
	decode func(json.RawMessage) (*Level, error)
}

var knownKinds []kindDescriptor

// RegisterLevelKind tells the loader about a level kind.  It's
// used by this package for pipe levels and by hosts that carry
// other puzzle families through the same storage.
func RegisterLevelKind(kind LevelKind, decode func(json.RawMessage) (*Level, error)) {
	knownKinds = append(knownKinds, kindDescriptor{kind, decode})
}

func init() {
	RegisterLevelKind(PipesLevelKind, decodePipesLevel)
}

// decodePipesLevel is the registered decoder for the pipe kind.
func decodePipesLevel(data json.RawMessage) (*Level, error) {
	var level Level
	if e := json.Unmarshal(data, &level); e != nil {
		return nil, Error{
			Scope:     LevelScope,
			Structure: AttributeStructure,
			Attribute: DecodeAttribute,
			Condition: GeneralCondition,
			Values:    ErrorData{e.Error()},
		}
	}
	if err := level.Validate(); err != nil {
		return nil, err
	}
	return &level, nil
}

// DecodeEnvelope dispatches an envelope to the decoder for its
// kind.  Unregistered kinds are an error here, before any
// payload bytes are interpreted.
func DecodeEnvelope(env *LevelEnvelope) (*Level, error) {
	for _, kd := range knownKinds {
		if kd.kind == env.Kind {
			level, err := kd.decode(env.Data)
			if err != nil {
				return nil, err
			}
			if level.ID == "" {
				level.ID = env.ID
			}
			if level.Difficulty == 0 {
				level.Difficulty = env.Difficulty
			}
			return level, nil
		}
	}
	return nil, Error{
		Scope:     LevelScope,
		Structure: AttributeValueStructure,
		Attribute: KindAttribute,
		Condition: UnknownKindCondition,
		Values:    ErrorData{string(env.Kind)},
	}
}

// Envelope wraps a level for storage under its registered kind.
func (l *Level) Envelope() (*LevelEnvelope, error) {
	data, e := json.Marshal(l)
	if e != nil {
		return nil, Error{
			Scope:     InternalScope,
			Structure: AttributeStructure,
			Attribute: EncodeAttribute,
			Condition: GeneralCondition,
			Values:    ErrorData{e.Error()},
		}
	}
	return &LevelEnvelope{
		ID:         l.ID,
		Kind:       PipesLevelKind,
		Difficulty: l.Difficulty,
		Data:       data,
	}, nil
}
