package pipe

/*

Errors

The engine itself is total: rotation, validation, and completion
checks never fail.  Errors only arise at the boundaries, where
level descriptions are decoded and checked, where generation is
asked for guarantees it can't meet, and where HTTP requests are
malformed.

*/

import (
	"fmt"
)

// An Error describes a problem with a level description or a
// requested operation.  It can produce an error message in
// English, but its main function is to support localized error
// messaging by clients: it tells the client "this thing failed
// to meet this condition" with supplemental details.
type Error struct {
	Scope     ErrorScope     `json:"scope"`
	Structure ErrorStructure `json:"structure,omitempty"`
	Condition ErrorCondition `json:"condition,omitempty"`
	Attribute ErrorAttribute `json:"attribute,omitempty"`
	Values    ErrorData      `json:"values,omitempty"`
	Message   string         `json:"message,omitempty"` // custom message
}

// An ErrorScope explains what type of thing the error is
// referring to.
type ErrorScope int

// Constants for the various error scopes.
const (
	UnknownScope ErrorScope = iota
	RequestScope
	ArgumentScope
	LevelScope
	GeneratorScope
	InternalScope
	MaxScope
)

// The ErrorStructure denotes whether the problem is in the
// overall Scope, an Attribute of the Scope, or the value of an
// Attribute of the Scope.
type ErrorStructure int

// Constants for the various structure codes.
const (
	UnknownStructure ErrorStructure = iota
	ScopeStructure
	AttributeStructure
	AttributeValueStructure
	MaxStructure
)

// The ErrorCondition is the predicate that the
// scope/attribute/value failed to satisfy.
type ErrorCondition int

// Constants for the various error conditions.
const (
	UnknownCondition ErrorCondition = iota
	GeneralCondition
	TooLargeCondition
	TooSmallCondition
	OutOfBoundsCondition
	UnknownNameCondition
	UnknownKindCondition
	DuplicatePipeCondition
	NotSolvableCondition
	EmptyArgumentCondition
	MaxCondition
)

// An ErrorAttribute names the attribute that has a problem.
type ErrorAttribute int

// Constants for the various attribute codes.
const (
	UnknownAttribute ErrorAttribute = iota
	DecodeAttribute
	EncodeAttribute
	URLAttribute
	LocationAttribute
	GridSizeAttribute
	SourceAttribute
	PositionAttribute
	TileTypeAttribute
	RotationAttribute
	ConnectionsAttribute
	DifficultyAttribute
	KindAttribute
	LevelAttribute
	MaxAttribute
)

// The ErrorData provides details about the thing that failed to
// meet the predicate (such as the value of an attribute) as well
// as the predicate itself (such as maximum allowed values).
//
// Every item in the slice of ErrorData is required to be
// JSON-serializable, so it can be returned to web clients.
type ErrorData []interface{}

// rangeError returns an Error that describes an out-of-range
// attribute value.
func rangeError(attr ErrorAttribute, val int, min int, max int) Error {
	err := Error{
		Scope:     LevelScope,
		Structure: AttributeValueStructure,
		Attribute: attr,
		Condition: TooLargeCondition,
		Values:    ErrorData{val, max},
	}
	if val < min {
		err.Condition = TooSmallCondition
		err.Values[1] = min
	}
	return err
}

// Return an error string from an Error.  If the Error has a
// pre-canned message, this will use it, otherwise it will
// produce an appropriate (English, non-localized) message.
func (e Error) Error() string {
	es := e.Message
	if len(es) > 0 {
		return es
	}
	values := e.Values
	nextVal := func() interface{} {
		if len(values) == 0 {
			return "<unknown>"
		}
		val := values[0]
		values = values[1:]
		return val
	}
	switch e.Scope {
	case RequestScope:
		es = "Invalid request: "
	case ArgumentScope:
		es = "Invalid argument: "
	case LevelScope:
		es = "Invalid level: "
	case GeneratorScope:
		es = "Generation failure: "
	case InternalScope:
		es = "Internal logic error: "
	default:
		es = "Unknown error: "
	}
	if e.Structure == AttributeStructure || e.Structure == AttributeValueStructure {
		switch e.Attribute {
		case DecodeAttribute:
			es += "JSON Decode error"
		case EncodeAttribute:
			es += "JSON Encode error"
		case URLAttribute:
			es += "Resource path"
		case LocationAttribute:
			es += fmt.Sprintf("In pipe.%v", nextVal())
		case GridSizeAttribute:
			es += "Grid size"
		case SourceAttribute:
			es += "Source position"
		case PositionAttribute:
			es += "Position"
		case TileTypeAttribute:
			es += "Tile type"
		case RotationAttribute:
			es += "Rotation"
		case ConnectionsAttribute:
			es += "Connection set"
		case DifficultyAttribute:
			es += "Difficulty"
		case KindAttribute:
			es += "Level kind"
		case LevelAttribute:
			es += "Level"
		default:
			es += "<Unknown attribute>"
		}
		if e.Structure == AttributeValueStructure {
			es += " (" + fmt.Sprint(nextVal()) + ")"
		}
		es += ": "
	}
	switch e.Condition {
	case GeneralCondition:
		es += fmt.Sprint(nextVal())
	case TooLargeCondition:
		es += fmt.Sprintf("Must be at most %v", nextVal())
	case TooSmallCondition:
		es += fmt.Sprintf("Must be at least %v", nextVal())
	case OutOfBoundsCondition:
		es += fmt.Sprintf("Outside the %vx%v grid", nextVal(), nextVal())
	case UnknownNameCondition:
		es += "Not a known name"
	case UnknownKindCondition:
		es += "Not a registered level kind"
	case DuplicatePipeCondition:
		es += fmt.Sprintf("Cell %v is declared more than once", nextVal())
	case NotSolvableCondition:
		es += fmt.Sprintf("No full-coverage layout found in %v attempts", nextVal())
	case EmptyArgumentCondition:
		es += "Required value was missing"
	default:
		es += fmt.Sprintf("Supplemental data is %v", values)
	}
	return es
}
