package pipe

/*

RESTful wrappers

These handlers wrap the engine's query and command surface so
web servers stay thin.  Every response is JSON; every failure
is the structured Error form with an appropriate status.

*/

import (
	"encoding/json"
	"fmt"
	"net/http"
)

/*

Board creation

*/

// NewHandler is a POST handler that reads a JSON-encoded level
// description from the request body and builds a scrambled
// board from it with the given generator.  The new board's
// State is sent as a 200 response, and the board itself is
// returned to the golang caller.
//
// If we can't decode or validate the posted level, we send a 400
// response and return the error to the caller.
//
// If we can't encode the response to the client (which should
// never happen), then the client gets an error response and the
// golang caller gets both the board and the encoding Error (as a
// signal that the client didn't get the correct response).
func NewHandler(g *Generator, w http.ResponseWriter, r *http.Request) (*Board, error) {
	level, e := DecodeLevel(r.Body)
	if e != nil {
		err, ok := e.(Error)
		if !ok {
			return nil, writeError(errorFormatError, ErrorData{"NewHandler", e.Error()}, w, r)
		}
		err.Message = err.Error()
		return nil, writeJSON(err, http.StatusBadRequest, w, r)
	}
	b, e := g.Load(level)
	if e != nil {
		err, ok := e.(Error)
		if !ok {
			return nil, writeError(errorFormatError, ErrorData{"NewHandler", e.Error()}, w, r)
		}
		err.Message = err.Error()
		return nil, writeJSON(err, http.StatusBadRequest, w, r)
	}
	return b, b.StateHandler(w, r)
}

/*

Board download

*/

// StateHandler responds with the board's derived state.  If we
// can't encode the response to the client successfully, we give
// both the client and the golang caller an Error response.
func (b *Board) StateHandler(w http.ResponseWriter, r *http.Request) error {
	if b == nil || b.size == 0 {
		return writeError(noBoardError, ErrorData{r.URL.Path, "No board"}, w, r)
	}
	return writeJSON(b.State(), http.StatusOK, w, r)
}

/*

Board updates

*/

// RotateHandler is a POST handler that rotates the posted
// position on the board.  The poster and the caller both get
// the Update object from the rotation.
//
// Out-of-bounds positions are not an HTTP error: the engine
// treats them as a no-op, so the client gets a 200 with
// Changed=false.  Only an undecodable body is a 400.
func (b *Board) RotateHandler(w http.ResponseWriter, r *http.Request) (*Update, error) {
	if b == nil || b.size == 0 {
		return nil, writeError(noBoardError, ErrorData{r.URL.Path, "No board"}, w, r)
	}
	dec := json.NewDecoder(r.Body)
	var pos Position
	if e := dec.Decode(&pos); e != nil {
		return nil, writeError(requestDecodingError, ErrorData{e.Error()}, w, r)
	}
	update := b.Rotate(pos)
	return &update, writeJSON(update, http.StatusOK, w, r)
}

/*

Utilities

*/

type handlerError int

const (
	requestDecodingError handlerError = iota
	responseEncodingError
	noBoardError
	errorFormatError
)

// writeError sends back a server error of the given type, sort
// of like http.Error, but it sends the JSON form of an
// appropriate Error.
func writeError(et handlerError, ed ErrorData,
	w http.ResponseWriter, r *http.Request) error {
	var err Error
	var status int
	switch et {
	case requestDecodingError:
		status = http.StatusBadRequest
		err = Error{
			Scope:     RequestScope,
			Structure: AttributeStructure,
			Attribute: DecodeAttribute,
			Condition: GeneralCondition,
			Values:    ed,
		}
	case responseEncodingError:
		status = http.StatusInternalServerError
		err = Error{
			Scope:     InternalScope,
			Structure: AttributeStructure,
			Attribute: EncodeAttribute,
			Condition: GeneralCondition,
			Values:    ed,
		}
	case noBoardError:
		status = http.StatusNotFound
		err = Error{
			Scope:     RequestScope,
			Structure: AttributeValueStructure,
			Attribute: URLAttribute,
			Condition: GeneralCondition,
			Values:    ed,
		}
	case errorFormatError:
		status = http.StatusInternalServerError
		err = Error{
			Scope:     InternalScope,
			Structure: AttributeStructure,
			Attribute: LocationAttribute,
			Condition: GeneralCondition,
			Values:    ed,
		}
	default:
		status = http.StatusInternalServerError
		err = Error{
			Scope:     InternalScope,
			Structure: AttributeStructure,
			Attribute: LocationAttribute,
			Condition: GeneralCondition,
			Values: ErrorData{
				"writeError",
				fmt.Sprintf("Unknown handler error type (%v)", et),
			},
		}
	}
	err.Message = err.Error()
	return writeJSON(err, status, w, r)
}

// writeJSON is called by handlers to encode and send the client
// response.  It returns an appropriate error status for the
// handler to return to its caller, as follows:
//
// 1. If writeJSON encounters an encoding error sending the
// response, it will create an Error object describing the
// failure, encode that Error as a 500-series response to the
// client, and return that Error to the handler.
//
// 2. If no encoding error occurs, but the handler is sending an
// Error object as the response to the client, writeJSON will
// return that same Error to the handler.
//
// 3. If no encoding error occurs, and the handler is sending a
// non-Error object as the response to the client, writeJSON will
// return nil to the handler.
func writeJSON(obj interface{}, status int, w http.ResponseWriter, r *http.Request) error {
	err, isErr := obj.(Error)
	bytes, e := json.Marshal(obj)
	if e != nil {
		if isErr && err.Scope == InternalScope && err.Attribute == EncodeAttribute {
			// We just failed to encode an Encoding error.  This
			// should never happen!!  If it did, it almost
			// certainly means that the JSON encoding system is
			// dead, so pseudo-encode the error by hand by
			// returning the Error's summary as a quoted string.
			status = http.StatusInternalServerError // probably was already!
			bytes = []byte(fmt.Sprintf("%q", err.Error()))
		} else {
			// generate, send, and return an encoding error
			return writeError(responseEncodingError, ErrorData{e.Error()}, w, r)
		}
	}
	hs := w.Header()
	hs.Add("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(bytes)
	if isErr {
		return err
	}
	return nil
}
