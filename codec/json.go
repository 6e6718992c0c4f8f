package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// Notes:
// - Map keys are sorted during encoding, so equal tables marshal to
//   identical bytes. Rewriting unchanged data leaves the blob byte-stable.
// - NaN and infinite floats are not representable in JSON and fail to
//   encode; the error surfaces from the persistence call that triggered it.
//
// If you need custom encoding (e.g. protobuf/cbor), implement Codec and hand
// it to the table via its codec option.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the default codec used by the library.
//
// NOTE: This affects newly-written blobs only. Blobs are not self-describing;
// a table must be opened with the same codec it was written with, otherwise
// the read fails with a decode error.
var Default Codec = GoJSON{}
