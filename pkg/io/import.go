package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ReadJSON decodes a JSON value from r into v, which must be a
// non-nil pointer.
//
// ReadJSON does not validate beyond JSON well-formedness; a record
// that decodes cleanly may still violate packing invariants. Callers
// that need geometric guarantees should run pack.Verify on the result.
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// ImportJSON reads the JSON file at path into v.
//
// ImportJSON opens the file, decodes it using [ReadJSON], and closes
// the file. Errors wrap the underlying cause with the file path for
// context.
func ImportJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f, v)
}
