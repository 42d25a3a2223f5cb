// Package export writes the run artifacts to disk.
package export

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// Encode writes v to w as two-space indented JSON. Struct fields keep their
// declaration order and map keys are sorted, so the output is stable.
func Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "export: encode json")
	}
	return nil
}

// WriteJSON writes v to path, creating parent directories as needed.
func WriteJSON(path string, v any) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "export: create dir for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = eris.Wrapf(cerr, "export: close %s", path)
		}
	}()
	if err := Encode(f, v); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	return nil
}

// DecodeJSON reads a JSON document written by WriteJSON.
func DecodeJSON[T any](path string) (*T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "export: open %s", path)
	}
	defer func() { _ = f.Close() }()

	var obj T
	if err := json.NewDecoder(f).Decode(&obj); err != nil {
		return nil, eris.Wrapf(err, "export: decode %s", path)
	}
	return &obj, nil
}
