// Package jsondisplay prints values as single-line JSON.
package jsondisplay

import (
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
)

// ShowJSON writes v as JSON followed by a newline to standard output.
// Serialization errors are returned unchanged and nothing is written. A value
// that contains itself fails with a *json.UnsupportedValueError.
func ShowJSON(v any) error {
	return Fprint(os.Stdout, v)
}

// Fprint is ShowJSON for an arbitrary writer.
func Fprint(w io.Writer, v any) error {
	if err := checkCycles(v); err != nil {
		return err
	}

	// a fresh encoder per call; no state survives between calls
	api := jsoniter.Config{
		EscapeHTML:  true,
		SortMapKeys: true,
	}.Froze()

	data, err := api.Marshal(v)
	if err != nil {
		return err
	}

	_, err = w.Write(append(data, '\n'))
	return err
}
