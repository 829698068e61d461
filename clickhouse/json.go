package clickhouse

import (
	"bytes"
	"encoding/json"
	"io"
)

// decodeJSONWithNumber use the UseNumber option in std json, which works
// by first decode number into string, then back to converted type
// see implementation of json.Number in std
func decodeJSONWithNumber(bodyBytes []byte, out interface{}) error {
	decoder := json.NewDecoder(bytes.NewReader(bodyBytes))
	decoder.UseNumber()
	return decoder.Decode(out)
}

// decodeJSONStream decodes a sequence of newline separated JSON values.
func decodeJSONStream(bodyBytes []byte, next func() interface{}) error {
	decoder := json.NewDecoder(bytes.NewReader(bodyBytes))
	decoder.UseNumber()
	for {
		err := decoder.Decode(next())
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
