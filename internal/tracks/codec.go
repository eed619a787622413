package tracks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Decode reads an engine result document: a JSON array of tracks. An empty
// body or a literal null means the engine produced no tracks and yields a nil
// slice without error.
func Decode(r io.Reader) ([]Track, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read engine output: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	var out []Track
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode engine output: %w", err)
	}
	return out, nil
}

// Encode writes tracks in the same format Decode reads.
func Encode(w io.Writer, ts []Track) error {
	if ts == nil {
		ts = []Track{}
	}
	enc := json.NewEncoder(w)
	if err := enc.Encode(ts); err != nil {
		return fmt.Errorf("encode tracks: %w", err)
	}
	return nil
}
