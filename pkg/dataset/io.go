package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type document struct {
	Points []Point `json:"points" toml:"points"`
}

// ReadJSON decodes a point list from r.
//
// The input must be a JSON object with a "points" array, or a bare array
// of points:
//
//	{"points": [{"year": 1970, "rate": 4.53}]}
//	[{"year": 1970, "rate": 4.53}]
//
// ReadJSON does not validate years or uniqueness; feed the result through a
// [Selection] for that. ReadJSON does not close r.
func ReadJSON(r io.Reader) ([]Point, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var pts []Point
		if err := json.Unmarshal(data, &pts); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		return pts, nil
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return doc.Points, nil
}

// ReadTOML decodes a point list from a TOML document with a [[points]] array.
func ReadTOML(r io.Reader) ([]Point, error) {
	var doc document
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return doc.Points, nil
}

// WriteJSON encodes points as {"points": [...]} and writes them to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(points []Point, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(document{Points: points})
}

// ImportFile reads a point list from path. The format is chosen by file
// extension: .toml selects TOML, anything else is read as JSON.
func ImportFile(path string) ([]Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var pts []Point
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		pts, err = ReadTOML(f)
	} else {
		pts, err = ReadJSON(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pts, nil
}
