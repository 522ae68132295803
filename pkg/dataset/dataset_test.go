package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/ratechart/pkg/errors"
)

func TestSortedDoesNotMutate(t *testing.T) {
	in := []Point{{2023, 0.72}, {1970, 4.53}, {1983, 2.06}}
	out := Sorted(in)

	if in[0].Year != 2023 {
		t.Errorf("input mutated: %v", in)
	}
	want := []int{1970, 1983, 2023}
	for i, y := range want {
		if out[i].Year != y {
			t.Errorf("Sorted()[%d].Year = %d, want %d", i, out[i].Year, y)
		}
	}
}

func TestMaxRateAndYearRange(t *testing.T) {
	pts := []Point{{1983, 2.06}, {1970, 4.53}, {2023, 0.72}}
	if got := MaxRate(pts); got != 4.53 {
		t.Errorf("MaxRate() = %v, want 4.53", got)
	}
	lo, hi, ok := YearRange(pts)
	if !ok || lo != 1970 || hi != 2023 {
		t.Errorf("YearRange() = %d, %d, %v", lo, hi, ok)
	}
	if _, _, ok := YearRange(nil); ok {
		t.Error("YearRange(nil) should not be ok")
	}
	if MaxRate(nil) != 0 {
		t.Error("MaxRate(nil) should be 0")
	}
}

func TestLookupCoversRange(t *testing.T) {
	for y := MinYear; y <= MaxYear; y++ {
		if _, ok := Lookup(y); !ok {
			t.Errorf("Lookup(%d) missing", y)
		}
	}
	if _, ok := Lookup(MinYear - 1); ok {
		t.Error("Lookup below range should miss")
	}
	if got := len(All()); got != MaxYear-MinYear+1 {
		t.Errorf("len(All()) = %d", got)
	}
	p, _ := Lookup(1983)
	if p.Rate != 2.06 {
		t.Errorf("Lookup(1983).Rate = %v", p.Rate)
	}
}

func TestSelectionAdd(t *testing.T) {
	s := &Selection{}

	if _, err := s.Add(1970); err != nil {
		t.Fatalf("Add(1970): %v", err)
	}
	if _, err := s.Add(1970); !errors.Is(err, errors.ErrCodeDuplicateYear) {
		t.Errorf("duplicate Add error = %v", err)
	}
	if _, err := s.Add(1969); !errors.Is(err, errors.ErrCodeInvalidYear) {
		t.Errorf("out of range Add error = %v", err)
	}
	if _, err := s.Add(2024); !errors.Is(err, errors.ErrCodeInvalidYear) {
		t.Errorf("out of range Add error = %v", err)
	}
	if s.Len() != 1 || !s.Has(1970) {
		t.Errorf("selection = %v", s.Points())
	}

	if !s.Remove(1970) || s.Remove(1970) {
		t.Error("Remove should report presence once")
	}

	_, _ = s.Add(2000)
	_, _ = s.Add(2001)
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Clear left %d points", s.Len())
	}
}

func TestSelectionPointsIsCopy(t *testing.T) {
	s, err := NewSelection(Point{1983, 2.06})
	if err != nil {
		t.Fatal(err)
	}
	pts := s.Points()
	pts[0].Rate = 99
	if s.Points()[0].Rate != 2.06 {
		t.Error("Points() must return a copy")
	}
}

func TestReadJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"object", `{"points": [{"year": 1970, "rate": 4.53}, {"year": 2023, "rate": 0.72}]}`, 2},
		{"array", `[{"year": 1983, "rate": 2.06}]`, 1},
		{"empty", `{"points": []}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pts, err := ReadJSON(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ReadJSON: %v", err)
			}
			if len(pts) != tt.want {
				t.Errorf("len = %d, want %d", len(pts), tt.want)
			}
		})
	}

	if _, err := ReadJSON(strings.NewReader(`{"points": [`)); err == nil {
		t.Error("malformed JSON should fail")
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	in := []Point{{1970, 4.53}, {2023, 0.72}}
	var buf bytes.Buffer
	if err := WriteJSON(in, &buf); err != nil {
		t.Fatal(err)
	}
	out, err := ReadJSON(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[1] != in[1] {
		t.Errorf("round trip = %v", out)
	}
}

func TestImportFileTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "points.toml")
	doc := "[[points]]\nyear = 1970\nrate = 4.53\n\n[[points]]\nyear = 2023\nrate = 0.72\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	pts, err := ImportFile(path)
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if len(pts) != 2 || pts[0].Year != 1970 || pts[1].Rate != 0.72 {
		t.Errorf("ImportFile = %v", pts)
	}

	if _, err := ImportFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("missing file should fail")
	}
}
