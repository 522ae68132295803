package fonts

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

func TestDefaultIsCached(t *testing.T) {
	a, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Default()
	if a != b {
		t.Error("Default should parse once and return the same set")
	}
	if a.Name != FontFamily {
		t.Errorf("Name = %q", a.Name)
	}
}

func TestFaceWeights(t *testing.T) {
	s, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	regular, err := s.Face(24, 400)
	if err != nil {
		t.Fatal(err)
	}
	bold, err := s.Face(24, 700)
	if err != nil {
		t.Fatal(err)
	}
	r := font.MeasureString(regular, "1970")
	b := font.MeasureString(bold, "1970")
	if r <= 0 || b <= 0 {
		t.Fatalf("advances regular=%v bold=%v", r, b)
	}
	if m := regular.Metrics(); m.Ascent.Ceil() <= 0 {
		t.Errorf("ascent = %v", m.Ascent)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "go.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Regular != s.Bold {
		t.Error("a single file should serve both weights")
	}
	if s.Name == "" {
		t.Error("family name should be set")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.ttf")); err == nil {
		t.Error("missing file should fail")
	}
	bad := filepath.Join(t.TempDir(), "bad.ttf")
	os.WriteFile(bad, []byte("not a font"), 0o644)
	if _, err := Load(bad); err == nil {
		t.Error("garbage should fail to parse")
	}
}
