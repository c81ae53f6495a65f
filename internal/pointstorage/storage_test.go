package pointstorage

import (
	"path/filepath"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"raw", Raw, true},
		{"mem", Mem, true},
		{"map", Map, true},
		{"bogus", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseKind(%q) error = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOpenWriterReaderDispatch(t *testing.T) {
	for _, kind := range []Kind{Raw, Mem, Map} {
		t.Run(kind.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "points.dat")

			var w Writer
			var err error
			if kind == Mem {
				mw, e := NewRawMemWriterWithCapacity(path, 1000)
				w, err = mw, e
			} else {
				w, err = OpenWriter(kind, path)
			}
			if err != nil {
				t.Fatalf("open writer: %v", err)
			}

			w.AddPoint(1, 51.5074, -0.1278)
			w.AddPoint(2, 40.7128, -74.0060)
			if w.ProcessedPoint() != 2 {
				t.Errorf("ProcessedPoint() = %d, want 2", w.ProcessedPoint())
			}
			if err := w.Close(); err != nil {
				t.Fatalf("close writer: %v", err)
			}

			var r Reader
			if kind == Mem {
				mr, e := NewRawMemReaderWithCapacity(path, 1000)
				r, err = mr, e
			} else {
				r, err = OpenReader(kind, path)
			}
			if err != nil {
				t.Fatalf("open reader: %v", err)
			}
			defer r.Close()

			lat, lon, ok := r.GetPoint(1)
			if !ok {
				t.Fatalf("GetPoint(1): not found")
			}
			if diff(lat, 51.5074) || diff(lon, -0.1278) {
				t.Errorf("GetPoint(1) = (%v, %v), want (51.5074, -0.1278)", lat, lon)
			}

			if _, _, ok := r.GetPoint(999); ok {
				t.Errorf("GetPoint(999) = found, want not found")
			}
		})
	}
}

func diff(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d > 1e-6
}
