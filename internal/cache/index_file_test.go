package cache

import (
	"path/filepath"
	"testing"

	"github.com/mapgen-tools/osmcache/internal/logger"
)

func init() {
	logger.Init(false)
}

func TestIndexFileWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.dat")

	w, err := NewIndexFileWriter(path, Uint64Codec)
	if err != nil {
		t.Fatalf("NewIndexFileWriter: %v", err)
	}
	entries := map[uint64]uint64{5: 50, 1: 10, 3: 30, 2: 20, 4: 40}
	for k, v := range entries {
		w.Add(k, v)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r := NewIndexFileReader(path, Uint64Codec)
	r.ReadAll()

	if r.Len() != len(entries) {
		t.Fatalf("Len() = %d, want %d", r.Len(), len(entries))
	}
	for k, want := range entries {
		got, ok := r.GetValueByKey(k)
		if !ok {
			t.Errorf("GetValueByKey(%d): not found", k)
			continue
		}
		if got != want {
			t.Errorf("GetValueByKey(%d) = %d, want %d", k, got, want)
		}
	}
	if _, ok := r.GetValueByKey(999); ok {
		t.Errorf("GetValueByKey(999) = found, want not found")
	}

	minKey, maxKey, ok := r.KeyRange()
	if !ok || minKey != 1 || maxKey != 5 {
		t.Errorf("KeyRange() = (%d, %d, %v), want (1, 5, true)", minKey, maxKey, ok)
	}
}

func TestIndexFileDuplicateKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.dat")

	w, err := NewIndexFileWriter(path, Uint64Codec)
	if err != nil {
		t.Fatalf("NewIndexFileWriter: %v", err)
	}
	w.Add(7, 100)
	w.Add(7, 50)
	w.Add(7, 75)
	w.Add(9, 1)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r := NewIndexFileReader(path, Uint64Codec)
	r.ReadAll()

	if r.DuplicateKeyCount() != 2 {
		t.Errorf("DuplicateKeyCount() = %d, want 2", r.DuplicateKeyCount())
	}

	var seen []uint64
	r.ForEachByKey(7, func(v uint64) bool {
		seen = append(seen, v)
		return false
	})
	want := []uint64{50, 75, 100}
	if len(seen) != len(want) {
		t.Fatalf("ForEachByKey(7) visited %d values, want %d", len(seen), len(want))
	}
	for i, v := range want {
		if seen[i] != v {
			t.Errorf("ForEachByKey(7) value[%d] = %d, want %d", i, seen[i], v)
		}
	}
}

func TestIndexFileFlushAcrossThreshold(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.dat")

	w, err := NewIndexFileWriter(path, Uint64Codec)
	if err != nil {
		t.Fatalf("NewIndexFileWriter: %v", err)
	}
	const n = flushThreshold*2 + 17
	for i := uint64(0); i < n; i++ {
		w.Add(i, i*10)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r := NewIndexFileReader(path, Uint64Codec)
	r.ReadAll()
	if r.Len() != n {
		t.Fatalf("Len() = %d, want %d", r.Len(), n)
	}
	if v, ok := r.GetValueByKey(n - 1); !ok || v != (n-1)*10 {
		t.Errorf("GetValueByKey(%d) = (%d, %v), want (%d, true)", n-1, v, ok, (n-1)*10)
	}
}

func TestIndexFileReadAllMissingFileIsEmpty(t *testing.T) {
	r := NewIndexFileReader(filepath.Join(t.TempDir(), "missing.dat"), Uint64Codec)
	r.ReadAll()
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0 for a missing file", r.Len())
	}
}
