// Package ioutil provides the narrow sequential-writer and random-reader
// primitives the cache and point-storage packages are built on. Nothing
// here knows about OSM elements or offsets; it only knows about bytes,
// positions, and files.
package ioutil

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// SequentialFile is an append-only writer that tracks its own write
// cursor so callers can snapshot "the position I'm about to write at"
// without an extra syscall.
type SequentialFile struct {
	f   *os.File
	pos int64
}

// CreateSequential opens path for writing, creating it if necessary and
// truncating any existing content. Use OpenSequentialAppend to resume
// writing to an existing file.
func CreateSequential(path string) (*SequentialFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &SequentialFile{f: f}, nil
}

// OpenSequentialAppend opens path for writing, positioning the cursor at
// the current end of file so further writes append.
func OpenSequentialAppend(path string) (*SequentialFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return &SequentialFile{f: f, pos: info.Size()}, nil
}

// Write appends p at the current cursor and advances it.
func (s *SequentialFile) Write(p []byte) (int, error) {
	n, err := s.f.WriteAt(p, s.pos)
	s.pos += int64(n)
	if err != nil {
		return n, fmt.Errorf("write: %w", err)
	}
	return n, nil
}

// Pos returns the byte offset the next Write will land at.
func (s *SequentialFile) Pos() int64 { return s.pos }

// Seek repositions the write cursor. Seeking past the current end of
// file produces a hole on the next Write (used by dense point storage).
func (s *SequentialFile) Seek(offset int64) error {
	s.pos = offset
	return nil
}

// Truncate sets the file's size, creating a sparse hole if size is
// larger than the current length.
func (s *SequentialFile) Truncate(size int64) error {
	return s.f.Truncate(size)
}

// Fd exposes the underlying file descriptor for mmap setup.
func (s *SequentialFile) Fd() uintptr { return s.f.Fd() }

// Close closes the underlying file.
func (s *SequentialFile) Close() error { return s.f.Close() }

// RandomFile is a read-only random-access reader over a file, used by
// the non-preload ElementCache read path and as the point-storage
// mmap fallback.
type RandomFile struct {
	f    *os.File
	size int64
}

// OpenRandom opens path for random-access reads.
func OpenRandom(path string) (*RandomFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return &RandomFile{f: f, size: info.Size()}, nil
}

// Read fills buf from offset, returning an error if fewer bytes than
// len(buf) are available.
func (r *RandomFile) Read(offset int64, buf []byte) error {
	n, err := r.f.ReadAt(buf, offset)
	if err != nil && !(errors.Is(err, io.EOF) && n == len(buf)) {
		return fmt.Errorf("read at %d: %w", offset, err)
	}
	return nil
}

// Size returns the file's length in bytes.
func (r *RandomFile) Size() int64 { return r.size }

// Close closes the underlying file.
func (r *RandomFile) Close() error { return r.f.Close() }
