package ioutil

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// MmapReader is a read-only memory-mapped view of a file, used by
// RawFilePointStorage so repeated point lookups avoid a read syscall
// per record. Falls back to RandomFile when the platform or file state
// (e.g. a zero-length file) can't be mapped.
type MmapReader struct {
	f   *os.File
	m   mmap.MMap
	fb  *RandomFile
	len int64
}

// OpenMmapReader opens path read-only and maps it into memory. If the
// mapping can't be established the reader silently falls back to plain
// random-access reads; callers observe identical results either way.
func OpenMmapReader(path string) (*MmapReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if info.Size() == 0 {
		f.Close()
		fb, err := OpenRandom(path)
		if err != nil {
			return nil, err
		}
		return &MmapReader{fb: fb}, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		fb, ferr := OpenRandom(path)
		if ferr != nil {
			return nil, fmt.Errorf("mmap %s: %w (fallback open failed: %v)", path, err, ferr)
		}
		return &MmapReader{fb: fb}, nil
	}

	return &MmapReader{f: f, m: m, len: info.Size()}, nil
}

// Read fills buf from offset. Bytes past the end of the file read back
// as zero, the same as a hole inside a sparse file, on both the mapped
// and the fallback path.
func (r *MmapReader) Read(offset int64, buf []byte) error {
	if r.fb != nil {
		for i := range buf {
			buf[i] = 0
		}
		size := r.fb.Size()
		if offset < 0 || offset >= size {
			return nil
		}
		n := int64(len(buf))
		if offset+n > size {
			n = size - offset
		}
		return r.fb.Read(offset, buf[:n])
	}
	if offset < 0 || offset >= r.len {
		for i := range buf {
			buf[i] = 0
		}
		return nil
	}
	n := copy(buf, r.m[offset:])
	for i := n; i < len(buf); i++ {
		buf[i] = 0
	}
	return nil
}

// Size returns the mapped region's length in bytes.
func (r *MmapReader) Size() int64 {
	if r.fb != nil {
		return r.fb.Size()
	}
	return r.len
}

// Close unmaps the region and closes the underlying file.
func (r *MmapReader) Close() error {
	if r.fb != nil {
		return r.fb.Close()
	}
	if err := r.m.Unmap(); err != nil {
		r.f.Close()
		return fmt.Errorf("unmap: %w", err)
	}
	return r.f.Close()
}
