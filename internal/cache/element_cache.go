package cache

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"go.uber.org/zap"

	"github.com/mapgen-tools/osmcache/internal/ioutil"
	"github.com/mapgen-tools/osmcache/internal/logger"
)

// offsetExt is appended to the payload path to name its offset index,
// matching spec §4.2's "P + \".offsets\"".
const offsetExt = ".offsets"

// Payload is the encode/decode contract ElementCache's value type must
// satisfy (spec §6's "payload codec" external interface).
type Payload interface {
	Encode(w io.Writer) error
	Decode(r io.Reader) error
}

// ElementCacheWriter writes variable-length payloads to path, keyed by
// a u64 id through a paired offset IndexFile (spec §4.2 write mode).
type ElementCacheWriter[T Payload] struct {
	path    string
	data    *ioutil.SequentialFile
	offsets *IndexFileWriter[uint64]
}

// NewElementCacheWriter opens (creating/truncating) the payload file at
// path and its offset index at path+".offsets".
func NewElementCacheWriter[T Payload](path string) (*ElementCacheWriter[T], error) {
	data, err := ioutil.CreateSequential(path)
	if err != nil {
		return nil, err
	}
	offsets, err := NewIndexFileWriter(path+offsetExt, Uint64Codec)
	if err != nil {
		data.Close()
		return nil, err
	}
	return &ElementCacheWriter[T]{path: path, data: data, offsets: offsets}, nil
}

// Write snapshots the current payload-file position, records it in the
// offset index under id, then appends the [u32 size][bytes] record for
// value. The encoded size must fit in a u32; an oversized payload is a
// fatal corruption-class error, not a returned one, matching spec §7's
// "out-of-range encoding" taxonomy entry.
func (c *ElementCacheWriter[T]) Write(id uint64, value T) error {
	pos := uint64(c.data.Pos())
	c.offsets.Add(id, pos)

	var buf bytes.Buffer
	if err := value.Encode(&buf); err != nil {
		return fmt.Errorf("encode element %d: %w", id, err)
	}
	if buf.Len() > math.MaxUint32 {
		logger.Get().Fatal("payload exceeds u32 size prefix",
			zap.Uint64("id", id), zap.Int("size", buf.Len()))
	}

	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(buf.Len()))
	if _, err := c.data.Write(hdr[:]); err != nil {
		return fmt.Errorf("write element %d size prefix: %w", id, err)
	}
	if _, err := c.data.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write element %d payload: %w", id, err)
	}
	return nil
}

// SaveOffsets flushes the offset index's pending entries.
func (c *ElementCacheWriter[T]) SaveOffsets() { c.offsets.WriteAll() }

// Close flushes remaining offset entries and closes both files (spec
// §3's destructor-time flush requirement).
func (c *ElementCacheWriter[T]) Close() error {
	offsetErr := c.offsets.Close()
	dataErr := c.data.Close()
	if offsetErr != nil {
		return offsetErr
	}
	return dataErr
}

// ElementCacheReader reads payloads back by id (spec §4.2 read mode).
type ElementCacheReader[T Payload] struct {
	path     string
	offsets  *IndexFileReader[uint64]
	reader   *ioutil.RandomFile
	preload  bool
	data     []byte
	newValue func() T
}

// NewElementCacheReader opens the payload file at path for random
// access and its offset index for lookups. When preload is true the
// entire payload file is read into memory up front, trading RAM for
// avoiding the two disk reads (size prefix, then payload) that each
// Read call otherwise makes. newValue allocates a
// fresh T for Decode to populate.
func NewElementCacheReader[T Payload](path string, preload bool, newValue func() T) (*ElementCacheReader[T], error) {
	reader, err := ioutil.OpenRandom(path)
	if err != nil {
		return nil, err
	}

	c := &ElementCacheReader[T]{
		path:     path,
		offsets:  NewIndexFileReader(path+offsetExt, Uint64Codec),
		reader:   reader,
		preload:  preload,
		newValue: newValue,
	}

	if preload {
		buf := make([]byte, reader.Size())
		if err := reader.Read(0, buf); err != nil {
			reader.Close()
			return nil, fmt.Errorf("preload %s: %w", path, err)
		}
		c.data = buf
	}

	return c, nil
}

// LoadOffsets loads and sorts the offset index. Must be called before
// Read.
func (c *ElementCacheReader[T]) LoadOffsets() { c.offsets.ReadAll() }

// Read looks up id's offset and decodes its payload into a freshly
// allocated T. A missing id is a normal negative result: it is logged
// as a warning and Read returns false, never aborting (spec §4.2/§7
// "lookup miss").
func (c *ElementCacheReader[T]) Read(id uint64) (T, bool) {
	pos, ok := c.offsets.GetValueByKey(id)
	if !ok {
		logger.Get().Warn("can't find offset in file",
			zap.String("file", c.offsets.Path()), zap.Uint64("id", id))
		var zero T
		return zero, false
	}

	var size uint32
	var payload []byte

	if c.preload {
		size = binary.LittleEndian.Uint32(c.data[pos : pos+4])
		payload = c.data[pos+4 : pos+4+uint64(size)]
	} else {
		var hdr [4]byte
		if err := c.reader.Read(int64(pos), hdr[:]); err != nil {
			logger.Get().Fatal("failed to read payload size prefix",
				zap.String("file", c.path), zap.Uint64("id", id), zap.Error(err))
		}
		size = binary.LittleEndian.Uint32(hdr[:])
		payload = make([]byte, size)
		if err := c.reader.Read(int64(pos)+4, payload); err != nil {
			logger.Get().Fatal("failed to read payload",
				zap.String("file", c.path), zap.Uint64("id", id), zap.Error(err))
		}
	}

	value := c.newValue()
	if err := value.Decode(bytes.NewReader(payload)); err != nil {
		logger.Get().Fatal("failed to decode payload",
			zap.String("file", c.path), zap.Uint64("id", id), zap.Error(err))
	}
	return value, true
}

// Close closes the underlying payload file.
func (c *ElementCacheReader[T]) Close() error {
	return c.reader.Close()
}
