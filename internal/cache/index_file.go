// Package cache implements the intermediate (id -> payload) cache used
// across import passes: IndexFile, the sorted (key, value) offset
// table, and ElementCache, which pairs an IndexFile[uint64] of byte
// offsets with an append-only payload file.
package cache

import (
	"encoding/binary"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/mapgen-tools/osmcache/internal/ioutil"
	"github.com/mapgen-tools/osmcache/internal/logger"
)

// flushThreshold is the design constant from spec §4.1: Add buffers in
// memory until the buffer exceeds this many entries, then flushes in
// insertion order.
const flushThreshold = 1024

// keySize is the on-disk size of an IndexEntry's key half.
const keySize = 8

// ValueCodec describes how IndexFile reads and writes its fixed-size
// value half. V must be a POD of constant encoded Size with no
// padding-dependent semantics (spec §9's "trivially copyable value
// constraint"); Go has no compile-time trait for that, so the codec's
// Size is the enforcement point instead.
type ValueCodec[V any] struct {
	Size   int
	Encode func(v V, buf []byte)
	Decode func(buf []byte) V
	// Less orders two values sharing the same key. GetValueByKey and
	// ForEachByKey are defined in terms of this order (spec §4.1).
	Less func(a, b V) bool
}

// Uint64Codec is the ValueCodec ElementCache uses for its byte-offset
// index (spec's "V = u64").
var Uint64Codec = ValueCodec[uint64]{
	Size:   8,
	Encode: func(v uint64, buf []byte) { binary.LittleEndian.PutUint64(buf, v) },
	Decode: func(buf []byte) uint64 { return binary.LittleEndian.Uint64(buf) },
	Less:   func(a, b uint64) bool { return a < b },
}

type indexEntry[V any] struct {
	key   uint64
	value V
}

// IndexFileWriter accumulates (key, value) pairs and flushes them to an
// append-only file in insertion-order batches (spec §4.1 write mode).
type IndexFileWriter[V any] struct {
	codec ValueCodec[V]
	path  string
	w     *ioutil.SequentialFile
	buf   []indexEntry[V]
}

// NewIndexFileWriter creates or truncates the index file at path.
func NewIndexFileWriter[V any](path string, codec ValueCodec[V]) (*IndexFileWriter[V], error) {
	w, err := ioutil.CreateSequential(path)
	if err != nil {
		return nil, err
	}
	return &IndexFileWriter[V]{codec: codec, path: path, w: w}, nil
}

// Add appends (key, value) to the in-memory buffer, flushing it once it
// exceeds flushThreshold entries.
func (f *IndexFileWriter[V]) Add(key uint64, value V) {
	f.buf = append(f.buf, indexEntry[V]{key, value})
	if len(f.buf) > flushThreshold {
		f.WriteAll()
	}
}

// WriteAll flushes any buffered entries to disk in insertion order and
// clears the buffer. Safe to call with an empty buffer.
func (f *IndexFileWriter[V]) WriteAll() {
	if len(f.buf) == 0 {
		return
	}

	rec := keySize + f.codec.Size
	out := make([]byte, rec*len(f.buf))
	for i, e := range f.buf {
		off := i * rec
		binary.LittleEndian.PutUint64(out[off:off+keySize], e.key)
		f.codec.Encode(e.value, out[off+keySize:off+rec])
	}

	if _, err := f.w.Write(out); err != nil {
		logger.Get().Fatal("failed to flush index file",
			zap.String("file", f.path), zap.Error(err))
	}
	f.buf = f.buf[:0]
}

// Path returns the index file's path.
func (f *IndexFileWriter[V]) Path() string { return f.path }

// Close flushes any pending entries and closes the file. Spec §3
// requires a write-mode object's teardown to flush remaining state;
// forgetting to call Close loses buffered entries.
func (f *IndexFileWriter[V]) Close() error {
	f.WriteAll()
	return f.w.Close()
}

// IndexFileReader loads an index file fully into memory and supports
// sorted point and range lookups (spec §4.1 read mode).
type IndexFileReader[V any] struct {
	codec    ValueCodec[V]
	path     string
	elements []indexEntry[V]
}

// NewIndexFileReader prepares a reader for path. Call ReadAll before
// any lookups.
func NewIndexFileReader[V any](path string, codec ValueCodec[V]) *IndexFileReader[V] {
	return &IndexFileReader[V]{codec: codec, path: path}
}

// Path returns the index file's path, used in log messages that name
// the file a lookup miss came from (spec §4.2 Read miss).
func (f *IndexFileReader[V]) Path() string { return f.path }

// Len returns the number of entries loaded by ReadAll.
func (f *IndexFileReader[V]) Len() int { return len(f.elements) }

// ReadAll loads the entire index file into memory and sorts the result
// ascending by (key, value). A missing file is treated as empty (a
// cache that was never written to); a file whose length isn't a
// multiple of the record size, or a read failure, is fatal — the spec
// treats a damaged index as unrecoverable corruption.
func (f *IndexFileReader[V]) ReadAll() {
	log := logger.Get()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			f.elements = nil
			return
		}
		log.Fatal("failed to read index file", zap.String("file", f.path), zap.Error(err))
	}
	if len(data) == 0 {
		f.elements = nil
		return
	}

	rec := keySize + f.codec.Size
	if len(data)%rec != 0 {
		log.Fatal("damaged file",
			zap.String("file", f.path), zap.Int("size", len(data)), zap.Int("record_size", rec))
	}

	log.Info("offsets reading is started", zap.String("file", f.path))

	count := len(data) / rec
	elements, err := allocEntries[V](count)
	if err != nil {
		log.Fatal("insufficient memory for required offset map",
			zap.String("file", f.path), zap.Int("entries", count))
	}

	for i := 0; i < count; i++ {
		off := i * rec
		elements[i] = indexEntry[V]{
			key:   binary.LittleEndian.Uint64(data[off : off+keySize]),
			value: f.codec.Decode(data[off+keySize : off+rec]),
		}
	}

	sort.Slice(elements, func(i, j int) bool {
		if elements[i].key != elements[j].key {
			return elements[i].key < elements[j].key
		}
		return f.codec.Less(elements[i].value, elements[j].value)
	})
	f.elements = elements

	log.Info("offsets reading is finished", zap.String("file", f.path), zap.Int("entries", count))
}

// allocEntries isolates the allocation that can fail under memory
// pressure so ReadAll can report it as the spec's "insufficient
// memory" fatal condition rather than letting the runtime panic
// propagate raw.
func allocEntries[V any](count int) (elements []indexEntry[V], err error) {
	defer func() {
		if r := recover(); r != nil {
			elements, err = nil, errAlloc
		}
	}()
	return make([]indexEntry[V], count), nil
}

var errAlloc = &allocError{}

type allocError struct{}

func (*allocError) Error() string { return "allocation failed" }

// GetValueByKey returns the smallest value among entries matching key
// (spec §4.1: lower-bound search, ties broken by ascending value).
func (f *IndexFileReader[V]) GetValueByKey(key uint64) (V, bool) {
	i := sort.Search(len(f.elements), func(i int) bool { return f.elements[i].key >= key })
	if i < len(f.elements) && f.elements[i].key == key {
		return f.elements[i].value, true
	}
	var zero V
	return zero, false
}

// KeyRange returns the smallest and largest keys loaded by ReadAll. ok is
// false for an empty index.
func (f *IndexFileReader[V]) KeyRange() (minKey, maxKey uint64, ok bool) {
	if len(f.elements) == 0 {
		return 0, 0, false
	}
	return f.elements[0].key, f.elements[len(f.elements)-1].key, true
}

// DuplicateKeyCount returns how many entries share a key with the entry
// immediately before them in sorted order — i.e. the count of entries
// beyond the first for each repeated key.
func (f *IndexFileReader[V]) DuplicateKeyCount() int {
	dups := 0
	for i := 1; i < len(f.elements); i++ {
		if f.elements[i].key == f.elements[i-1].key {
			dups++
		}
	}
	return dups
}

// ForEachByKey invokes visit for every entry matching key in ascending
// value order, stopping early if visit returns true (spec §4.1
// equal-range semantics).
func (f *IndexFileReader[V]) ForEachByKey(key uint64, visit func(V) bool) {
	lo := sort.Search(len(f.elements), func(i int) bool { return f.elements[i].key >= key })
	hi := sort.Search(len(f.elements), func(i int) bool { return f.elements[i].key > key })
	for i := lo; i < hi; i++ {
		if visit(f.elements[i].value) {
			return
		}
	}
}
