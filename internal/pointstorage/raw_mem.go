package pointstorage

import (
	"encoding/binary"
	"os"

	"go.uber.org/zap"

	"github.com/mapgen-tools/osmcache/internal/ioutil"
	"github.com/mapgen-tools/osmcache/internal/logger"
)

// MaxNodeID is the design capacity of RawMemPointStorage: the entire
// OSM node-id space at the time the original system was designed
// (spec §4.3.2). Requires roughly 32 GiB of address space
// (MaxNodeID * 8 bytes) when used at full size.
const MaxNodeID = 1<<32 - 1

// rawMemChunk bounds how many records RawMemWriter.Close buffers per
// write, so a full-size array doesn't also need a same-size byte buffer
// alongside it. Reader construction is not chunked: it reads the whole
// snapshot file into memory before parsing it.
const rawMemChunk = 1 << 16

// RawMemWriter is the write half of RawMemPointStorage: a dense in-RAM
// array of LatLon, snapshotted to path on Close (spec §4.3.2).
type RawMemWriter struct {
	Counter
	path string
	data []LatLon
}

// NewRawMemWriter allocates the full MaxNodeID-sized array. Intended
// for machines sized for the workload; see NewRawMemWriterWithCapacity
// for a smaller array (mainly useful for tests).
func NewRawMemWriter(path string) (*RawMemWriter, error) {
	return NewRawMemWriterWithCapacity(path, MaxNodeID)
}

// NewRawMemWriterWithCapacity allocates an array of the given capacity
// instead of the full node-id space.
func NewRawMemWriterWithCapacity(path string, capacity uint64) (*RawMemWriter, error) {
	return &RawMemWriter{path: path, data: make([]LatLon, capacity)}, nil
}

// AddPoint stores directly at data[id]. An id at or beyond the array's
// capacity is fatal: there is no sparse fallback in this strategy.
func (w *RawMemWriter) AddPoint(id uint64, lat, lon float64) {
	if id >= uint64(len(w.data)) {
		logger.Get().Fatal("node id exceeds raw-mem point storage capacity",
			zap.Uint64("id", id), zap.Int("capacity", len(w.data)))
	}
	w.data[id] = LatLon{Lat: EncodeCoord("lat", lat), Lon: EncodeCoord("lon", lon)}
	w.IncProcessedPoint()
}

// Close writes the entire in-memory array to path in chunks (spec
// §4.3.2's write-mode destructor requirement).
func (w *RawMemWriter) Close() error {
	f, err := ioutil.CreateSequential(w.path)
	if err != nil {
		return err
	}

	chunk := make([]byte, 0, rawMemChunk*latLonSize)
	for _, ll := range w.data {
		var rec [latLonSize]byte
		binary.LittleEndian.PutUint32(rec[0:4], uint32(ll.Lat))
		binary.LittleEndian.PutUint32(rec[4:8], uint32(ll.Lon))
		chunk = append(chunk, rec[:]...)
		if len(chunk) >= rawMemChunk*latLonSize {
			if _, err := f.Write(chunk); err != nil {
				f.Close()
				return err
			}
			chunk = chunk[:0]
		}
	}
	if len(chunk) > 0 {
		if _, err := f.Write(chunk); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}

// RawMemReader is the read half of RawMemPointStorage: the array is
// populated from path in full at construction time.
type RawMemReader struct {
	data []LatLon
}

// NewRawMemReader reads the full MaxNodeID-sized snapshot from path.
func NewRawMemReader(path string) (*RawMemReader, error) {
	return NewRawMemReaderWithCapacity(path, MaxNodeID)
}

// NewRawMemReaderWithCapacity reads a snapshot into an array of the
// given capacity rather than the full node-id space.
func NewRawMemReaderWithCapacity(path string, capacity uint64) (*RawMemReader, error) {
	data := make([]LatLon, capacity)

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &RawMemReader{data: data}, nil
		}
		return nil, err
	}

	n := len(raw) / latLonSize
	if n > len(data) {
		n = len(data)
	}
	for i := 0; i < n; i++ {
		off := i * latLonSize
		data[i] = LatLon{
			Lat: int32(binary.LittleEndian.Uint32(raw[off : off+4])),
			Lon: int32(binary.LittleEndian.Uint32(raw[off+4 : off+8])),
		}
	}
	return &RawMemReader{data: data}, nil
}

// GetPoint loads directly from data[id]. id at or beyond capacity is
// reported absent rather than panicking, since a reader is commonly
// queried with ids from a wider space than it was built for.
func (r *RawMemReader) GetPoint(id uint64) (lat, lon float64, ok bool) {
	if id >= uint64(len(r.data)) {
		logger.Get().Error("node not found", zap.Uint64("id", id))
		return 0, 0, false
	}
	ll := r.data[id]
	if ll.IsAbsent() {
		logger.Get().Error("node not found", zap.Uint64("id", id))
		return 0, 0, false
	}
	return DecodeCoord(ll.Lat), DecodeCoord(ll.Lon), true
}

// Close is a no-op: RawMemReader holds no file handles after
// construction.
func (r *RawMemReader) Close() error { return nil }
