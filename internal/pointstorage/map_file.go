package pointstorage

import (
	"encoding/binary"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mapgen-tools/osmcache/internal/ioutil"
	"github.com/mapgen-tools/osmcache/internal/logger"
)

// latLonPosSize is the on-disk size of a LatLonPos record (spec §3):
// 8-byte id + two int32 coordinates.
const latLonPosSize = 16

// shortSuffix names the sparse-point file, per spec §4.3.3.
const shortSuffix = ".short"

// MapFileWriter is the write half of MapFilePointStorage: a sparse
// append-only log of (id, lat, lon) records. No in-memory map is kept
// while writing (spec §4.3.3).
type MapFileWriter struct {
	Counter
	path string
	f    *ioutil.SequentialFile
}

// NewMapFileWriter creates (or truncates) the sparse point file at
// path+".short".
func NewMapFileWriter(path string) (*MapFileWriter, error) {
	f, err := ioutil.CreateSequential(path + shortSuffix)
	if err != nil {
		return nil, err
	}
	return &MapFileWriter{path: path, f: f}, nil
}

// AddPoint appends a LatLonPos record carrying id.
func (w *MapFileWriter) AddPoint(id uint64, lat, lon float64) {
	lat32 := EncodeCoord("lat", lat)
	lon32 := EncodeCoord("lon", lon)

	var buf [latLonPosSize]byte
	binary.LittleEndian.PutUint64(buf[0:8], id)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(lat32))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(lon32))

	if _, err := w.f.Write(buf[:]); err != nil {
		logger.Get().Fatal("failed to write sparse point",
			zap.String("file", w.path+shortSuffix), zap.Uint64("id", id), zap.Error(err))
	}
	w.IncProcessedPoint()
}

// Close closes the underlying file.
func (w *MapFileWriter) Close() error { return w.f.Close() }

type mapPoint struct {
	lat, lon int32
}

// MapFileReader is the read half of MapFilePointStorage: the sparse
// log is streamed in full at construction time into an in-memory hash
// map keyed by id (spec §4.3.3).
type MapFileReader struct {
	points map[uint64]mapPoint
}

// NewMapFileReader streams path+".short" into an in-memory map.
func NewMapFileReader(path string) (*MapFileReader, error) {
	log := logger.Get()
	file := path + shortSuffix

	log.Info("nodes reading is started", zap.String("file", file))

	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return &MapFileReader{points: make(map[uint64]mapPoint)}, nil
		}
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	if len(data)%latLonPosSize != 0 {
		log.Fatal("damaged file",
			zap.String("file", file), zap.Int("size", len(data)))
	}

	n := len(data) / latLonPosSize
	points := make(map[uint64]mapPoint, n)
	for i := 0; i < n; i++ {
		off := i * latLonPosSize
		id := binary.LittleEndian.Uint64(data[off : off+8])
		lat := int32(binary.LittleEndian.Uint32(data[off+8 : off+12]))
		lon := int32(binary.LittleEndian.Uint32(data[off+12 : off+16]))
		points[id] = mapPoint{lat: lat, lon: lon}
	}

	log.Info("nodes reading is finished", zap.String("file", file), zap.Int("points", n))
	return &MapFileReader{points: points}, nil
}

// GetPoint probes the hash map. A miss is expected and unremarkable
// here — unlike the dense strategies, absence isn't logged (spec
// §4.3.3: "returns false on miss without logging").
func (r *MapFileReader) GetPoint(id uint64) (lat, lon float64, ok bool) {
	p, ok := r.points[id]
	if !ok {
		return 0, 0, false
	}
	return DecodeCoord(p.lat), DecodeCoord(p.lon), true
}

// Close is a no-op: MapFileReader holds no file handle after
// construction.
func (r *MapFileReader) Close() error { return nil }
