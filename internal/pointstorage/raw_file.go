package pointstorage

import (
	"encoding/binary"

	"go.uber.org/zap"

	"github.com/mapgen-tools/osmcache/internal/ioutil"
	"github.com/mapgen-tools/osmcache/internal/logger"
)

const latLonSize = 8

// RawFileWriter is the write half of RawFilePointStorage: a dense
// on-disk array indexed by id, record id i at byte offset i*8 (spec
// §4.3.1). Missing ids leave filesystem holes that read back as zero.
type RawFileWriter struct {
	Counter
	path string
	f    *ioutil.SequentialFile
}

// NewRawFileWriter creates (or truncates) the dense point file at path.
func NewRawFileWriter(path string) (*RawFileWriter, error) {
	f, err := ioutil.CreateSequential(path)
	if err != nil {
		return nil, err
	}
	return &RawFileWriter{path: path, f: f}, nil
}

// AddPoint seeks to id*8 and writes the encoded (lat, lon) pair there.
func (w *RawFileWriter) AddPoint(id uint64, lat, lon float64) {
	ll := LatLon{Lat: EncodeCoord("lat", lat), Lon: EncodeCoord("lon", lon)}

	var buf [latLonSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(ll.Lat))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(ll.Lon))

	if err := w.f.Seek(int64(id) * latLonSize); err != nil {
		logger.Get().Fatal("failed to seek in point file",
			zap.String("file", w.path), zap.Uint64("id", id), zap.Error(err))
	}
	if _, err := w.f.Write(buf[:]); err != nil {
		logger.Get().Fatal("failed to write point",
			zap.String("file", w.path), zap.Uint64("id", id), zap.Error(err))
	}
	w.IncProcessedPoint()
}

// Close closes the underlying file.
func (w *RawFileWriter) Close() error { return w.f.Close() }

// RawFileReader is the read half of RawFilePointStorage. Reads prefer
// a memory-mapped view of the file, falling back to plain random reads
// where mmap isn't available — a performance choice only, per spec
// §4.3.1.
type RawFileReader struct {
	path string
	m    *ioutil.MmapReader
}

// NewRawFileReader opens the dense point file at path for reading.
func NewRawFileReader(path string) (*RawFileReader, error) {
	m, err := ioutil.OpenMmapReader(path)
	if err != nil {
		return nil, err
	}
	return &RawFileReader{path: path, m: m}, nil
}

// GetPoint reads the record at id*8. A (0,0) record is treated as
// absent: logged as an error and reported false, never aborting (spec
// §4.3.1/§7: the zero-sentinel scheme can't distinguish absence from a
// genuine point at the equator/prime meridian).
func (r *RawFileReader) GetPoint(id uint64) (lat, lon float64, ok bool) {
	var buf [latLonSize]byte
	if err := r.m.Read(int64(id)*latLonSize, buf[:]); err != nil {
		logger.Get().Fatal("failed to read point",
			zap.String("file", r.path), zap.Uint64("id", id), zap.Error(err))
	}

	ll := LatLon{
		Lat: int32(binary.LittleEndian.Uint32(buf[0:4])),
		Lon: int32(binary.LittleEndian.Uint32(buf[4:8])),
	}
	if ll.IsAbsent() {
		logger.Get().Error("node not found", zap.Uint64("id", id))
		return 0, 0, false
	}
	return DecodeCoord(ll.Lat), DecodeCoord(ll.Lon), true
}

// Close closes the underlying mapping.
func (r *RawFileReader) Close() error { return r.m.Close() }
