// Package pointstorage implements the three node-coordinate storage
// strategies from spec §4.3: RawFile (dense, on-disk), RawMem (dense,
// in-RAM with a snapshot file), and MapFile (sparse, hash-mapped). All
// three share the fixed-point 1e7 coordinate encoding in this file.
package pointstorage

import (
	"go.uber.org/zap"

	"github.com/mapgen-tools/osmcache/internal/logger"
)

// scaleFactor is the fixed-point factor K from spec §4.4.
const scaleFactor = 1e7

// LatLon is the on-disk record for dense point storage: two int32,
// fixed size 8 bytes (spec §3's LatLon entity).
type LatLon struct {
	Lat int32
	Lon int32
}

// IsAbsent reports whether ll is the dense-storage absence sentinel
// (0, 0) (spec §3/§9). Callers are expected never to store a true
// (0, 0) point; this is a documented limitation, not a bug to silently
// work around.
func (ll LatLon) IsAbsent() bool { return ll.Lat == 0 && ll.Lon == 0 }

// EncodeCoord truncates a float64 degree value through the spec's
// fixed-point 1e7 scale. axis is used only to name which coordinate
// overflowed in the fatal log line. Overflowing int32 aborts the
// process (spec §3: "the fixed-point result must fit into int32, else
// fatal").
func EncodeCoord(axis string, v float64) int32 {
	scaled := v * scaleFactor
	truncated := int64(scaled)
	enc := int32(truncated)
	if int64(enc) != truncated {
		logger.Get().Fatal("coordinate out of int32 range",
			zap.String("axis", axis), zap.Float64("value", v))
	}
	return enc
}

// DecodeCoord reverses EncodeCoord.
func DecodeCoord(v int32) float64 {
	return float64(v) / scaleFactor
}
