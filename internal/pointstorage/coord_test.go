package pointstorage

import (
	"math"
	"testing"

	"github.com/mapgen-tools/osmcache/internal/logger"
)

func init() {
	logger.Init(false)
}

func TestEncodeDecodeCoordRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		axis string
		v    float64
	}{
		{"zero", "lat", 0},
		{"london lat", "lat", 51.5074},
		{"london lon", "lon", -0.1278},
		{"max lat", "lat", 90},
		{"min lon", "lon", -180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := EncodeCoord(tt.axis, tt.v)
			dec := DecodeCoord(enc)
			if math.Abs(dec-tt.v) > 1e-7 {
				t.Errorf("round trip %v -> %d -> %v, want within 1e-7 of input", tt.v, enc, dec)
			}
		})
	}
}

func TestLatLonIsAbsent(t *testing.T) {
	if !(LatLon{}).IsAbsent() {
		t.Errorf("zero-value LatLon.IsAbsent() = false, want true")
	}
	if (LatLon{Lat: 1, Lon: 0}).IsAbsent() {
		t.Errorf("LatLon{Lat:1}.IsAbsent() = true, want false")
	}
}
