package wkb

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestEncodePointLayout(t *testing.T) {
	enc := NewEncoder(32)
	got := enc.EncodePoint(-0.1278, 51.5074)

	if len(got) != 1+4+4+8+8 {
		t.Fatalf("EncodePoint length = %d, want %d", len(got), 1+4+4+8+8)
	}
	if got[0] != 1 {
		t.Errorf("byte order marker = %d, want 1 (little-endian)", got[0])
	}

	geomType := binary.LittleEndian.Uint32(got[1:5])
	if geomType&wkbSRIDFlag == 0 {
		t.Errorf("geometry type %#x missing SRID flag", geomType)
	}
	if geomType&0xff != wkbPoint {
		t.Errorf("geometry type %#x, want point type %d", geomType, wkbPoint)
	}

	srid := binary.LittleEndian.Uint32(got[5:9])
	if srid != SRID4326 {
		t.Errorf("srid = %d, want %d", srid, SRID4326)
	}

	lon := math.Float64frombits(binary.LittleEndian.Uint64(got[9:17]))
	lat := math.Float64frombits(binary.LittleEndian.Uint64(got[17:25]))
	if lon != -0.1278 || lat != 51.5074 {
		t.Errorf("decoded (lon, lat) = (%v, %v), want (-0.1278, 51.5074)", lon, lat)
	}
}

func TestEncodeLineStringPointCount(t *testing.T) {
	enc := NewEncoder(64)
	coords := []float64{0, 0, 1, 1, 2, 2}
	got := enc.EncodeLineString(coords)

	geomType := binary.LittleEndian.Uint32(got[1:5]) & 0xff
	if geomType != wkbLineString {
		t.Errorf("geometry type = %d, want %d", geomType, wkbLineString)
	}

	numPoints := binary.LittleEndian.Uint32(got[9:13])
	if int(numPoints) != len(coords)/2 {
		t.Errorf("numPoints = %d, want %d", numPoints, len(coords)/2)
	}
}

func TestEncodeLineStringWithSRID(t *testing.T) {
	enc := NewEncoderWithSRID(64, SRID3857)
	if enc.SRID() != SRID3857 {
		t.Fatalf("SRID() = %d, want %d", enc.SRID(), SRID3857)
	}

	got := enc.EncodeLineString([]float64{0, 0, 10, 10})
	srid := binary.LittleEndian.Uint32(got[5:9])
	if srid != SRID3857 {
		t.Errorf("encoded srid = %d, want %d", srid, SRID3857)
	}
}

func TestEncoderResetReusesBuffer(t *testing.T) {
	enc := NewEncoder(16)
	enc.EncodePoint(1, 1)
	if len(enc.Bytes()) == 0 {
		t.Fatalf("Bytes() empty after EncodePoint")
	}
	enc.Reset()
	if len(enc.Bytes()) != 0 {
		t.Errorf("Bytes() after Reset() = %d bytes, want 0", len(enc.Bytes()))
	}
}
