package elem

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/paulmach/osm"

	"github.com/mapgen-tools/osmcache/internal/wkb"
)

// PointLookup is the minimal view of a pointstorage.Reader WayGeometry
// needs to resolve a way's node ids into coordinates. Kept as its own
// tiny interface so elem never imports pointstorage directly.
type PointLookup interface {
	GetPoint(id uint64) (lat, lon float64, ok bool)
}

// WayGeometry caches a way's resolved line geometry as EWKB, so a later
// pass can read it back without re-resolving every node coordinate.
type WayGeometry struct {
	ID  osm.WayID
	WKB []byte
}

// NewWayGeometry allocates a zero WayGeometry, used as ElementCache's
// decode factory.
func NewWayGeometry() *WayGeometry { return &WayGeometry{} }

// BuildWayGeometry resolves way's node ids against points and encodes
// the resulting line as EWKB. Nodes that can't be resolved are skipped;
// a way with fewer than two resolved points has no meaningful geometry.
func BuildWayGeometry(way *Way, points PointLookup, enc *wkb.Encoder) (*WayGeometry, error) {
	coords := make([]float64, 0, len(way.Nodes)*2)
	for _, id := range way.Nodes {
		lat, lon, ok := points.GetPoint(uint64(id))
		if !ok {
			continue
		}
		coords = append(coords, lon, lat)
	}
	if len(coords) < 4 {
		return nil, fmt.Errorf("way %d resolved fewer than 2 points", way.ID)
	}

	ewkb := enc.EncodeLineString(coords)
	buf := make([]byte, len(ewkb))
	copy(buf, ewkb)
	return &WayGeometry{ID: way.ID, WKB: buf}, nil
}

func (g *WayGeometry) Encode(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, int64(g.ID)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(g.WKB))); err != nil {
		return err
	}
	_, err := w.Write(g.WKB)
	return err
}

func (g *WayGeometry) Decode(r io.Reader) error {
	var id int64
	if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
		return err
	}
	g.ID = osm.WayID(id)

	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("read way %d geometry: %w", g.ID, err)
	}
	g.WKB = buf
	return nil
}
