package elem

import (
	"encoding/binary"
	"io"

	"github.com/paulmach/osm"
)

// Node is the payload cached for an OSM node: its id, coordinates, and
// tags. Coordinates are kept as float64 here (the ElementCache payload
// is the full-precision node); the 1e7 fixed-point encoding in
// internal/pointstorage only applies to the coordinate-only storages.
type Node struct {
	ID   osm.NodeID
	Lat  float64
	Lon  float64
	Tags osm.Tags
}

// NewNode allocates a zero Node, used as ElementCache's decode factory.
func NewNode() *Node { return &Node{} }

func (n *Node) Encode(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, int64(n.ID)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, n.Lat); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, n.Lon); err != nil {
		return err
	}
	return writeTags(w, n.Tags)
}

func (n *Node) Decode(r io.Reader) error {
	var id int64
	if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
		return err
	}
	n.ID = osm.NodeID(id)
	if err := binary.Read(r, binary.LittleEndian, &n.Lat); err != nil {
		return err
	}
	if err := binary.Read(r, binary.LittleEndian, &n.Lon); err != nil {
		return err
	}
	tags, err := readTags(r)
	if err != nil {
		return err
	}
	n.Tags = tags
	return nil
}
