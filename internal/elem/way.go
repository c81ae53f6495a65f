package elem

import (
	"encoding/binary"
	"io"

	"github.com/paulmach/osm"
)

// Way is the payload cached for an OSM way: its id, ordered member node
// ids, and tags. Node coordinates are resolved separately against a
// pointstorage.Reader when building geometry (see WayGeometry).
type Way struct {
	ID    osm.WayID
	Nodes []osm.NodeID
	Tags  osm.Tags
}

// NewWay allocates a zero Way, used as ElementCache's decode factory.
func NewWay() *Way { return &Way{} }

func (w *Way) Encode(out io.Writer) error {
	if err := binary.Write(out, binary.LittleEndian, int64(w.ID)); err != nil {
		return err
	}
	if err := binary.Write(out, binary.LittleEndian, uint32(len(w.Nodes))); err != nil {
		return err
	}
	for _, id := range w.Nodes {
		if err := binary.Write(out, binary.LittleEndian, int64(id)); err != nil {
			return err
		}
	}
	return writeTags(out, w.Tags)
}

func (w *Way) Decode(r io.Reader) error {
	var id int64
	if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
		return err
	}
	w.ID = osm.WayID(id)

	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return err
	}
	nodes := make([]osm.NodeID, n)
	for i := range nodes {
		var nodeID int64
		if err := binary.Read(r, binary.LittleEndian, &nodeID); err != nil {
			return err
		}
		nodes[i] = osm.NodeID(nodeID)
	}
	w.Nodes = nodes

	tags, err := readTags(r)
	if err != nil {
		return err
	}
	w.Tags = tags
	return nil
}
