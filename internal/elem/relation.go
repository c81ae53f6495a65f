package elem

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/paulmach/osm"
)

// Relation is the payload cached for an OSM relation: its id, ordered
// members, and tags.
type Relation struct {
	ID      osm.RelationID
	Members []osm.Member
	Tags    osm.Tags
}

// NewRelation allocates a zero Relation, used as ElementCache's decode
// factory.
func NewRelation() *Relation { return &Relation{} }

func (rel *Relation) Encode(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, int64(rel.ID)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(rel.Members))); err != nil {
		return err
	}
	for _, m := range rel.Members {
		if err := writeString(w, string(m.Type)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, int64(m.Ref)); err != nil {
			return err
		}
		if err := writeString(w, m.Role); err != nil {
			return err
		}
	}
	return writeTags(w, rel.Tags)
}

func (rel *Relation) Decode(r io.Reader) error {
	var id int64
	if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
		return err
	}
	rel.ID = osm.RelationID(id)

	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return err
	}
	members := make([]osm.Member, n)
	for i := range members {
		typ, err := readString(r)
		if err != nil {
			return err
		}
		var ref int64
		if err := binary.Read(r, binary.LittleEndian, &ref); err != nil {
			return err
		}
		role, err := readString(r)
		if err != nil {
			return err
		}
		members[i] = osm.Member{Type: osm.Type(typ), Ref: ref, Role: role}
	}
	rel.Members = members

	tags, err := readTags(r)
	if err != nil {
		return fmt.Errorf("decode relation %d tags: %w", rel.ID, err)
	}
	rel.Tags = tags
	return nil
}
