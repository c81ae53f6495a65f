// Package elem provides the concrete OSM element payload types that
// exercise cache.ElementCache's codec contract: Node, Way, Relation and
// WayGeometry. The cache package itself stays payload-agnostic; this
// package is one concrete choice of "what to put in it", built on
// github.com/paulmach/osm's element and tag types the way the rest of
// the donor codebase does.
package elem

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/paulmach/osm"
)

// Codec is the encode/decode contract cache.ElementCache[T] requires of
// its payload type (spec §6, "payload codec").
type Codec interface {
	Encode(w io.Writer) error
	Decode(r io.Reader) error
}

func writeTags(w io.Writer, tags osm.Tags) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(tags))); err != nil {
		return err
	}
	for _, tag := range tags {
		if err := writeString(w, tag.Key); err != nil {
			return err
		}
		if err := writeString(w, tag.Value); err != nil {
			return err
		}
	}
	return nil
}

func readTags(r io.Reader) (osm.Tags, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	tags := make(osm.Tags, n)
	for i := range tags {
		k, err := readString(r)
		if err != nil {
			return nil, err
		}
		v, err := readString(r)
		if err != nil {
			return nil, err
		}
		tags[i] = osm.Tag{Key: k, Value: v}
	}
	return tags, nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("read string of %d bytes: %w", n, err)
	}
	return string(buf), nil
}
