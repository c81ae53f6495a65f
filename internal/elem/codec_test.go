package elem

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/paulmach/osm"
)

func TestNodeEncodeDecodeRoundTrip(t *testing.T) {
	n := &Node{
		ID:  osm.NodeID(42),
		Lat: 51.5074,
		Lon: -0.1278,
		Tags: osm.Tags{
			{Key: "amenity", Value: "cafe"},
			{Key: "name", Value: "Corner Cafe"},
		},
	}

	var buf bytes.Buffer
	if err := n.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got := NewNode()
	if err := got.Decode(&buf); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.ID != n.ID || got.Lat != n.Lat || got.Lon != n.Lon {
		t.Errorf("Decode() = %+v, want %+v", got, n)
	}
	if len(got.Tags) != len(n.Tags) {
		t.Fatalf("Decode() tags = %v, want %v", got.Tags, n.Tags)
	}
	for i, tag := range n.Tags {
		if got.Tags[i] != tag {
			t.Errorf("Decode() tags[%d] = %v, want %v", i, got.Tags[i], tag)
		}
	}
}

func TestWayEncodeDecodeRoundTrip(t *testing.T) {
	w := &Way{
		ID:    osm.WayID(7),
		Nodes: []osm.NodeID{1, 2, 3, 4},
		Tags:  osm.Tags{{Key: "highway", Value: "residential"}},
	}

	var buf bytes.Buffer
	if err := w.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got := NewWay()
	if err := got.Decode(&buf); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.ID != w.ID {
		t.Errorf("Decode() ID = %v, want %v", got.ID, w.ID)
	}
	if len(got.Nodes) != len(w.Nodes) {
		t.Fatalf("Decode() nodes = %v, want %v", got.Nodes, w.Nodes)
	}
	for i, id := range w.Nodes {
		if got.Nodes[i] != id {
			t.Errorf("Decode() nodes[%d] = %v, want %v", i, got.Nodes[i], id)
		}
	}
}

func TestRelationEncodeDecodeRoundTrip(t *testing.T) {
	r := &Relation{
		ID: osm.RelationID(99),
		Members: []osm.Member{
			{Type: osm.TypeWay, Ref: 7, Role: "outer"},
			{Type: osm.TypeWay, Ref: 8, Role: "inner"},
			{Type: osm.TypeNode, Ref: 1, Role: "label"},
		},
		Tags: osm.Tags{{Key: "type", Value: "multipolygon"}},
	}

	var buf bytes.Buffer
	if err := r.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got := NewRelation()
	if err := got.Decode(&buf); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.ID != r.ID {
		t.Errorf("Decode() ID = %v, want %v", got.ID, r.ID)
	}
	if len(got.Members) != len(r.Members) {
		t.Fatalf("Decode() members = %v, want %v", got.Members, r.Members)
	}
	for i, m := range r.Members {
		if !reflect.DeepEqual(got.Members[i], m) {
			t.Errorf("Decode() members[%d] = %v, want %v", i, got.Members[i], m)
		}
	}
}

type fakePoints map[uint64][2]float64

func (f fakePoints) GetPoint(id uint64) (lat, lon float64, ok bool) {
	p, ok := f[id]
	return p[0], p[1], ok
}

func TestBuildWayGeometryResolvesKnownPoints(t *testing.T) {
	points := fakePoints{
		1: {51.50, -0.12},
		2: {51.51, -0.13},
		3: {51.52, -0.14},
	}
	way := &Way{ID: osm.WayID(1), Nodes: []osm.NodeID{1, 2, 3}}

	enc := newTestEncoder()
	geom, err := BuildWayGeometry(way, points, enc)
	if err != nil {
		t.Fatalf("BuildWayGeometry: %v", err)
	}
	if geom.ID != way.ID {
		t.Errorf("geom.ID = %v, want %v", geom.ID, way.ID)
	}
	if len(geom.WKB) == 0 {
		t.Errorf("geom.WKB is empty")
	}

	var buf bytes.Buffer
	if err := geom.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got := NewWayGeometry()
	if err := got.Decode(&buf); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.ID != geom.ID || !bytes.Equal(got.WKB, geom.WKB) {
		t.Errorf("Decode() = %+v, want %+v", got, geom)
	}
}

func TestBuildWayGeometryFailsWithFewerThanTwoResolvedPoints(t *testing.T) {
	points := fakePoints{1: {51.50, -0.12}}
	way := &Way{ID: osm.WayID(2), Nodes: []osm.NodeID{1, 99}}

	if _, err := BuildWayGeometry(way, points, newTestEncoder()); err == nil {
		t.Errorf("BuildWayGeometry with 1 resolved point: want error, got nil")
	}
}
