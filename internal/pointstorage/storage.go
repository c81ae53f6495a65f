package pointstorage

import "fmt"

// Kind selects which of the three point-storage strategies to use
// (spec §4.3's "the caller picks one strategy per generator pass").
type Kind int

const (
	// Raw is the dense on-disk array, RawFilePointStorage (spec §4.3.1).
	Raw Kind = iota
	// Mem is the dense in-RAM array, RawMemPointStorage (spec §4.3.2).
	Mem
	// Map is the sparse hash map, MapFilePointStorage (spec §4.3.3).
	Map
)

func (k Kind) String() string {
	switch k {
	case Raw:
		return "raw"
	case Mem:
		return "mem"
	case Map:
		return "map"
	default:
		return fmt.Sprintf("pointstorage.Kind(%d)", int(k))
	}
}

// ParseKind maps a CLI flag value to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "raw":
		return Raw, nil
	case "mem":
		return Mem, nil
	case "map":
		return Map, nil
	default:
		return 0, fmt.Errorf("unknown point storage kind %q (want raw, mem, or map)", s)
	}
}

// Counter tracks the monotonic processed-point count every write-mode
// strategy exposes (spec §4.3's "processed-point counter").
type Counter struct {
	processed uint64
}

// IncProcessedPoint increments the counter. Called once per successful
// AddPoint.
func (c *Counter) IncProcessedPoint() { c.processed++ }

// ProcessedPoint returns the number of points written so far.
func (c *Counter) ProcessedPoint() uint64 { return c.processed }

// Writer is the common write-mode surface across all three strategies.
type Writer interface {
	AddPoint(id uint64, lat, lon float64)
	ProcessedPoint() uint64
	Close() error
}

// Reader is the common read-mode surface across all three strategies.
type Reader interface {
	GetPoint(id uint64) (lat, lon float64, ok bool)
	Close() error
}

// OpenWriter opens path for writing under the given strategy. Each
// strategy interprets path differently (RawMem treats it as a snapshot
// file written on Close, MapFile appends ".short").
func OpenWriter(kind Kind, path string) (Writer, error) {
	switch kind {
	case Raw:
		return NewRawFileWriter(path)
	case Mem:
		return NewRawMemWriter(path)
	case Map:
		return NewMapFileWriter(path)
	default:
		return nil, fmt.Errorf("unknown point storage kind %v", kind)
	}
}

// OpenReader opens path for reading under the given strategy.
func OpenReader(kind Kind, path string) (Reader, error) {
	switch kind {
	case Raw:
		return NewRawFileReader(path)
	case Mem:
		return NewRawMemReader(path)
	case Map:
		return NewMapFileReader(path)
	default:
		return nil, fmt.Errorf("unknown point storage kind %v", kind)
	}
}
