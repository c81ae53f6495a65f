// Package progress tracks elapsed time, throughput, and ETA for
// long-running CLI operations (build, bench) driving the cache and
// pointstorage packages.
package progress

import (
	"fmt"
	"time"
)

// Tracker tracks progress for a long-running operation with a known
// total item count.
type Tracker struct {
	total       int64
	startTime   time.Time
	description string
}

// NewTracker creates a tracker for an operation expected to process
// total items.
func NewTracker(total int64, description string) *Tracker {
	return &Tracker{
		total:       total,
		startTime:   time.Now(),
		description: description,
	}
}

// Snapshot holds progress information at a point in time.
type Snapshot struct {
	Current     int64
	Total       int64
	Percentage  float64
	Elapsed     time.Duration
	ETA         time.Duration
	Throughput  float64 // items per second
	Description string
}

// Calculate returns current progress metrics given the number of items
// processed so far.
func (t *Tracker) Calculate(current int64) Snapshot {
	elapsed := time.Since(t.startTime)

	var percentage float64
	var eta time.Duration
	if t.total > 0 && current > 0 {
		percentage = float64(current) / float64(t.total) * 100
		if percentage > 0 && percentage < 100 {
			itemsPerSecond := float64(current) / elapsed.Seconds()
			remaining := t.total - current
			if itemsPerSecond > 0 {
				eta = time.Duration(float64(remaining)/itemsPerSecond) * time.Second
			}
		}
	}

	var throughput float64
	if elapsed.Seconds() > 0 {
		throughput = float64(current) / elapsed.Seconds()
	}

	return Snapshot{
		Current:     current,
		Total:       t.total,
		Percentage:  percentage,
		Elapsed:     elapsed.Round(time.Second),
		ETA:         eta.Round(time.Second),
		Throughput:  throughput,
		Description: t.description,
	}
}

// FormatETA formats an ETA duration in a human-readable form.
func FormatETA(d time.Duration) string {
	if d <= 0 {
		return "calculating..."
	}

	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// FormatThroughput formats throughput as human-readable items/sec.
func FormatThroughput(itemsPerSec float64) string {
	if itemsPerSec >= 1_000_000 {
		return fmt.Sprintf("%.1fM/s", itemsPerSec/1_000_000)
	}
	if itemsPerSec >= 1_000 {
		return fmt.Sprintf("%.1fK/s", itemsPerSec/1_000)
	}
	return fmt.Sprintf("%.0f/s", itemsPerSec)
}

// FormatBytes formats a byte count in a human-readable form.
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
