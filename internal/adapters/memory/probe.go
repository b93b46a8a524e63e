// Package memory reports process memory usage.
package memory

import "runtime"

// Probe implements ports.MemoryProbe using the Go runtime statistics.
type Probe struct{}

// NewProbe creates a new Probe.
func NewProbe() *Probe {
	return &Probe{}
}

// HeapInUse returns the bytes in in-use heap spans.
func (p *Probe) HeapInUse() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.HeapInuse
}
