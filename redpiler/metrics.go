package redpiler

import (
	"sync"
	"time"
)

// Metrics tracks lifecycle counters for observability. All methods are
// safe on a nil receiver.
type Metrics struct {
	mu sync.Mutex

	compiles     uint64
	nodes        uint64
	compileTime  time.Duration
	resets       uint64
	ticksRetired uint64
	flushes      uint64
}

// NewMetrics creates an empty metrics registry.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// AddCompile records a successful compilation.
func (m *Metrics) AddCompile(nodes int, took time.Duration) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.compiles++
	m.nodes += uint64(nodes)
	m.compileTime += took
	m.mu.Unlock()
}

// AddReset records a reset and the ticks the compilation retired.
func (m *Metrics) AddReset(ticks uint64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.resets++
	m.ticksRetired += ticks
	m.mu.Unlock()
}

// AddFlush records one released batch of world writes.
func (m *Metrics) AddFlush() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.flushes++
	m.mu.Unlock()
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Compiles     uint64
	Nodes        uint64
	CompileTime  time.Duration
	Resets       uint64
	TicksRetired uint64
	Flushes      uint64
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Compiles:     m.compiles,
		Nodes:        m.nodes,
		CompileTime:  m.compileTime,
		Resets:       m.resets,
		TicksRetired: m.ticksRetired,
		Flushes:      m.flushes,
	}
}
