package backend

import (
	"errors"

	"github.com/df-mc/redpiler/redpiler/graph"
)

// Priority orders ticks scheduled for the same slot. Highest drains
// first.
type Priority uint8

const (
	Highest Priority = iota
	Higher
	High
	Normal

	priorityCount = 4
)

// String ...
func (p Priority) String() string {
	switch p {
	case Highest:
		return "highest"
	case Higher:
		return "higher"
	case High:
		return "high"
	case Normal:
		return "normal"
	}
	return "unknown"
}

// Horizon is the number of future slots the scheduler can target. It
// exceeds the longest delay any component schedules (a wooden button's
// 15 ticks).
const Horizon = 16

// ErrSchedulerOverflow is reported when a tick targets a slot beyond the
// horizon. It is fatal to the running simulation.
var ErrSchedulerOverflow = errors.New("redpiler: tick scheduled beyond horizon")

// scheduler is a rotating ring of slots, each holding four FIFO queues
// keyed by priority. Draining a slot visits queues from Highest to
// Normal, each in insertion order.
type scheduler struct {
	slots [Horizon][priorityCount][]graph.NodeID
	now   uint64
}

// schedule enqueues a node tick delay slots in the future. A delay of
// zero is lifted to one: handlers always target future slots, so a
// drain never grows the slot it is draining.
func (s *scheduler) schedule(id graph.NodeID, delay uint, p Priority) error {
	if delay >= Horizon {
		return ErrSchedulerOverflow
	}
	if delay == 0 {
		delay = 1
	}
	slot := (s.now + uint64(delay)) % Horizon
	s.slots[slot][p] = append(s.slots[slot][p], id)
	return nil
}

// advance drains the current slot in (priority, insertion) order,
// calling tick for each entry, then moves to the next slot.
func (s *scheduler) advance(tick func(id graph.NodeID)) {
	slot := s.now % Horizon
	for p := 0; p < priorityCount; p++ {
		queue := s.slots[slot][p]
		s.slots[slot][p] = nil
		for _, id := range queue {
			tick(id)
		}
	}
	s.now++
}

// reset drops all queued ticks.
func (s *scheduler) reset() {
	for i := range s.slots {
		for p := range s.slots[i] {
			s.slots[i][p] = nil
		}
	}
	s.now = 0
}
