package world

import (
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/redpiler/block"
)

// BufferedSink wraps a Sink and coalesces block writes per position,
// releasing them at a bounded rate so that an unlimited-speed simulation
// does not flood the world with intermediate states.
type BufferedSink struct {
	sink Sink

	interval time.Duration
	last     time.Time

	pending map[cube.Pos]block.Block
	order   []cube.Pos
}

// NewBufferedSink creates a BufferedSink releasing writes at most
// sendRate times per second. A sendRate of 0 or lower releases every
// flush attempt.
func NewBufferedSink(sink Sink, sendRate int) *BufferedSink {
	s := &BufferedSink{sink: sink, pending: make(map[cube.Pos]block.Block)}
	s.SetSendRate(sendRate)
	return s
}

// SetSendRate changes the maximum number of releases per second.
func (s *BufferedSink) SetSendRate(sendRate int) {
	if sendRate <= 0 {
		s.interval = 0
		return
	}
	s.interval = time.Second / time.Duration(sendRate)
}

// SetBlock records a block change. Later writes to the same position
// replace earlier ones that have not been released yet.
func (s *BufferedSink) SetBlock(pos cube.Pos, b block.Block) {
	if _, ok := s.pending[pos]; !ok {
		s.order = append(s.order, pos)
	}
	s.pending[pos] = b
}

// Flush releases pending writes if the send rate allows it.
func (s *BufferedSink) Flush() {
	s.TryFlush(time.Now())
}

// TryFlush releases pending writes if at least one send interval has
// passed since the previous release.
func (s *BufferedSink) TryFlush(now time.Time) bool {
	if len(s.pending) == 0 {
		return false
	}
	if s.interval > 0 && now.Sub(s.last) < s.interval {
		return false
	}
	s.last = now
	s.release()
	return true
}

// FlushAll releases pending writes unconditionally.
func (s *BufferedSink) FlushAll() {
	if len(s.pending) == 0 {
		return
	}
	s.release()
}

func (s *BufferedSink) release() {
	for _, pos := range s.order {
		b, ok := s.pending[pos]
		if !ok {
			continue
		}
		s.sink.SetBlock(pos, b)
	}
	clear(s.pending)
	s.order = s.order[:0]
	s.sink.Flush()
}

// PlayNote forwards note plays when the wrapped sink supports them.
// Notes are not buffered: their timing is the observable behaviour.
func (s *BufferedSink) PlayNote(pos cube.Pos, pitch uint8) {
	if np, ok := s.sink.(NotePlayer); ok {
		np.PlayNote(pos, pitch)
	}
}
