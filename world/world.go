// Package world defines the narrow world access surface the redpiler
// core uses: a read-only view consumed at compile time and a sink that
// receives block state changes at runtime. The surrounding server owns
// chunk storage, networking and everything else.
package world

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/redpiler/block"
)

// View provides read access to a region of the world while a circuit is
// being compiled. Implementations must stay immutable for the duration
// of a compile.
type View interface {
	// Block returns the block state at the position. Positions outside
	// the view bounds return Air.
	Block(pos cube.Pos) block.Block
	// BlockEntity returns the decoded block entity data at the
	// position, if any.
	BlockEntity(pos cube.Pos) (map[string]any, bool)
	// Bounds returns the inclusive min and max corners of the region.
	Bounds() (min, max cube.Pos)
}

// Sink receives block state changes produced by the running simulation.
type Sink interface {
	// SetBlock replaces the block state at the position.
	SetBlock(pos cube.Pos, b block.Block)
	// Flush signals that a batch of changes is complete.
	Flush()
}

// NotePlayer is an optional Sink extension. Sinks that implement it
// receive note block notes on rising edges; others only see the block
// state writes.
type NotePlayer interface {
	PlayNote(pos cube.Pos, pitch uint8)
}
