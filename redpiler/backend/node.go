package backend

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/redpiler/block"
	"github.com/df-mc/redpiler/redpiler/graph"
)

// inlineLinks is the number of outgoing links stored inside a node table
// entry before spilling to the heap.
const inlineLinks = 7

// linkList is a small-buffer-optimized list of outgoing links.
type linkList struct {
	n      uint16
	inline [inlineLinks]graph.Link
	spill  []graph.Link
}

func (l *linkList) add(lk graph.Link) {
	if int(l.n) < inlineLinks {
		l.inline[l.n] = lk
	} else {
		l.spill = append(l.spill, lk)
	}
	l.n++
}

func (l *linkList) len() int { return int(l.n) }

func (l *linkList) at(i int) graph.Link {
	if i < inlineLinks {
		return l.inline[i]
	}
	return l.spill[i-inlineLinks]
}

// inputs tracks how many incoming links currently deliver each signal
// strength. Zero-strength deliveries are not counted; they cannot win.
type inputs [16]uint8

func (in *inputs) add(s uint8) {
	if s > 0 {
		in[s]++
	}
}

func (in *inputs) remove(s uint8) {
	if s > 0 {
		in[s]--
	}
}

// max returns the strongest strength currently delivered.
func (in *inputs) max() uint8 {
	for s := 15; s > 0; s-- {
		if in[s] > 0 {
			return uint8(s)
		}
	}
	return 0
}

// rnode is one entry of the compiled node table. The layout keeps the
// hot state and both input histograms in a single contiguous record.
type rnode struct {
	kind graph.Kind

	delay       uint8
	subtract    bool
	facingDiode bool
	farOverride int8
	pitch       uint8

	powered bool
	locked  bool
	pending bool
	dirty   bool
	output  uint8

	defaultIn inputs
	sideIn    inputs

	links linkList

	pos   cube.Pos
	isIO  bool
	world block.Block
}

// blockState reconstructs the world block for the node's current state.
func (n *rnode) blockState() (block.Block, bool) {
	switch b := n.world.(type) {
	case block.Repeater:
		b.Powered, b.Locked = n.powered, n.locked
		return b, true
	case block.Comparator:
		b.Powered, b.Power = n.output > 0, n.output
		return b, true
	case block.Torch:
		b.Lit = n.powered
		return b, true
	case block.Lamp:
		b.Lit = n.powered
		return b, true
	case block.Trapdoor:
		b.Open = n.powered
		return b, true
	case block.Button:
		b.Pressed = n.powered
		return b, true
	case block.Lever:
		b.Powered = n.powered
		return b, true
	case block.PressurePlate:
		b.Pressed = n.powered
		return b, true
	case block.NoteBlock:
		b.Powered = n.powered
		return b, true
	case block.RedstoneDust:
		b.Power = n.output
		return b, true
	}
	return nil, false
}
