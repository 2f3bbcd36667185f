package backend

import (
	"github.com/df-mc/redpiler/redpiler/graph"
)

// setOutput applies a node's new output strength and synchronously
// updates every sink whose delivered input changed. A node's stored
// output always reflects what its neighbours last observed.
func (b *Backend) setOutput(id graph.NodeID, output uint8) {
	n := &b.nodes[id]
	old := n.output
	if old == output {
		return
	}
	n.output = output
	for i := 0; i < n.links.len(); i++ {
		l := n.links.at(i)
		oldS := saturatingSub(old, l.Weight)
		newS := saturatingSub(output, l.Weight)
		if oldS == newS {
			continue
		}
		hist := b.histogram(l)
		hist.remove(oldS)
		hist.add(newS)
		b.updateNode(l.Node)
	}
}

// updateNode recomputes a node's reaction to an input change, scheduling
// a tick or applying the change instantly per its kind's contract.
func (b *Backend) updateNode(id graph.NodeID) {
	n := &b.nodes[id]
	switch n.kind {
	case graph.Repeater:
		// Lock state follows the side input instantly, without a tick.
		locked := n.sideIn.max() > 0
		if locked != n.locked {
			n.locked = locked
			b.markDirty(id)
		}
		if n.locked || n.pending {
			return
		}
		shouldPower := n.defaultIn.max() > 0
		if shouldPower == n.powered {
			return
		}
		p := High
		if n.facingDiode {
			p = Highest
		} else if !shouldPower {
			p = Higher
		}
		b.schedule(id, uint(n.delay), p)
	case graph.Comparator:
		if n.pending {
			return
		}
		if b.comparatorOutput(n) == n.output {
			return
		}
		p := Normal
		if n.facingDiode {
			p = High
		}
		b.schedule(id, 1, p)
	case graph.Torch:
		if n.pending {
			return
		}
		lit := n.defaultIn.max() == 0
		if lit != n.powered {
			b.schedule(id, 1, Normal)
		}
	case graph.Lamp:
		powered := n.defaultIn.max() > 0
		if powered && !n.powered {
			// Lighting is instant.
			n.powered = true
			b.markDirty(id)
		} else if !powered && n.powered && !n.pending {
			// Unlighting lags two ticks.
			b.schedule(id, 2, Normal)
		}
	case graph.Trapdoor:
		powered := n.defaultIn.max() > 0
		if powered != n.powered {
			n.powered = powered
			b.markDirty(id)
		}
	case graph.NoteBlock:
		powered := n.defaultIn.max() > 0
		if powered == n.powered {
			return
		}
		n.powered = powered
		b.markDirty(id)
		if powered {
			b.notes = append(b.notes, noteEvent{pos: n.pos, pitch: n.pitch})
		}
	case graph.Wire:
		strength := n.defaultIn.max()
		if strength != n.output {
			n.output = strength
			b.markDirty(id)
		}
	}
	// Levers, buttons, pressure plates and constants have no inputs.
}

// tickNode dispatches a scheduled tick. The pending bit is cleared
// before the handler runs so that handlers may reschedule.
func (b *Backend) tickNode(id graph.NodeID) {
	n := &b.nodes[id]
	n.pending = false
	switch n.kind {
	case graph.Repeater:
		if n.locked {
			return
		}
		input := n.defaultIn.max() > 0
		if n.powered && !input {
			n.powered = false
			b.markDirty(id)
			b.setOutput(id, 0)
		} else if !n.powered {
			// A repeater powers regardless of whether the input pulse
			// still holds: short pulses are caught and stretched.
			n.powered = true
			b.markDirty(id)
			b.setOutput(id, 15)
			if !input {
				b.schedule(id, uint(n.delay), Higher)
			}
		}
	case graph.Comparator:
		output := b.comparatorOutput(n)
		if output != n.output {
			n.powered = output > 0
			b.markDirty(id)
			b.setOutput(id, output)
		}
	case graph.Torch:
		lit := n.defaultIn.max() == 0
		if lit != n.powered {
			n.powered = lit
			b.markDirty(id)
			b.setOutput(id, strengthOf(lit))
		}
	case graph.Lamp:
		if n.defaultIn.max() == 0 && n.powered {
			n.powered = false
			b.markDirty(id)
		}
	case graph.Button:
		if n.powered {
			n.powered = false
			b.markDirty(id)
			b.setOutput(id, 0)
		}
	}
}

// comparatorOutput computes the output for the node's current inputs,
// honouring the far override while the direct input is below full
// strength.
func (b *Backend) comparatorOutput(n *rnode) uint8 {
	input := n.defaultIn.max()
	if input < 15 && n.farOverride >= 0 {
		input = uint8(n.farOverride)
	}
	side := n.sideIn.max()
	if n.subtract {
		return saturatingSub(input, side)
	}
	if input >= side {
		return input
	}
	return 0
}
