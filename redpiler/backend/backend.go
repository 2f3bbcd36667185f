// Package backend executes a finalized redstone graph. The node table
// is laid out for cache residency: one contiguous record per node with
// inline link lists, driven by a four-priority rotating tick scheduler.
package backend

import (
	"log/slog"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/redpiler/redpiler/graph"
	"github.com/df-mc/redpiler/world"
)

// Action is a block interaction routed into the backend.
type Action uint8

const (
	// Press pushes a button down or steps onto a pressure plate.
	Press Action = iota
	// Release steps off a pressure plate.
	Release
	// Flick toggles a lever.
	Flick
)

// Config configures a Backend.
type Config struct {
	// Log is used for runtime diagnostics. Nil falls back to
	// slog.Default().
	Log *slog.Logger
	// IOOnly restricts world writes to user-visible inputs and outputs.
	IOOnly bool
}

// Backend drives a compiled graph through game ticks.
type Backend struct {
	log    *slog.Logger
	ioOnly bool

	nodes []rnode
	sched scheduler

	byPos map[cube.Pos]graph.NodeID

	dirty []graph.NodeID
	notes []noteEvent

	ticks uint64
	fail  error
}

type noteEvent struct {
	pos   cube.Pos
	pitch uint8
}

// New lays the graph out into the node table. The view supplies the
// block templates used to reconstruct world states on flush; it is not
// retained.
func New(g *graph.Graph, view world.View, cfg Config) *Backend {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	b := &Backend{
		log:    cfg.Log,
		ioOnly: cfg.IOOnly,
		nodes:  make([]rnode, g.Len()),
		byPos:  make(map[cube.Pos]graph.NodeID, g.Len()),
	}
	g.Nodes(func(id graph.NodeID, n *graph.Node) {
		rn := &b.nodes[id]
		rn.kind = n.Kind
		rn.delay = n.Delay
		rn.subtract = n.Subtract
		rn.facingDiode = n.FacingDiode
		rn.farOverride = n.FarOverride
		rn.pitch = n.Pitch
		rn.powered = n.Powered
		rn.locked = n.Locked
		rn.output = n.Output
		rn.isIO = n.IsIO
		if n.HasPos {
			rn.pos = n.Pos
			rn.world = view.Block(n.Pos)
			b.byPos[n.Pos] = id
		}
		for _, l := range g.Outgoing(id) {
			rn.links.add(l)
		}
	})
	// Seed the input histograms from the initial outputs.
	for i := range b.nodes {
		src := &b.nodes[i]
		for j := 0; j < src.links.len(); j++ {
			l := src.links.at(j)
			b.histogram(l).add(saturatingSub(src.output, l.Weight))
		}
	}
	// Settle: a world edited while uncompiled may hold stale component
	// states. Updating every node once schedules whatever ticks are
	// needed to converge; an already idle circuit schedules nothing.
	for i := range b.nodes {
		b.updateNode(graph.NodeID(i))
	}
	return b
}

// Output returns the current output strength of a node.
func (b *Backend) Output(id graph.NodeID) uint8 {
	return b.nodes[id].output
}

func (b *Backend) histogram(l graph.Link) *inputs {
	t := &b.nodes[l.Node]
	if l.Kind == graph.LinkSide {
		return &t.sideIn
	}
	return &t.defaultIn
}

// Err returns the sticky fatal error of the simulation, if any. The
// driver resets the compilation when one appears.
func (b *Backend) Err() error { return b.fail }

// Ticks returns the number of game ticks advanced so far.
func (b *Backend) Ticks() uint64 { return b.ticks }

// Tick advances the simulation by one game tick, draining the current
// scheduler slot in priority order.
func (b *Backend) Tick() {
	b.sched.advance(b.tickNode)
	b.ticks++
}

// OnUse routes a block interaction to the node at pos. Unknown positions
// are ignored.
func (b *Backend) OnUse(pos cube.Pos, action Action) {
	id, ok := b.byPos[pos]
	if !ok {
		return
	}
	n := &b.nodes[id]
	switch n.kind {
	case graph.Lever:
		if action != Flick {
			return
		}
		n.powered = !n.powered
		b.markDirty(id)
		b.setOutput(id, strengthOf(n.powered))
	case graph.Button:
		if action != Press || n.powered {
			return
		}
		n.powered = true
		b.markDirty(id)
		b.setOutput(id, 15)
		b.schedule(id, uint(n.delay), Normal)
	case graph.PressurePlate:
		switch action {
		case Press:
			if !n.powered {
				n.powered = true
				b.markDirty(id)
				b.setOutput(id, 15)
			}
		case Release:
			if n.powered {
				n.powered = false
				b.markDirty(id)
				b.setOutput(id, 0)
			}
		}
	}
}

// Flush writes accumulated block state changes to the sink and clears
// the dirty set. Note plays are forwarded when the sink supports them.
func (b *Backend) Flush(sink world.Sink) {
	if len(b.dirty) == 0 && len(b.notes) == 0 {
		return
	}
	for _, id := range b.dirty {
		n := &b.nodes[id]
		n.dirty = false
		if b.ioOnly && !n.isIO {
			continue
		}
		if state, ok := n.blockState(); ok {
			sink.SetBlock(n.pos, state)
		}
	}
	b.dirty = b.dirty[:0]
	if np, ok := sink.(world.NotePlayer); ok {
		for _, note := range b.notes {
			np.PlayNote(note.pos, note.pitch)
		}
	}
	b.notes = b.notes[:0]
	sink.Flush()
}

// Reset drains no further ticks, flushes outstanding changes and, when
// writeAll is set, writes the final state of every positioned node.
func (b *Backend) Reset(sink world.Sink, writeAll bool) {
	b.sched.reset()
	b.Flush(sink)
	if !writeAll {
		return
	}
	for i := range b.nodes {
		n := &b.nodes[i]
		if n.world == nil || (b.ioOnly && !n.isIO) {
			continue
		}
		if state, ok := n.blockState(); ok {
			sink.SetBlock(n.pos, state)
		}
	}
	sink.Flush()
}

// Report describes the compiled state at one position.
type Report struct {
	ID           graph.NodeID
	Kind         graph.Kind
	Output       uint8
	Powered      bool
	Locked       bool
	Pending      bool
	DefaultInput uint8
	SideInput    uint8
	Links        int
}

// Inspect returns the compiled state at a position.
func (b *Backend) Inspect(pos cube.Pos) (Report, bool) {
	id, ok := b.byPos[pos]
	if !ok {
		return Report{}, false
	}
	n := &b.nodes[id]
	return Report{
		ID:           id,
		Kind:         n.kind,
		Output:       n.output,
		Powered:      n.powered,
		Locked:       n.locked,
		Pending:      n.pending,
		DefaultInput: n.defaultIn.max(),
		SideInput:    n.sideIn.max(),
		Links:        n.links.len(),
	}, true
}

// NodesByKind returns the ids of all nodes of the kind.
func (b *Backend) NodesByKind(kind graph.Kind) []graph.NodeID {
	var ids []graph.NodeID
	for i := range b.nodes {
		if b.nodes[i].kind == kind {
			ids = append(ids, graph.NodeID(i))
		}
	}
	return ids
}

// PendingTicks returns the number of nodes with a scheduled tick.
func (b *Backend) PendingTicks() int {
	n := 0
	for i := range b.nodes {
		if b.nodes[i].pending {
			n++
		}
	}
	return n
}

func (b *Backend) markDirty(id graph.NodeID) {
	n := &b.nodes[id]
	if n.dirty || n.world == nil {
		return
	}
	n.dirty = true
	b.dirty = append(b.dirty, id)
}

// schedule enqueues a node tick unless one is already pending. The
// at-most-one-pending invariant lives here, not with the callers.
func (b *Backend) schedule(id graph.NodeID, delay uint, p Priority) {
	n := &b.nodes[id]
	if n.pending {
		return
	}
	if err := b.sched.schedule(id, delay, p); err != nil {
		if b.fail == nil {
			b.fail = err
			b.log.Error("redpiler simulation failed", "err", err)
		}
		return
	}
	n.pending = true
}

func strengthOf(on bool) uint8 {
	if on {
		return 15
	}
	return 0
}

func saturatingSub(a, b uint8) uint8 {
	if a <= b {
		return 0
	}
	return a - b
}
