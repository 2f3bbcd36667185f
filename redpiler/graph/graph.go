// Package graph holds the intermediate representation the redpiler
// lowers a world region into: a directed weighted multigraph of typed
// redstone nodes kept in dense, id-indexed arrays.
package graph

import (
	"github.com/brentp/intintmap"
	"github.com/df-mc/dragonfly/server/block/cube"
)

// NodeID is the stable dense index of a node within a graph. IDs stay
// valid across node removal until Compact rewrites them in one step.
type NodeID uint32

// NoNode is returned by lookups that find nothing.
const NoNode NodeID = ^NodeID(0)

// Kind identifies the behaviour of a node.
type Kind uint8

const (
	Repeater Kind = iota
	Comparator
	Torch
	Wire
	Lamp
	Trapdoor
	Button
	Lever
	PressurePlate
	NoteBlock
	Constant
)

// String ...
func (k Kind) String() string {
	switch k {
	case Repeater:
		return "repeater"
	case Comparator:
		return "comparator"
	case Torch:
		return "torch"
	case Wire:
		return "wire"
	case Lamp:
		return "lamp"
	case Trapdoor:
		return "trapdoor"
	case Button:
		return "button"
	case Lever:
		return "lever"
	case PressurePlate:
		return "pressure_plate"
	case NoteBlock:
		return "note_block"
	case Constant:
		return "constant"
	}
	return "unknown"
}

// LinkKind distinguishes where a signal arrives at its sink.
type LinkKind uint8

const (
	// LinkDefault carries signal to the back input of a component.
	LinkDefault LinkKind = iota
	// LinkSide carries signal to the side input of a comparator or the
	// lock input of a repeater.
	LinkSide
)

// Link is one directed edge as seen from either endpoint: Node is the
// other end, Weight the signal strength lost along the wire path.
type Link struct {
	Node   NodeID
	Kind   LinkKind
	Weight uint8
}

// Node is a graph vertex representing one redstone component, or a
// synthesized constant without a world position.
type Node struct {
	Kind Kind

	// Pos is the originating block coordinate. HasPos is false for
	// constants synthesized by passes.
	Pos    cube.Pos
	HasPos bool

	// Delay is the repeater delay or the button release time in ticks.
	Delay uint8
	// Subtract selects comparator subtract mode.
	Subtract bool
	// FarOverride is the comparator far container reading, or -1.
	FarOverride int8
	// FacingDiode marks components whose output faces a repeater or
	// comparator, which raises their tick priority.
	FacingDiode bool

	// Powered, Locked and Output are the initial runtime state lifted
	// from the world.
	Powered bool
	Locked  bool
	Output  uint8

	// Pitch is the note block note.
	Pitch uint8

	// IsIO marks user-visible inputs and outputs kept by io-only
	// compiles. AnalogSource marks comparator outputs whose full 0-15
	// range is meaningful.
	IsIO         bool
	AnalogSource bool

	// Dead marks a tombstoned node awaiting compaction.
	Dead bool
}

// Graph is the mutable IR passed through the compile pipeline.
type Graph struct {
	nodes []Node
	out   [][]Link
	in    [][]Link

	pos *intintmap.Map
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{}
}

// Len returns the number of node slots, tombstones included.
func (g *Graph) Len() int { return len(g.nodes) }

// Live returns the number of non-tombstoned nodes.
func (g *Graph) Live() int {
	n := 0
	for i := range g.nodes {
		if !g.nodes[i].Dead {
			n++
		}
	}
	return n
}

// AddNode appends a node and returns its id.
func (g *Graph) AddNode(n Node) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	if g.pos != nil && n.HasPos {
		g.pos.Put(packPos(n.Pos), int64(id))
	}
	return id
}

// Node returns a pointer into the node table. The pointer is valid until
// the next AddNode or Compact.
func (g *Graph) Node(id NodeID) *Node {
	return &g.nodes[id]
}

// AddLink inserts a directed edge src → dst. Multi-edges are permitted;
// DedupLinks collapses them.
func (g *Graph) AddLink(src, dst NodeID, kind LinkKind, weight uint8) {
	g.out[src] = append(g.out[src], Link{Node: dst, Kind: kind, Weight: weight})
	g.in[dst] = append(g.in[dst], Link{Node: src, Kind: kind, Weight: weight})
}

// RemoveLink removes one edge matching (src, dst, kind, weight) exactly.
// It reports whether an edge was removed.
func (g *Graph) RemoveLink(src, dst NodeID, kind LinkKind, weight uint8) bool {
	if !removeOne(&g.out[src], Link{Node: dst, Kind: kind, Weight: weight}) {
		return false
	}
	removeOne(&g.in[dst], Link{Node: src, Kind: kind, Weight: weight})
	return true
}

func removeOne(links *[]Link, l Link) bool {
	for i, c := range *links {
		if c == l {
			*links = append((*links)[:i], (*links)[i+1:]...)
			return true
		}
	}
	return false
}

// Outgoing returns the edges leaving id. Link.Node is the sink.
func (g *Graph) Outgoing(id NodeID) []Link { return g.out[id] }

// Incoming returns the edges entering id. Link.Node is the source.
func (g *Graph) Incoming(id NodeID) []Link { return g.in[id] }

// SetOutgoing replaces the outgoing edge list of id, rebuilding the
// incoming mirrors of the affected sinks.
func (g *Graph) SetOutgoing(id NodeID, links []Link) {
	for _, l := range g.out[id] {
		removeOne(&g.in[l.Node], Link{Node: id, Kind: l.Kind, Weight: l.Weight})
	}
	g.out[id] = links
	for _, l := range links {
		g.in[l.Node] = append(g.in[l.Node], Link{Node: id, Kind: l.Kind, Weight: l.Weight})
	}
}

// RemoveNode tombstones a node and detaches all its edges. The id of
// every other node stays valid until Compact.
func (g *Graph) RemoveNode(id NodeID) {
	n := &g.nodes[id]
	if n.Dead {
		return
	}
	for _, l := range g.out[id] {
		removeOne(&g.in[l.Node], Link{Node: id, Kind: l.Kind, Weight: l.Weight})
	}
	for _, l := range g.in[id] {
		removeOne(&g.out[l.Node], Link{Node: id, Kind: l.Kind, Weight: l.Weight})
	}
	g.out[id] = nil
	g.in[id] = nil
	if g.pos != nil && n.HasPos {
		g.pos.Del(packPos(n.Pos))
	}
	n.Dead = true
}

// Redirect moves every outgoing edge of old onto new and tombstones old.
// Incoming edges of old are dropped with it.
func (g *Graph) Redirect(old, new NodeID) {
	moved := g.out[old]
	g.out[old] = nil
	for _, l := range moved {
		removeOne(&g.in[l.Node], Link{Node: old, Kind: l.Kind, Weight: l.Weight})
		g.AddLink(new, l.Node, l.Kind, l.Weight)
	}
	g.RemoveNode(old)
}

// NodesByKind returns the live ids of the kind in id order.
func (g *Graph) NodesByKind(kind Kind) []NodeID {
	var ids []NodeID
	for i := range g.nodes {
		if !g.nodes[i].Dead && g.nodes[i].Kind == kind {
			ids = append(ids, NodeID(i))
		}
	}
	return ids
}

// Nodes calls f for every live node in id order.
func (g *Graph) Nodes(f func(id NodeID, n *Node)) {
	for i := range g.nodes {
		if !g.nodes[i].Dead {
			f(NodeID(i), &g.nodes[i])
		}
	}
}

// Compact drops tombstones and renumbers the surviving nodes densely,
// rewriting every stored link target in the same step. It returns the
// old-to-new id mapping, with NoNode for removed ids.
func (g *Graph) Compact() []NodeID {
	remap := make([]NodeID, len(g.nodes))
	next := NodeID(0)
	for i := range g.nodes {
		if g.nodes[i].Dead {
			remap[i] = NoNode
			continue
		}
		remap[i] = next
		next++
	}
	nodes := make([]Node, 0, next)
	out := make([][]Link, 0, next)
	in := make([][]Link, 0, next)
	for i := range g.nodes {
		if remap[i] == NoNode {
			continue
		}
		nodes = append(nodes, g.nodes[i])
		out = append(out, remapLinks(g.out[i], remap))
		in = append(in, remapLinks(g.in[i], remap))
	}
	g.nodes, g.out, g.in = nodes, out, in
	if g.pos != nil {
		g.IndexPositions()
	}
	return remap
}

func remapLinks(links []Link, remap []NodeID) []Link {
	kept := links[:0]
	for _, l := range links {
		if to := remap[l.Node]; to != NoNode {
			l.Node = to
			kept = append(kept, l)
		}
	}
	return kept
}

// IndexPositions rebuilds the position index used by NodeAt. Once built,
// the index is kept up to date by AddNode, RemoveNode and Compact until
// DropPositionIndex releases it.
func (g *Graph) IndexPositions() {
	g.pos = intintmap.New(len(g.nodes)*2+16, 0.6)
	for i := range g.nodes {
		if !g.nodes[i].Dead && g.nodes[i].HasPos {
			g.pos.Put(packPos(g.nodes[i].Pos), int64(i))
		}
	}
}

// DropPositionIndex releases the position index.
func (g *Graph) DropPositionIndex() { g.pos = nil }

// NodeAt returns the live node at the world position, or NoNode.
func (g *Graph) NodeAt(pos cube.Pos) NodeID {
	if g.pos == nil {
		return NoNode
	}
	v, ok := g.pos.Get(packPos(pos))
	if !ok {
		return NoNode
	}
	id := NodeID(v)
	if g.nodes[id].Dead {
		return NoNode
	}
	return id
}

// packPos packs a block coordinate into a single map key. 26 bits per
// horizontal axis and 12 for the vertical cover every position a world
// can hand the compiler.
func packPos(pos cube.Pos) int64 {
	x := int64(pos.X()) & 0x3FFFFFF
	z := int64(pos.Z()) & 0x3FFFFFF
	y := int64(pos.Y()) & 0xFFF
	return x<<38 | z<<12 | y
}
