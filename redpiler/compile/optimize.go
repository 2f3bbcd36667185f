package compile

import (
	"encoding/binary"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/df-mc/redpiler/redpiler/graph"
	"github.com/segmentio/fasthash/fnv1a"
)

// analogRepeaters detects the 15-repeater analog transfer widget between
// two comparators and replaces it with a single analog edge, inserting a
// compare-mode comparator to preserve the widget's one tick of delay.
type analogRepeaters struct{}

// Name ...
func (analogRepeaters) Name() string { return "analog_repeaters" }

// Run ...
func (analogRepeaters) Run(g *graph.Graph, ctx *Context) error {
	matched := 0
	for _, c := range g.NodesByKind(graph.Comparator) {
		fan, sink, ok := matchAnalogFan(g, c)
		if !ok {
			continue
		}
		for _, r := range fan {
			g.RemoveNode(r)
		}
		shift := g.AddNode(graph.Node{
			Kind:         graph.Comparator,
			AnalogSource: true,
			FarOverride:  -1,
			FacingDiode:  true,
		})
		g.AddLink(c, shift, graph.LinkDefault, 0)
		g.AddLink(shift, sink, graph.LinkDefault, 0)
		matched++
	}
	if matched > 0 {
		ctx.Log.Debug("replaced analog repeater fans", "count", matched)
	}
	return nil
}

// matchAnalogFan checks whether comparator c feeds exactly 15 delay-1
// repeaters with default weights 0..14 that all feed one comparator with
// the mirrored weights 14..0.
func matchAnalogFan(g *graph.Graph, c graph.NodeID) ([]graph.NodeID, graph.NodeID, bool) {
	out := g.Outgoing(c)
	if len(out) != 15 {
		return nil, graph.NoNode, false
	}
	var fan [15]graph.NodeID
	var seen [15]bool
	sink := graph.NoNode
	for _, l := range out {
		r := g.Node(l.Node)
		if l.Kind != graph.LinkDefault || r.Kind != graph.Repeater || r.Delay != 1 || r.IsIO {
			return nil, graph.NoNode, false
		}
		if l.Weight > 14 || seen[l.Weight] {
			return nil, graph.NoNode, false
		}
		if len(g.Incoming(l.Node)) != 1 {
			return nil, graph.NoNode, false
		}
		rOut := g.Outgoing(l.Node)
		if len(rOut) != 1 || rOut[0].Kind != graph.LinkDefault || rOut[0].Weight != 14-l.Weight {
			return nil, graph.NoNode, false
		}
		if g.Node(rOut[0].Node).Kind != graph.Comparator {
			return nil, graph.NoNode, false
		}
		if sink == graph.NoNode {
			sink = rOut[0].Node
		} else if sink != rOut[0].Node {
			return nil, graph.NoNode, false
		}
		seen[l.Weight] = true
		fan[l.Weight] = l.Node
	}
	return fan[:], sink, true
}

// constantFold evaluates nodes whose inputs are all constants and
// replaces them with constants of the computed output.
type constantFold struct{}

// Name ...
func (constantFold) Name() string { return "constant_fold" }

// Run ...
func (constantFold) Run(g *graph.Graph, _ *Context) error {
	for {
		folded := 0
		g.Nodes(func(id graph.NodeID, n *graph.Node) {
			if n.IsIO || !foldableKind(n.Kind) {
				return
			}
			out, ok := constantOutput(g, id, n)
			if !ok {
				return
			}
			for _, l := range append([]graph.Link(nil), g.Incoming(id)...) {
				g.RemoveLink(l.Node, id, l.Kind, l.Weight)
			}
			n.Kind = graph.Constant
			n.Output = out
			n.Powered = out > 0
			folded++
		})
		if folded == 0 {
			return nil
		}
	}
}

func foldableKind(k graph.Kind) bool {
	return k == graph.Repeater || k == graph.Comparator || k == graph.Torch
}

// constantOutput evaluates a node against constant-only inputs.
func constantOutput(g *graph.Graph, id graph.NodeID, n *graph.Node) (uint8, bool) {
	var def, side uint8
	for _, l := range g.Incoming(id) {
		src := g.Node(l.Node)
		if src.Kind != graph.Constant {
			return 0, false
		}
		s := saturatingSub(src.Output, l.Weight)
		if l.Kind == graph.LinkSide {
			side = max(side, s)
		} else {
			def = max(def, s)
		}
	}
	switch n.Kind {
	case graph.Repeater:
		if side > 0 {
			// Locked forever: the repeater holds its current state.
			return n.Output, true
		}
		if def > 0 {
			return 15, true
		}
		return 0, true
	case graph.Comparator:
		input := def
		if input < 15 && n.FarOverride >= 0 {
			input = uint8(n.FarOverride)
		}
		if n.Subtract {
			return saturatingSub(input, side), true
		}
		if input >= side {
			return input, true
		}
		return 0, true
	case graph.Torch:
		if def > 0 {
			return 0, true
		}
		return 15, true
	}
	return 0, false
}

func saturatingSub(a, b uint8) uint8 {
	if a <= b {
		return 0
	}
	return a - b
}

// unreachableOutput trims links of subtract comparators whose side input
// is a single constant: their output can never exceed 15 minus the side
// strength, so heavier links never carry signal.
type unreachableOutput struct{}

// Name ...
func (unreachableOutput) Name() string { return "unreachable_output" }

// Run ...
func (unreachableOutput) Run(g *graph.Graph, _ *Context) error {
	for _, id := range g.NodesByKind(graph.Comparator) {
		n := g.Node(id)
		if !n.Subtract {
			continue
		}
		var sideConst = -1
		ok := true
		for _, l := range g.Incoming(id) {
			if l.Kind != graph.LinkSide {
				continue
			}
			src := g.Node(l.Node)
			if src.Kind != graph.Constant || sideConst >= 0 {
				ok = false
				break
			}
			sideConst = int(saturatingSub(src.Output, l.Weight))
		}
		if !ok || sideConst < 0 {
			continue
		}
		maxOut := saturatingSub(15, uint8(sideConst))
		links := g.Outgoing(id)
		kept := make([]graph.Link, 0, len(links))
		for _, l := range links {
			if l.Weight < maxOut {
				kept = append(kept, l)
			}
		}
		if len(kept) != len(links) {
			g.SetOutgoing(id, kept)
		}
	}
	return nil
}

// constantCoalesce funnels all constant consumers through at most one
// constant node per strength.
type constantCoalesce struct{}

// Name ...
func (constantCoalesce) Name() string { return "constant_coalesce" }

// Run ...
func (constantCoalesce) Run(g *graph.Graph, _ *Context) error {
	var canon [16]graph.NodeID
	for i := range canon {
		canon[i] = graph.NoNode
	}
	for _, id := range g.NodesByKind(graph.Constant) {
		n := g.Node(id)
		s := min(n.Output, 15)
		if canon[s] == graph.NoNode {
			canon[s] = id
			// The merged constant no longer corresponds to one world
			// position.
			n.HasPos = false
			continue
		}
		g.Redirect(id, canon[s])
	}
	return nil
}

// coalesce merges equivalent nodes: same kind, same configuration and
// identical incoming link multisets.
type coalesce struct{}

// Name ...
func (coalesce) Name() string { return "coalesce" }

// Run ...
func (coalesce) Run(g *graph.Graph, _ *Context) error {
	buckets := make(map[uint64][]graph.NodeID)
	g.Nodes(func(id graph.NodeID, n *graph.Node) {
		if n.IsIO || !foldableKind(n.Kind) {
			return
		}
		h := classHash(g, id, n)
		buckets[h] = append(buckets[h], id)
	})
	hashes := make([]uint64, 0, len(buckets))
	for h := range buckets {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
	for _, h := range hashes {
		ids := buckets[h]
		for len(ids) > 1 {
			rep := ids[0]
			rest := ids[1:]
			ids = ids[:0]
			for _, id := range rest {
				if equivalent(g, rep, id) {
					g.Redirect(id, rep)
				} else {
					ids = append(ids, id)
				}
			}
		}
	}
	return nil
}

// classHash combines a configuration hash with a digest of the sorted
// incoming link list.
func classHash(g *graph.Graph, id graph.NodeID, n *graph.Node) uint64 {
	cfg := [8]byte{
		byte(n.Kind), n.Delay, boolByte(n.Subtract), byte(n.FarOverride),
		boolByte(n.FacingDiode), boolByte(n.Powered), boolByte(n.Locked), n.Output,
	}
	h := fnv1a.HashBytes64(cfg[:])
	d := xxhash.New()
	var buf [6]byte
	for _, l := range sortedIncoming(g, id) {
		binary.LittleEndian.PutUint32(buf[:4], uint32(l.Node))
		buf[4], buf[5] = byte(l.Kind), l.Weight
		_, _ = d.Write(buf[:])
	}
	return h ^ d.Sum64()
}

func sortedIncoming(g *graph.Graph, id graph.NodeID) []graph.Link {
	in := append([]graph.Link(nil), g.Incoming(id)...)
	sort.Slice(in, func(i, j int) bool {
		if in[i].Node != in[j].Node {
			return in[i].Node < in[j].Node
		}
		if in[i].Kind != in[j].Kind {
			return in[i].Kind < in[j].Kind
		}
		return in[i].Weight < in[j].Weight
	})
	return in
}

// equivalent verifies a hash-bucket candidate pair exactly.
func equivalent(g *graph.Graph, a, b graph.NodeID) bool {
	na, nb := g.Node(a), g.Node(b)
	if na.Kind != nb.Kind || na.Delay != nb.Delay || na.Subtract != nb.Subtract ||
		na.FarOverride != nb.FarOverride || na.FacingDiode != nb.FacingDiode ||
		na.Powered != nb.Powered || na.Locked != nb.Locked || na.Output != nb.Output {
		return false
	}
	ia, ib := sortedIncoming(g, a), sortedIncoming(g, b)
	if len(ia) != len(ib) {
		return false
	}
	for i := range ia {
		if ia[i] != ib[i] {
			return false
		}
	}
	return true
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// pruneOrphans removes every node that cannot influence a user-visible
// output.
type pruneOrphans struct{}

// Name ...
func (pruneOrphans) Name() string { return "prune_orphans" }

// Run ...
func (pruneOrphans) Run(g *graph.Graph, ctx *Context) error {
	marked := make(map[graph.NodeID]struct{})
	var stack []graph.NodeID
	g.Nodes(func(id graph.NodeID, n *graph.Node) {
		if pruneRoot(n, ctx.Opts) {
			marked[id] = struct{}{}
			stack = append(stack, id)
		}
	})
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, l := range g.Incoming(id) {
			if _, ok := marked[l.Node]; ok {
				continue
			}
			marked[l.Node] = struct{}{}
			stack = append(stack, l.Node)
		}
	}
	g.Nodes(func(id graph.NodeID, _ *graph.Node) {
		if _, ok := marked[id]; !ok {
			g.RemoveNode(id)
		}
	})
	return nil
}

// pruneRoot reports whether a node must survive pruning on its own:
// user-observable outputs and interactable sources.
func pruneRoot(n *graph.Node, opts Options) bool {
	switch n.Kind {
	case graph.Lamp, graph.Trapdoor, graph.NoteBlock, graph.Lever, graph.Button, graph.PressurePlate:
		return true
	case graph.Wire:
		return opts.WireDotOut
	}
	return n.IsIO
}
