package compile

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/redpiler/block"
	"github.com/df-mc/redpiler/redpiler/graph"
)

// searchFaces fixes the direction iteration order of every search so
// that link ordering is reproducible across compiles.
var searchFaces = [...]cube.Face{
	cube.FaceNorth, cube.FaceSouth, cube.FaceWest, cube.FaceEast, cube.FaceDown, cube.FaceUp,
}

// horizontalFaces is the wire expansion order.
var horizontalFaces = [...]cube.Face{
	cube.FaceNorth, cube.FaceSouth, cube.FaceWest, cube.FaceEast,
}

// inputSearch computes the links of every node by running the
// signal-acquisition search appropriate to its type.
type inputSearch struct{}

// Name ...
func (inputSearch) Name() string { return "input_search" }

// Run ...
func (inputSearch) Run(g *graph.Graph, ctx *Context) error {
	s := &searcher{g: g, ctx: ctx}
	g.Nodes(s.searchNode)
	return nil
}

type searcher struct {
	g   *graph.Graph
	ctx *Context
}

// seedOpts controls what a seed position may resolve to.
type seedOpts struct {
	// throughBlock permits the seed to be a solid block powered by
	// adjacent sources or wires.
	throughBlock bool
	// constants permits direct container constants as sources. Only
	// comparator inputs, default and side, read containers.
	constants bool
}

func (s *searcher) searchNode(id graph.NodeID, n *graph.Node) {
	switch n.Kind {
	case graph.Torch:
		t, ok := s.ctx.View.Block(n.Pos).(block.Torch)
		if !ok {
			return
		}
		s.seed(id, n.Pos, t.Attachment(n.Pos), graph.LinkDefault, seedOpts{throughBlock: true})
	case graph.Repeater:
		r, ok := s.ctx.View.Block(n.Pos).(block.Repeater)
		if !ok {
			return
		}
		s.seed(id, n.Pos, r.InputPos(n.Pos), graph.LinkDefault, seedOpts{throughBlock: true})
		for _, side := range r.SidePositions(n.Pos) {
			s.diodeSide(id, n.Pos, side)
		}
	case graph.Comparator:
		c, ok := s.ctx.View.Block(n.Pos).(block.Comparator)
		if !ok {
			return
		}
		s.seed(id, n.Pos, c.InputPos(n.Pos), graph.LinkDefault, seedOpts{throughBlock: true, constants: true})
		for _, side := range c.SidePositions(n.Pos) {
			s.seed(id, n.Pos, side, graph.LinkSide, seedOpts{constants: true})
		}
		s.farOverride(n, c)
	case graph.Lamp, graph.Trapdoor, graph.NoteBlock:
		for _, f := range searchFaces {
			s.seed(id, n.Pos, n.Pos.Side(f), graph.LinkDefault, seedOpts{throughBlock: true})
		}
	case graph.Wire:
		s.wireBFS(id, n.Pos, graph.LinkDefault)
	}
	// Levers, buttons, pressure plates and constants are pure sources.
}

// seed resolves one input face of a sink: a direct source, a wire
// network entry, or a powered solid block.
func (s *searcher) seed(sink graph.NodeID, sinkPos, pos cube.Pos, kind graph.LinkKind, opts seedOpts) {
	switch b := s.ctx.View.Block(pos).(type) {
	case block.RedstoneDust:
		s.wireBFS(sink, pos, kind)
	case block.Lever, block.Button, block.PressurePlate, block.Torch:
		s.link(sink, pos, kind, 0)
	case block.Repeater:
		if b.OutputPos(pos) == sinkPos {
			s.link(sink, pos, kind, 0)
		}
	case block.Comparator:
		if b.OutputPos(pos) == sinkPos {
			s.link(sink, pos, kind, 0)
		}
	default:
		if opts.constants {
			if _, ok := block.ComparatorReading(b, nil); ok {
				s.link(sink, pos, kind, 0)
				return
			}
		}
		if opts.throughBlock && block.Conducts(b) {
			s.poweredBlock(sink, pos, kind)
		}
	}
}

// poweredBlock finds the sources powering a solid block: strong emitters
// pointed at it and wires resting against it.
func (s *searcher) poweredBlock(sink graph.NodeID, pos cube.Pos, kind graph.LinkKind) {
	for _, f := range searchFaces {
		q := pos.Side(f)
		switch b := s.ctx.View.Block(q).(type) {
		case block.Torch:
			// A torch strongly powers only the block directly above it.
			if f == cube.FaceDown {
				s.link(sink, q, kind, 0)
			}
		case block.Repeater:
			if b.OutputPos(q) == pos {
				s.link(sink, q, kind, 0)
			}
		case block.Comparator:
			if b.OutputPos(q) == pos {
				s.link(sink, q, kind, 0)
			}
		case block.Lever:
			if b.Attachment(q) == pos {
				s.link(sink, q, kind, 0)
			}
		case block.Button:
			if b.Attachment(q) == pos {
				s.link(sink, q, kind, 0)
			}
		case block.PressurePlate:
			if f == cube.FaceUp {
				s.link(sink, q, kind, 0)
			}
		case block.RedstoneDust:
			s.wireBFS(sink, q, kind)
		}
	}
}

// diodeSide resolves a repeater lock input: only a directly adjacent
// repeater or comparator pointed at the side counts.
func (s *searcher) diodeSide(sink graph.NodeID, sinkPos, pos cube.Pos) {
	switch b := s.ctx.View.Block(pos).(type) {
	case block.Repeater:
		if b.OutputPos(pos) == sinkPos {
			s.link(sink, pos, graph.LinkSide, 0)
		}
	case block.Comparator:
		if b.OutputPos(pos) == sinkPos {
			s.link(sink, pos, graph.LinkSide, 0)
		}
	}
}

// wireBFS walks the wire network from start, emitting a link for every
// source found adjacent to a visited wire with the accumulated wire
// distance as weight. Wires are never revisited at a non-improving
// distance and branches halt once the weight can no longer carry signal.
func (s *searcher) wireBFS(sink graph.NodeID, start cube.Pos, kind graph.LinkKind) {
	type visit struct {
		pos  cube.Pos
		dist uint8
	}
	best := map[cube.Pos]uint8{}
	queue := []visit{{pos: start, dist: 0}}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		if d, ok := best[v.pos]; ok && d <= v.dist {
			continue
		}
		best[v.pos] = v.dist

		for _, f := range searchFaces {
			q := v.pos.Side(f)
			switch b := s.ctx.View.Block(q).(type) {
			case block.Lever, block.Button, block.PressurePlate, block.Torch:
				s.link(sink, q, kind, v.dist)
			case block.Repeater:
				if b.OutputPos(q) == v.pos {
					s.link(sink, q, kind, v.dist)
				}
			case block.Comparator:
				if b.OutputPos(q) == v.pos {
					s.link(sink, q, kind, v.dist)
				}
			}
		}

		if v.dist+1 >= 15 {
			continue
		}
		for _, f := range horizontalFaces {
			q := v.pos.Side(f)
			if s.isWire(q) {
				queue = append(queue, visit{pos: q, dist: v.dist + 1})
				continue
			}
			if s.conducts(q) {
				// Wire may climb the block if nothing caps the current one.
				if up := q.Side(cube.FaceUp); s.isWire(up) && !s.conducts(v.pos.Side(cube.FaceUp)) {
					queue = append(queue, visit{pos: up, dist: v.dist + 1})
				}
				continue
			}
			if down := q.Side(cube.FaceDown); s.isWire(down) {
				queue = append(queue, visit{pos: down, dist: v.dist + 1})
			}
		}
	}
}

func (s *searcher) link(sink graph.NodeID, srcPos cube.Pos, kind graph.LinkKind, weight uint8) {
	src := s.g.NodeAt(srcPos)
	if src == graph.NoNode || src == sink {
		return
	}
	s.g.AddLink(src, sink, kind, weight)
}

func (s *searcher) isWire(pos cube.Pos) bool {
	_, ok := s.ctx.View.Block(pos).(block.RedstoneDust)
	return ok
}

func (s *searcher) conducts(pos cube.Pos) bool {
	return block.Conducts(s.ctx.View.Block(pos))
}

// farOverride scans for a container read through the solid block at the
// comparator's input: the container's reading substitutes for the
// default input while that input is below full strength.
func (s *searcher) farOverride(n *graph.Node, c block.Comparator) {
	inputPos := c.InputPos(n.Pos)
	if !block.Conducts(s.ctx.View.Block(inputPos)) {
		return
	}
	behind := inputPos.Side(c.Facing.Opposite().Face())
	data, _ := s.ctx.View.BlockEntity(behind)
	if reading, ok := block.ComparatorReading(s.ctx.View.Block(behind), data); ok {
		n.FarOverride = int8(reading)
	}
}
