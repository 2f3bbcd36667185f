package compile

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/redpiler/block"
	"github.com/df-mc/redpiler/redpiler/graph"
	"github.com/df-mc/redpiler/world"
)

func compileWorld(t *testing.T, w *world.MemoryWorld, opts Options) *graph.Graph {
	t.Helper()
	g, err := Compile(w, opts, slog.Default())
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	return g
}

func TestIdentifySkipsUnsupportedBlocks(t *testing.T) {
	w := world.NewMemoryWorld()
	w.SetBlock(cube.Pos{0, 64, 0}, block.Stone{})
	w.SetBlock(cube.Pos{1, 64, 0}, block.Lever{Face: cube.FaceUp})
	w.SetBlock(cube.Pos{2, 64, 0}, block.Stone{})

	g := compileWorld(t, w, Options{})
	if g.Len() != 1 {
		t.Fatalf("expected only the lever to compile, got %d nodes", g.Len())
	}
	if id := g.NodeAt(cube.Pos{1, 64, 0}); id == graph.NoNode || g.Node(id).Kind != graph.Lever {
		t.Fatalf("expected a lever node at 1,64,0")
	}
}

func TestWireNodesOnlyWithoutOptimize(t *testing.T) {
	w := world.NewMemoryWorld()
	w.SetBlock(cube.Pos{0, 64, 0}, block.Lever{Face: cube.FaceUp, Powered: true})
	w.SetBlock(cube.Pos{1, 64, 0}, block.RedstoneDust{Power: 15})
	w.SetBlock(cube.Pos{2, 64, 0}, block.Lamp{Lit: true})

	plain := compileWorld(t, w, Options{})
	if got := len(plain.NodesByKind(graph.Wire)); got != 1 {
		t.Fatalf("expected a wire node without optimizations, got %d", got)
	}
	opt := compileWorld(t, w, Options{Optimize: true})
	if got := len(opt.NodesByKind(graph.Wire)); got != 0 {
		t.Fatalf("expected no wire nodes with optimizations, got %d", got)
	}
}

func TestTorchInverterLinks(t *testing.T) {
	// Lever → dust → solid block with a torch on its far side.
	w := world.NewMemoryWorld()
	w.SetBlock(cube.Pos{0, 64, 0}, block.Lever{Face: cube.FaceUp, Powered: false})
	w.SetBlock(cube.Pos{1, 64, 0}, block.RedstoneDust{})
	w.SetBlock(cube.Pos{2, 64, 0}, block.Stone{})
	w.SetBlock(cube.Pos{3, 64, 0}, block.Torch{Face: cube.FaceEast, Lit: true})
	w.SetBlock(cube.Pos{4, 64, 0}, block.Lamp{Lit: true})

	g := compileWorld(t, w, Options{Optimize: true})

	torch := g.NodeAt(cube.Pos{3, 64, 0})
	if torch == graph.NoNode {
		t.Fatalf("expected torch node")
	}
	in := g.Incoming(torch)
	if len(in) != 1 || in[0].Weight != 0 || in[0].Kind != graph.LinkDefault {
		t.Fatalf("expected single weight-0 default input to torch, got %v", in)
	}
	if g.Node(in[0].Node).Kind != graph.Lever {
		t.Fatalf("expected torch input to come from the lever")
	}

	lamp := g.NodeAt(cube.Pos{4, 64, 0})
	lampIn := g.Incoming(lamp)
	if len(lampIn) != 1 || lampIn[0].Node != torch {
		t.Fatalf("expected lamp to be driven by the torch, got %v", lampIn)
	}
}

func TestWireDistanceBecomesWeight(t *testing.T) {
	// Lever, three dusts, then a repeater: two wire steps of loss.
	w := world.NewMemoryWorld()
	w.SetBlock(cube.Pos{0, 64, 0}, block.Lever{Face: cube.FaceUp})
	w.SetBlock(cube.Pos{1, 64, 0}, block.RedstoneDust{})
	w.SetBlock(cube.Pos{2, 64, 0}, block.RedstoneDust{})
	w.SetBlock(cube.Pos{3, 64, 0}, block.RedstoneDust{})
	w.SetBlock(cube.Pos{4, 64, 0}, block.Repeater{Facing: cube.East, Delay: 1})

	g := compileWorld(t, w, Options{})
	rep := g.NodeAt(cube.Pos{4, 64, 0})
	in := g.Incoming(rep)
	if len(in) != 1 || in[0].Weight != 2 {
		t.Fatalf("expected one input of weight 2, got %v", in)
	}
}

func TestLongWirePrunedByClamp(t *testing.T) {
	// Sixteen dusts between source and sink: the signal dies en route.
	w := world.NewMemoryWorld()
	w.SetBlock(cube.Pos{0, 64, 0}, block.Lever{Face: cube.FaceUp})
	for x := 1; x <= 16; x++ {
		w.SetBlock(cube.Pos{x, 64, 0}, block.RedstoneDust{})
	}
	w.SetBlock(cube.Pos{17, 64, 0}, block.Repeater{Facing: cube.East, Delay: 1})

	g := compileWorld(t, w, Options{Optimize: true})
	rep := g.NodeAt(cube.Pos{17, 64, 0})
	if rep == graph.NoNode {
		// The repeater feeds nothing, so pruning may have removed it
		// together with its dead input.
		return
	}
	if in := g.Incoming(rep); len(in) != 0 {
		t.Fatalf("expected no surviving inputs across 16 dusts, got %v", in)
	}
}

func TestDedupLinksKeepsMinimumWeight(t *testing.T) {
	g := graph.New()
	src := g.AddNode(graph.Node{Kind: graph.Lever})
	dst := g.AddNode(graph.Node{Kind: graph.Lamp})
	g.AddLink(src, dst, graph.LinkDefault, 4)
	g.AddLink(src, dst, graph.LinkDefault, 1)
	g.AddLink(src, dst, graph.LinkDefault, 9)
	g.AddLink(src, dst, graph.LinkSide, 2)

	if err := (dedupLinks{}).Run(g, nil); err != nil {
		t.Fatalf("dedup failed: %v", err)
	}
	out := g.Outgoing(src)
	if len(out) != 2 {
		t.Fatalf("expected one link per kind, got %v", out)
	}
	for _, l := range out {
		if l.Kind == graph.LinkDefault && l.Weight != 1 {
			t.Fatalf("expected minimum default weight 1, got %d", l.Weight)
		}
	}
}

func TestRepeaterLockLink(t *testing.T) {
	// A repeater pointing into the side of another locks it.
	w := world.NewMemoryWorld()
	w.SetBlock(cube.Pos{0, 64, 0}, block.Lever{Face: cube.FaceUp})
	w.SetBlock(cube.Pos{1, 64, 0}, block.Repeater{Facing: cube.East, Delay: 1})
	w.SetBlock(cube.Pos{2, 64, 0}, block.Lamp{})
	w.SetBlock(cube.Pos{1, 64, 2}, block.Lever{Face: cube.FaceUp})
	w.SetBlock(cube.Pos{1, 64, 1}, block.Repeater{Facing: cube.North, Delay: 1})

	g := compileWorld(t, w, Options{Optimize: true})
	rep := g.NodeAt(cube.Pos{1, 64, 0})
	var side int
	for _, l := range g.Incoming(rep) {
		if l.Kind == graph.LinkSide {
			side++
			if g.Node(l.Node).Kind != graph.Repeater {
				t.Fatalf("expected the side input to be the locking repeater")
			}
		}
	}
	if side != 1 {
		t.Fatalf("expected exactly one side input, got %d", side)
	}
}

func TestComparatorFarOverride(t *testing.T) {
	// Jukebox behind a solid block behind the comparator input.
	w := world.NewMemoryWorld()
	w.SetBlock(cube.Pos{0, 64, 0}, block.Jukebox{HasRecord: true})
	w.SetBlock(cube.Pos{1, 64, 0}, block.Stone{})
	w.SetBlock(cube.Pos{2, 64, 0}, block.Comparator{Facing: cube.East})

	g := compileWorld(t, w, Options{})
	cmp := g.NodeAt(cube.Pos{2, 64, 0})
	if cmp == graph.NoNode {
		t.Fatalf("expected comparator node")
	}
	if got := g.Node(cmp).FarOverride; got != 15 {
		t.Fatalf("expected far override 15, got %d", got)
	}
}

func TestTooLargeRegion(t *testing.T) {
	w := world.NewMemoryWorld()
	for x := 0; x < 4; x++ {
		w.SetBlock(cube.Pos{x, 64, 0}, block.Lever{Face: cube.FaceUp})
	}
	if _, err := Compile(w, Options{MaxNodes: 2}, slog.Default()); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}
