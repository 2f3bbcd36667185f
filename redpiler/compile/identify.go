package compile

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/redpiler/block"
	"github.com/df-mc/redpiler/redpiler/graph"
)

// identifyNodes scans the compile region and produces one graph node per
// supported component. Blocks outside the supported set are skipped.
type identifyNodes struct{}

// Name ...
func (identifyNodes) Name() string { return "identify_nodes" }

// Run ...
func (identifyNodes) Run(g *graph.Graph, ctx *Context) error {
	min, max := ctx.View.Bounds()
	limit := maxNodes(ctx.Opts)
	for y := min.Y(); y <= max.Y(); y++ {
		for z := min.Z(); z <= max.Z(); z++ {
			for x := min.X(); x <= max.X(); x++ {
				pos := cube.Pos{x, y, z}
				n, ok := classify(ctx, pos, ctx.View.Block(pos))
				if !ok {
					continue
				}
				if g.Live() >= limit {
					return ErrTooLarge
				}
				g.AddNode(n)
			}
		}
	}
	return nil
}

// classify converts a block state into its node form. The second return
// value is false for blocks the compiler does not represent.
func classify(ctx *Context, pos cube.Pos, b block.Block) (graph.Node, bool) {
	switch b := b.(type) {
	case block.Repeater:
		return graph.Node{
			Kind:        graph.Repeater,
			Pos:         pos,
			HasPos:      true,
			Delay:       b.Delay,
			Powered:     b.Powered,
			Locked:      b.Locked,
			Output:      strength(b.Powered),
			FacingDiode: facesDiode(ctx, b.OutputPos(pos)),
			FarOverride: -1,
		}, true
	case block.Comparator:
		return graph.Node{
			Kind:         graph.Comparator,
			Pos:          pos,
			HasPos:       true,
			Subtract:     b.Subtract,
			Powered:      b.Powered,
			Output:       b.Power,
			AnalogSource: true,
			FacingDiode:  facesDiode(ctx, b.OutputPos(pos)),
			FarOverride:  -1,
		}, true
	case block.Torch:
		return graph.Node{
			Kind:        graph.Torch,
			Pos:         pos,
			HasPos:      true,
			Powered:     b.Lit,
			Output:      strength(b.Lit),
			FarOverride: -1,
		}, true
	case block.Lamp:
		return graph.Node{Kind: graph.Lamp, Pos: pos, HasPos: true, Powered: b.Lit, IsIO: true, FarOverride: -1}, true
	case block.Trapdoor:
		return graph.Node{Kind: graph.Trapdoor, Pos: pos, HasPos: true, Powered: b.Open, IsIO: true, FarOverride: -1}, true
	case block.Button:
		return graph.Node{
			Kind:        graph.Button,
			Pos:         pos,
			HasPos:      true,
			Delay:       uint8(b.ReleaseDelay()),
			Powered:     b.Pressed,
			Output:      strength(b.Pressed),
			IsIO:        true,
			FarOverride: -1,
		}, true
	case block.Lever:
		return graph.Node{
			Kind:        graph.Lever,
			Pos:         pos,
			HasPos:      true,
			Powered:     b.Powered,
			Output:      strength(b.Powered),
			IsIO:        true,
			FarOverride: -1,
		}, true
	case block.PressurePlate:
		return graph.Node{
			Kind:        graph.PressurePlate,
			Pos:         pos,
			HasPos:      true,
			Powered:     b.Pressed,
			Output:      strength(b.Pressed),
			IsIO:        true,
			FarOverride: -1,
		}, true
	case block.NoteBlock:
		return graph.Node{Kind: graph.NoteBlock, Pos: pos, HasPos: true, Powered: b.Powered, Pitch: b.Pitch, IsIO: true, FarOverride: -1}, true
	case block.RedstoneDust:
		if ctx.Opts.Optimize {
			return graph.Node{}, false
		}
		return graph.Node{Kind: graph.Wire, Pos: pos, HasPos: true, Output: b.Power, FarOverride: -1}, true
	default:
		data, _ := ctx.View.BlockEntity(pos)
		if s, ok := block.ComparatorReading(b, data); ok {
			return graph.Node{Kind: graph.Constant, Pos: pos, HasPos: true, Output: s, FarOverride: -1}, true
		}
	}
	return graph.Node{}, false
}

// facesDiode reports whether the block at pos is a repeater or a
// comparator, which raises the tick priority of the component outputting
// into it.
func facesDiode(ctx *Context, pos cube.Pos) bool {
	switch ctx.View.Block(pos).(type) {
	case block.Repeater, block.Comparator:
		return true
	}
	return false
}

func strength(on bool) uint8 {
	if on {
		return 15
	}
	return 0
}
