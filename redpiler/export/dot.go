package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/df-mc/redpiler/redpiler/graph"
)

// WriteDot writes the graph in Graphviz dot form. Side links render
// dashed, constants as boxes; node labels carry the kind, the world
// position where one exists and the current output strength.
func WriteDot(w io.Writer, g *graph.Graph) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph redpiler {")
	fmt.Fprintln(bw, "\trankdir=LR;")
	g.Nodes(func(id graph.NodeID, n *graph.Node) {
		label := n.Kind.String()
		if n.HasPos {
			label = fmt.Sprintf("%s@%d,%d,%d", label, n.Pos.X(), n.Pos.Y(), n.Pos.Z())
		}
		label = fmt.Sprintf("%s [%d]", label, n.Output)
		shape := "ellipse"
		if n.Kind == graph.Constant {
			shape = "box"
		}
		fmt.Fprintf(bw, "\tn%d [label=%q, shape=%s];\n", id, label, shape)
	})
	g.Nodes(func(id graph.NodeID, _ *graph.Node) {
		for _, l := range g.Outgoing(id) {
			style := "solid"
			if l.Kind == graph.LinkSide {
				style = "dashed"
			}
			fmt.Fprintf(bw, "\tn%d -> n%d [label=\"%d\", style=%s];\n", id, l.Node, l.Weight, style)
		}
	})
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}
