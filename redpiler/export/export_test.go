package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/df-mc/redpiler/redpiler/graph"
)

func sampleGraph() *graph.Graph {
	g := graph.New()
	lever := g.AddNode(graph.Node{Kind: graph.Lever, Output: 15, IsIO: true})
	rep := g.AddNode(graph.Node{Kind: graph.Repeater, Delay: 3, Powered: true, FarOverride: -1})
	lamp := g.AddNode(graph.Node{Kind: graph.Lamp, Powered: true, IsIO: true})
	g.AddLink(lever, rep, graph.LinkDefault, 2)
	g.AddLink(rep, lamp, graph.LinkDefault, 0)
	return g
}

func TestBinaryRoundTrip(t *testing.T) {
	g := sampleGraph()
	var buf bytes.Buffer
	if err := WriteGraph(&buf, g); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, err := ReadGraph(&buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got.Len() != g.Len() {
		t.Fatalf("expected %d nodes, got %d", g.Len(), got.Len())
	}
	rep := got.Node(1)
	if rep.Kind != graph.Repeater || rep.Delay != 3 || !rep.Powered || rep.FarOverride != -1 {
		t.Fatalf("repeater state lost in round trip: %+v", rep)
	}
	out := got.Outgoing(0)
	if len(out) != 1 || out[0].Node != 1 || out[0].Weight != 2 {
		t.Fatalf("links lost in round trip: %v", out)
	}
}

func TestBinaryRejectsBadMagic(t *testing.T) {
	if _, err := ReadGraph(bytes.NewReader(make([]byte, 16))); err == nil {
		t.Fatalf("expected an error for a bad magic")
	}
}

func TestDotOutput(t *testing.T) {
	g := sampleGraph()
	var buf bytes.Buffer
	if err := WriteDot(&buf, g); err != nil {
		t.Fatalf("dot write failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"digraph redpiler", "repeater", "n0 -> n1", "label=\"2\""} {
		if !strings.Contains(out, want) {
			t.Fatalf("dot output missing %q:\n%s", want, out)
		}
	}
}
