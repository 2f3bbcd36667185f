package graph

import (
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
)

func TestAddLinkMirrorsIncoming(t *testing.T) {
	g := New()
	a := g.AddNode(Node{Kind: Lever})
	b := g.AddNode(Node{Kind: Lamp})
	g.AddLink(a, b, LinkDefault, 3)

	out := g.Outgoing(a)
	if len(out) != 1 || out[0].Node != b || out[0].Weight != 3 {
		t.Fatalf("unexpected outgoing links: %v", out)
	}
	in := g.Incoming(b)
	if len(in) != 1 || in[0].Node != a || in[0].Weight != 3 {
		t.Fatalf("unexpected incoming links: %v", in)
	}
}

func TestRemoveNodeDetachesEdges(t *testing.T) {
	g := New()
	a := g.AddNode(Node{Kind: Lever})
	b := g.AddNode(Node{Kind: Repeater})
	c := g.AddNode(Node{Kind: Lamp})
	g.AddLink(a, b, LinkDefault, 0)
	g.AddLink(b, c, LinkDefault, 0)

	g.RemoveNode(b)

	if len(g.Outgoing(a)) != 0 {
		t.Fatalf("expected source edges to be dropped, got %v", g.Outgoing(a))
	}
	if len(g.Incoming(c)) != 0 {
		t.Fatalf("expected sink edges to be dropped, got %v", g.Incoming(c))
	}
	if g.Live() != 2 {
		t.Fatalf("expected 2 live nodes, got %d", g.Live())
	}
}

func TestRedirectMovesOutgoing(t *testing.T) {
	g := New()
	old := g.AddNode(Node{Kind: Constant, Output: 7})
	canon := g.AddNode(Node{Kind: Constant, Output: 7})
	sink := g.AddNode(Node{Kind: Comparator})
	g.AddLink(old, sink, LinkSide, 2)

	g.Redirect(old, canon)

	if !g.Node(old).Dead {
		t.Fatalf("expected redirected node to be tombstoned")
	}
	out := g.Outgoing(canon)
	if len(out) != 1 || out[0].Node != sink || out[0].Kind != LinkSide || out[0].Weight != 2 {
		t.Fatalf("unexpected canonical outgoing links: %v", out)
	}
	in := g.Incoming(sink)
	if len(in) != 1 || in[0].Node != canon {
		t.Fatalf("unexpected sink incoming links: %v", in)
	}
}

func TestCompactRenumbersAndRewritesLinks(t *testing.T) {
	g := New()
	a := g.AddNode(Node{Kind: Lever})
	b := g.AddNode(Node{Kind: Torch})
	c := g.AddNode(Node{Kind: Lamp})
	g.AddLink(a, c, LinkDefault, 1)
	g.RemoveNode(b)

	remap := g.Compact()

	if remap[b] != NoNode {
		t.Fatalf("expected removed node to map to NoNode, got %d", remap[b])
	}
	if g.Len() != 2 || g.Live() != 2 {
		t.Fatalf("expected compact graph of 2 nodes, got len=%d live=%d", g.Len(), g.Live())
	}
	newA, newC := remap[a], remap[c]
	out := g.Outgoing(newA)
	if len(out) != 1 || out[0].Node != newC {
		t.Fatalf("expected link to be rewritten to %d, got %v", newC, out)
	}
}

func TestPositionIndex(t *testing.T) {
	g := New()
	g.IndexPositions()
	pos := cube.Pos{10, 64, -3}
	id := g.AddNode(Node{Kind: Lamp, Pos: pos, HasPos: true})

	if got := g.NodeAt(pos); got != id {
		t.Fatalf("expected NodeAt to return %d, got %d", id, got)
	}
	if got := g.NodeAt(cube.Pos{0, 0, 0}); got != NoNode {
		t.Fatalf("expected NoNode at empty position, got %d", got)
	}
	g.RemoveNode(id)
	if got := g.NodeAt(pos); got != NoNode {
		t.Fatalf("expected NoNode after removal, got %d", got)
	}
}

func TestNodesByKindSkipsDead(t *testing.T) {
	g := New()
	g.AddNode(Node{Kind: Repeater})
	dead := g.AddNode(Node{Kind: Repeater})
	g.AddNode(Node{Kind: Torch})
	g.RemoveNode(dead)

	if got := g.NodesByKind(Repeater); len(got) != 1 {
		t.Fatalf("expected one live repeater, got %v", got)
	}
}
