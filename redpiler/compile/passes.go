package compile

import (
	"github.com/df-mc/redpiler/redpiler/graph"
)

// clampWeights drops links that can never carry signal.
type clampWeights struct{}

// Name ...
func (clampWeights) Name() string { return "clamp_weights" }

// Run ...
func (clampWeights) Run(g *graph.Graph, _ *Context) error {
	g.Nodes(func(id graph.NodeID, _ *graph.Node) {
		links := g.Outgoing(id)
		kept := make([]graph.Link, 0, len(links))
		for _, l := range links {
			if l.Weight < 15 {
				kept = append(kept, l)
			}
		}
		if len(kept) != len(links) {
			g.SetOutgoing(id, kept)
		}
	})
	return nil
}

// dedupLinks collapses multi-edges: for each (source, sink, kind) only
// the minimum-weight link survives.
type dedupLinks struct{}

// Name ...
func (dedupLinks) Name() string { return "dedup_links" }

// Run ...
func (dedupLinks) Run(g *graph.Graph, _ *Context) error {
	type key struct {
		node graph.NodeID
		kind graph.LinkKind
	}
	g.Nodes(func(id graph.NodeID, _ *graph.Node) {
		links := g.Outgoing(id)
		if len(links) < 2 {
			return
		}
		first := make(map[key]int, len(links))
		kept := make([]graph.Link, 0, len(links))
		changed := false
		for _, l := range links {
			k := key{node: l.Node, kind: l.Kind}
			if i, ok := first[k]; ok {
				changed = true
				if l.Weight < kept[i].Weight {
					kept[i].Weight = l.Weight
				}
				continue
			}
			first[k] = len(kept)
			kept = append(kept, l)
		}
		if changed {
			g.SetOutgoing(id, kept)
		}
	})
	return nil
}
