// Package compile lowers a world region into a redstone node graph. The
// front-end identifies component nodes and links them by searching the
// wire network; a fixed pipeline of passes then cleans the graph up and,
// when requested, optimizes it.
package compile

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/df-mc/redpiler/redpiler/graph"
	"github.com/df-mc/redpiler/world"
)

// ErrTooLarge is returned when a region produces more nodes than the
// configured cap. The graph is discarded.
var ErrTooLarge = errors.New("redpiler: region exceeds node cap")

// DefaultMaxNodes caps the node count of a single compilation.
const DefaultMaxNodes = 1 << 20

// Options selects the behaviour of a compilation.
type Options struct {
	// Optimize enables the optimization passes. Without it, redstone
	// wire compiles to first-class nodes so that signal strength stays
	// observable in the world.
	Optimize bool
	// IOOnly restricts runtime world writes to user-visible inputs and
	// outputs.
	IOOnly bool
	// WireDotOut keeps wire nodes of interest alive through pruning for
	// the dot exporter.
	WireDotOut bool
	// UpdateAfterReset triggers block updates when final states are
	// written back on reset.
	UpdateAfterReset bool
	// Export and ExportDot request the binary and Graphviz export sinks.
	Export    bool
	ExportDot bool
	// MaxNodes overrides DefaultMaxNodes when positive.
	MaxNodes int
}

// Context carries the shared state passes operate against.
type Context struct {
	View world.View
	Opts Options
	Log  *slog.Logger
}

// Pass is one graph-rewriting step of the pipeline.
type Pass interface {
	Name() string
	Run(g *graph.Graph, ctx *Context) error
}

// Passes returns the pipeline for the options, mandatory passes first,
// in their fixed execution order.
func Passes(opts Options) []Pass {
	passes := []Pass{
		identifyNodes{},
		inputSearch{},
		clampWeights{},
		dedupLinks{},
	}
	if opts.Optimize {
		passes = append(passes,
			analogRepeaters{},
			constantFold{},
			unreachableOutput{},
			constantCoalesce{},
			coalesce{},
			// Redirects may reintroduce parallel links; restore the
			// dedup invariant before pruning.
			dedupLinks{},
			pruneOrphans{},
		)
	}
	return passes
}

// Compile runs the full pipeline over the view and returns the
// finalized, compacted graph with its position index in place.
func Compile(view world.View, opts Options, log *slog.Logger) (*graph.Graph, error) {
	if log == nil {
		log = slog.Default()
	}
	g := graph.New()
	g.IndexPositions()
	ctx := &Context{View: view, Opts: opts, Log: log}
	for _, pass := range Passes(opts) {
		before := g.Live()
		if err := pass.Run(g, ctx); err != nil {
			return nil, fmt.Errorf("redpiler: pass %s: %w", pass.Name(), err)
		}
		log.Debug("compile pass complete", "pass", pass.Name(), "nodes", g.Live(), "delta", g.Live()-before)
	}
	g.Compact()
	return g, nil
}

func maxNodes(opts Options) int {
	if opts.MaxNodes > 0 {
		return opts.MaxNodes
	}
	return DefaultMaxNodes
}
