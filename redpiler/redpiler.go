// Package redpiler owns the compile/reset lifecycle of a plot's
// redstone circuits: it lowers a world region into a node graph, drives
// the compiled graph through ticks and writes resulting block changes
// back at a bounded rate.
package redpiler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/redpiler/redpiler/backend"
	"github.com/df-mc/redpiler/redpiler/compile"
	"github.com/df-mc/redpiler/redpiler/export"
	"github.com/df-mc/redpiler/redpiler/graph"
	"github.com/df-mc/redpiler/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

var (
	// ErrActiveCompilation is returned when Compile is called while a
	// compiled graph is still live.
	ErrActiveCompilation = errors.New("redpiler: compilation already active")
	// ErrNotCompiled is returned by operations that need a live graph.
	ErrNotCompiled = errors.New("redpiler: no active compilation")
)

// Options re-exports the compile flags for collaborators.
type Options = compile.Options

// Config configures a Controller.
type Config struct {
	// Log is the logger used for compile and runtime diagnostics. Nil
	// falls back to slog.Default().
	Log *slog.Logger
	// Sink receives block state changes produced by the simulation.
	Sink world.Sink
	// RTPS is the number of redstone ticks to run per second in Run. A
	// value of 0 or lower runs unlimited.
	RTPS int
	// WorldSendRate bounds how often buffered block changes reach the
	// sink, per second.
	WorldSendRate int
	// ExportPath and DotPath are where the export flags write to.
	ExportPath string
	DotPath    string
	// Metrics receives counters. Nil disables collection.
	Metrics *Metrics
}

func (c Config) withDefaults() Config {
	if c.Log == nil {
		c.Log = slog.Default()
	}
	if c.WorldSendRate <= 0 {
		c.WorldSendRate = 60
	}
	if c.ExportPath == "" {
		c.ExportPath = "redpiler_graph.bin"
	}
	if c.DotPath == "" {
		c.DotPath = "redpiler_graph.dot"
	}
	return c
}

// interaction is a block use queued from outside the plot thread.
type interaction struct {
	pos    cube.Pos
	action backend.Action
	click  mgl64.Vec3
}

// Controller owns one plot's compiled circuit between Compile and
// Reset. It is driven from the plot thread; OnUse may be called from
// other goroutines and is serialized between scheduler slots.
type Controller struct {
	conf Config
	log  *slog.Logger

	sink *world.BufferedSink

	g       *graph.Graph
	backend *backend.Backend
	opts    Options
	id      uuid.UUID

	pending chan interaction

	unlimited bool
}

// NewController creates an idle controller.
func NewController(conf Config) *Controller {
	conf = conf.withDefaults()
	c := &Controller{
		conf:      conf,
		log:       conf.Log,
		pending:   make(chan interaction, 256),
		unlimited: conf.RTPS <= 0,
	}
	if conf.Sink != nil {
		c.sink = world.NewBufferedSink(conf.Sink, conf.WorldSendRate)
	}
	return c
}

// Active reports whether a compiled graph is live.
func (c *Controller) Active() bool { return c.backend != nil }

// Compile lowers the view into a graph and arms the backend. The view
// must stay unchanged until Reset; mutations reported through
// BlockChanged trigger an automatic reset.
func (c *Controller) Compile(view world.View, opts Options) error {
	if c.Active() {
		return ErrActiveCompilation
	}
	c.id = uuid.New()
	start := time.Now()
	g, err := compile.Compile(view, opts, c.log)
	if err != nil {
		return err
	}
	c.g = g
	c.opts = opts
	c.backend = backend.New(g, view, backend.Config{Log: c.log, IOOnly: opts.IOOnly})
	c.conf.Metrics.AddCompile(g.Len(), time.Since(start))
	c.log.Info("redpiler compiled", "compilation", c.id, "nodes", g.Len(), "took", time.Since(start))
	if opts.Export {
		if err := c.exportFile(c.conf.ExportPath, export.WriteGraph); err != nil {
			c.log.Error("redpiler graph export failed", "err", err)
		}
	}
	if opts.ExportDot {
		if err := c.exportFile(c.conf.DotPath, export.WriteDot); err != nil {
			c.log.Error("redpiler dot export failed", "err", err)
		}
	}
	return nil
}

func (c *Controller) exportFile(path string, write func(w io.Writer, g *graph.Graph) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("redpiler: export: %w", err)
	}
	defer f.Close()
	return write(f, c.g)
}

// Reset writes outstanding and, when requested at compile time, final
// block states through the sink and discards the graph.
func (c *Controller) Reset() error {
	if !c.Active() {
		return ErrNotCompiled
	}
	c.drainInteractions()
	if c.sink != nil {
		c.backend.Reset(c.sink, c.opts.UpdateAfterReset)
		c.sink.FlushAll()
	}
	c.conf.Metrics.AddReset(c.backend.Ticks())
	c.log.Info("redpiler reset", "compilation", c.id, "ticks", c.backend.Ticks())
	c.g = nil
	c.backend = nil
	return nil
}

// Tick advances the simulation one game tick. Queued interactions apply
// before the slot drains, never mid-slot. Runtime failures absorb into
// an automatic reset rather than surfacing.
func (c *Controller) Tick() {
	if !c.Active() {
		return
	}
	c.drainInteractions()
	c.backend.Tick()
	if err := c.backend.Err(); err != nil {
		c.log.Error("redpiler simulation failed, resetting", "compilation", c.id, "err", err)
		_ = c.Reset()
	}
}

func (c *Controller) drainInteractions() {
	for {
		select {
		case i := <-c.pending:
			c.backend.OnUse(i.pos, i.action)
		default:
			return
		}
	}
}

// OnUse queues a block interaction for the next tick boundary. The
// click vector is accepted for interface parity with block activation
// and is carried with the queued interaction; the backend does not use
// it.
func (c *Controller) OnUse(pos cube.Pos, action backend.Action, click mgl64.Vec3) {
	if !c.Active() {
		return
	}
	select {
	case c.pending <- interaction{pos: pos, action: action, click: click}:
	default:
		c.log.Warn("redpiler interaction queue full, dropping", "pos", pos)
	}
}

// Flush releases buffered block changes if the send rate allows.
func (c *Controller) Flush() {
	if !c.Active() || c.sink == nil {
		return
	}
	c.backend.Flush(c.sink)
	if c.sink.TryFlush(time.Now()) {
		c.conf.Metrics.AddFlush()
	}
}

// BlockChanged reports a world mutation. During an active simulation
// this forces a reset: the compiled graph no longer matches the world.
func (c *Controller) BlockChanged(pos cube.Pos) {
	if !c.Active() {
		return
	}
	c.log.Info("world changed during simulation, resetting", "compilation", c.id, "pos", pos)
	_ = c.Reset()
}

// InspectReport is the debug view of one compiled position.
type InspectReport struct {
	Compilation uuid.UUID
	backend.Report
}

// Inspect returns the compiled node state at a position.
func (c *Controller) Inspect(pos cube.Pos) (InspectReport, bool) {
	if !c.Active() {
		return InspectReport{}, false
	}
	r, ok := c.backend.Inspect(pos)
	if !ok {
		return InspectReport{}, false
	}
	return InspectReport{Compilation: c.id, Report: r}, true
}

// SetRTPS changes the target redstone tick rate. Zero or lower means
// unlimited.
func (c *Controller) SetRTPS(rtps int) {
	c.conf.RTPS = rtps
	c.unlimited = rtps <= 0
}

// SetWorldSendRate rebounds how often block changes reach the sink.
func (c *Controller) SetWorldSendRate(rate int) {
	c.conf.WorldSendRate = rate
	if c.sink != nil {
		c.sink.SetSendRate(rate)
	}
}

// Run ticks the simulation until the context is cancelled, at the
// configured RTPS or as fast as possible when unlimited. Block changes
// flush at the world send rate regardless of simulation speed.
func (c *Controller) Run(ctx context.Context) {
	if c.unlimited {
		for ctx.Err() == nil && c.Active() {
			c.Tick()
			c.Flush()
		}
		return
	}
	// A game tick is half a redstone tick.
	interval := time.Second / time.Duration(c.conf.RTPS*2)
	if interval <= 0 {
		interval = time.Nanosecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !c.Active() {
				return
			}
			c.Tick()
			c.Flush()
		}
	}
}
