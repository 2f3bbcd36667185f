package redpiler

import (
	"path/filepath"
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/redpiler/block"
	"github.com/df-mc/redpiler/redpiler/backend"
	"github.com/df-mc/redpiler/world"
	"github.com/go-gl/mathgl/mgl64"
)

type countingSink struct {
	writes int
}

func (c *countingSink) SetBlock(cube.Pos, block.Block) { c.writes++ }
func (c *countingSink) Flush()                         {}

// idleWorld builds a settled lever-lamp circuit.
func idleWorld() *world.MemoryWorld {
	w := world.NewMemoryWorld()
	w.SetBlock(cube.Pos{0, 64, 0}, block.Lever{Face: cube.FaceUp})
	w.SetBlock(cube.Pos{1, 64, 0}, block.Lamp{})
	return w
}

func TestCompileResetIdleNoop(t *testing.T) {
	sink := &countingSink{}
	c := NewController(Config{Sink: sink})
	if err := c.Compile(idleWorld(), Options{Optimize: true}); err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if err := c.Reset(); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if sink.writes != 0 {
		t.Fatalf("compile∘reset on an idle circuit must not write, got %d writes", sink.writes)
	}
	if c.Active() {
		t.Fatalf("expected controller idle after reset")
	}
}

func TestCompileWhileActive(t *testing.T) {
	c := NewController(Config{Sink: &countingSink{}})
	if err := c.Compile(idleWorld(), Options{}); err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if err := c.Compile(idleWorld(), Options{}); err != ErrActiveCompilation {
		t.Fatalf("expected ErrActiveCompilation, got %v", err)
	}
}

func TestInteractionsApplyAtTickBoundary(t *testing.T) {
	w := idleWorld()
	sink := &countingSink{}
	c := NewController(Config{Sink: sink})
	if err := c.Compile(w, Options{Optimize: true}); err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	c.OnUse(cube.Pos{0, 64, 0}, backend.Flick, mgl64.Vec3{})
	c.Flush()
	if sink.writes != 0 {
		t.Fatalf("interaction must not apply before the tick boundary")
	}
	c.Tick()
	c.Flush()
	if sink.writes == 0 {
		t.Fatalf("expected the lever and lamp writes after the tick")
	}
}

func TestBlockChangedForcesReset(t *testing.T) {
	c := NewController(Config{Sink: &countingSink{}})
	if err := c.Compile(idleWorld(), Options{}); err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	c.BlockChanged(cube.Pos{0, 64, 0})
	if c.Active() {
		t.Fatalf("expected an automatic reset after a world mutation")
	}
}

func TestInspectCarriesCompilationID(t *testing.T) {
	c := NewController(Config{Sink: &countingSink{}})
	if err := c.Compile(idleWorld(), Options{}); err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	report, ok := c.Inspect(cube.Pos{1, 64, 0})
	if !ok {
		t.Fatalf("expected a node at the lamp position")
	}
	if report.Compilation != c.id {
		t.Fatalf("expected the report tagged with the compilation id")
	}
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redpiler.toml")

	conf, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("initial load failed: %v", err)
	}
	if conf != DefaultUserConfig() {
		t.Fatalf("expected defaults on first load, got %+v", conf)
	}

	conf.Optimize = true
	conf.RTPS = 40
	if err := SaveConfig(path, conf); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !got.Optimize || got.RTPS != 40 {
		t.Fatalf("config lost in round trip: %+v", got)
	}
}
