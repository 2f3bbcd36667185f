package world

import (
	"bytes"
	"fmt"
	"io"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/redpiler/block"
	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// MemoryWorld is a map-backed View and Sink used by tests and by the
// offline tool. The zero value is not usable; construct it with
// NewMemoryWorld or ReadRegion.
type MemoryWorld struct {
	blocks   map[cube.Pos]block.Block
	entities map[cube.Pos]map[string]any

	min, max cube.Pos
	any      bool
}

// NewMemoryWorld creates an empty in-memory world.
func NewMemoryWorld() *MemoryWorld {
	return &MemoryWorld{
		blocks:   make(map[cube.Pos]block.Block),
		entities: make(map[cube.Pos]map[string]any),
	}
}

// SetBlock places a block, growing the region bounds to include pos.
func (w *MemoryWorld) SetBlock(pos cube.Pos, b block.Block) {
	if _, ok := b.(block.Air); ok {
		delete(w.blocks, pos)
	} else {
		w.blocks[pos] = b
	}
	w.grow(pos)
}

// SetBlockEntity attaches block entity data to the position.
func (w *MemoryWorld) SetBlockEntity(pos cube.Pos, data map[string]any) {
	w.entities[pos] = data
	w.grow(pos)
}

// Flush implements Sink. Writes to a MemoryWorld apply immediately.
func (w *MemoryWorld) Flush() {}

// Block ...
func (w *MemoryWorld) Block(pos cube.Pos) block.Block {
	if b, ok := w.blocks[pos]; ok {
		return b
	}
	return block.Air{}
}

// BlockEntity ...
func (w *MemoryWorld) BlockEntity(pos cube.Pos) (map[string]any, bool) {
	data, ok := w.entities[pos]
	return data, ok
}

// Bounds ...
func (w *MemoryWorld) Bounds() (cube.Pos, cube.Pos) {
	return w.min, w.max
}

func (w *MemoryWorld) grow(pos cube.Pos) {
	if !w.any {
		w.min, w.max, w.any = pos, pos, true
		return
	}
	for i := 0; i < 3; i++ {
		if pos[i] < w.min[i] {
			w.min[i] = pos[i]
		}
		if pos[i] > w.max[i] {
			w.max[i] = pos[i]
		}
	}
}

// regionDump is the NBT shape of a serialised MemoryWorld.
type regionDump struct {
	Blocks []dumpBlock `nbt:"blocks"`
}

type dumpBlock struct {
	X      int32          `nbt:"x"`
	Y      int32          `nbt:"y"`
	Z      int32          `nbt:"z"`
	Name   string         `nbt:"name"`
	States map[string]any `nbt:"states"`
	Entity map[string]any `nbt:"entity"`
}

// WriteRegion serialises the world to its NBT dump form.
func (w *MemoryWorld) WriteRegion(out io.Writer) error {
	dump := regionDump{Blocks: make([]dumpBlock, 0, len(w.blocks))}
	min, max := w.Bounds()
	for y := min.Y(); y <= max.Y(); y++ {
		for z := min.Z(); z <= max.Z(); z++ {
			for x := min.X(); x <= max.X(); x++ {
				pos := cube.Pos{x, y, z}
				b, ok := w.blocks[pos]
				if !ok {
					continue
				}
				name, states := b.EncodeBlock()
				entity := w.entities[pos]
				dump.Blocks = append(dump.Blocks, dumpBlock{
					X: int32(x), Y: int32(y), Z: int32(z),
					Name: name, States: states, Entity: entity,
				})
			}
		}
	}
	buf := bytes.NewBuffer(nil)
	if err := nbt.NewEncoder(buf).Encode(dump); err != nil {
		return fmt.Errorf("world: encode region: %w", err)
	}
	_, err := out.Write(buf.Bytes())
	return err
}

// ReadRegion deserialises a region dump into a fresh MemoryWorld.
func ReadRegion(in io.Reader) (*MemoryWorld, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("world: read region: %w", err)
	}
	var dump regionDump
	if err := nbt.NewDecoder(bytes.NewBuffer(data)).Decode(&dump); err != nil {
		return nil, fmt.Errorf("world: decode region: %w", err)
	}
	w := NewMemoryWorld()
	for _, db := range dump.Blocks {
		pos := cube.Pos{int(db.X), int(db.Y), int(db.Z)}
		w.SetBlock(pos, block.Decode(db.Name, db.States))
		if len(db.Entity) > 0 {
			w.SetBlockEntity(pos, db.Entity)
		}
	}
	return w, nil
}
