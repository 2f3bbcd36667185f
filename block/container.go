package block

import (
	"math"
)

// Container is implemented by inventory-backed blocks that comparators
// can measure. InventorySlots returns the size of the inventory used by
// the fullness formula.
type Container interface {
	Block
	InventorySlots() int
}

// Barrel is an inventory block.
type Barrel struct{}

// InventorySlots ...
func (Barrel) InventorySlots() int { return 27 }

// Conducts ...
func (Barrel) Conducts() bool { return true }

// EncodeBlock ...
func (Barrel) EncodeBlock() (string, map[string]any) {
	return "minecraft:barrel", nil
}

// Chest is an inventory block, optionally the trapped variant.
type Chest struct {
	// Trapped specifies the trapped chest variant.
	Trapped bool
}

// InventorySlots ...
func (Chest) InventorySlots() int { return 27 }

// EncodeBlock ...
func (c Chest) EncodeBlock() (string, map[string]any) {
	if c.Trapped {
		return "minecraft:trapped_chest", nil
	}
	return "minecraft:chest", nil
}

// Furnace is an inventory block with fuel, input and output slots.
type Furnace struct{}

// InventorySlots ...
func (Furnace) InventorySlots() int { return 3 }

// Conducts ...
func (Furnace) Conducts() bool { return true }

// EncodeBlock ...
func (Furnace) EncodeBlock() (string, map[string]any) {
	return "minecraft:furnace", nil
}

// BlastFurnace is an inventory block with fuel, input and output slots.
type BlastFurnace struct{}

// InventorySlots ...
func (BlastFurnace) InventorySlots() int { return 3 }

// Conducts ...
func (BlastFurnace) Conducts() bool { return true }

// EncodeBlock ...
func (BlastFurnace) EncodeBlock() (string, map[string]any) {
	return "minecraft:blast_furnace", nil
}

// Smoker is an inventory block with fuel, input and output slots.
type Smoker struct{}

// InventorySlots ...
func (Smoker) InventorySlots() int { return 3 }

// Conducts ...
func (Smoker) Conducts() bool { return true }

// EncodeBlock ...
func (Smoker) EncodeBlock() (string, map[string]any) {
	return "minecraft:smoker", nil
}

// Hopper is an inventory block that would normally move items around.
// The compiler only reads its fullness.
type Hopper struct{}

// InventorySlots ...
func (Hopper) InventorySlots() int { return 5 }

// EncodeBlock ...
func (Hopper) EncodeBlock() (string, map[string]any) {
	return "minecraft:hopper", nil
}

// Dropper is an inventory block.
type Dropper struct{}

// InventorySlots ...
func (Dropper) InventorySlots() int { return 9 }

// Conducts ...
func (Dropper) Conducts() bool { return true }

// EncodeBlock ...
func (Dropper) EncodeBlock() (string, map[string]any) {
	return "minecraft:dropper", nil
}

// Dispenser is an inventory block.
type Dispenser struct{}

// InventorySlots ...
func (Dispenser) InventorySlots() int { return 9 }

// Conducts ...
func (Dispenser) Conducts() bool { return true }

// EncodeBlock ...
func (Dispenser) EncodeBlock() (string, map[string]any) {
	return "minecraft:dispenser", nil
}

// Cauldron holds up to three levels of water.
type Cauldron struct {
	// Level is the fill level, between 0 and 3.
	Level uint8
}

// EncodeBlock ...
func (c Cauldron) EncodeBlock() (string, map[string]any) {
	return "minecraft:cauldron", map[string]any{"fill_level": int32(c.Level)}
}

// Composter holds up to eight levels of compost.
type Composter struct {
	// Level is the compost level, between 0 and 8.
	Level uint8
}

// EncodeBlock ...
func (c Composter) EncodeBlock() (string, map[string]any) {
	return "minecraft:composter", map[string]any{"composter_fill_level": int32(c.Level)}
}

// Cake is measurable by a comparator through its remaining slices.
type Cake struct {
	// Bites is the number of bites taken, between 0 and 6.
	Bites uint8
}

// EncodeBlock ...
func (c Cake) EncodeBlock() (string, map[string]any) {
	return "minecraft:cake", map[string]any{"bite_counter": int32(c.Bites)}
}

// Jukebox outputs full strength while a record is playing.
type Jukebox struct {
	// HasRecord specifies whether a record is inserted.
	HasRecord bool
}

// EncodeBlock ...
func (Jukebox) EncodeBlock() (string, map[string]any) {
	return "minecraft:jukebox", nil
}

// ComparatorReading returns the signal strength a comparator measures
// from the block, using its block entity data where the block is
// inventory-backed. The second return value is false for blocks that
// comparators cannot read.
func ComparatorReading(b Block, data map[string]any) (uint8, bool) {
	switch b := b.(type) {
	case Cauldron:
		return min(b.Level, 3), true
	case Composter:
		return min(b.Level, 8), true
	case Cake:
		return (7 - min(b.Bites, 7)) * 2, true
	case Jukebox:
		if b.HasRecord {
			return 15, true
		}
		return 0, true
	case Container:
		return inventoryReading(b.InventorySlots(), data), true
	}
	return 0, false
}

// inventoryReading applies the vanilla fullness formula: zero for an
// empty inventory, otherwise floor(1 + fullness * 14).
func inventoryReading(slots int, data map[string]any) uint8 {
	if slots <= 0 || data == nil {
		return 0
	}
	items, _ := data["Items"].([]any)
	fullness, total := 0.0, 0
	for _, it := range items {
		stack, ok := it.(map[string]any)
		if !ok {
			continue
		}
		count := intValue(stack["Count"])
		if count <= 0 {
			continue
		}
		total += count
		fullness += float64(count) / 64.0
	}
	if total == 0 {
		return 0
	}
	return uint8(math.Floor(1 + fullness/float64(slots)*14))
}

// intValue tolerates the integer widths the NBT decoder may produce.
func intValue(v any) int {
	switch v := v.(type) {
	case byte:
		return int(v)
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}
