package block

import (
	"github.com/df-mc/dragonfly/server/block/cube"
)

// Repeater is a diode that refreshes a redstone signal to full strength
// after a configurable delay.
type Repeater struct {
	// Facing is the horizontal direction the repeater outputs towards.
	Facing cube.Direction
	// Delay is the signal delay in ticks, between 1 and 4.
	Delay uint8
	// Powered specifies whether the repeater currently outputs power.
	Powered bool
	// Locked specifies whether a powered diode at the side holds the
	// repeater in its current state.
	Locked bool
}

// InputPos returns the position the repeater reads its default input from.
func (r Repeater) InputPos(pos cube.Pos) cube.Pos {
	return pos.Side(r.Facing.Opposite().Face())
}

// OutputPos returns the position the repeater outputs towards.
func (r Repeater) OutputPos(pos cube.Pos) cube.Pos {
	return pos.Side(r.Facing.Face())
}

// SidePositions returns the two positions the repeater reads lock inputs
// from.
func (r Repeater) SidePositions(pos cube.Pos) [2]cube.Pos {
	left := r.Facing.RotateLeft().Face()
	right := r.Facing.RotateRight().Face()
	return [2]cube.Pos{pos.Side(left), pos.Side(right)}
}

// EncodeBlock ...
func (r Repeater) EncodeBlock() (string, map[string]any) {
	name := "minecraft:unpowered_repeater"
	if r.Powered {
		name = "minecraft:powered_repeater"
	}
	return name, map[string]any{
		"repeater_delay":               int32(r.Delay - 1),
		"minecraft:cardinal_direction": directionName(r.Facing),
	}
}

// Comparator compares or subtracts its side inputs from its default
// input, preserving analog signal strength.
type Comparator struct {
	// Facing is the horizontal direction the comparator outputs towards.
	Facing cube.Direction
	// Subtract specifies subtract mode rather than compare mode.
	Subtract bool
	// Powered specifies whether the comparator currently outputs power.
	Powered bool
	// Power is the current output signal strength, between 0 and 15.
	Power uint8
}

// InputPos returns the position the comparator reads its default input
// from.
func (c Comparator) InputPos(pos cube.Pos) cube.Pos {
	return pos.Side(c.Facing.Opposite().Face())
}

// OutputPos returns the position the comparator outputs towards.
func (c Comparator) OutputPos(pos cube.Pos) cube.Pos {
	return pos.Side(c.Facing.Face())
}

// SidePositions returns the two positions the comparator reads side
// inputs from.
func (c Comparator) SidePositions(pos cube.Pos) [2]cube.Pos {
	left := c.Facing.RotateLeft().Face()
	right := c.Facing.RotateRight().Face()
	return [2]cube.Pos{pos.Side(left), pos.Side(right)}
}

// EncodeBlock ...
func (c Comparator) EncodeBlock() (string, map[string]any) {
	name := "minecraft:unpowered_comparator"
	if c.Powered {
		name = "minecraft:powered_comparator"
	}
	return name, map[string]any{
		"output_subtract_bit":          c.Subtract,
		"output_lit_bit":               c.Powered,
		"minecraft:cardinal_direction": directionName(c.Facing),
	}
}

func directionName(d cube.Direction) string {
	switch d {
	case cube.North:
		return "north"
	case cube.South:
		return "south"
	case cube.West:
		return "west"
	default:
		return "east"
	}
}
