package block

import (
	"github.com/df-mc/dragonfly/server/block/cube"
)

// Button is a momentary redstone power source. Stone buttons release
// after 10 ticks, wooden buttons after 15.
type Button struct {
	// Face is the face of the block the button is attached to.
	Face cube.Face
	// Pressed specifies whether the button is currently pressed down.
	Pressed bool
	// Wood specifies the wooden variant with its longer release delay.
	Wood bool
}

// ReleaseDelay returns the number of ticks the button stays pressed.
func (b Button) ReleaseDelay() uint {
	if b.Wood {
		return 15
	}
	return 10
}

// Attachment returns the position of the block the button is mounted on.
func (b Button) Attachment(pos cube.Pos) cube.Pos {
	return pos.Side(b.Face.Opposite())
}

// EncodeBlock ...
func (b Button) EncodeBlock() (string, map[string]any) {
	name := "minecraft:stone_button"
	if b.Wood {
		name = "minecraft:wooden_button"
	}
	return name, map[string]any{
		"button_pressed_bit": b.Pressed,
		"facing_direction":   int32(b.Face),
	}
}

// PressurePlate is a momentary power source toggled by entities standing
// on it.
type PressurePlate struct {
	// Pressed specifies whether the plate is currently held down.
	Pressed bool
	// Wood specifies the wooden variant.
	Wood bool
}

// EncodeBlock ...
func (p PressurePlate) EncodeBlock() (string, map[string]any) {
	name := "minecraft:stone_pressure_plate"
	if p.Wood {
		name = "minecraft:wooden_pressure_plate"
	}
	signal := int32(0)
	if p.Pressed {
		signal = 15
	}
	return name, map[string]any{"redstone_signal": signal}
}
