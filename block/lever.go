package block

import (
	"github.com/df-mc/dragonfly/server/block/cube"
)

// Lever is an interactable block that acts as a persistent redstone power
// source.
type Lever struct {
	// Face is the face of the block the lever is attached to.
	Face cube.Face
	// Powered specifies whether the lever currently outputs redstone power.
	Powered bool
}

// Attachment returns the position of the block the lever is mounted on.
func (l Lever) Attachment(pos cube.Pos) cube.Pos {
	return pos.Side(l.Face.Opposite())
}

// EncodeBlock ...
func (l Lever) EncodeBlock() (string, map[string]any) {
	return "minecraft:lever", map[string]any{
		"open_bit":        l.Powered,
		"lever_direction": leverDirection(l.Face),
	}
}

func leverDirection(face cube.Face) string {
	switch face {
	case cube.FaceDown:
		return "down_north_south"
	case cube.FaceUp:
		return "up_north_south"
	case cube.FaceNorth:
		return "north"
	case cube.FaceSouth:
		return "south"
	case cube.FaceWest:
		return "west"
	default:
		return "east"
	}
}
