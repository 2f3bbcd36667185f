package block

import (
	"github.com/df-mc/dragonfly/server/block/cube"
)

// Torch is a redstone torch: an inverter that is lit unless the block it
// is attached to receives power.
type Torch struct {
	// Face is the face of the block the torch is attached to. FaceUp
	// means the torch stands on top of its support.
	Face cube.Face
	// Lit specifies whether the torch currently outputs power.
	Lit bool
}

// Attachment returns the position of the block the torch is mounted on.
func (t Torch) Attachment(pos cube.Pos) cube.Pos {
	return pos.Side(t.Face.Opposite())
}

// EncodeBlock ...
func (t Torch) EncodeBlock() (string, map[string]any) {
	name := "minecraft:unlit_redstone_torch"
	if t.Lit {
		name = "minecraft:redstone_torch"
	}
	return name, map[string]any{"torch_facing_direction": torchFacing(t.Face)}
}

func torchFacing(face cube.Face) string {
	switch face {
	case cube.FaceUp:
		return "top"
	case cube.FaceNorth:
		return "north"
	case cube.FaceSouth:
		return "south"
	case cube.FaceWest:
		return "west"
	case cube.FaceEast:
		return "east"
	default:
		return "unknown"
	}
}
