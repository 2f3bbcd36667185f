package block

import (
	"github.com/df-mc/dragonfly/server/block/cube"
)

// Decode converts an encoded block identifier and its properties back to
// a block state. Unknown identifiers decode to Stone: a region dump only
// records non-air positions, and any block the compiler does not
// simulate behaves like a plain conductor.
func Decode(name string, props map[string]any) Block {
	switch name {
	case "minecraft:air":
		return Air{}
	case "minecraft:stone":
		return Stone{}
	case "minecraft:lever":
		return Lever{Face: leverFace(props), Powered: boolProp(props, "open_bit")}
	case "minecraft:unpowered_repeater", "minecraft:powered_repeater":
		return Repeater{
			Facing:  decodeDirection(props),
			Delay:   uint8(intProp(props, "repeater_delay")) + 1,
			Powered: name == "minecraft:powered_repeater",
		}
	case "minecraft:unpowered_comparator", "minecraft:powered_comparator":
		return Comparator{
			Facing:   decodeDirection(props),
			Subtract: boolProp(props, "output_subtract_bit"),
			Powered:  name == "minecraft:powered_comparator",
		}
	case "minecraft:redstone_torch", "minecraft:unlit_redstone_torch":
		return Torch{Face: torchFace(props), Lit: name == "minecraft:redstone_torch"}
	case "minecraft:redstone_wire":
		return RedstoneDust{Power: uint8(intProp(props, "redstone_signal"))}
	case "minecraft:redstone_lamp", "minecraft:lit_redstone_lamp":
		return Lamp{Lit: name == "minecraft:lit_redstone_lamp"}
	case "minecraft:iron_trapdoor":
		return Trapdoor{Open: boolProp(props, "open_bit")}
	case "minecraft:stone_button", "minecraft:wooden_button":
		return Button{
			Face:    cube.Face(intProp(props, "facing_direction")),
			Pressed: boolProp(props, "button_pressed_bit"),
			Wood:    name == "minecraft:wooden_button",
		}
	case "minecraft:stone_pressure_plate", "minecraft:wooden_pressure_plate":
		return PressurePlate{
			Pressed: intProp(props, "redstone_signal") > 0,
			Wood:    name == "minecraft:wooden_pressure_plate",
		}
	case "minecraft:noteblock":
		return NoteBlock{}
	case "minecraft:barrel":
		return Barrel{}
	case "minecraft:chest":
		return Chest{}
	case "minecraft:trapped_chest":
		return Chest{Trapped: true}
	case "minecraft:furnace":
		return Furnace{}
	case "minecraft:blast_furnace":
		return BlastFurnace{}
	case "minecraft:smoker":
		return Smoker{}
	case "minecraft:hopper":
		return Hopper{}
	case "minecraft:dropper":
		return Dropper{}
	case "minecraft:dispenser":
		return Dispenser{}
	case "minecraft:cauldron":
		return Cauldron{Level: uint8(intProp(props, "fill_level"))}
	case "minecraft:composter":
		return Composter{Level: uint8(intProp(props, "composter_fill_level"))}
	case "minecraft:cake":
		return Cake{Bites: uint8(intProp(props, "bite_counter"))}
	case "minecraft:jukebox":
		return Jukebox{}
	}
	return Stone{}
}

func leverFace(props map[string]any) cube.Face {
	dir, _ := props["lever_direction"].(string)
	switch dir {
	case "down_north_south", "down_east_west":
		return cube.FaceDown
	case "north":
		return cube.FaceNorth
	case "south":
		return cube.FaceSouth
	case "west":
		return cube.FaceWest
	case "east":
		return cube.FaceEast
	default:
		return cube.FaceUp
	}
}

func torchFace(props map[string]any) cube.Face {
	dir, _ := props["torch_facing_direction"].(string)
	switch dir {
	case "north":
		return cube.FaceNorth
	case "south":
		return cube.FaceSouth
	case "west":
		return cube.FaceWest
	case "east":
		return cube.FaceEast
	default:
		return cube.FaceUp
	}
}

func decodeDirection(props map[string]any) cube.Direction {
	dir, _ := props["minecraft:cardinal_direction"].(string)
	switch dir {
	case "south":
		return cube.South
	case "west":
		return cube.West
	case "east":
		return cube.East
	default:
		return cube.North
	}
}

func boolProp(props map[string]any, key string) bool {
	switch v := props[key].(type) {
	case bool:
		return v
	case byte:
		return v != 0
	case int32:
		return v != 0
	}
	return false
}

func intProp(props map[string]any, key string) int {
	return intValue(props[key])
}
