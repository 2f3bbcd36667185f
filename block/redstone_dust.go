package block

// RedstoneDust represents redstone wire laid on the ground.
type RedstoneDust struct {
	// Power is the current signal strength carried by the dust (0-15).
	Power uint8
}

// EncodeBlock ...
func (d RedstoneDust) EncodeBlock() (string, map[string]any) {
	return "minecraft:redstone_wire", map[string]any{
		"redstone_signal": int32(d.Power),
	}
}
