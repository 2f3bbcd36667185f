package block

// NoteBlock plays a note when it receives a rising redstone edge.
type NoteBlock struct {
	// Pitch is the note played on a rising edge, between 0 and 24.
	Pitch uint8
	// Powered tracks whether the block received power last update.
	Powered bool
}

// Conducts ...
func (NoteBlock) Conducts() bool { return true }

// EncodeBlock ...
func (n NoteBlock) EncodeBlock() (string, map[string]any) {
	return "minecraft:noteblock", nil
}
