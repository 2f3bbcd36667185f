package block

import (
	"testing"
)

func stack(count int) map[string]any {
	return map[string]any{"Count": byte(count)}
}

func TestInventoryReading(t *testing.T) {
	tests := []struct {
		name  string
		b     Block
		items []any
		want  uint8
	}{
		{name: "empty barrel", b: Barrel{}, want: 0},
		{name: "single stack", b: Barrel{}, items: []any{stack(64)}, want: 1},
		{name: "single item", b: Barrel{}, items: []any{stack(1)}, want: 1},
		{name: "full barrel", b: Barrel{}, items: fullInventory(27), want: 15},
		{name: "half hopper", b: Hopper{}, items: []any{stack(64), stack(64), stack(32)}, want: 8},
		{name: "full furnace", b: Furnace{}, items: fullInventory(3), want: 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data map[string]any
			if tt.items != nil {
				data = map[string]any{"Items": tt.items}
			}
			got, ok := ComparatorReading(tt.b, data)
			if !ok {
				t.Fatalf("expected %T to be comparator-readable", tt.b)
			}
			if got != tt.want {
				t.Fatalf("expected reading %d, got %d", tt.want, got)
			}
		})
	}
}

func fullInventory(slots int) []any {
	items := make([]any, slots)
	for i := range items {
		items[i] = stack(64)
	}
	return items
}

func TestLevelEncodedReadings(t *testing.T) {
	tests := []struct {
		name string
		b    Block
		want uint8
	}{
		{name: "cauldron", b: Cauldron{Level: 3}, want: 3},
		{name: "composter", b: Composter{Level: 8}, want: 8},
		{name: "cake untouched", b: Cake{}, want: 14},
		{name: "cake two bites", b: Cake{Bites: 2}, want: 10},
		{name: "jukebox playing", b: Jukebox{HasRecord: true}, want: 15},
		{name: "jukebox idle", b: Jukebox{}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ComparatorReading(tt.b, nil)
			if !ok {
				t.Fatalf("expected %T to be comparator-readable", tt.b)
			}
			if got != tt.want {
				t.Fatalf("expected reading %d, got %d", tt.want, got)
			}
		})
	}
}

func TestNonContainersAreUnreadable(t *testing.T) {
	for _, b := range []Block{Air{}, Stone{}, Lever{}, Lamp{}} {
		if _, ok := ComparatorReading(b, nil); ok {
			t.Fatalf("expected %T to be unreadable", b)
		}
	}
}

func TestIntValueWidths(t *testing.T) {
	for _, v := range []any{byte(5), int8(5), int16(5), int32(5), int64(5), 5} {
		if got := intValue(v); got != 5 {
			t.Fatalf("expected 5 from %T, got %d", v, got)
		}
	}
	if got := intValue("five"); got != 0 {
		t.Fatalf("expected 0 for unsupported type, got %d", got)
	}
}
