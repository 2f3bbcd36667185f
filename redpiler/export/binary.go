// Package export serializes finalized redstone graphs: a versioned
// binary form for tooling and a Graphviz form for inspection.
package export

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/df-mc/redpiler/redpiler/graph"
)

// Magic identifies a binary graph export.
const Magic uint32 = 0x52504C52 // "RPLR"

// Version is the current binary format version.
const Version uint32 = 1

// nodeState is the fixed-size state blob of a node record.
type nodeState struct {
	Delay       uint8
	Subtract    uint8
	FacingDiode uint8
	FarOverride int8
	Powered     uint8
	Locked      uint8
	Output      uint8
	Pitch       uint8
	Flags       uint8
}

const (
	flagIO uint8 = 1 << iota
	flagAnalogSource
)

// WriteGraph writes the graph in the version-1 little-endian layout:
// magic, version, node count, then per node a type tag, the fixed state
// blob and its outgoing links. Positions are not written; the compiled
// graph is position-agnostic.
func WriteGraph(w io.Writer, g *graph.Graph) error {
	if g.Live() != g.Len() {
		return fmt.Errorf("export: graph not compacted")
	}
	head := []uint32{Magic, Version, uint32(g.Len())}
	if err := binary.Write(w, binary.LittleEndian, head); err != nil {
		return err
	}
	var outer error
	g.Nodes(func(id graph.NodeID, n *graph.Node) {
		if outer != nil {
			return
		}
		outer = writeNode(w, g, id, n)
	})
	return outer
}

func writeNode(w io.Writer, g *graph.Graph, id graph.NodeID, n *graph.Node) error {
	if err := binary.Write(w, binary.LittleEndian, uint8(n.Kind)); err != nil {
		return err
	}
	state := nodeState{
		Delay:       n.Delay,
		Subtract:    boolByte(n.Subtract),
		FacingDiode: boolByte(n.FacingDiode),
		FarOverride: n.FarOverride,
		Powered:     boolByte(n.Powered),
		Locked:      boolByte(n.Locked),
		Output:      n.Output,
		Pitch:       n.Pitch,
	}
	if n.IsIO {
		state.Flags |= flagIO
	}
	if n.AnalogSource {
		state.Flags |= flagAnalogSource
	}
	if err := binary.Write(w, binary.LittleEndian, state); err != nil {
		return err
	}
	links := g.Outgoing(id)
	if err := binary.Write(w, binary.LittleEndian, uint32(len(links))); err != nil {
		return err
	}
	for _, l := range links {
		rec := struct {
			Dst    uint32
			Kind   uint8
			Weight uint8
		}{Dst: uint32(l.Node), Kind: uint8(l.Kind), Weight: l.Weight}
		if err := binary.Write(w, binary.LittleEndian, rec); err != nil {
			return err
		}
	}
	return nil
}

// ReadGraph parses a version-1 binary export back into a graph.
func ReadGraph(r io.Reader) (*graph.Graph, error) {
	var head [3]uint32
	if err := binary.Read(r, binary.LittleEndian, &head); err != nil {
		return nil, fmt.Errorf("export: read header: %w", err)
	}
	if head[0] != Magic {
		return nil, fmt.Errorf("export: bad magic %#x", head[0])
	}
	if head[1] != Version {
		return nil, fmt.Errorf("export: unsupported version %d", head[1])
	}
	g := graph.New()
	count := int(head[2])
	type pendingLink struct {
		src, dst graph.NodeID
		kind     graph.LinkKind
		weight   uint8
	}
	var links []pendingLink
	for i := 0; i < count; i++ {
		var tag uint8
		if err := binary.Read(r, binary.LittleEndian, &tag); err != nil {
			return nil, fmt.Errorf("export: read node %d: %w", i, err)
		}
		var state nodeState
		if err := binary.Read(r, binary.LittleEndian, &state); err != nil {
			return nil, fmt.Errorf("export: read node %d: %w", i, err)
		}
		id := g.AddNode(graph.Node{
			Kind:         graph.Kind(tag),
			Delay:        state.Delay,
			Subtract:     state.Subtract != 0,
			FacingDiode:  state.FacingDiode != 0,
			FarOverride:  state.FarOverride,
			Powered:      state.Powered != 0,
			Locked:       state.Locked != 0,
			Output:       state.Output,
			Pitch:        state.Pitch,
			IsIO:         state.Flags&flagIO != 0,
			AnalogSource: state.Flags&flagAnalogSource != 0,
		})
		var linkCount uint32
		if err := binary.Read(r, binary.LittleEndian, &linkCount); err != nil {
			return nil, fmt.Errorf("export: read node %d: %w", i, err)
		}
		for j := uint32(0); j < linkCount; j++ {
			var rec struct {
				Dst    uint32
				Kind   uint8
				Weight uint8
			}
			if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
				return nil, fmt.Errorf("export: read link: %w", err)
			}
			links = append(links, pendingLink{
				src: id, dst: graph.NodeID(rec.Dst), kind: graph.LinkKind(rec.Kind), weight: rec.Weight,
			})
		}
	}
	for _, l := range links {
		if int(l.dst) >= count {
			return nil, fmt.Errorf("export: link target %d out of range", l.dst)
		}
		g.AddLink(l.src, l.dst, l.kind, l.weight)
	}
	return g, nil
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
