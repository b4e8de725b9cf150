// Package diag implements the --dump-graph diagnostic flag: a binary dump
// of the grammar graph and its solved depths, for comparing two compiler
// runs or inspecting why a rule was pruned, without re-deriving it from the
// emitted Python source. Grounded on the teacher's rezi.EncBinary/DecBinary
// persistence idiom (server/dao/sqlite/sqlite.go), repurposed here for a
// diagnostics dump file instead of durable game-state storage.
package diag

import (
	"github.com/dekarrin/rezi"

	"github.com/dekarrin/grammarinator/internal/gerrors"
	"github.com/dekarrin/grammarinator/internal/ggraph"
)

// VertexDump is the serializable form of one ggraph.Vertex.
type VertexDump struct {
	ID   string
	Kind int
	Out  []string
}

// GraphDump is the serializable form of a whole graph plus its solved
// depths, written by --dump-graph and read back by anything comparing two
// runs.
type GraphDump struct {
	Vertices []VertexDump
	Scalar   map[string]int
	Vector   map[string][]int
}

// Build captures g and result into a GraphDump.
func Build(g *ggraph.Graph, result *ggraph.DepthResult) *GraphDump {
	dump := &GraphDump{Scalar: result.Scalar, Vector: result.Vector}
	for _, id := range g.Ids() {
		v := g.Vertex(id)
		dump.Vertices = append(dump.Vertices, VertexDump{ID: v.ID, Kind: int(v.Kind), Out: v.Out})
	}
	return dump
}

// Encode serializes a GraphDump to its binary form. EncBinary never fails,
// so the error return exists only to keep this call symmetric with Decode.
func Encode(dump *GraphDump) ([]byte, error) {
	return rezi.EncBinary(dump), nil
}

// Decode parses a binary form previously produced by Encode.
func Decode(data []byte) (*GraphDump, error) {
	dump := &GraphDump{}
	n, err := rezi.DecBinary(data, dump)
	if err != nil {
		return nil, gerrors.Wrap(gerrors.KindInput, err, "diag: decoding graph dump")
	}
	if n != len(data) {
		return nil, gerrors.Newf(gerrors.KindInput, "diag: decoded %d/%d bytes", n, len(data))
	}
	return dump, nil
}
