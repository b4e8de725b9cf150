package diag

import (
	"testing"

	"github.com/dekarrin/grammarinator/internal/ggraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSampleGraph(t *testing.T) (*ggraph.Graph, *ggraph.DepthResult) {
	t.Helper()
	var g ggraph.Graph
	require.NoError(t, g.AddVertex("a", ggraph.KindRule))
	require.NoError(t, g.AddVertex("b", ggraph.KindRule))
	require.NoError(t, g.AddEdge("a", "b"))
	result, err := g.Solve()
	require.NoError(t, err)
	return &g, result
}

func Test_Build_capturesVerticesAndDepths(t *testing.T) {
	assert := assert.New(t)

	g, result := buildSampleGraph(t)
	dump := Build(g, result)

	assert.Len(dump.Vertices, 2)
	assert.Equal("a", dump.Vertices[0].ID)
	assert.Equal([]string{"b"}, dump.Vertices[0].Out)
	assert.Equal(result.Scalar, dump.Scalar)
}

func Test_EncodeDecode_roundTrips(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g, result := buildSampleGraph(t)
	dump := Build(g, result)

	data, err := Encode(dump)
	require.NoError(err)
	require.NotEmpty(data)

	back, err := Decode(data)
	require.NoError(err)
	assert.Equal(dump.Scalar, back.Scalar)
	assert.Equal(dump.Vector, back.Vector)
	require.Len(back.Vertices, len(dump.Vertices))
	for i, v := range dump.Vertices {
		assert.Equal(v, back.Vertices[i])
	}
}

func Test_Decode_truncatedDataIsError(t *testing.T) {
	require := require.New(t)

	g, result := buildSampleGraph(t)
	data, err := Encode(Build(g, result))
	require.NoError(err)

	_, err = Decode(data[:len(data)-1])
	require.Error(err)
}

func Test_Decode_garbageDataIsError(t *testing.T) {
	require := require.New(t)

	_, err := Decode([]byte{0xFF, 0xFE, 0xFD})
	require.Error(err)
}
