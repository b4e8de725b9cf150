package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Table_NewMintsUniqueSequentialIds(t *testing.T) {
	assert := assert.New(t)

	var tbl Table
	assert.Equal("alt_0", tbl.New(KindAlt))
	assert.Equal("alt_1", tbl.New(KindAlt))
	assert.Equal("cond_0", tbl.New(KindCond), "counters are independent per Kind")
}

func Test_Table_SetGet(t *testing.T) {
	assert := assert.New(t)

	var tbl Table
	tbl.Set("rule_0", "3")
	v, ok := tbl.Get("rule_0")
	assert.True(ok)
	assert.Equal("3", v)

	_, ok = tbl.Get("missing")
	assert.False(ok)
}

func Test_Marker(t *testing.T) {
	assert.Equal(t, "{rule_0}", Marker("rule_0"))
}

func Test_Substitute_resolvesEveryMarker(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var tbl Table
	tbl.Set("rule_0", "3")
	tbl.Set("alt_0", "[1, 2]")

	src := "current.min_depth = {rule_0}\nweights = {alt_0}\n"
	out, err := Substitute(src, &tbl)
	require.NoError(err)
	assert.Equal("current.min_depth = 3\nweights = [1, 2]\n", out)
}

func Test_Substitute_missingKeyIsError(t *testing.T) {
	require := require.New(t)

	var tbl Table
	_, err := Substitute("x = {unknown}", &tbl)
	require.Error(err)
}

func Test_Substitute_unterminatedMarkerIsError(t *testing.T) {
	require := require.New(t)

	var tbl Table
	_, err := Substitute("x = {oops", &tbl)
	require.Error(err)
}

func Test_Substitute_valueIsNotRescannedForMoreMarkers(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	// A placeholder's resolved value may itself contain literal braces (raw
	// action text, e.g. a dict literal) -- Substitute must treat it as an
	// opaque string once inserted, never re-scanning it for further "{}".
	var tbl Table
	tbl.Set("action_0", "d = {'a': 1}")

	out, err := Substitute("{action_0}", &tbl)
	require.NoError(err)
	assert.Equal("d = {'a': 1}", out)
}

func Test_Substitute_noMarkersPassesThroughUnchanged(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var tbl Table
	out, err := Substitute("plain text, no markers here", &tbl)
	require.NoError(err)
	assert.Equal("plain text, no markers here", out)
}
