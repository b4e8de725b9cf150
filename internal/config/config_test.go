package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Default(t *testing.T) {
	assert := assert.New(t)

	cfg := Default()
	assert.Equal("UTF-8", cfg.Encoding)
	assert.Equal(".", cfg.Out)
	assert.False(cfg.Pep8)
	assert.False(cfg.NoActions)
	assert.Equal("", cfg.Lib)
}

func Test_Load_overridesOnlySpecifiedFields(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "grammarinator.toml")
	require.NoError(os.WriteFile(path, []byte(`
pep8 = true
lib = "./grammars"
`), 0644))

	cfg, err := Load(path)
	require.NoError(err)

	assert.True(cfg.Pep8)
	assert.Equal("./grammars", cfg.Lib)
	assert.Equal("UTF-8", cfg.Encoding, "fields absent from the file keep Default()'s value")
	assert.Equal(".", cfg.Out)
}

func Test_Load_allFields(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "grammarinator.toml")
	require.NoError(os.WriteFile(path, []byte(`
encoding = "Latin-1"
lib = "/opt/grammars"
pep8 = true
no_actions = true
out = "/tmp/out"
`), 0644))

	cfg, err := Load(path)
	require.NoError(err)

	assert.Equal(Config{
		Encoding:  "Latin-1",
		Lib:       "/opt/grammars",
		Pep8:      true,
		NoActions: true,
		Out:       "/tmp/out",
	}, cfg)
}

func Test_Load_missingFileIsError(t *testing.T) {
	require := require.New(t)

	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.Error(err)
}

func Test_Load_malformedTomlIsError(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	require.NoError(os.WriteFile(path, []byte("not = [valid toml"), 0644))

	_, err := Load(path)
	require.Error(err)
}
