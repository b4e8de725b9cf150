// Package config loads the project-wide configuration file grammarinator
// reads for settings that aren't grammar-specific CLI flags, in the style of
// server/config.go's typed, TOML-backed configuration structs, using the
// same github.com/BurntSushi/toml decoder.
package config

import (
	"github.com/BurntSushi/toml"

	"github.com/dekarrin/grammarinator/internal/gerrors"
)

// Config holds project-wide defaults that CLI flags override.
type Config struct {
	// Encoding is the default grammar-file encoding when --encoding is not
	// given.
	Encoding string `toml:"encoding"`

	// Lib is the default import search directory when --lib is not given.
	Lib string `toml:"lib"`

	// Pep8 enables the cosmetic pretty-printer by default.
	Pep8 bool `toml:"pep8"`

	// NoActions disables semantic predicates/actions by default.
	NoActions bool `toml:"no_actions"`

	// Out is the default output directory when -o/--out is not given.
	Out string `toml:"out"`
}

// Default returns the configuration used when no config file is present.
func Default() Config {
	return Config{
		Encoding: "UTF-8",
		Out:      ".",
	}
}

// Load reads and decodes a TOML config file at path, starting from
// Default() so unspecified fields keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, gerrors.Wrapf(gerrors.KindInput, err, "config: reading %q", path)
	}
	return cfg, nil
}
