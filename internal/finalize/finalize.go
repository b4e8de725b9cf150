// Package finalize is the orchestration glue (spec.md §4.5) that drives the
// loader and the emitter end to end and hands back the fuzzer source ready
// to write to disk. internal/emit.Generate already performs the depth-
// solver-then-substitute step described in spec.md §4.5 internally (there
// is no benefit to splitting "run the solver" from "run the emitter" into
// separate packages, since the solver can only run after the whole tree has
// been walked) -- this package is the one place that sequences loader →
// emit and decides the output file name, matching the orchestration-glue
// slice of the component share table in spec.md §2.
package finalize

import (
	"github.com/dekarrin/grammarinator/internal/emit"
	"github.com/dekarrin/grammarinator/internal/gerrors"
	"github.com/dekarrin/grammarinator/internal/loader"
)

// Result is a completed compilation: the generator source text and the
// output file name it should be written under.
type Result struct {
	FileName string
	Source   string
}

// Compile loads entryName (and its transitive imports) via reader and
// emits the fuzzer source for it.
func Compile(reader loader.FileReader, entryName string, opts emit.Options) (*Result, error) {
	loaded, err := loader.Load(reader, entryName)
	if err != nil {
		return nil, err
	}

	src, err := emit.Generate(loaded, opts)
	if err != nil {
		return nil, err
	}

	className := deriveClassName(loaded.GrammarName)
	return &Result{
		FileName: className + ".py",
		Source:   src,
	}, nil
}

func deriveClassName(grammarName string) string {
	name := grammarName
	for _, suffix := range []string{"Lexer", "Parser"} {
		if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix {
			name = name[:len(name)-len(suffix)]
			break
		}
	}
	return name + "Generator"
}

// ErrNoEntry is an InputError describing a compile with no grammar file
// given. cmd/grammarinator does not return it: it reports a missing grammar
// file argument itself and exits with ExitUsageError.
var ErrNoEntry = gerrors.New(gerrors.KindInput, "finalize: no grammar file given")
