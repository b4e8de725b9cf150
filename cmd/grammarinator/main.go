/*
Grammarinator compiles one or more ANTLR v4 grammar files into a standalone
Python fuzzer source file.

Usage:

	grammarinator [flags] FILE...

The flags are:

	--no-actions
		Treat all semantic predicates and embedded actions as absent.

	--encoding ENC
		Grammar file encoding. Defaults to UTF-8.

	--lib DIR
		Alternate import search directory. Grammars are looked up here
		first, before the entry files' own directories.

	--pep8
		Apply a cosmetic pretty-printer to the emitted file.

	-o, --out DIR
		Working/output directory. Defaults to the current directory.

	--no-cleanup
		Retain the temporary working directory instead of removing it.

	--antlr PATH
		Accepted for command-line compatibility with the reference tool.
		Grammar files are parsed by this program's own internal/g4parse, so
		no ANTLR jar is ever invoked; the flag is parsed and ignored.

	--dump-graph FILE
		Write a binary snapshot of the grammar graph and solved depths to
		FILE, for offline inspection.

	--repl
		Ignore FILE... and start an interactive line-oriented session
		instead of compiling a file.

	--config FILE
		Project config file supplying defaults for the flags above.
		Defaults to ".grammarinator.toml" in the current directory, if
		present.

	-v, --version
		Give the current version of grammarinator and then exit.

Exit codes: 0 on success, non-zero on any error (parse, I/O, ill-formed
grammar).
*/
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/dekarrin/grammarinator/internal/checksum"
	"github.com/dekarrin/grammarinator/internal/config"
	"github.com/dekarrin/grammarinator/internal/diag"
	"github.com/dekarrin/grammarinator/internal/emit"
	"github.com/dekarrin/grammarinator/internal/finalize"
	"github.com/dekarrin/grammarinator/internal/gencoding"
	"github.com/dekarrin/grammarinator/internal/gerrors"
	"github.com/dekarrin/grammarinator/internal/loader"
	"github.com/dekarrin/grammarinator/internal/prettyprint"
	"github.com/dekarrin/grammarinator/internal/repl"
	"github.com/dekarrin/grammarinator/internal/version"
)

const (
	// ExitSuccess indicates a successful compile.
	ExitSuccess = iota

	// ExitInputError indicates a problem locating, reading, or decoding a
	// grammar file.
	ExitInputError

	// ExitParseError indicates a syntax error in a grammar file.
	ExitParseError

	// ExitIllFormedError indicates a structurally invalid grammar (infinite
	// or unreachable rule, empty alternation).
	ExitIllFormedError

	// ExitOutputError indicates failure to write the emitted file or
	// working directory.
	ExitOutputError

	// ExitInternalError indicates a compiler bug.
	ExitInternalError

	// ExitUsageError indicates bad CLI usage (no grammar file given).
	ExitUsageError
)

var (
	returnCode int = ExitSuccess

	flagNoActions  *bool   = pflag.Bool("no-actions", false, "Treat all semantic predicates and embedded actions as absent")
	flagEncoding   *string = pflag.String("encoding", "", "Grammar file encoding (default UTF-8)")
	flagLib        *string = pflag.String("lib", "", "Alternate import search directory")
	flagPep8       *bool   = pflag.Bool("pep8", false, "Apply a cosmetic pretty-printer to the emitted file")
	flagOut        *string = pflag.StringP("out", "o", "", "Working/output directory (default \".\")")
	flagNoCleanup  *bool   = pflag.Bool("no-cleanup", false, "Retain the temporary working directory")
	flagAntlr      *string = pflag.String("antlr", "", "Path to the ANTLR jar (accepted, unused: grammars are parsed natively)")
	flagDumpGraph  *string = pflag.String("dump-graph", "", "Write a binary snapshot of the grammar graph to FILE")
	flagRepl       *bool   = pflag.Bool("repl", false, "Start an interactive line-oriented session instead of compiling")
	flagConfigFile *string = pflag.String("config", ".grammarinator.toml", "Project config file")
	flagVersion    *bool   = pflag.BoolP("version", "v", false, "Gives the version info")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	if *flagRepl {
		lr, err := repl.NewLineReader(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitInputError
			return
		}
		if err := repl.Run(lr, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitInternalError
		}
		return
	}

	args := pflag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "ERROR: no grammar file given")
		returnCode = ExitUsageError
		return
	}

	cfg := config.Default()
	if _, err := os.Stat(*flagConfigFile); err == nil {
		loaded, err := config.Load(*flagConfigFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitInputError
			return
		}
		cfg = loaded
	}
	applyFlagOverrides(&cfg)

	workDirName := fmt.Sprintf("antlr-%s", uuid.New().String())
	workDir := filepath.Join(cfg.Out, workDirName)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", gerrors.Wrapf(gerrors.KindOutput, err, "creating working directory %q", workDir).Error())
		returnCode = ExitOutputError
		return
	}
	if !*flagNoCleanup {
		defer os.RemoveAll(workDir)
	} else {
		log.Printf("retaining working directory %s", workDir)
	}

	reader := &fsReader{
		primaryDirs: directoriesOf(args),
		libDir:      cfg.Lib,
		encoding:    cfg.Encoding,
	}

	for _, file := range args {
		if err := compileOne(reader, file, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = exitCodeFor(err)
			return
		}
	}
}

// applyFlagOverrides layers any explicitly-set CLI flag on top of cfg,
// following server/config.go's file-then-flag layering.
func applyFlagOverrides(cfg *config.Config) {
	if *flagEncoding != "" {
		cfg.Encoding = *flagEncoding
	}
	if *flagLib != "" {
		cfg.Lib = *flagLib
	}
	if *flagOut != "" {
		cfg.Out = *flagOut
	}
	if *flagPep8 {
		cfg.Pep8 = true
	}
	if *flagNoActions {
		cfg.NoActions = true
	}
}

func compileOne(reader *fsReader, file string, cfg config.Config) error {
	entryName := entryNameOf(file)

	opts := emit.Options{NoActions: cfg.NoActions}
	result, err := finalize.Compile(reader, entryName, opts)
	if err != nil {
		return err
	}

	src := result.Source
	if cfg.Pep8 {
		src = prettyprint.Apply(src)
	}

	outPath := filepath.Join(cfg.Out, result.FileName)
	if err := os.WriteFile(outPath, []byte(src), 0o644); err != nil {
		return gerrors.Wrapf(gerrors.KindOutput, err, "writing %q", outPath)
	}

	if *flagDumpGraph != "" {
		if err := writeGraphDump(reader, entryName, opts, *flagDumpGraph); err != nil {
			return err
		}
	}

	log.Printf("wrote %s, %s lines to %s (checksum %s)",
		humanize.Bytes(uint64(len(src))), humanize.Comma(int64(lineCount(src))), result.FileName, checksum.Of(src)[:12])
	return nil
}

// writeGraphDump re-loads and re-solves the grammar so it can dump the
// internal graph independently of finalize.Compile's own (opaque) solve.
func writeGraphDump(reader loader.FileReader, entryName string, opts emit.Options, path string) error {
	loaded, err := loader.Load(reader, entryName)
	if err != nil {
		return err
	}
	graph, result, err := emit.BuildGraph(loaded, opts)
	if err != nil {
		return err
	}
	dump := diag.Build(graph, result)
	data, err := diag.Encode(dump)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return gerrors.Wrapf(gerrors.KindOutput, err, "writing graph dump %q", path)
	}
	return nil
}

func lineCount(s string) int {
	n := 0
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}

func entryNameOf(file string) string {
	base := filepath.Base(file)
	return base[:len(base)-len(filepath.Ext(base))]
}

func directoriesOf(files []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, f := range files {
		d := filepath.Dir(f)
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	return dirs
}

func exitCodeFor(err error) int {
	gerr, ok := err.(*gerrors.Error)
	if !ok {
		return ExitInternalError
	}
	switch gerr.Kind {
	case gerrors.KindInput:
		return ExitInputError
	case gerrors.KindParse:
		return ExitParseError
	case gerrors.KindIllFormed:
		return ExitIllFormedError
	case gerrors.KindOutput:
		return ExitOutputError
	default:
		return ExitInternalError
	}
}

// fsReader is the on-disk loader.FileReader: it looks for "<name>.g4" in
// libDir first, so --lib can override a grammar also present next to the
// entry file, falling back to the entry files' own directories.
type fsReader struct {
	primaryDirs []string
	libDir      string
	encoding    string
}

func (r *fsReader) ReadGrammar(name string) (string, string, error) {
	candidates := make([]string, 0, len(r.primaryDirs)+1)
	if r.libDir != "" {
		candidates = append(candidates, filepath.Join(r.libDir, name+".g4"))
	}
	for _, dir := range r.primaryDirs {
		candidates = append(candidates, filepath.Join(dir, name+".g4"))
	}

	for _, path := range candidates {
		raw, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", path, gerrors.Wrapf(gerrors.KindInput, err, "reading %q", path)
		}
		enc := r.encoding
		if enc == "" {
			enc = "UTF-8"
		}
		src, err := gencoding.ToUTF8(raw, enc)
		if err != nil {
			return "", path, err
		}
		return src, path, nil
	}

	return "", "", gerrors.Newf(gerrors.KindInput, "grammar %q not found in %v", name, candidates)
}
