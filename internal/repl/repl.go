// Package repl implements the supplemented --repl CLI mode: an interactive
// loop that reads one rule body at a time (e.g. "r : 'a' | 'b' ;"), compiles
// it as a single-rule grammar, and prints the whole generated source --
// useful for iterating on a tricky rule without round-tripping through a
// file. Grounded on internal/input's InteractiveCommandReader, switching
// between GNU-readline editing and a direct line reader depending on
// whether stdin is a terminal (mattn/go-isatty), the same distinction
// cmd/tqi/main.go's --direct flag makes explicit for its own REPL.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"

	"github.com/dekarrin/grammarinator/internal/emit"
	"github.com/dekarrin/grammarinator/internal/loader"
)

// LineReader is the minimal surface repl needs, satisfied by both a
// readline.Instance and a plain buffered stdin reader.
type LineReader interface {
	ReadLine() (string, error)
	Close() error
}

type interactiveReader struct{ rl *readline.Instance }

func (r *interactiveReader) ReadLine() (string, error) { return r.rl.Readline() }
func (r *interactiveReader) Close() error              { return r.rl.Close() }

type directReader struct{ r *bufio.Reader }

func (r *directReader) ReadLine() (string, error) {
	line, err := r.r.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}
func (r *directReader) Close() error { return nil }

// NewLineReader picks an interactive (readline) or direct (bufio) reader
// for in, preferring readline only when in is an interactive terminal.
func NewLineReader(in *os.File) (LineReader, error) {
	if isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd()) {
		rl, err := readline.NewEx(&readline.Config{Prompt: "g4> ", Stdin: in})
		if err != nil {
			return nil, fmt.Errorf("repl: create readline: %w", err)
		}
		return &interactiveReader{rl: rl}, nil
	}
	return &directReader{r: bufio.NewReader(in)}, nil
}

// singleRuleReader is a loader.FileReader backed by one in-memory rule
// body, wrapped in a throwaway grammar header so the normal loader/emit
// pipeline can compile it unchanged.
type singleRuleReader struct {
	src string
}

func (r singleRuleReader) ReadGrammar(name string) (string, string, error) {
	return r.src, "<repl>", nil
}

// CompileLine wraps a single rule body typed at the prompt (e.g.
// "r : 'a' 'b'? ;") in a minimal grammar and returns its generated source.
func CompileLine(line string) (string, error) {
	src := "grammar ReplInput;\n" + line + "\n"
	result, err := loader.Load(singleRuleReader{src: src}, "ReplInput")
	if err != nil {
		return "", err
	}
	return emit.Generate(result, emit.Options{})
}

// Run drives the interactive loop: read a line, compile it, print the
// result or the error, until EOF.
func Run(lr LineReader, out io.Writer) error {
	defer lr.Close()
	for {
		line, err := lr.ReadLine()
		line = strings.TrimSpace(line)
		if line != "" {
			src, cerr := CompileLine(line)
			if cerr != nil {
				fmt.Fprintf(out, "error: %v\n", cerr)
			} else {
				fmt.Fprintln(out, src)
			}
		}
		if err != nil {
			if err == io.EOF || err == readline.ErrInterrupt {
				return nil
			}
			return err
		}
	}
}
