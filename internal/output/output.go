// Package output builds run configurations that print command results as
// blocks of a header, a body and a separator.
package output

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertwitch/execwalk/internal/command"
	"github.com/desertwitch/execwalk/internal/schema"
)

var headerStyle = lipgloss.NewStyle().Bold(true)

// Block describes the framing of a printed result. Empty strings are omitted.
type Block struct {
	Header    string
	HideBody  bool
	Separator string
}

// HeaderFunc describes the block for a result. It should return equal
// blocks for equal results.
type HeaderFunc func(res command.Result) Block

// Streams are the destinations of printed blocks. Nil writers fall back to
// the process' standard streams.
type Streams struct {
	Stdout io.Writer
	Stderr io.Writer

	// Color renders the header in bold.
	Color bool
}

func (s Streams) stdout() io.Writer {
	if s.Stdout == nil {
		return os.Stdout
	}

	return s.Stdout
}

func (s Streams) stderr() io.Writer {
	if s.Stderr == nil {
		return os.Stderr
	}

	return s.Stderr
}

// BlockOptions returns a configuration whose hooks print each result as a
// block. Dry runs print the command that would run to standard output.
// Executed commands print to standard output on success and to standard
// error on failure, with the matching captured stream as the body.
//
// Every field set in override replaces the built one.
func BlockOptions(streams Streams, fn HeaderFunc, override command.Config) command.Config {
	if fn == nil {
		fn = func(command.Result) Block { return Block{} }
	}

	built := command.Config{
		OnDryRun: func(res command.Result) {
			writeDryRun(streams, fn(res), res.Command())
		},
		OnComplete: func(res command.Result) {
			er, ok := command.AsExec(res)
			if !ok {
				return
			}
			writeComplete(streams, fn(res), er)
		},
	}

	return command.Merge(built, override)
}

func writeDryRun(streams Streams, blk Block, cmd schema.Command) {
	var buf bytes.Buffer

	writeHeader(&buf, streams, blk)

	if cmd.Dir != "" {
		buf.WriteString("cd " + cmd.Dir + "\n")
	}
	for _, kv := range cmd.Environ() {
		buf.WriteString(kv + "\n")
	}
	buf.WriteString(strings.Join(cmd.Args, " ") + "\n")

	writeSeparator(&buf, blk)

	_, _ = streams.stdout().Write(buf.Bytes())
}

func writeComplete(streams Streams, blk Block, er *command.ExecResult) {
	var buf bytes.Buffer

	writeHeader(&buf, streams, blk)

	if body := er.Body(); !blk.HideBody && len(body) > 0 {
		buf.Write(body)
		if !bytes.HasSuffix(body, []byte("\n")) {
			buf.WriteByte('\n')
		}
	}

	writeSeparator(&buf, blk)

	out := streams.stdout()
	if !er.Succeeded() {
		out = streams.stderr()
	}

	_, _ = out.Write(buf.Bytes())
}

func writeHeader(buf *bytes.Buffer, streams Streams, blk Block) {
	if blk.Header == "" {
		return
	}

	header := blk.Header
	if streams.Color {
		header = headerStyle.Render(header)
	}

	buf.WriteString(header + "\n")
}

func writeSeparator(buf *bytes.Buffer, blk Block) {
	if blk.Separator == "" {
		return
	}

	buf.WriteString(blk.Separator + "\n")
}
