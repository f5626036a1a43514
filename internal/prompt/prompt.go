// Package prompt reads a line of user input, either from a plain stream or
// from an interactive terminal field.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrAborted is returned when the user cancels the prompt.
var ErrAborted = errors.New("input aborted")

// LineReader supplies one trimmed line of input. prompt is shown first when
// not empty.
type LineReader interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
}

// Reader reads lines from a stream.
type Reader struct {
	in  *bufio.Reader
	out io.Writer
}

func NewReader(in io.Reader, out io.Writer) *Reader {
	return &Reader{in: bufio.NewReader(in), out: out}
}

func (r *Reader) ReadLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if prompt != "" {
		fmt.Fprintln(r.out, prompt)
	}
	line, err := r.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", err
		}
		if line == "" {
			return "", ErrAborted
		}
	}
	return strings.TrimSpace(line), nil
}

// For returns an interactive reader when in is a terminal and a plain
// stream reader otherwise.
func For(in io.Reader, out io.Writer) LineReader {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return NewTerminal(f, out)
	}
	return NewReader(in, out)
}
