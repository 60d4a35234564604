package input

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/metehan777/cosine-similarity-aio/internal/output"
)

// Prompter reads interactive answers from a single buffered stream.
// All reads go through the same reader so bytes buffered while answering
// one prompt are still available to the next.
type Prompter struct {
	in     io.Reader
	reader *bufio.Reader
	out    *output.Writer
}

// NewPrompter creates a prompter reading from in and printing prompts to out.
func NewPrompter(in io.Reader, out *output.Writer) *Prompter {
	return &Prompter{
		in:     in,
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// ReadLine prints the prompt without a trailing newline and reads one line.
// A final line with no newline before EOF still counts as an answer.
func (p *Prompter) ReadLine(prompt string) (string, error) {
	p.out.Print(prompt)

	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// YesNo asks a y/n question. Only "y" or "Y" affirms; any other answer,
// including a padded " y", declines.
func (p *Prompter) YesNo(prompt string) (bool, error) {
	line, err := p.ReadLine(prompt)
	if err != nil {
		return false, err
	}
	return strings.ToLower(line) == "y", nil
}

// ReadAll consumes the stream to EOF and returns everything read.
func (p *Prompter) ReadAll() (string, error) {
	data, err := io.ReadAll(p.reader)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Interactive reports whether the prompter is reading from a terminal.
func (p *Prompter) Interactive() bool {
	f, ok := p.in.(*os.File)
	if !ok {
		return false
	}
	return isTerminal(f)
}

// isTerminal checks a file descriptor for terminal attachment.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
