package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter asks yes/no questions on a terminal. When stdin is not a
// terminal every question gets its default answer without printing.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewTerminalPrompter reads answers from stdin and writes questions to stderr.
func NewTerminalPrompter() *Prompter {
	return newPrompter(os.Stdin, os.Stderr, term.IsTerminal(int(os.Stdin.Fd())))
}

func newPrompter(in io.Reader, out io.Writer, interactive bool) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, interactive: interactive}
}

func (p *Prompter) Confirm(prompt string, def bool) (bool, error) {
	if !p.interactive {
		return def, nil
	}
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	for {
		if _, err := fmt.Fprintf(p.out, "%s %s ", prompt, hint); err != nil {
			return false, err
		}
		line, err := p.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		if errors.Is(err, io.EOF) {
			return def, nil
		}
		prompt = "Please answer y or n."
	}
}
