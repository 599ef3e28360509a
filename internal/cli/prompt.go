package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// prompter asks for input on the command's stdin. Passwords are read without
// echo when stdin is a terminal and as plain lines otherwise.
type prompter struct {
	in   *bufio.Reader
	out  io.Writer
	file *os.File
}

func newPrompter(cmd *cobra.Command) *prompter {
	p := &prompter{in: bufio.NewReader(cmd.InOrStdin()), out: cmd.OutOrStdout()}
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.file = f
	}
	return p
}

func (p *prompter) raw(label string) (string, error) {
	_, _ = fmt.Fprint(p.out, label)
	s, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", fmt.Errorf("failed to read %s: %w", strings.TrimSuffix(label, ": "), err)
	}
	return strings.TrimRight(s, "\r\n"), nil
}

func (p *prompter) line(label string) (string, error) {
	s, err := p.raw(label)
	return strings.TrimSpace(s), err
}

func (p *prompter) password(label string) (string, error) {
	if p.file == nil {
		return p.raw(label)
	}

	_, _ = fmt.Fprint(p.out, label)
	b, err := term.ReadPassword(int(p.file.Fd()))
	_, _ = fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}
