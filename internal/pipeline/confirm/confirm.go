package confirm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Confirmer asks the user a single yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// Prompt reads the answer from a line of input. Only "y" and "yes" affirm;
// anything else, including end of input, declines.
type Prompt struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{
		in:  bufio.NewReader(in),
		out: out,
	}
}

func (p *Prompt) Confirm(ctx context.Context, question string) (bool, error) {
	fmt.Fprintf(p.out, "%s (y/n) ", question)

	type answer struct {
		line string
		err  error
	}
	// On cancellation the reader goroutine stays blocked on input until the
	// process exits; a Prompt serves a single question per run.
	ch := make(chan answer, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		ch <- answer{line, err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-ch:
		if a.err != nil && !errors.Is(a.err, io.EOF) {
			return false, fmt.Errorf("failed to read answer: %w", a.err)
		}
		return IsAffirmative(a.line), nil
	}
}

func IsAffirmative(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
