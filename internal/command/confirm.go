package command

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Confirmer asks the user to approve a mutating command before it is sent.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Static answers every prompt the same way. Static(true) stands for a
// confirmation that was already given elsewhere, e.g. a --yes flag or a redeemed
// confirmation token.
type Static bool

func (s Static) Confirm(context.Context, string) (bool, error) {
	return bool(s), nil
}

// TerminalConfirmer prompts on Out and reads a y/n answer from In.
type TerminalConfirmer struct {
	In  io.Reader
	Out io.Writer
}

func (c TerminalConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	if _, err := fmt.Fprintf(c.Out, "%s [y/N]: ", prompt); err != nil {
		return false, err
	}

	answer := make(chan string, 1)
	failed := make(chan error, 1)
	go func() {
		line, err := bufio.NewReader(c.In).ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			failed <- err
			return
		}
		answer <- line
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-failed:
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, errors.Wrap(err, "command: failed to read confirmation")
	case line := <-answer:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}
