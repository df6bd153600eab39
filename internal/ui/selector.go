package ui

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/sahilm/fuzzy"

	aerrors "github.com/TonnyWong1052/gemsh/internal/errors"
)

// fzfCommand is the fuzzy finder probed for on $PATH.
const fzfCommand = "fzf"

// ToolProber reports whether an executable is available.
type ToolProber interface {
	Has(name string) bool
}

// Selector lets the user pick one model from a list.
type Selector interface {
	Select(ctx context.Context, models []string, current string) (string, error)
}

// NewSelector returns the fzf-backed selector when fzf is installed and the
// numbered menu otherwise.
func NewSelector(prober ToolProber, in io.Reader, out io.Writer) Selector {
	if prober != nil && prober.Has(fzfCommand) {
		return NewFzfSelector()
	}
	return NewMenuSelector(in, out)
}

func noSelection() error {
	return aerrors.NewUsageError(aerrors.ErrNoSelection, "no model selected")
}

// FzfSelector hands the list to fzf. fzf draws on the terminal itself and
// prints the chosen line on stdout.
type FzfSelector struct {
	command string
	args    []string
}

// NewFzfSelector creates a selector backed by fzf.
func NewFzfSelector() *FzfSelector {
	return &FzfSelector{
		command: fzfCommand,
		args:    []string{"--prompt", "model> ", "--height", "40%", "--reverse"},
	}
}

// Select implements Selector.
func (s *FzfSelector) Select(ctx context.Context, models []string, current string) (string, error) {
	args := s.args
	if current != "" {
		args = append(append([]string(nil), args...), "--header", "current: "+current)
	}
	cmd := exec.CommandContext(ctx, s.command, args...)
	cmd.Stdin = strings.NewReader(strings.Join(models, "\n") + "\n")
	cmd.Stderr = os.Stderr

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		// fzf exits 1 for no match and 130 when the user aborts.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", noSelection()
		}
		return "", aerrors.NewSetupError(aerrors.ErrToolMissing, "could not run fzf").WithCause(err)
	}

	choice := strings.TrimSpace(stdout.String())
	if choice == "" {
		return "", noSelection()
	}
	for _, m := range models {
		if m == choice {
			return m, nil
		}
	}
	return "", aerrors.NewUsageError(aerrors.ErrUnknownModel, fmt.Sprintf("unknown model '%s'", choice))
}

// MenuSelector prints a numbered list and reads the answer from in. The
// answer may be a number or any fuzzy fragment of a model name.
type MenuSelector struct {
	in  io.Reader
	out io.Writer
}

// NewMenuSelector creates a numbered-menu selector.
func NewMenuSelector(in io.Reader, out io.Writer) *MenuSelector {
	return &MenuSelector{in: in, out: out}
}

// Select implements Selector.
func (s *MenuSelector) Select(ctx context.Context, models []string, current string) (string, error) {
	fmt.Fprintln(s.out, pterm.Bold.Sprint("Select a model:"))
	for i, m := range models {
		line := fmt.Sprintf("  %d) %s", i+1, m)
		if m == current {
			line += pterm.Gray(" (current)")
		}
		fmt.Fprintln(s.out, line)
	}
	fmt.Fprint(s.out, "Model number or name: ")

	answer, err := readLine(ctx, s.in)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return resolveChoice(strings.TrimSpace(answer), models)
}

// resolveChoice maps a menu answer onto a model.
func resolveChoice(answer string, models []string) (string, error) {
	if answer == "" {
		return "", noSelection()
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(models) {
			return "", aerrors.NewUsageError(aerrors.ErrNoSelection,
				fmt.Sprintf("choice %d is out of range 1-%d", n, len(models)))
		}
		return models[n-1], nil
	}
	for _, m := range models {
		if strings.EqualFold(m, answer) {
			return m, nil
		}
	}
	matches := fuzzy.Find(answer, models)
	if len(matches) == 0 {
		return "", aerrors.NewUsageError(aerrors.ErrUnknownModel,
			fmt.Sprintf("no model matches '%s'", answer))
	}
	return models[matches[0].Index], nil
}

// readLine reads one line from in, giving up when ctx is cancelled.
func readLine(ctx context.Context, in io.Reader) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := bufio.NewReader(in).ReadString('\n')
		ch <- result{line, err}
	}()

	select {
	case <-ctx.Done():
		return "", aerrors.NewGenerationError(aerrors.ErrUserCancel, "cancelled").WithCause(ctx.Err())
	case r := <-ch:
		return r.line, r.err
	}
}
