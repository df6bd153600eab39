package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// Presenter shows a spinner with an elapsed-time counter while the answer
// streams. It writes to stderr so stdout carries nothing but the answer.
type Presenter struct {
	out     io.Writer
	enabled bool

	mu          sync.Mutex
	spinner     *pterm.SpinnerPrinter
	timerCancel context.CancelFunc
	timerWG     sync.WaitGroup
}

// NewPresenter creates a presenter writing to out. A disabled presenter is a no-op.
func NewPresenter(out io.Writer, enabled bool) *Presenter {
	return &Presenter{out: out, enabled: enabled}
}

// NewTerminalPresenter creates a presenter on stderr that only animates when
// stderr is a terminal.
func NewTerminalPresenter() *Presenter {
	return NewPresenter(os.Stderr, IsTerminal(os.Stderr))
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Start shows the spinner with message. A running spinner is replaced.
func (p *Presenter) Start(message string) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()

	// The (Xs) counter is rendered by our goroutine; pterm's own timer
	// would print it twice.
	spinner := *pterm.DefaultSpinner.
		WithShowTimer(false).
		WithRemoveWhenDone(true).
		WithWriter(p.out)
	spinner.Sequence = []string{"▀", "▄", "█", "▐", "▌", "▀", "▄", "█"}

	sp, err := spinner.Start(message + "...")
	if err != nil {
		return
	}
	p.spinner = sp

	ctx, cancel := context.WithCancel(context.Background())
	p.timerCancel = cancel
	p.timerWG.Add(1)
	go p.tick(ctx, sp, message, time.Now())
}

// Stop clears the spinner line. success is accepted for interface symmetry;
// the line is removed either way so the answer starts on a clean row.
func (p *Presenter) Stop(success bool) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Presenter) stopLocked() {
	if p.timerCancel != nil {
		p.timerCancel()
		p.timerWG.Wait()
		p.timerCancel = nil
	}
	if p.spinner != nil {
		_ = p.spinner.Stop()
		fmt.Fprint(p.out, "\r\033[K")
		p.spinner = nil
	}
}

func (p *Presenter) tick(ctx context.Context, sp *pterm.SpinnerPrinter, label string, start time.Time) {
	defer p.timerWG.Done()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	lastSec := -1
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sec := int(time.Since(start).Seconds())
			if sec != lastSec {
				sp.UpdateText(fmt.Sprintf("%s... (%ds)", label, sec))
				lastSec = sec
			}
		}
	}
}
