package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/internal/presentation/tui"
	"github.com/aretw0/abacus/pkg/display"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/keymap"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	Headless bool
	JSON     bool // headless only: one JSON frame per line instead of the box
	Quiet    bool // no banner

	Keymap *keymap.Keymap
	Glyphs display.Glyphs
	Hooks  domain.LifecycleHooks
	Logger *slog.Logger

	// TermOptions are passed to termenv, e.g. to force a color profile.
	TermOptions []termenv.OutputOption
}

// Frame is what the headless JSON mode prints after every line.
type Frame struct {
	State        domain.State   `json:"state"`
	Display      display.Lines  `json:"display"`
	Outcome      domain.Outcome `json:"outcome,omitempty"`
	Notification string         `json:"notification,omitempty"`
	Error        string         `json:"error,omitempty"`
}

func (o RunOptions) withDefaults() RunOptions {
	if o.Keymap == nil {
		o.Keymap = keymap.Default()
	}
	if o.Glyphs == nil {
		o.Glyphs = display.DefaultGlyphs
	}
	if o.Logger == nil {
		o.Logger = logging.NewNop()
	}
	return o
}

func (o RunOptions) calculator(extra ...abacus.Option) *abacus.Calculator {
	opts := []abacus.Option{
		abacus.WithLogger(o.Logger),
		abacus.WithLifecycleHooks(o.Hooks),
	}
	return abacus.New(append(opts, extra...)...)
}

// Execute runs the terminal calculator on in and out. Without a terminal on
// in it falls back to the headless mode.
func Execute(ctx context.Context, in io.Reader, out io.Writer, opts RunOptions) error {
	opts = opts.withDefaults()

	if !opts.Headless {
		if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return RunInteractive(ctx, f, out, opts)
		}
		opts.Logger.Info("stdin is not a terminal, switching to headless mode")
	}
	return RunHeadless(ctx, in, out, opts)
}

type chunk struct {
	data []byte
	err  error
}

// pump moves blocking reads off the caller's goroutine so it can watch ctx.
// The reader goroutine exits once ctx is done and its pending read returns.
func pump(ctx context.Context, r io.Reader) <-chan chunk {
	ch := make(chan chunk)
	send := func(c chunk) bool {
		select {
		case ch <- c:
			return true
		case <-ctx.Done():
			return false
		}
	}
	go func() {
		defer close(ch)
		buf := make([]byte, 256)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				if !send(chunk{data: data}) {
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					send(chunk{err: err})
				}
				return
			}
		}
	}()
	return ch
}

func newDisplay(out io.Writer, opts RunOptions) *tui.Display {
	return tui.NewDisplay(out, opts.TermOptions...)
}
