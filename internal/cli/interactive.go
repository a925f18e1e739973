package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/internal/presentation/tui"
	"golang.org/x/term"
)

// keyQuit is never produced by a keyboard; it ends the interactive loop.
const keyQuit = "\x00quit"

// RunInteractive puts the terminal in raw mode and redraws the display after
// every key press, like the on-screen keypad.
func RunInteractive(ctx context.Context, in *os.File, out io.Writer, opts RunOptions) error {
	opts = opts.withDefaults()

	fd := int(in.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	defer func() {
		if err := term.Restore(fd, oldState); err != nil {
			opts.Logger.Warn("failed to restore terminal", "err", err)
		}
	}()

	return interact(ctx, in, out, opts, true)
}

func interact(ctx context.Context, in io.Reader, out io.Writer, opts RunOptions, raw bool) error {
	disp := newDisplay(out, opts)
	disp.RawMode(raw)
	calc := opts.calculator()

	banner := out
	if raw {
		banner = crlfWriter{out}
	}
	redraw := func(notification string) error {
		disp.Clear()
		if !opts.Quiet {
			tui.PrintBanner(banner, opts.TermOptions...)
		}
		return disp.Draw(opts.Glyphs.Compose(calc.State()), notification)
	}
	if err := redraw(""); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	chunks := pump(ctx, in)
	for {
		select {
		case <-ctx.Done():
			return nil
		case c, ok := <-chunks:
			if !ok {
				return nil
			}
			if c.err != nil {
				return fmt.Errorf("failed to read keys: %w", c.err)
			}
			done, err := pressAll(ctx, calc, redraw, opts, decodeTerminalKeys(c.data))
			if err != nil || done {
				return err
			}
		}
	}
}

// pressAll applies keys in order. Unbound keys are ignored, like a keypad
// with no such button.
func pressAll(ctx context.Context, calc *abacus.Calculator, redraw func(string) error, opts RunOptions, keys []string) (bool, error) {
	for _, key := range keys {
		if key == keyQuit {
			return true, nil
		}
		input, err := opts.Keymap.Lookup(key)
		if err != nil {
			if key == "q" {
				return true, nil
			}
			opts.Logger.Debug("key ignored", "key", key)
			continue
		}
		outcome, err := calc.Press(ctx, input)
		if err != nil {
			return false, err
		}
		if err := redraw(outcome.Notification()); err != nil {
			return false, err
		}
	}
	return false, nil
}

// crlfWriter restores carriage returns that raw mode stops adding.
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// decodeTerminalKeys turns raw terminal bytes into key names.
func decodeTerminalKeys(buf []byte) []string {
	var keys []string
	for i := 0; i < len(buf); {
		b := buf[i]
		switch {
		case b == 0x03 || b == 0x04: // Ctrl-C, Ctrl-D
			keys = append(keys, keyQuit)
			i++
		case b == '\r' || b == '\n':
			keys = append(keys, "Enter")
			i++
		case b == 0x7f || b == 0x08:
			keys = append(keys, "Backspace")
			i++
		case b == 0x1b:
			key, n := decodeEscape(buf[i:])
			if key != "" {
				keys = append(keys, key)
			}
			i += n
		case b < 0x20:
			i++
		default:
			r, size := utf8.DecodeRune(buf[i:])
			if r != utf8.RuneError {
				keys = append(keys, string(r))
			}
			i += size
		}
	}
	return keys
}

// decodeEscape reads one escape sequence from buf (which starts with ESC).
// A bare ESC is the Escape key; of the CSI sequences only Delete is bound.
func decodeEscape(buf []byte) (string, int) {
	if len(buf) == 1 {
		return "Escape", 1
	}
	switch buf[1] {
	case '[':
		end := 2
		for end < len(buf) && (buf[end] < 0x40 || buf[end] > 0x7e) {
			end++
		}
		if end == len(buf) {
			return "", len(buf)
		}
		if string(buf[2:end+1]) == "3~" {
			return "Delete", end + 1
		}
		return "", end + 1
	case 'O':
		if len(buf) < 3 {
			return "", len(buf)
		}
		return "", 3
	default:
		return "Escape", 1
	}
}
