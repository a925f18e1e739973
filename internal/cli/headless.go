package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/pkg/domain"
)

// RunHeadless reads one line of keys at a time and prints the display after
// each line. A line is applied only if every key in it is bound.
//
// Every character is a key press; named keys go in braces: "12{Backspace}3=".
// Blank lines and lines starting with '#' are skipped.
func RunHeadless(ctx context.Context, in io.Reader, out io.Writer, opts RunOptions) error {
	opts = opts.withDefaults()
	disp := newDisplay(out, opts)
	enc := json.NewEncoder(out)
	state := domain.Defaults()

	// Stops the scanner once this loop returns, whatever the reason.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				if err := <-scanErr; err != nil {
					return fmt.Errorf("failed to read keys: %w", err)
				}
				return nil
			}
			line = strings.TrimSpace(l)
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		frame, err := applyLine(ctx, opts, line, state)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			frame.Error = err.Error()
			opts.Logger.Warn("line rejected", "line", line, "err", err)
		}
		state = frame.State

		if opts.JSON {
			if err := enc.Encode(frame); err != nil {
				return err
			}
			continue
		}
		if frame.Error != "" {
			disp.Printf("error: %s", frame.Error)
			continue
		}
		if err := disp.Draw(frame.Display, frame.Notification); err != nil {
			return err
		}
	}
}

func applyLine(ctx context.Context, opts RunOptions, line string, state domain.State) (Frame, error) {
	frame := Frame{State: state, Display: opts.Glyphs.Compose(state)}

	keys, err := splitKeys(line)
	if err != nil {
		return frame, err
	}
	inputs, err := opts.Keymap.Decode(keys)
	if err != nil {
		return frame, err
	}

	calc := opts.calculator(abacus.WithState(state))
	summary := domain.OutcomeNone
	for _, in := range inputs {
		outcome, err := calc.Press(ctx, in)
		if err != nil {
			return frame, err
		}
		if outcome == domain.OutcomeDivisionByZero || summary == domain.OutcomeNone {
			summary = outcome
		}
	}

	next := calc.State()
	return Frame{
		State:        next,
		Display:      opts.Glyphs.Compose(next),
		Outcome:      summary,
		Notification: summary.Notification(),
	}, nil
}

// splitKeys splits a headless line into key names.
func splitKeys(line string) ([]string, error) {
	var keys []string
	for i := 0; i < len(line); {
		if line[i] == '{' {
			end := strings.IndexByte(line[i:], '}')
			if end <= 1 {
				return nil, fmt.Errorf("%w: unterminated key name at column %d", domain.ErrInvalidInput, i+1)
			}
			keys = append(keys, line[i+1:i+end])
			i += end + 1
			continue
		}
		_, size := utf8.DecodeRuneInString(line[i:])
		if key := line[i : i+size]; key != " " && key != "\t" {
			keys = append(keys, key)
		}
		i += size
	}
	return keys, nil
}
