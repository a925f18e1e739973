// Package tui draws the calculator in a terminal.
package tui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/abacus/pkg/display"
	"github.com/muesli/termenv"
)

// MinWidth is the narrowest inner width of the display box.
const MinWidth = 16

// Display renders display lines into a small box:
//
//	┌────────────────┐
//	│          12 +  │
//	│              7 │
//	└────────────────┘
type Display struct {
	out     *termenv.Output
	newline string
}

// NewDisplay creates a renderer writing to w. Pass termenv.WithProfile to
// force a color profile (tests use termenv.Ascii).
func NewDisplay(w io.Writer, opts ...termenv.OutputOption) *Display {
	return &Display{
		out:     termenv.NewOutput(w, opts...),
		newline: "\n",
	}
}

// RawMode switches line endings to CRLF, needed while the terminal is raw.
func (d *Display) RawMode(raw bool) {
	if raw {
		d.newline = "\r\n"
	} else {
		d.newline = "\n"
	}
}

// Format returns the box for lines, followed by the notification if any.
func (d *Display) Format(lines display.Lines, notification string) string {
	width := MinWidth
	for _, l := range []string{lines.Previous, lines.Current} {
		if n := utf8.RuneCountInString(l) + 2; n > width {
			width = n
		}
	}

	border := strings.Repeat("─", width)
	previous := d.out.String(pad(lines.Previous, width)).Faint()
	current := d.out.String(pad(lines.Current, width)).Bold()

	var b strings.Builder
	b.WriteString("┌" + border + "┐" + d.newline)
	b.WriteString("│" + previous.String() + "│" + d.newline)
	b.WriteString("│" + current.String() + "│" + d.newline)
	b.WriteString("└" + border + "┘" + d.newline)
	if notification != "" {
		b.WriteString(d.out.String("! " + notification).Foreground(d.out.Color("#f87171")).String())
		b.WriteString(d.newline)
	}
	return b.String()
}

// Draw writes Format's output.
func (d *Display) Draw(lines display.Lines, notification string) error {
	_, err := io.WriteString(d.out, d.Format(lines, notification))
	return err
}

// Clear clears the screen and moves the cursor home.
func (d *Display) Clear() {
	d.out.ClearScreen()
}

// Printf writes a status line.
func (d *Display) Printf(format string, args ...any) {
	fmt.Fprintf(d.out, format+d.newline, args...)
}

// pad right-aligns s in width columns with one space of margin.
func pad(s string, width int) string {
	return fmt.Sprintf("%*s ", width-1, s)
}
