package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/abacus/pkg/display"
	"github.com/aretw0/abacus/pkg/keymap"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplay_Format(t *testing.T) {
	d := NewDisplay(&bytes.Buffer{}, termenv.WithProfile(termenv.Ascii))

	got := d.Format(display.Lines{Previous: "12 +", Current: "7"}, "")
	want := "" +
		"┌────────────────┐\n" +
		"│           12 + │\n" +
		"│              7 │\n" +
		"└────────────────┘\n"
	assert.Equal(t, want, got)
}

func TestDisplay_FormatGrowsAndNotifies(t *testing.T) {
	d := NewDisplay(&bytes.Buffer{}, termenv.WithProfile(termenv.Ascii))
	d.RawMode(true)

	got := d.Format(display.Lines{Previous: "123456789012345 ×", Current: "0"}, "Cannot divide by zero!")
	lines := strings.Split(got, "\r\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "│ 123456789012345 × │", lines[1])
	assert.Equal(t, "! Cannot divide by zero!", lines[4])
	assert.Empty(t, lines[5])
}

func TestDisplay_Draw(t *testing.T) {
	var buf bytes.Buffer
	d := NewDisplay(&buf, termenv.WithProfile(termenv.Ascii))
	require.NoError(t, d.Draw(display.Lines{Current: "0"}, ""))
	assert.Contains(t, buf.String(), "│              0 │")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, termenv.WithProfile(termenv.Ascii))
	assert.Contains(t, buf.String(), `\__,_|`)
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestKeyReference(t *testing.T) {
	md := KeyReference(keymap.Default().Bindings(), display.DefaultGlyphs)

	assert.Contains(t, md, "| `m` | modulo (%) |")
	assert.Contains(t, md, "| `enter` | Compute |")
	assert.Contains(t, md, "| `0`-`9` | Digit |")
	assert.NotContains(t, md, "| `5` |")
}

func TestNewRenderer(t *testing.T) {
	render := NewRenderer(glamour.WithStandardStyle("notty"))
	out, err := render(KeyReference(keymap.Default().Bindings(), display.ASCIIGlyphs))
	require.NoError(t, err)
	assert.Contains(t, out, "Keys")
	assert.Contains(t, out, "modulo (mod)")
}
