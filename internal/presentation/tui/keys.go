package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/abacus/pkg/display"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/keymap"
	"github.com/charmbracelet/glamour"
)

var commandTitles = map[domain.Command]string{
	domain.CmdReset:      "Clear",
	domain.CmdDelete:     "Delete last digit",
	domain.CmdDigit:      "Digit",
	domain.CmdDecimal:    "Decimal point",
	domain.CmdOperator:   "Operator",
	domain.CmdToggleSign: "Toggle sign",
	domain.CmdPercent:    "Percentage",
	domain.CmdCompute:    "Compute",
}

// KeyReference builds a markdown table of the bindings. Digits are collapsed
// into a single row.
func KeyReference(bindings []keymap.Binding, glyphs display.Glyphs) string {
	var b strings.Builder
	b.WriteString("# Keys\n\n")
	b.WriteString("| Key | Action |\n")
	b.WriteString("|-----|--------|\n")

	digits := 0
	for _, binding := range bindings {
		in := binding.Input
		if in.Command == domain.CmdDigit {
			digits++
			continue
		}
		action := commandTitles[in.Command]
		if in.Command == domain.CmdOperator {
			action = fmt.Sprintf("%s (%s)", in.Operator, glyphs.Symbol(in.Operator))
		}
		fmt.Fprintf(&b, "| `%s` | %s |\n", escape(binding.Key), action)
	}
	if digits > 0 {
		b.WriteString("| `0`-`9` | Digit |\n")
	}
	b.WriteString("\nPress `Ctrl+C` to quit.\n")
	return b.String()
}

func escape(key string) string {
	return strings.ReplaceAll(key, "|", "\\|")
}

// NewRenderer returns a function that renders markdown using glamour.
// It falls back to the raw markdown if no renderer can be built.
func NewRenderer(opts ...glamour.TermRendererOption) func(string) (string, error) {
	if len(opts) == 0 {
		opts = []glamour.TermRendererOption{glamour.WithAutoStyle()}
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
