package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the abacus banner to w.
func PrintBanner(w io.Writer, opts ...termenv.OutputOption) {
	out := termenv.NewOutput(w, opts...)
	// Teal to green, one color per row
	rows := []struct {
		text  string
		color string
	}{
		{`         _                        `, "#2dd4bf"},
		{`   __ _ | |__   __ _  ___ _   _ ___`, "#34d399"},
		{`  / _' || '_ \ / _' |/ __| | | / __|`, "#4ade80"},
		{` | (_| || |_) | (_| | (__| |_| \__ \`, "#a3e635"},
		{`  \__,_||_.__/ \__,_|\___|\__,_|___/`, "#facc15"},
	}

	fmt.Fprintln(w)
	for _, r := range rows {
		fmt.Fprintln(w, out.String(r.text).Foreground(out.Color(r.color)))
	}
	fmt.Fprintln(w)
}
