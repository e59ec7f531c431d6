package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the loopbuild banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{" _                  _           _ _     _ ", "#34d399"},
		{"| | ___   ___  _ __ | |__  _   _(_) | __| |", "#2dd4bf"},
		{"| |/ _ \\ / _ \\| '_ \\| '_ \\| | | | | |/ _` |", "#22d3ee"},
		{"| | (_) | (_) | |_) | |_) | |_| | | | (_| |", "#38bdf8"},
		{"|_|\\___/ \\___/| .__/|_.__/ \\__,_|_|_|\\__,_|", "#60a5fa"},
		{"              |_|", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, termenv.String("  "+v).Faint())
	}
	fmt.Fprintln(w)
}
