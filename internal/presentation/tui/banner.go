package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the simulator banner in the given color profile.
func PrintBanner(w io.Writer, p termenv.Profile, version string) {
	lines := []struct {
		text  string
		color string
	}{
		{"  _           _                    _            ", "#818cf8"},
		{" | |__   ___ | |_ ___ _ __   __ _(_)_ __   ___ ", "#a78bfa"},
		{" | '_ \\ / _ \\| __/ _ \\ '_ \\ / _` | | '_ \\ / _ \\", "#c084fc"},
		{" | |_) | (_) | ||  __/ | | | (_| | | | | |  __/", "#e879f9"},
		{" |_.__/ \\___/ \\__\\___|_| |_|\\__, |_|_| |_|\\___|", "#f472b6"},
		{"                            |___/  " + version, "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
