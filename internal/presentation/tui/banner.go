package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text, color string
}{
	{"      _                       _          ", "#34d399"},
	{"  ___| |_ ___ _ ____      __ (_)___  ___ ", "#2dd4bf"},
	{" / __| __/ _ \\ '_ \\ \\ /\\ / / | / __|/ _ \\", "#22d3ee"},
	{" \\__ \\ ||  __/ |_) \\ V  V /  | \\__ \\  __/", "#38bdf8"},
	{" |___/\\__\\___| .__/ \\_/\\_/   |_|___/\\___|", "#60a5fa"},
	{"             |_|                          ", "#818cf8"},
}

// PrintBanner writes the stepwise banner using the given color profile.
func PrintBanner(w io.Writer, p termenv.Profile) {
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
