package tui

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 80

// Terminal describes the output the CLI is writing to.
type Terminal struct {
	Interactive bool
	Width       int
	Height      int
	Profile     termenv.Profile
}

// Detect inspects f. Colors are disabled for non-terminals and when
// NO_COLOR is set.
func Detect(f *os.File) Terminal {
	t := Terminal{Width: DefaultWidth, Height: 24, Profile: termenv.Ascii}
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return t
	}
	t.Interactive = true
	if w, h, err := term.GetSize(fd); err == nil && w > 0 {
		t.Width, t.Height = w, h
	}
	if _, off := os.LookupEnv("NO_COLOR"); !off {
		t.Profile = termenv.NewOutput(f).EnvColorProfile()
	}
	return t
}
