package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode tells whether output goes to a human or to a pipe.
type Mode int

const (
	// ModePlain is used for pipes, files, CI logs and NO_COLOR.
	ModePlain Mode = iota
	// ModeStyled is used when a terminal is attached.
	ModeStyled
)

// DetectMode decides how output written to f should look.
//
// Returns ModePlain if:
//   - PGLOAD_NO_STYLE=1 is set
//   - CI is set (common CI/CD convention)
//   - NO_COLOR is set
//   - f is not a terminal
func DetectMode(f *os.File) Mode {
	if os.Getenv("PGLOAD_NO_STYLE") == "1" || os.Getenv("CI") != "" || os.Getenv("NO_COLOR") != "" {
		return ModePlain
	}
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return ModePlain
	}
	return ModeStyled
}

// IsStyled is shorthand for DetectMode(f) == ModeStyled.
func IsStyled(f *os.File) bool {
	return DetectMode(f) == ModeStyled
}

// TerminalWidth returns the width of f, or fallback when unknown.
func TerminalWidth(f *os.File, fallback int) int {
	if f == nil {
		return fallback
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}
