package ui

import "golang.org/x/term"

// IsTTY reports whether fd is attached to an interactive terminal. The
// presenter factory keys off stderr, so piped or redirected runs fall back
// to plain line output.
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}
