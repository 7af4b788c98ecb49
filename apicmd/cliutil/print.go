package cliutil

import (
	"fmt"
	"io"
)

// Summary prints a count line after a table, pluralizing the noun.
func Summary(w io.Writer, count int, singular, plural string) {
	noun := singular
	if count != 1 {
		noun = plural
	}
	_, _ = fmt.Fprintf(w, "\n%d %s\n", count, noun)
}

// NoResults prints a standard empty-result message.
func NoResults(w io.Writer, message string) {
	_, _ = fmt.Fprintln(w, message)
}

// HintCommand prints a follow-up command suggestion.
func HintCommand(w io.Writer, description, command string) {
	_, _ = fmt.Fprintf(w, "\n%s:\n  %s\n", description, command)
}
