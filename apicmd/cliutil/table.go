package cliutil

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/gcnwokike/API-Commander/apicmd/httpinfo"
)

// Bold renders s in bold for terminal output.
func Bold(s string) string {
	return text.Bold.Sprint(s)
}

// ID renders an identifier with the shared accent color.
func ID(s string) string {
	return text.FgCyan.Sprint(s)
}

// NewTable creates a table writer with the shared output style.
func NewTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = false
	return t
}

// StatusRowPainter colors rows by the HTTP status code found at the given
// column index: green for 2xx, yellow for 4xx, red for 5xx.
func StatusRowPainter(statusCol int) table.RowPainter {
	return func(row table.Row) text.Colors {
		if statusCol < 0 || statusCol >= len(row) {
			return nil
		}
		code, ok := row[statusCol].(int)
		if !ok {
			return nil
		}
		switch httpinfo.StatusClass(code) {
		case httpinfo.ClassSuccess:
			return text.Colors{text.FgGreen}
		case httpinfo.ClassWarning:
			return text.Colors{text.FgYellow}
		case httpinfo.ClassError:
			return text.Colors{text.FgRed}
		default:
			return nil
		}
	}
}
