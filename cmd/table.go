package cmd

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/reprise-cli/reprise/util"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)

	if width, _, err := util.TerminalSize(); err == nil && width > 0 {
		t.SetAllowedRowLength(width)
	}

	return t
}
