package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
)

const (
	LevelTrace slog.Level = slog.LevelInfo + 1
)

func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// PrintState renders the registers of a machine and the tape cells within
// radius of the cursor.
func PrintState(w io.Writer, m *Machine, radius int) {
	regTable := table.NewWriter()
	regTable.SetOutputMirror(w)
	regTable.SetTitle("Machine")
	regTable.AppendHeader(table.Row{"IP", "Next", "Cursor", "Retired", "Status"})

	next := "-"
	if in, ok := m.Next(); ok {
		next = in.String()
	}

	regTable.AppendRow(table.Row{m.IP(), next, m.Cursor(), m.Retired(), status(m)})
	regTable.Render()

	from := max(m.Cursor()-radius, 0)
	window := m.Window(from, m.Cursor()+radius+1)

	tapeTable := table.NewWriter()
	tapeTable.SetOutputMirror(w)
	tapeTable.SetTitle(fmt.Sprintf("Tape [%d, %d)", from, from+len(window)))

	header := table.Row{"Cell"}
	values := table.Row{"Value"}
	for i, v := range window {
		addr := fmt.Sprintf("%d", from+i)
		if from+i == m.Cursor() {
			addr = "*" + addr
		}
		header = append(header, addr)
		values = append(values, v)
	}

	tapeTable.AppendHeader(header)
	tapeTable.AppendRow(values)
	tapeTable.Render()
}

func status(m *Machine) string {
	switch {
	case m.Err() != nil:
		return "failed: " + m.Err().Error()
	case m.Halted():
		return "halted"
	default:
		return "running"
	}
}

func LogState(m *Machine) {
	slog.Debug("StateCheckpoint",
		"IP", m.IP(),
		"Cursor", m.Cursor(),
		"Retired", m.Retired(),
		"Cell", m.Cell(m.Cursor()),
	)
}
