package main

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	cadastre "github.com/tingold/orb-cadastre"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// renderTable draws t as a bordered table under its name.
func renderTable(t cadastre.Table) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(t.Name()))
	b.WriteString("\n")

	if t.Len() == 0 {
		b.WriteString(emptyStyle.Render("(no rows)"))
		b.WriteString("\n")
		return b.String()
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(t.Header()...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for i := 0; i < t.Len(); i++ {
		tbl.Row(t.Row(i)...)
	}

	b.WriteString(tbl.String())
	b.WriteString("\n")
	return b.String()
}

func printTables(w io.Writer, tables ...cadastre.Table) {
	for _, t := range tables {
		_, _ = io.WriteString(w, renderTable(t))
	}
}
