package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders name/value rows in two aligned columns.
type Table struct {
	Rows  []Detail
	Width int
}

// NewTable creates an empty table sized to the terminal
func NewTable() *Table {
	return &Table{Width: GetTerminalWidth()}
}

// Add appends a row
func (t *Table) Add(name, value string) *Table {
	t.Rows = append(t.Rows, Detail{Key: name, Value: value})
	return t
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Render returns the styled table. An empty table renders a muted note.
func (t *Table) Render() string {
	if len(t.Rows) == 0 {
		return lipgloss.NewStyle().Foreground(MutedColor).Render("  (no parameters)")
	}

	nameWidth := len("NAME")
	for _, r := range t.Rows {
		if w := lipgloss.Width(r.Key); w > nameWidth {
			nameWidth = w
		}
	}

	width := t.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	// Leave at least a third of the line for values
	if limit := width * 2 / 3; nameWidth > limit {
		nameWidth = limit
	}

	nameCol := lipgloss.NewStyle().Width(nameWidth + DefaultPadding).PaddingLeft(DefaultPadding)

	lines := make([]string, 0, len(t.Rows)+2)
	lines = append(lines,
		nameCol.Render(TableHeaderStyle.Render("NAME"))+"  "+TableHeaderStyle.Render("VALUE"),
		"  "+RenderHorizontalDivider(width-4, "─"),
	)
	for _, r := range t.Rows {
		lines = append(lines, nameCol.Render(TableNameStyle.Render(r.Key))+"  "+TableValueStyle.Render(r.Value))
	}
	return strings.Join(lines, "\n")
}

// String implements fmt.Stringer
func (t *Table) String() string {
	return t.Render()
}
