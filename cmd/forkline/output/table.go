package output

import (
	"strings"

	"github.com/marshallshelly/forkline/pkg/analytics"
)

// RenderTable formats a report result as a fixed-width text table with a
// styled header. Column widths are computed before styling so ANSI escape
// codes never skew the alignment.
func RenderTable(t analytics.Table) string {
	widths := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		widths[i] = len(col)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder
	for i, col := range t.Columns {
		sb.WriteString(headerStyle.Render(pad(col, widths[i])))
		if i < len(t.Columns)-1 {
			sb.WriteString("  ")
		}
	}
	sb.WriteByte('\n')
	for i, w := range widths {
		sb.WriteString(mutedStyle.Render(strings.Repeat("─", w)))
		if i < len(widths)-1 {
			sb.WriteString("  ")
		}
	}
	sb.WriteByte('\n')

	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				sb.WriteString(pad(cell, widths[i]))
			} else {
				sb.WriteString(cell)
			}
			if i < len(row)-1 {
				sb.WriteString("  ")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
