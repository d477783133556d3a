package board

import (
	"fmt"
	"io"
	"strings"
)

// Render writes a plain-text rendering of v, one block per column.
func Render(w io.Writer, v View) error {
	var b strings.Builder

	for i, c := range v.Summary {
		if i > 0 {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "%s: %s", c.Label, c.Value)
	}
	b.WriteString("\n")

	for _, col := range v.Columns {
		fmt.Fprintf(&b, "\n== %s (%d) ==\n", col.Label, col.Count)
		if col.Count == 0 {
			b.WriteString("  (no tasks in this column)\n")
			continue
		}
		if len(col.Lanes) > 0 {
			for _, lane := range col.Lanes {
				fmt.Fprintf(&b, "  -- %s --\n", lane.Phase)
				for _, card := range lane.Tasks {
					writeCard(&b, "    ", card)
				}
			}
			continue
		}
		for _, card := range col.Tasks {
			writeCard(&b, "  ", card)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeCard(b *strings.Builder, indent string, c Card) {
	fmt.Fprintf(b, "%s[%-7s] %s  (%s, %s)\n", indent, c.Priority, c.Title, c.Phase, c.AssigneeInitials)
}
