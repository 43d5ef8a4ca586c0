package retrieval

import (
	"fmt"
	"strings"
)

// FormatAsText renders a recollection for CLI and MCP output.
func FormatAsText(rec Recollection) string {
	if len(rec.Memories) == 0 && len(rec.References) == 0 {
		return "No memories found."
	}

	var sb strings.Builder
	if len(rec.Memories) > 0 {
		sb.WriteString(fmt.Sprintf("Found %d memories:\n\n", len(rec.Memories)))
		for i, m := range rec.Memories {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, m))
		}
	} else {
		sb.WriteString("No memories found.\n")
	}

	if len(rec.References) > 0 {
		sb.WriteString(fmt.Sprintf("\nReference passages (%d):\n", len(rec.References)))
		for _, p := range rec.References {
			sb.WriteString("- " + p + "\n")
		}
	}

	return sb.String()
}
