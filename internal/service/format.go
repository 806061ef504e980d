package service

import (
	"fmt"
	"strings"

	"github.com/workpulse/surveychat/internal/domain"
)

// FormatPromptBlock renders filtered statistics and caveats as the text block
// handed to the generation collaborator. Output is deterministic for the same
// inputs: stats are grouped by file in input order, and within a group by
// response, category, value in input order (the filter already emits sorted
// categories and values).
func FormatPromptBlock(result domain.FilterResult, caveats []string) string {
	var sb strings.Builder

	if len(result.Stats) == 0 {
		sb.WriteString("No survey statistics matched this query.\n")
	}

	var currentFile, currentResponse string
	for _, stat := range result.Stats {
		if stat.FileID != currentFile {
			currentFile = stat.FileID
			currentResponse = ""
			sb.WriteString(fmt.Sprintf("\n[%s] %s\n", stat.FileID, stat.Question))
		}
		if stat.Response != currentResponse {
			currentResponse = stat.Response
			sb.WriteString(fmt.Sprintf("  %s:\n", stat.Response))
		}
		sb.WriteString(fmt.Sprintf("    %s / %s: %s\n", stat.Category, stat.Value, stat.Formatted()))
	}

	if len(result.MissingSegments) > 0 {
		sb.WriteString(fmt.Sprintf("\nRequested segments with no data: %s\n",
			strings.Join(result.MissingSegments, ", ")))
	}

	if len(caveats) > 0 {
		sb.WriteString("\nCaveats:\n")
		for _, caveat := range caveats {
			sb.WriteString("- ")
			sb.WriteString(caveat)
			sb.WriteString("\n")
		}
	}

	return strings.TrimLeft(sb.String(), "\n")
}
