package book

import (
	"fmt"
	"os"
	"strings"
)

// Formatter renders a Manuscript to disk. Only plain text is in scope;
// PDF/DOCX rendering is a Non-goal.
type Formatter struct{}

// Render writes manuscript as plain text to path, one chapter per section
// with a title heading, sections separated by a blank line.
func (Formatter) Render(manuscript Manuscript, path string) error {
	var sb strings.Builder
	sb.WriteString(manuscript.Title)
	sb.WriteString("\n\n")

	for _, ch := range manuscript.Chapters {
		sb.WriteString(ch.Key)
		if ch.Title != "" {
			sb.WriteString(" — ")
			sb.WriteString(ch.Title)
		}
		sb.WriteString("\n\n")
		for _, section := range ch.Sections {
			sb.WriteString(section)
			sb.WriteString("\n\n")
		}
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("book: write manuscript: %w", err)
	}
	return nil
}
