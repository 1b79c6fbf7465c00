// Package plan drives the four structural generation chains (C9): title,
// framework, chapter list, and per-chapter ideas, each a single templated
// call through the LLM gateway with a deterministic line-based parser.
package plan

import (
	"regexp"
	"strings"
)

// listItemPrefix matches a leading list marker: "-", "•", "*", or a
// numbered prefix like "1." or "1)".
var listItemPrefix = regexp.MustCompile(`^\s*[-•*]\s+|^\s*\d+[.)]\s+`)

// stripMarkdownCodeBlock removes a wrapping ``` fence, if present.
func stripMarkdownCodeBlock(input string) string {
	trimmed := strings.TrimSpace(input)
	if len(trimmed) < 6 || !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") {
		return trimmed
	}
	newline := strings.Index(trimmed, "\n")
	if newline == -1 {
		return strings.TrimSpace(trimmed[3 : len(trimmed)-3])
	}
	body := trimmed[newline+1 : len(trimmed)-3]
	return strings.TrimSpace(body)
}

// parseLines strips the markdown fence, drops blank lines, and removes any
// leading list marker from each remaining line.
func parseLines(raw string) []string {
	body := stripMarkdownCodeBlock(raw)
	var out []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = listItemPrefix.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// keyDescriptionSplit separates "Capítulo 1: description" or
// "Capítulo 1 - description" into its key and description.
var keyDescriptionSplit = regexp.MustCompile(`^(.+?)\s*[:\-–]\s*(.+)$`)

// parseChapterLines parses a Chapters-chain response into an ordered
// key→description mapping, preserving response order.
func parseChapterLines(raw string) ([]string, map[string]string, error) {
	lines := parseLines(raw)
	if len(lines) == 0 {
		return nil, nil, errMalformed("no chapter lines found")
	}

	keys := make([]string, 0, len(lines))
	descriptions := make(map[string]string, len(lines))
	for _, line := range lines {
		m := keyDescriptionSplit.FindStringSubmatch(line)
		if m == nil {
			return nil, nil, errMalformed("chapter line missing key/description separator: " + line)
		}
		key := strings.TrimSpace(m[1])
		desc := strings.TrimSpace(m[2])
		if key == "" || desc == "" {
			return nil, nil, errMalformed("chapter line has empty key or description: " + line)
		}
		if _, dup := descriptions[key]; !dup {
			keys = append(keys, key)
		}
		descriptions[key] = desc
	}
	return keys, descriptions, nil
}

// parseIdeaLines parses an Ideas-chain response into 3-5 idea strings.
func parseIdeaLines(raw string) ([]string, error) {
	lines := parseLines(raw)
	if len(lines) < 3 || len(lines) > 5 {
		return nil, errMalformed("expected 3-5 ideas, got a different count")
	}
	return lines, nil
}

// parseTitleLine parses a Title-chain response: a single non-empty line.
func parseTitleLine(raw string) (string, error) {
	lines := parseLines(raw)
	if len(lines) == 0 {
		return "", errMalformed("empty title response")
	}
	return lines[0], nil
}

// parseFramework treats the whole cleaned response as the framework, as
// long as it isn't empty.
func parseFramework(raw string) (string, error) {
	body := strings.TrimSpace(stripMarkdownCodeBlock(raw))
	if body == "" {
		return "", errMalformed("empty framework response")
	}
	return body, nil
}
