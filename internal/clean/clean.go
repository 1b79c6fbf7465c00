// Package clean applies a declarative, ordered regex pipeline over LLM
// output text: stripping reasoning tags, ANSI escapes, author/dev-note
// metadata markers, narrator asides, and collapsing whitespace.
//
// The pipeline is pure and idempotent: Clean(Clean(t, stages), stages) ==
// Clean(t, stages) for any stage set, the way Tangerg-lynx's pkg/strings
// regex helpers (AlignToLeft, TrimAdjacentBlankLines) compose.
package clean

import (
	"regexp"
	"strings"
)

// Stage identifies one cleaning pass. Stages run in declared order,
// regardless of the order they're passed in to Clean.
type Stage int

const (
	ANSICodes Stage = iota
	ThinkTags
	Metadata
	NarrativeMarkers
	Whitespace
)

// declaredOrder is the fixed application order, independent of caller order.
var declaredOrder = []Stage{ANSICodes, ThinkTags, Metadata, NarrativeMarkers, Whitespace}

var (
	ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

	// Closed think span, and an unclosed trailing "<think>..." with no close tag.
	thinkClosedRegex   = regexp.MustCompile(`(?s)<think>.*?</think>`)
	thinkUnclosedRegex = regexp.MustCompile(`(?s)<think>.*$`)

	// Author/dev-note markers, e.g. "[DEV: ...]", "[AUTHOR NOTE: ...]".
	metadataRegex = regexp.MustCompile(`(?i)\[\s*(dev|author\s*note|debug)\s*:[^\]]*\]`)

	// Narrator-aside markers, e.g. "[Nota: ...]".
	narrativeMarkerRegex = regexp.MustCompile(`(?i)\[\s*nota\s*:[^\]]*\]`)

	blankRunsRegex = regexp.MustCompile(`\n{3,}`)
)

// Clean runs the requested stages, in declared order, over text.
func Clean(text string, stages ...Stage) string {
	requested := make(map[Stage]bool, len(stages))
	for _, s := range stages {
		requested[s] = true
	}

	for _, stage := range declaredOrder {
		if !requested[stage] {
			continue
		}
		text = applyStage(text, stage)
	}
	return text
}

func applyStage(text string, stage Stage) string {
	switch stage {
	case ANSICodes:
		return ansiRegex.ReplaceAllString(text, "")
	case ThinkTags:
		text = thinkClosedRegex.ReplaceAllString(text, "")
		return thinkUnclosedRegex.ReplaceAllString(text, "")
	case Metadata:
		return metadataRegex.ReplaceAllString(text, "")
	case NarrativeMarkers:
		return narrativeMarkerRegex.ReplaceAllString(text, "")
	case Whitespace:
		return collapseWhitespace(text)
	default:
		return text
	}
}

// collapseWhitespace collapses runs of blank lines to at most one and trims
// the leading/trailing margins of the whole text.
func collapseWhitespace(text string) string {
	text = blankRunsRegex.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
