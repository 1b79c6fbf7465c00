// Package chapters parses LLM-produced chapter labels into a total order
// (C6): prólogo/prologue first, numbered chapters ascending by value,
// epílogo/epilogue last, anything unparseable bucketed as unknown and
// flagged with a warning rather than silently reordered.
package chapters

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/samber/lo"
)

// Type classifies a parsed chapter key.
type Type int

const (
	Prologue Type = iota
	Numbered
	Epilogue
	Unknown
)

func (t Type) String() string {
	switch t {
	case Prologue:
		return "prologue"
	case Numbered:
		return "numbered"
	case Epilogue:
		return "epilogue"
	default:
		return "unknown"
	}
}

// Metadata is the parsed form of a chapter key.
type Metadata struct {
	Type          Type
	Number        int // meaningful only when Type == Numbered
	OriginalLabel string
}

var (
	prologueWords = map[string]bool{"prologo": true, "prologue": true}
	epilogueWords = map[string]bool{"epilogo": true, "epilogue": true}

	// Matches "capitulo 12", "chapter xii", etc. after normalization.
	numberedRegex = regexp.MustCompile(`^(?:capitulo|chapter)\s+([a-z0-9]+)$`)

	romanValues = map[rune]int{'i': 1, 'v': 5, 'x': 10, 'l': 50, 'c': 100, 'd': 500, 'm': 1000}
)

// normalize lowercases, strips accents and most punctuation, and collapses
// whitespace so "Capítulo   5." and "capitulo 5" compare equal.
func normalize(label string) string {
	var sb strings.Builder
	for _, r := range label {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue // combining accent mark; precomposed letters are folded by stripAccents
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			sb.WriteRune(' ')
		}
	}
	return stripAccents(strings.Join(strings.Fields(sb.String()), " "))
}

var accentFolds = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
)

func stripAccents(s string) string {
	return accentFolds.Replace(s)
}

func romanToArabic(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	total := 0
	prev := 0
	for i := len(s) - 1; i >= 0; i-- {
		v, ok := romanValues[rune(s[i])]
		if !ok {
			return 0, false
		}
		if v < prev {
			total -= v
		} else {
			total += v
		}
		prev = v
	}
	if total <= 0 {
		return 0, false
	}
	return total, true
}

// Parse classifies a single chapter key.
func Parse(label string) Metadata {
	norm := normalize(label)

	if prologueWords[norm] {
		return Metadata{Type: Prologue, OriginalLabel: label}
	}
	if epilogueWords[norm] {
		return Metadata{Type: Epilogue, OriginalLabel: label}
	}

	if m := numberedRegex.FindStringSubmatch(norm); m != nil {
		token := m[1]
		if n, err := strconv.Atoi(token); err == nil && n > 0 {
			return Metadata{Type: Numbered, Number: n, OriginalLabel: label}
		}
		if n, ok := romanToArabic(token); ok {
			return Metadata{Type: Numbered, Number: n, OriginalLabel: label}
		}
	}

	return Metadata{Type: Unknown, OriginalLabel: label}
}

// Sorted is the outcome of Sort: the total order plus any warnings about
// keys the parser could not confidently place.
type Sorted struct {
	Order    []Metadata
	Warnings []string
}

// Sort parses and totally orders chapter keys: PROLOGUE < NUMBERED (by
// number ascending) < EPILOGUE < UNKNOWN, ties broken by original label.
// It also reports gaps in the numbered sequence and any unparsed keys.
func Sort(keys []string) Sorted {
	parsed := make([]Metadata, len(keys))
	for i, k := range keys {
		parsed[i] = Parse(k)
	}

	sort.SliceStable(parsed, func(i, j int) bool {
		a, b := parsed[i], parsed[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Type == Numbered && a.Number != b.Number {
			return a.Number < b.Number
		}
		return a.OriginalLabel < b.OriginalLabel
	})

	var warnings []string
	for _, m := range parsed {
		if m.Type == Unknown {
			warnings = append(warnings, fmt.Sprintf("unrecognized chapter key %q", m.OriginalLabel))
		}
	}
	numbered := lo.Filter(parsed, func(m Metadata, _ int) bool { return m.Type == Numbered })
	numbers := lo.Uniq(lo.Map(numbered, func(m Metadata, _ int) int { return m.Number }))
	warnings = append(warnings, gapWarnings(numbers)...)

	return Sorted{Order: parsed, Warnings: warnings}
}

// gapWarnings reports missing values in an otherwise ascending numbered
// sequence, e.g. [1, 3] produces "gap at 2".
func gapWarnings(numbers []int) []string {
	if len(numbers) < 2 {
		return nil
	}
	sorted := append([]int(nil), numbers...)
	sort.Ints(sorted)

	var warnings []string
	for i := 1; i < len(sorted); i++ {
		for missing := sorted[i-1] + 1; missing < sorted[i]; missing++ {
			warnings = append(warnings, fmt.Sprintf("gap at %d", missing))
		}
	}
	return warnings
}
