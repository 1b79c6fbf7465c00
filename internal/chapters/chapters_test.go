package chapters_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kroryan/Generador-de-libros-IA-cli/internal/chapters"
)

func labels(s chapters.Sorted) []string {
	out := make([]string, len(s.Order))
	for i, m := range s.Order {
		out[i] = m.OriginalLabel
	}
	return out
}

func TestParse_RecognizesAllTypes(t *testing.T) {
	cases := map[string]chapters.Type{
		"Prólogo":      chapters.Prologue,
		"prologue":     chapters.Prologue,
		"Epílogo":      chapters.Epilogue,
		"EPILOGUE":     chapters.Epilogue,
		"Capítulo 1":   chapters.Numbered,
		"Chapter 12":   chapters.Numbered,
		"capitulo xiv": chapters.Numbered,
		"Interludio":   chapters.Unknown,
	}
	for label, want := range cases {
		got := chapters.Parse(label)
		assert.Equal(t, want, got.Type, "label %q", label)
	}
}

func TestParse_RomanNumerals(t *testing.T) {
	assert.Equal(t, 14, chapters.Parse("Capítulo XIV").Number)
	assert.Equal(t, 4, chapters.Parse("Chapter IV").Number)
	assert.Equal(t, 9, chapters.Parse("capitulo IX").Number)
}

func TestParse_IsAccentAndPunctuationInsensitive(t *testing.T) {
	a := chapters.Parse("Capítulo 5")
	b := chapters.Parse("capitulo  5")
	assert.Equal(t, a.Type, b.Type)
	assert.Equal(t, a.Number, b.Number)
}

func TestSort_MixedLabelsNoWarnings(t *testing.T) {
	result := chapters.Sort([]string{"Capítulo 3", "Prólogo", "Capítulo 1", "Epílogo", "Capítulo 2"})
	assert.Equal(t,
		[]string{"Prólogo", "Capítulo 1", "Capítulo 2", "Capítulo 3", "Epílogo"},
		labels(result),
	)
	assert.Empty(t, result.Warnings)
}

func TestSort_GapProducesWarning(t *testing.T) {
	result := chapters.Sort([]string{"Capítulo 1", "Capítulo 3"})
	assert.Equal(t, []string{"Capítulo 1", "Capítulo 3"}, labels(result))
	assert.Contains(t, result.Warnings, "gap at 2")
}

func TestSort_UnknownKeysBucketedLastWithWarning(t *testing.T) {
	result := chapters.Sort([]string{"Capítulo 1", "Interludio misterioso", "Epílogo"})
	assert.Equal(t, []string{"Capítulo 1", "Epílogo", "Interludio misterioso"}, labels(result))
	assert.Contains(t, result.Warnings, `unrecognized chapter key "Interludio misterioso"`)
}

func TestSort_IsStablePermutationOfInput(t *testing.T) {
	in := []string{"Capítulo 2", "Prólogo", "Capítulo 1"}
	result := chapters.Sort(in)
	assert.ElementsMatch(t, in, labels(result))
}
