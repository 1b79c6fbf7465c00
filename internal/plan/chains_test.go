package plan_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kroryan/Generador-de-libros-IA-cli/internal/llm"
	"github.com/kroryan/Generador-de-libros-IA-cli/internal/plan"
)

// scriptedInvoker returns queued responses in order, regardless of prompt.
type scriptedInvoker struct {
	responses []string
	calls     int
}

func (s *scriptedInvoker) Invoke(ctx context.Context, tmpl string, vars map[string]any) (string, error) {
	if s.calls >= len(s.responses) {
		return "", nil
	}
	r := s.responses[s.calls]
	s.calls++
	return r, nil
}

func TestChains_Title(t *testing.T) {
	inv := &scriptedInvoker{responses: []string{"La Sombra del Faro"}}
	c := plan.NewChains(inv)
	title, err := c.Title(context.Background(), "un faro abandonado", "misterio", "adultos", "literario")
	require.NoError(t, err)
	assert.Equal(t, "La Sombra del Faro", title)
}

func TestChains_TitleRetriesOnceOnMalformedResponse(t *testing.T) {
	inv := &scriptedInvoker{responses: []string{"", "El Último Faro"}}
	c := plan.NewChains(inv)
	title, err := c.Title(context.Background(), "s", "g", "p", "e")
	require.NoError(t, err)
	assert.Equal(t, "El Último Faro", title)
	assert.Equal(t, 2, inv.calls)
}

func TestChains_TitleFailsTwiceEscalatesMalformedResponse(t *testing.T) {
	inv := &scriptedInvoker{responses: []string{"", ""}}
	c := plan.NewChains(inv)
	_, err := c.Title(context.Background(), "s", "g", "p", "e")
	assert.ErrorIs(t, err, llm.ErrMalformedResponse)
	assert.Equal(t, 2, inv.calls)
}

func TestChains_Framework(t *testing.T) {
	inv := &scriptedInvoker{responses: []string{"Un mundo donde la niebla oculta secretos antiguos.\n\nLos personajes principales son..."}}
	c := plan.NewChains(inv)
	fw, err := c.Framework(context.Background(), "El Faro", "s", "g", "p", "e")
	require.NoError(t, err)
	assert.Contains(t, fw, "niebla")
}

func TestChains_ChaptersParsesKeyDescriptionLines(t *testing.T) {
	inv := &scriptedInvoker{responses: []string{
		"Prólogo: el faro se enciende por última vez\nCapítulo 1: la llegada del guardián\nCapítulo 2: la tormenta\nEpílogo: el silencio vuelve",
	}}
	c := plan.NewChains(inv)
	result, err := c.Chapters(context.Background(), "marco", "s", "g")
	require.NoError(t, err)
	assert.Equal(t, []string{"Prólogo", "Capítulo 1", "Capítulo 2", "Epílogo"}, result.Keys)
	assert.Equal(t, "la tormenta", result.Descriptions["Capítulo 2"])
}

func TestChains_ChaptersParsesListMarkersAndBlankLines(t *testing.T) {
	inv := &scriptedInvoker{responses: []string{
		"- Capítulo 1: inicio\n\n* Capítulo 2: desarrollo\n1. Capítulo 3: final",
	}}
	c := plan.NewChains(inv)
	result, err := c.Chapters(context.Background(), "marco", "s", "g")
	require.NoError(t, err)
	assert.Equal(t, []string{"Capítulo 1", "Capítulo 2", "Capítulo 3"}, result.Keys)
}

func TestChains_IdeasRequiresThreeToFiveLines(t *testing.T) {
	inv := &scriptedInvoker{responses: []string{"idea uno\nidea dos"}}
	c := plan.NewChains(inv)
	_, err := c.Ideas(context.Background(), "marco", "Capítulo 1", "desc", nil)
	assert.ErrorIs(t, err, llm.ErrMalformedResponse)
}

func TestChains_IdeasAcceptsFourLines(t *testing.T) {
	inv := &scriptedInvoker{responses: []string{"idea uno\nidea dos\nidea tres\nidea cuatro"}}
	c := plan.NewChains(inv)
	ideas, err := c.Ideas(context.Background(), "marco", "Capítulo 1", "desc", []string{"previa"})
	require.NoError(t, err)
	assert.Len(t, ideas, 4)
}
