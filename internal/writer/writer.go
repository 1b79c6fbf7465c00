// Package writer is the per-section prose generator (C10): the core loop
// that walks chapters × ideas in order, pulling context from narrative
// (C8), invoking the LLM gateway (C5), and reporting progress to genstate
// (C11).
package writer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kroryan/Generador-de-libros-IA-cli/internal/genstate"
	"github.com/kroryan/Generador-de-libros-IA-cli/internal/llm"
	"github.com/kroryan/Generador-de-libros-IA-cli/internal/narrative"
)

// Invoker is the subset of llm.Invoker the writer depends on.
type Invoker interface {
	Invoke(ctx context.Context, tmpl string, vars map[string]any) (string, error)
}

// ContextSource is the subset of narrative.Manager the writer depends on.
type ContextSource interface {
	RegisterChapter(key, title, initialSummary string)
	AppendSection(ctx context.Context, key, sectionText string) error
	GetContextForSection(chapterKey string, position narrative.Position) (narrative.ContextResponse, error)
	FinalizeChapter(ctx context.Context, key string) (string, error)
}

// ChapterPlan is one chapter's writing work: its key, title, and the
// ordered idea list C9 produced for it.
type ChapterPlan struct {
	Key   string
	Title string
	Ideas []string
}

// Config tunes recoverable-condition handling.
type Config struct {
	// ShortResponseFloor: sections shorter than this many characters are
	// accepted but flagged, never retried.
	ShortResponseFloor int
}

func (c Config) withDefaults() Config {
	if c.ShortResponseFloor <= 0 {
		c.ShortResponseFloor = 200
	}
	return c
}

// Writer is the concrete C10 implementation.
type Writer struct {
	cfg       Config
	invoker   Invoker
	narrative ContextSource
	state     *genstate.Manager
	logger    *slog.Logger
}

func New(cfg Config, invoker Invoker, narrativeMgr ContextSource, state *genstate.Manager, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{cfg: cfg.withDefaults(), invoker: invoker, narrative: narrativeMgr, state: state, logger: logger}
}

// WriteBook drives the chapter x idea loop. The genstate.Manager must
// already be in WritingBook when this is called (the caller owns the
// GENERATING_IDEAS -> IDEAS_COMPLETE -> WRITING_BOOK transitions).
func (w *Writer) WriteBook(ctx context.Context, chapters []ChapterPlan) error {
	for ci, chapter := range chapters {
		w.narrative.RegisterChapter(chapter.Key, chapter.Title, "")

		for ii, idea := range chapter.Ideas {
			if err := ctx.Err(); err != nil {
				w.failAndReturn(err.Error())
				return err
			}

			position := positionFor(ii, len(chapter.Ideas))
			text, short, err := w.writeSection(ctx, chapter, ci+1, ii+1, idea, position)
			if err != nil {
				w.failAndReturn(err.Error())
				return err
			}
			if short {
				w.logger.Warn("section shorter than floor, accepted", "chapter", chapter.Key, "idea_index", ii+1)
			}

			if err := w.narrative.AppendSection(ctx, chapter.Key, text); err != nil {
				w.failAndReturn(err.Error())
				return err
			}

			w.reportSectionProgress(chapter.Key, len(chapters), ci, ii, len(chapter.Ideas))
		}

		summary, err := w.narrative.FinalizeChapter(ctx, chapter.Key)
		if err != nil {
			w.failAndReturn(err.Error())
			return err
		}
		w.logger.Info("chapter finalized", "chapter", chapter.Key, "summary_len", len(summary))

		if _, err := w.state.Transition(genstate.ChapterComplete, func(s *genstate.GenerationState) {
			s.CurrentChapter = chapter.Key
		}); err != nil {
			return err
		}

		if ci < len(chapters)-1 {
			if _, err := w.state.Transition(genstate.WritingBook, nil); err != nil {
				return err
			}
		}
	}

	_, err := w.state.Transition(genstate.WritingComplete, nil)
	return err
}

func (w *Writer) failAndReturn(message string) {
	if _, err := w.state.Fail(message); err != nil {
		w.logger.Error("failed to record ERROR state", "error", err)
	}
}

func (w *Writer) reportSectionProgress(chapterKey string, totalChapters, chapterIdx, ideaIdx, totalIdeas int) {
	overall := float64(chapterIdx) + float64(ideaIdx+1)/float64(totalIdeas)
	progress := int(overall / float64(totalChapters) * 100)
	_, _ = w.state.Transition(genstate.WritingBook, func(s *genstate.GenerationState) {
		s.CurrentChapter = chapterKey
		s.Progress = progress
		s.CurrentStep = fmt.Sprintf("chapter %d, idea %d/%d", chapterIdx+1, ideaIdx+1, totalIdeas)
	})
}

// positionFor determines start/middle/end per C9's idea ordering.
func positionFor(ideaIdx, totalIdeas int) narrative.Position {
	switch {
	case ideaIdx == 0:
		return narrative.Start
	case ideaIdx == totalIdeas-1:
		return narrative.End
	default:
		return narrative.Middle
	}
}

// writeSection performs one C5 invocation for a single idea, handling the
// locally-recoverable conditions: empty response (one simplified retry)
// and short response (accepted, flagged).
func (w *Writer) writeSection(ctx context.Context, chapter ChapterPlan, chapterNum, ideaIdx int, idea string, position narrative.Position) (text string, short bool, err error) {
	ctxResp, err := w.narrative.GetContextForSection(chapter.Key, position)
	if err != nil {
		return "", false, err
	}
	w.logger.Debug("section context assembled", "chapter", chapter.Key, "idea_index", ideaIdx, "estimated_tokens", ctxResp.EstimatedTokens)

	vars := map[string]any{
		"framework":                 ctxResp.Framework,
		"previous_chapters_summary": ctxResp.PreviousChaptersSummary,
		"current_chapter_summary":   ctxResp.CurrentChapterSummary,
		"idea":                      idea,
		"chapter_number":            chapterNum,
		"idea_index":                ideaIdx,
		"position":                  positionLabel(position),
	}

	text, err = w.invoker.Invoke(ctx, writerTemplate, vars)
	if err != nil {
		return "", false, err
	}
	if text == "" {
		text, err = w.invoker.Invoke(ctx, writerTemplateSimplified, vars)
		if err != nil {
			return "", false, err
		}
		if text == "" {
			return "", false, fmt.Errorf("%w: empty section response after simplified retry", llm.ErrMalformedResponse)
		}
	}

	return text, len(text) < w.cfg.ShortResponseFloor, nil
}

func positionLabel(p narrative.Position) string {
	switch p {
	case narrative.Start:
		return "start"
	case narrative.End:
		return "end"
	default:
		return "middle"
	}
}
