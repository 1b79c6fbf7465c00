// Package book is the outer orchestrator: it wires C9 (plan chains), C10
// (writer), C11 (state machine) together into the linear pipeline
// IDLE -> ... -> COMPLETE and produces the finished Manuscript.
package book

import (
	"context"
	"fmt"

	"github.com/kroryan/Generador-de-libros-IA-cli/internal/chapters"
	"github.com/kroryan/Generador-de-libros-IA-cli/internal/genstate"
	"github.com/kroryan/Generador-de-libros-IA-cli/internal/narrative"
	"github.com/kroryan/Generador-de-libros-IA-cli/internal/plan"
	"github.com/kroryan/Generador-de-libros-IA-cli/internal/writer"
)

// Request is the input record from the outer caller (CLI or HTTP layer).
type Request struct {
	Subject      string
	Profile      string
	Style        string
	Genre        string
	Model        string
	OutputFormat string
	OutputPath   string
}

// ManuscriptChapter is one finished chapter: its key, title, and ordered
// section prose.
type ManuscriptChapter struct {
	Key      string
	Title    string
	Sections []string
}

// Manuscript is the accumulated book text handed to the formatter.
type Manuscript struct {
	Title    string
	Chapters []ManuscriptChapter
}

// Pipeline ties the plan chains, writer, and state machine together.
type Pipeline struct {
	chains    *plan.Chains
	writer    *writer.Writer
	narrative *narrative.Manager
	state     *genstate.Manager
}

func NewPipeline(chains *plan.Chains, w *writer.Writer, narrativeMgr *narrative.Manager, state *genstate.Manager) *Pipeline {
	return &Pipeline{chains: chains, writer: w, narrative: narrativeMgr, state: state}
}

// Run executes the full IDLE -> COMPLETE pipeline for req and returns the
// finished Manuscript.
func (p *Pipeline) Run(ctx context.Context, req Request) (Manuscript, error) {
	if _, err := p.state.Transition(genstate.Starting, func(s *genstate.GenerationState) {
		s.CurrentStep = "starting"
	}); err != nil {
		return Manuscript{}, err
	}
	if _, err := p.state.Transition(genstate.ConfiguringModel, nil); err != nil {
		return Manuscript{}, err
	}

	if _, err := p.state.Transition(genstate.GeneratingStructure, nil); err != nil {
		return Manuscript{}, err
	}
	title, err := p.chains.Title(ctx, req.Subject, req.Genre, req.Profile, req.Style)
	if err != nil {
		return p.fail(err)
	}
	framework, err := p.chains.Framework(ctx, title, req.Subject, req.Genre, req.Profile, req.Style)
	if err != nil {
		return p.fail(err)
	}
	p.narrative.SetFramework(framework)

	chapterList, err := p.chains.Chapters(ctx, framework, req.Subject, req.Genre)
	if err != nil {
		return p.fail(err)
	}
	sorted := chapters.Sort(chapterList.Keys)

	if _, err := p.state.Transition(genstate.StructureComplete, func(s *genstate.GenerationState) {
		s.Title = title
		s.ChapterCount = len(sorted.Order)
	}); err != nil {
		return Manuscript{}, err
	}

	if _, err := p.state.Transition(genstate.GeneratingIdeas, nil); err != nil {
		return Manuscript{}, err
	}
	plans := make([]writer.ChapterPlan, 0, len(sorted.Order))
	var priorIdeas []string
	for _, meta := range sorted.Order {
		key := meta.OriginalLabel
		desc := chapterList.Descriptions[key]
		ideas, err := p.chains.Ideas(ctx, framework, key, desc, priorIdeas)
		if err != nil {
			return p.fail(err)
		}
		priorIdeas = append(priorIdeas, ideas...)
		plans = append(plans, writer.ChapterPlan{Key: key, Title: desc, Ideas: ideas})
	}
	if _, err := p.state.Transition(genstate.IdeasComplete, nil); err != nil {
		return Manuscript{}, err
	}

	if _, err := p.state.Transition(genstate.WritingBook, nil); err != nil {
		return Manuscript{}, err
	}
	if err := p.writer.WriteBook(ctx, plans); err != nil {
		return Manuscript{}, err // writer already transitioned to ERROR
	}

	if _, err := p.state.Transition(genstate.SavingDocument, nil); err != nil {
		return Manuscript{}, err
	}
	manuscript := Manuscript{Title: title}
	for _, cp := range plans {
		manuscript.Chapters = append(manuscript.Chapters, ManuscriptChapter{
			Key:      cp.Key,
			Title:    cp.Title,
			Sections: p.narrative.Sections(cp.Key),
		})
	}

	if _, err := p.state.Transition(genstate.Complete, func(s *genstate.GenerationState) {
		s.BookReady = true
		s.FilePath = req.OutputPath
		s.OutputFormat = req.OutputFormat
	}); err != nil {
		return Manuscript{}, err
	}

	return manuscript, nil
}

func (p *Pipeline) fail(err error) (Manuscript, error) {
	if _, ferr := p.state.Fail(err.Error()); ferr != nil {
		return Manuscript{}, fmt.Errorf("%w (also failed to record ERROR state: %w)", err, ferr)
	}
	return Manuscript{}, err
}
