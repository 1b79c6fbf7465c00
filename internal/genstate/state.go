// Package genstate is the pipeline's state machine (C11): an immutable
// GenerationState record, a legal-transition table, and a mutex-guarded
// Manager that swaps the held state and notifies observers outside the
// lock, in the style of Tangerg-lynx's core/scheduler single-mutex state
// guard.
package genstate

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is one of the 13 pipeline states.
type Status int

const (
	Idle Status = iota
	Starting
	ConfiguringModel
	GeneratingStructure
	StructureComplete
	GeneratingIdeas
	IdeasComplete
	WritingBook
	ChapterComplete
	WritingComplete
	SavingDocument
	Complete
	Error
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Starting:
		return "STARTING"
	case ConfiguringModel:
		return "CONFIGURING_MODEL"
	case GeneratingStructure:
		return "GENERATING_STRUCTURE"
	case StructureComplete:
		return "STRUCTURE_COMPLETE"
	case GeneratingIdeas:
		return "GENERATING_IDEAS"
	case IdeasComplete:
		return "IDEAS_COMPLETE"
	case WritingBook:
		return "WRITING_BOOK"
	case ChapterComplete:
		return "CHAPTER_COMPLETE"
	case WritingComplete:
		return "WRITING_COMPLETE"
	case SavingDocument:
		return "SAVING_DOCUMENT"
	case Complete:
		return "COMPLETE"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// legalTransitions is the mostly-linear DAG: every non-terminal state can
// also transition to Error, ChapterComplete re-enters WritingBook for the
// next chapter, and WritingBook may re-enter itself so the writer can
// publish per-section progress.
var legalTransitions = map[Status][]Status{
	Idle:                 {Starting, Error},
	Starting:              {ConfiguringModel, Error},
	ConfiguringModel:      {GeneratingStructure, Error},
	GeneratingStructure:   {StructureComplete, Error},
	StructureComplete:     {GeneratingIdeas, Error},
	GeneratingIdeas:       {IdeasComplete, Error},
	IdeasComplete:         {WritingBook, Error},
	WritingBook:           {WritingBook, ChapterComplete, WritingComplete, Error},
	ChapterComplete:       {WritingBook, WritingComplete, Error},
	WritingComplete:       {SavingDocument, Error},
	SavingDocument:        {Complete, Error},
	Complete:              {},
	Error:                 {},
}

// IsLegalTransition reports whether to is reachable from from in one step.
func IsLegalTransition(from, to Status) bool {
	for _, s := range legalTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// GenerationState is an immutable snapshot of the pipeline's progress.
type GenerationState struct {
	RunID          uuid.UUID
	Status         Status
	Title          string
	CurrentStep    string
	Progress       int
	ChapterCount   int
	CurrentChapter string
	Error          string
	BookReady      bool
	FilePath       string
	OutputFormat   string
	Timestamp      time.Time
}

// withStatus returns a new GenerationState with status replaced, validated by
// the caller (Manager.Transition) before being published.
func (s GenerationState) withStatus(status Status, now time.Time) GenerationState {
	next := s
	next.Status = status
	next.Timestamp = now
	return next
}

// ErrIllegalTransition is returned when a requested status change isn't in
// legalTransitions.
type ErrIllegalTransition struct {
	From, To Status
}

func (e *ErrIllegalTransition) Error() string {
	return fmt.Sprintf("genstate: illegal transition from %s to %s", e.From, e.To)
}
