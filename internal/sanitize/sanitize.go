// Package sanitize implements a character-level finite state machine that
// splits a live LLM token stream into an answer channel and a thought
// (reasoning) channel, stripping the <think>...</think> structural tags as
// they are recognized — even when a tag straddles chunk boundaries.
//
// The naive alternative — buffer the whole response, then regex-strip —
// breaks the "show the user live text" contract and doubles peak memory.
// This FSM treats a tag prefix as speculative state: bytes are never
// emitted on the answer channel while they might still complete a tag,
// and are reclassified to the channel of the state they came from once
// the tag resolves (or never resolves, via Flush).
package sanitize

import (
	"strings"
	"unicode/utf8"
)

// State is one of the four FSM states from the streaming sanitizer design.
type State int

const (
	Normal State = iota
	PossibleThinkStart
	InThink
	PossibleThinkEnd
)

const (
	openTag  = "<think>"
	closeTag = "</think>"
)

// Sanitizer consumes chunks of arbitrary size and size-agnostically
// classifies every byte as belonging to the answer channel, the thought
// channel, or a structural tag (dropped). It never raises on content.
type Sanitizer struct {
	state   State
	pending strings.Builder
	runeBuf []byte

	onAnswer  func(delta string)
	onThought func(delta string)
}

// New creates a Sanitizer. onAnswer and onThought are called synchronously,
// as soon as a byte is unambiguously classified; either may be nil.
func New(onAnswer, onThought func(delta string)) *Sanitizer {
	if onAnswer == nil {
		onAnswer = func(string) {}
	}
	if onThought == nil {
		onThought = func(string) {}
	}
	return &Sanitizer{
		state:     Normal,
		onAnswer:  onAnswer,
		onThought: onThought,
	}
}

// Write feeds chunk into the FSM. Chunk boundaries are irrelevant to the
// classification — only the accumulated byte sequence matters.
func (s *Sanitizer) Write(chunk string) {
	for i := 0; i < len(chunk); i++ {
		s.step(chunk[i])
	}
}

func (s *Sanitizer) step(b byte) {
	switch s.state {
	case Normal:
		if b == '<' {
			s.pending.WriteByte(b)
			s.state = PossibleThinkStart
			return
		}
		s.emitRune(s.onAnswer, b)

	case PossibleThinkStart:
		s.pending.WriteByte(b)
		candidate := s.pending.String()
		switch {
		case candidate == openTag:
			s.pending.Reset()
			s.state = InThink
		case strings.HasPrefix(openTag, candidate):
			// still a valid prefix; keep buffering
		default:
			if b == '<' {
				// The diverging '<' may itself open a tag: keep it pending.
				s.pending.Reset()
				s.onAnswer(candidate[:len(candidate)-1])
				s.pending.WriteByte(b)
				return
			}
			s.flushPendingAs(s.onAnswer)
			s.state = Normal
		}

	case InThink:
		if b == '<' {
			s.pending.WriteByte(b)
			s.state = PossibleThinkEnd
			return
		}
		s.emitRune(s.onThought, b)

	case PossibleThinkEnd:
		s.pending.WriteByte(b)
		candidate := s.pending.String()
		switch {
		case candidate == closeTag:
			s.pending.Reset()
			s.state = Normal
		case strings.HasPrefix(closeTag, candidate):
			// still a valid prefix; keep buffering
		default:
			if b == '<' {
				// The diverging '<' may itself open a close tag: keep it pending.
				s.pending.Reset()
				s.onThought(candidate[:len(candidate)-1])
				s.pending.WriteByte(b)
				return
			}
			s.flushPendingAs(s.onThought)
			s.state = InThink
		}
	}
}

func (s *Sanitizer) flushPendingAs(emit func(string)) {
	if s.pending.Len() == 0 {
		return
	}
	emit(s.pending.String())
	s.pending.Reset()
}

// emitRune buffers b alongside any bytes still pending from an in-progress
// multi-byte UTF-8 character and only calls emit once the buffer holds a
// complete rune. Converting a lone byte straight to string (string(b)) would
// encode it as the UTF-8 form of that byte's numeric value rather than
// passing it through raw, corrupting every multi-byte character (accented
// letters, for instance) into mojibake.
func (s *Sanitizer) emitRune(emit func(string), b byte) {
	s.runeBuf = append(s.runeBuf, b)
	if !utf8.FullRune(s.runeBuf) {
		return
	}
	emit(string(s.runeBuf))
	s.runeBuf = s.runeBuf[:0]
}

// flushRune emits whatever bytes are still sitting in the rune buffer,
// complete or not, so a stream that ends mid-character loses nothing.
func (s *Sanitizer) flushRune(emit func(string)) {
	if len(s.runeBuf) == 0 {
		return
	}
	emit(string(s.runeBuf))
	s.runeBuf = s.runeBuf[:0]
}

// Flush reclassifies any still-ambiguous buffered prefix to the channel of
// the current state (answer for Normal/PossibleThinkStart, thought for
// InThink/PossibleThinkEnd) and leaves the FSM in Normal or InThink
// respectively. Safe to call at any time, including to drain a cancelled
// stream.
func (s *Sanitizer) Flush() {
	switch s.state {
	case Normal, PossibleThinkStart:
		s.flushPendingAs(s.onAnswer)
		s.flushRune(s.onAnswer)
		s.state = Normal
	case InThink, PossibleThinkEnd:
		s.flushPendingAs(s.onThought)
		s.flushRune(s.onThought)
		s.state = InThink
	}
}

// State returns the sanitizer's current FSM state, mostly useful for tests
// and diagnostics.
func (s *Sanitizer) State() State {
	return s.state
}
