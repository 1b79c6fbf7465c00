package genstate

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/coder/websocket"

	"github.com/kroryan/Generador-de-libros-IA-cli/internal/safe"
)

// LoggerObserver writes every state transition as a structured log line.
type LoggerObserver struct {
	Logger *slog.Logger
}

func (l *LoggerObserver) OnStateChange(state GenerationState) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("generation state changed",
		"run_id", state.RunID,
		"status", state.Status.String(),
		"progress", state.Progress,
		"current_chapter", state.CurrentChapter,
		"current_step", state.CurrentStep,
	)
}

// wireEvent is the JSON shape forwarded to the external UI, per the
// serialized GenerationState schema.
type wireEvent struct {
	RunID          string  `json:"run_id"`
	Status         string  `json:"status"`
	Title          string  `json:"title"`
	CurrentStep    string  `json:"current_step"`
	Progress       int     `json:"progress"`
	ChapterCount   int     `json:"chapter_count"`
	CurrentChapter string  `json:"current_chapter"`
	Error          *string `json:"error,omitempty"`
	BookReady      bool    `json:"book_ready"`
	FilePath       string  `json:"file_path"`
	OutputFormat   string  `json:"output_format"`
	Timestamp      string  `json:"timestamp"`
}

func toWireEvent(s GenerationState) wireEvent {
	ev := wireEvent{
		RunID:          s.RunID.String(),
		Status:         s.Status.String(),
		Title:          s.Title,
		CurrentStep:    s.CurrentStep,
		Progress:       s.Progress,
		ChapterCount:   s.ChapterCount,
		CurrentChapter: s.CurrentChapter,
		BookReady:      s.BookReady,
		FilePath:       s.FilePath,
		OutputFormat:   s.OutputFormat,
		Timestamp:      s.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
	}
	if s.Error != "" {
		ev.Error = &s.Error
	}
	return ev
}

// NetworkObserver forwards every state change to a connected UI over a
// websocket. Pushes happen on a dedicated background goroutine (via safe.Go,
// so a panicking write never brings down the pipeline) fed through a small
// buffered channel, so a slow or stalled UI connection never blocks the
// transition that triggered the notification.
type NetworkObserver struct {
	conn   *websocket.Conn
	ctx    context.Context
	logger *slog.Logger
	events chan GenerationState
}

// NewNetworkObserver wraps an already-dialed websocket connection and
// starts its delivery goroutine. Ownership of conn (closing it) stays with
// the caller.
func NewNetworkObserver(ctx context.Context, conn *websocket.Conn, logger *slog.Logger) *NetworkObserver {
	if logger == nil {
		logger = slog.Default()
	}
	n := &NetworkObserver{conn: conn, ctx: ctx, logger: logger, events: make(chan GenerationState, 32)}
	safe.Go(n.run)
	return n
}

func (n *NetworkObserver) run() {
	for {
		select {
		case <-n.ctx.Done():
			return
		case state, ok := <-n.events:
			if !ok {
				return
			}
			n.push(state)
		}
	}
}

func (n *NetworkObserver) push(state GenerationState) {
	data, err := json.Marshal(toWireEvent(state))
	if err != nil {
		n.logger.Error("failed to marshal generation state", "error", err)
		return
	}
	if err := n.conn.Write(n.ctx, websocket.MessageText, data); err != nil {
		n.logger.Warn("failed to push generation state over websocket", "error", err)
	}
}

// OnStateChange enqueues state for delivery. If the delivery goroutine is
// backlogged the event is dropped rather than blocking the caller; the
// websocket stream is a live telemetry feed, not a guaranteed-delivery log.
func (n *NetworkObserver) OnStateChange(state GenerationState) {
	select {
	case n.events <- state:
	default:
		n.logger.Warn("dropping generation state event, websocket consumer backlogged")
	}
}
