package usecase

import (
	"context"
	"sync"

	"github.com/campus-pulse/pulse/pkg/domain/model"
	"github.com/campus-pulse/pulse/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// subscriber channel capacity. A slow consumer loses events rather
// than stalling the pipeline; the full history stays available via
// Events.
const subscriberBuffer = 16

// progressStream holds the event history and live subscribers of one
// submission
type progressStream struct {
	events []model.ProgressEvent
	subs   map[int]chan model.ProgressEvent
	nextID int
	done   bool
}

// ProgressHub fans pipeline progress events out to HTTP subscribers.
// Each submission owns one finite stream: events are appended in
// pipeline order and the stream closes at the first terminal event.
// The hub holds state in memory only; an event stream does not survive
// a process restart.
type ProgressHub struct {
	mu      sync.RWMutex
	streams map[types.SubmissionID]*progressStream
}

// NewProgressHub creates an empty hub
func NewProgressHub() *ProgressHub {
	return &ProgressHub{
		streams: make(map[types.SubmissionID]*progressStream),
	}
}

// Open registers a stream for a freshly accepted submission. Must be
// called before the pipeline starts so that subscribers arriving
// between acceptance and the first event find the stream.
func (h *ProgressHub) Open(submissionID types.SubmissionID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.streams[submissionID]; !ok {
		h.streams[submissionID] = &progressStream{
			subs: make(map[int]chan model.ProgressEvent),
		}
	}
}

// Publish appends an event to its submission's stream and delivers it
// to live subscribers. A terminal event closes the stream.
func (h *ProgressHub) Publish(ctx context.Context, event model.ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	stream, ok := h.streams[event.SubmissionID]
	if !ok || stream.done {
		ctxlog.From(ctx).Warn("Progress event for unknown or closed stream",
			"submissionID", event.SubmissionID,
			"stage", event.Stage,
		)
		return
	}

	stream.events = append(stream.events, event)

	for id, sub := range stream.subs {
		select {
		case sub <- event:
		default:
			ctxlog.From(ctx).Warn("Dropping progress event for slow subscriber",
				"submissionID", event.SubmissionID,
				"subscriberID", id,
				"stage", event.Stage,
			)
		}
	}

	if event.Stage.Terminal() {
		stream.done = true
		for _, sub := range stream.subs {
			close(sub)
		}
		stream.subs = make(map[int]chan model.ProgressEvent)
	}
}

// Subscribe returns a channel that replays the submission's history
// and then carries live events until the stream terminates. The
// returned cancel function must be called when the consumer leaves.
func (h *ProgressHub) Subscribe(submissionID types.SubmissionID) (<-chan model.ProgressEvent, func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	stream, ok := h.streams[submissionID]
	if !ok {
		return nil, nil, goerr.New("unknown submission", goerr.V("submissionID", submissionID))
	}

	ch := make(chan model.ProgressEvent, len(stream.events)+subscriberBuffer)
	for _, event := range stream.events {
		ch <- event
	}

	if stream.done {
		close(ch)
		return ch, func() {}, nil
	}

	id := stream.nextID
	stream.nextID++
	stream.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if s, ok := h.streams[submissionID]; ok {
			if _, live := s.subs[id]; live {
				delete(s.subs, id)
				close(ch)
			}
		}
	}

	return ch, cancel, nil
}

// Events returns a copy of the event history of a submission
func (h *ProgressHub) Events(submissionID types.SubmissionID) ([]model.ProgressEvent, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stream, ok := h.streams[submissionID]
	if !ok {
		return nil, false
	}

	events := make([]model.ProgressEvent, len(stream.events))
	copy(events, stream.events)
	return events, true
}

// Done reports whether the submission's stream has terminated
func (h *ProgressHub) Done(submissionID types.SubmissionID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stream, ok := h.streams[submissionID]
	return ok && stream.done
}
