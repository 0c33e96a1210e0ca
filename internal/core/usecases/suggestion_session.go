package usecases

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samirrijal/akureroute/internal/core/domain"
	"github.com/samirrijal/akureroute/internal/pkg/metrics"
)

// SuggestionSession drives live place search for one input box.
//
// Every Update gets a new sequence number. Local matches are emitted at
// once; the remote search is debounced, and when it completes its results
// are emitted only if no newer Update has happened in the meantime.
type SuggestionSession struct {
	places   *PlaceService
	debounce time.Duration
	emit     func(domain.Suggestions)
	parent   context.Context

	seq atomic.Uint64

	mu     sync.Mutex // guards timer, cancel, closed
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool

	emitMu sync.Mutex // serializes emit and orders it against seq bumps
}

// NewSuggestionSession creates a session. Remote searches run under ctx and
// stop when it is done. emit is never called concurrently.
func NewSuggestionSession(ctx context.Context, places *PlaceService, debounce time.Duration, emit func(domain.Suggestions)) *SuggestionSession {
	return &SuggestionSession{
		places:   places,
		debounce: debounce,
		emit:     emit,
		parent:   ctx,
	}
}

// Update records a new query and returns its sequence number.
func (s *SuggestionSession) Update(query string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return s.seq.Load()
	}

	s.stopPendingLocked()

	local := s.places.Local(query)
	searching := s.places.WantsRemote(query)

	s.emitMu.Lock()
	seq := s.seq.Add(1)
	s.emit(domain.Suggestions{Seq: seq, Query: query, Places: local, Searching: searching})
	s.emitMu.Unlock()

	if !searching {
		return seq
	}

	ctx, cancel := context.WithCancel(s.parent)
	s.cancel = cancel
	s.timer = time.AfterFunc(s.debounce, func() {
		s.search(ctx, seq, query, local)
	})
	return seq
}

// Latest returns the sequence number of the most recent Update.
func (s *SuggestionSession) Latest() uint64 {
	return s.seq.Load()
}

// Close cancels pending work. Nothing is emitted after Close returns.
func (s *SuggestionSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.stopPendingLocked()

	s.emitMu.Lock()
	s.seq.Add(1)
	s.emitMu.Unlock()
}

func (s *SuggestionSession) stopPendingLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *SuggestionSession) search(ctx context.Context, seq uint64, query string, local []domain.Place) {
	if ctx.Err() != nil {
		return
	}

	merged := s.places.Merge(local, s.places.Remote(ctx, query))

	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	if seq != s.seq.Load() || ctx.Err() != nil {
		metrics.StaleSuggestionsDropped.Inc()
		return
	}
	s.emit(domain.Suggestions{Seq: seq, Query: query, Places: merged, Searching: false})
}
