package assistant

import (
	"context"
	"sync"

	"github.com/ashval/inkweaver/internal/apperr"
)

// Session serializes a writer's requests: each call gets a sequence number,
// starting a call cancels the one in flight, and a reply to anything but the
// latest call is discarded with apperr.ErrStaleResponse.
type Session struct {
	gen Generator

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// NewSession creates a session over gen.
func NewSession(gen Generator) *Session {
	return &Session{gen: gen}
}

// Run sends p and interprets the reply. It returns the request's sequence
// number alongside the result.
func (s *Session) Run(ctx context.Context, p Payload) (Result, uint64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.seq++
	mine := s.seq
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.mu.Unlock()

	raw, err := s.gen.Generate(ctx, p)

	s.mu.Lock()
	stale := mine != s.seq
	if !stale {
		s.cancel = nil
	}
	s.mu.Unlock()

	if stale {
		return Result{}, mine, apperr.ErrStaleResponse
	}
	return Interpret(raw, err), mine, nil
}

// Latest returns the sequence number of the most recent call.
func (s *Session) Latest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}
