package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Session runs one fetch per mount and publishes its lifecycle state.
// After Unmount no further state change is published.
type Session struct {
	fetcher Fetcher

	// OnChange, when set before Mount, observes every published state.
	// It may call Unmount.
	OnChange func(State)

	mu       sync.Mutex
	state    State
	mounted  bool
	torndown bool
	cancel   context.CancelFunc
	fetched  chan struct{} // closed once the final state is decided
	done     chan struct{} // closed after the final OnChange returns
}

func NewSession(f Fetcher) *Session {
	return &Session{
		fetcher: f,
		state:   Loading{},
		fetched: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Mount starts the fetch. Calling it again, or after Unmount, is a no-op.
func (s *Session) Mount(ctx context.Context) {
	s.mu.Lock()
	if s.mounted || s.torndown {
		s.mu.Unlock()
		return
	}
	s.mounted = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.publish(Loading{})

	go func() {
		defer close(s.done)
		p, err := s.fetcher.Fetch(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				slog.Debug("fetch cancelled", "component", "client")
			} else {
				slog.Error("fetch failed", "component", "client", "err", err)
			}
			s.settle(Failed{Message: err.Error(), Err: err})
			return
		}
		slog.Debug("payload loaded", "component", "client",
			"rows", len(p.Data), "signals", len(p.IndicatorData), "trades", len(p.Trades))
		s.settle(Loaded{Payload: p})
	}()
}

// Unmount cancels an in-flight fetch and waits for its outcome to be
// decided. The state observed afterwards is whatever was published before
// teardown.
func (s *Session) Unmount() {
	s.mu.Lock()
	if s.torndown {
		s.mu.Unlock()
		return
	}
	s.torndown = true
	cancel := s.cancel
	mounted := s.mounted
	s.mu.Unlock()

	if !mounted {
		return
	}
	cancel()
	<-s.fetched
}

// State returns the latest published state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Wait blocks until the fetch settles or ctx ends, then returns the state.
func (s *Session) Wait(ctx context.Context) State {
	s.mu.Lock()
	mounted := s.mounted
	s.mu.Unlock()
	if !mounted {
		return s.State()
	}

	select {
	case <-s.done:
	case <-ctx.Done():
	}
	return s.State()
}

// settle publishes the final state and releases Unmount before the
// callback runs.
func (s *Session) settle(st State) {
	s.mu.Lock()
	var cb func(State)
	if !s.torndown {
		s.state = st
		cb = s.OnChange
	}
	close(s.fetched)
	s.mu.Unlock()

	if cb != nil {
		cb(st)
	}
}

func (s *Session) publish(st State) {
	s.mu.Lock()
	if s.torndown {
		s.mu.Unlock()
		return
	}
	s.state = st
	cb := s.OnChange
	s.mu.Unlock()

	if cb != nil {
		cb(st)
	}
}
