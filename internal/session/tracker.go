package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/style-genie/internal/log"
)

// Ticket identifies one in-flight request of a session.
type Ticket struct {
	SessionID string
	seq       uint64
	ctx       context.Context
	cancel    context.CancelFunc
}

// Context is canceled when the session starts a newer request, is discarded, or the parent ends.
func (t *Ticket) Context() context.Context {
	return t.ctx
}

type entry struct {
	state    State
	seq      uint64
	inflight *Ticket
}

// Tracker holds session state in memory and drops results of superseded requests.
type Tracker struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

// NewTracker starts a tracker that forgets sessions idle for longer than ttl.
// A cleanupInterval of zero disables the background sweep.
func NewTracker(ttl, cleanupInterval time.Duration) *Tracker {
	t := &Tracker{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go t.cleanupLoop(cleanupInterval)
	}
	return t
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// Begin registers a new request for sessionID, canceling any request still in flight.
// An empty sessionID starts a new session.
func (t *Tracker) Begin(parent context.Context, sessionID string) *Ticket {
	if sessionID == "" {
		sessionID = NewID()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	e, ok := t.sessions[sessionID]
	if !ok {
		e = &entry{state: NewState(sessionID, now)}
		t.sessions[sessionID] = e
	}
	if e.inflight != nil {
		e.inflight.cancel()
	}

	e.seq++
	ctx, cancel := context.WithCancel(parent)
	ticket := &Ticket{SessionID: sessionID, seq: e.seq, ctx: ctx, cancel: cancel}
	e.inflight = ticket
	e.state = e.state.Analyzing(now)
	return ticket
}

// Commit finishes a request. It returns false when the ticket was superseded or
// discarded, in which case the caller must drop its result.
func (t *Tracker) Commit(ticket *Ticket) bool {
	defer ticket.cancel()

	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.sessions[ticket.SessionID]
	if !ok || e.seq != ticket.seq || ticket.ctx.Err() != nil {
		log.Debug(log.Fields{"session": ticket.SessionID}, "Dropping stale result")
		return false
	}
	e.inflight = nil
	e.state = e.state.Results(t.now())
	return true
}

// Discard forgets a session and cancels its in-flight request.
func (t *Tracker) Discard(sessionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.sessions[sessionID]
	if !ok {
		return false
	}
	if e.inflight != nil {
		e.inflight.cancel()
	}
	delete(t.sessions, sessionID)
	return true
}

// Get returns the current state of a session.
func (t *Tracker) Get(sessionID string) (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.sessions[sessionID]
	if !ok {
		return State{}, false
	}
	return e.state, true
}

// Update applies a transition to a session's state.
func (t *Tracker) Update(sessionID string, transition func(State, time.Time) State) (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.sessions[sessionID]
	if !ok {
		return State{}, false
	}
	e.state = transition(e.state, t.now())
	return e.state, true
}

// Len returns the number of tracked sessions.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// Stop ends the background sweep.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

func (t *Tracker) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := t.sweep(); n > 0 {
				log.Debug(log.Fields{"expired": n}, "Expired idle sessions")
			}
		case <-t.stop:
			return
		}
	}
}

// sweep removes idle sessions without in-flight work.
func (t *Tracker) sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-t.ttl)
	removed := 0
	for id, e := range t.sessions {
		if e.inflight == nil && e.state.UpdatedAt.Before(cutoff) {
			delete(t.sessions, id)
			removed++
		}
	}
	return removed
}
