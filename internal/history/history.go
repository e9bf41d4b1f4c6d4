// Package history keeps the most recent sent messages for display.
//
// A refresh is split in two so the network call can run off the event loop:
// Begin hands out a token and cancels whatever refresh it supersedes, and
// Apply installs a result only if its token is still the latest. A stale
// response therefore never overwrites fresher contents.
package history

import (
	"context"
	"sort"
	"sync"

	"github.com/jaigner-hub/msgdesk/internal/data"
	"github.com/jaigner-hub/msgdesk/internal/logger"
)

// Limit is how many messages the store keeps.
const Limit = 5

// Fetcher is the part of the messaging service the store needs.
type Fetcher interface {
	FetchMessages(ctx context.Context, userEmail string) ([]data.MessageRecord, error)
}

// Token identifies one refresh. Its Context is canceled when a newer refresh
// begins or the store is closed.
type Token struct {
	Context context.Context
	Owner   string
	gen     uint64
}

// Store is the message history display cache.
type Store struct {
	mu      sync.Mutex
	items   []data.SentMessage
	gen     uint64
	cancel  context.CancelFunc
	lastErr error
	loading bool
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Begin starts a refresh for owner and cancels any pending one.
func (s *Store) Begin(parent context.Context, owner string) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.gen++
	s.loading = true
	return Token{Context: ctx, Owner: owner, gen: s.gen}
}

// Apply replaces the contents with records if tok is still current. It
// reports whether the records were installed.
func (s *Store) Apply(tok Token, records []data.MessageRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(tok) {
		return false
	}
	s.items = Project(records, Limit)
	s.lastErr = nil
	s.finishLocked()
	return true
}

// Fail records err for a current token. Prior contents are kept.
func (s *Store) Fail(tok Token, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(tok) {
		return false
	}
	s.lastErr = err
	s.finishLocked()
	logger.Component("history").Warn("refresh failed", "owner", tok.Owner, "error", err)
	return true
}

func (s *Store) currentLocked(tok Token) bool {
	return tok.gen == s.gen && tok.Context != nil && tok.Context.Err() == nil
}

func (s *Store) finishLocked() {
	s.loading = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Refresh fetches and applies in one call. It returns ctx errors for
// superseded refreshes and the fetch error otherwise.
func (s *Store) Refresh(ctx context.Context, f Fetcher, owner string) error {
	tok := s.Begin(ctx, owner)
	records, err := f.FetchMessages(tok.Context, owner)
	if err != nil {
		if !s.Fail(tok, err) && tok.Context.Err() != nil {
			return tok.Context.Err()
		}
		return err
	}
	if !s.Apply(tok, records) {
		return context.Canceled
	}
	return nil
}

// Cancel aborts the pending refresh, if any.
func (s *Store) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.loading = false
}

// Reset cancels any refresh and empties the store, e.g. on logout.
func (s *Store) Reset() {
	s.Cancel()
	s.mu.Lock()
	s.items = nil
	s.lastErr = nil
	s.mu.Unlock()
}

// Items returns a copy of the current contents, newest first.
func (s *Store) Items() []data.SentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]data.SentMessage, len(s.items))
	copy(out, s.items)
	return out
}

// Err returns the error of the last completed refresh, if it failed.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Loading reports whether a refresh is pending.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Project maps records to display entries, newest first, keeping at most
// limit. Ties keep server order.
func Project(records []data.MessageRecord, limit int) []data.SentMessage {
	out := make([]data.SentMessage, 0, len(records))
	for _, r := range records {
		out = append(out, data.SentMessage{
			ID:         string(r.ID),
			Body:       r.Body,
			Recipients: r.Recipients,
			SentAt:     r.CreatedAt.Time,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SentAt.After(out[j].SentAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
