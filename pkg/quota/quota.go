// Package quota tracks free-trial usage per (user, provider) pair.
//
// State is process-lifetime only by design: a restart resets every key
// back to its initial allowance. Callers that need durability must plug
// in their own Store implementation; the interface is the capability
// boundary.
package quota

import (
	"errors"
	"log/slog"
	"sync"
)

// DefaultAllowance is the number of free generations per key.
const DefaultAllowance = 3

// ErrTrialsExhausted is the distinguished denial for a spent key.
var ErrTrialsExhausted = errors.New("quota: free trials exhausted")

// Key identifies one trial budget.
type Key struct {
	UserID     string
	ProviderID string
}

// Store authorizes and records trial usage. Implementations must
// guarantee that no more than the configured allowance of commits
// succeed per key, regardless of concurrent callers.
type Store interface {
	// Authorize grants or denies one generation attempt. Callers
	// supplying their own credential are always allowed and the key's
	// budget is untouched. The returned Lease must be finished with
	// exactly one call to Commit or Cancel.
	Authorize(userID, providerID string, hasOwnKey bool) (*Lease, error)
}

// Lease is one authorized attempt. It holds the key's lock until
// Commit or Cancel, serializing authorize+commit per key so two
// concurrent requests cannot both spend the last trial.
type Lease struct {
	rec       *record
	remaining int
	bypass    bool
	done      bool
}

// Remaining reports the trials left at authorization time. Bypass
// leases report -1.
func (l *Lease) Remaining() int {
	if l.bypass {
		return -1
	}
	return l.remaining
}

// Commit consumes one trial and releases the key. Call it only after a
// generation produced a non-empty result.
func (l *Lease) Commit() {
	if l.bypass || l.done {
		return
	}
	l.done = true
	l.rec.remaining--
	l.remaining = l.rec.remaining
	l.rec.mu.Unlock()
}

// Cancel releases the key without consuming a trial. Use it when the
// generation failed or produced nothing.
func (l *Lease) Cancel() {
	if l.bypass || l.done {
		return
	}
	l.done = true
	l.rec.mu.Unlock()
}

type record struct {
	mu        sync.Mutex
	remaining int
}

// MemoryStore is the in-memory Store. Records are created lazily on
// first use and never destroyed.
type MemoryStore struct {
	mu        sync.Mutex
	records   map[Key]*record
	allowance int
	logger    *slog.Logger
}

// NewMemoryStore creates a store with the given initial allowance per key.
// An allowance of 0 denies every trial request.
func NewMemoryStore(allowance int) *MemoryStore {
	return &MemoryStore{
		records:   make(map[Key]*record),
		allowance: allowance,
		logger:    slog.Default().With("component", "quota.memory"),
	}
}

// NewMemoryStoreWithLogger creates a store with a custom logger.
func NewMemoryStoreWithLogger(logger *slog.Logger, allowance int) *MemoryStore {
	s := NewMemoryStore(allowance)
	s.logger = logger.With("component", "quota.memory")
	return s
}

// Authorize implements Store.
func (s *MemoryStore) Authorize(userID, providerID string, hasOwnKey bool) (*Lease, error) {
	if hasOwnKey {
		return &Lease{bypass: true}, nil
	}

	key := Key{UserID: userID, ProviderID: providerID}

	s.mu.Lock()
	rec, ok := s.records[key]
	if !ok {
		rec = &record{remaining: s.allowance}
		s.records[key] = rec
	}
	s.mu.Unlock()

	// Hold the per-key lock until the caller commits or cancels.
	rec.mu.Lock()
	if rec.remaining <= 0 {
		rec.mu.Unlock()
		s.logger.Info("trial denied",
			"user", userID,
			"provider", providerID,
		)
		return nil, ErrTrialsExhausted
	}

	return &Lease{rec: rec, remaining: rec.remaining}, nil
}

// Remaining reports the trials left for a key without authorizing.
// Unseen keys report the full allowance.
func (s *MemoryStore) Remaining(userID, providerID string) int {
	s.mu.Lock()
	rec, ok := s.records[Key{UserID: userID, ProviderID: providerID}]
	s.mu.Unlock()

	if !ok {
		return s.allowance
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.remaining
}

// Verify MemoryStore implements Store at compile time.
var _ Store = (*MemoryStore)(nil)
