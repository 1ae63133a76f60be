// Package syncer is the reconciliation layer between the local store and
// the remote ordering service.
//
// For every operation category it applies one of three strategies -
// remote-then-mirror, local-only, remote-only - chosen from a single
// decision table (strategy.go) against a point-in-time connectivity
// probe. The local store is only ever a cache for server-owned entities
// and the sole owner of the cart; the syncer is the one layer permitted
// to catch a network failure and substitute a fallback path.
package syncer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/satchel-app/satchel/internal/remote"
	"github.com/satchel-app/satchel/internal/store"
)

// Identity is the authenticated principal an operation ran as.
type Identity struct {
	UserID      int64
	Email       string
	DisplayName string
	Role        store.Role
	Token       string
	// Offline marks an identity authenticated against the local mirror
	// with a synthetic session marker instead of a server-issued token.
	Offline bool
}

// Syncer coordinates the local store and the remote client.
type Syncer struct {
	store      *store.Store
	client     *remote.Client
	probe      Probe
	log        *zap.Logger
	signingKey []byte

	// now is injectable for date-sensitive pricing tests.
	now func() time.Time

	// locks serializes mutating operations per user. The checkout
	// transaction holds its user's lock for its whole duration, so no
	// concurrent cart mutation or second checkout can interleave.
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// New creates a Syncer. logger may be nil; a nop logger is used then.
func New(st *store.Store, client *remote.Client, probe Probe, logger *zap.Logger, signingKey string) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{
		store:      st,
		client:     client,
		probe:      probe,
		log:        logger,
		signingKey: []byte(signingKey),
		now:        time.Now,
		locks:      make(map[int64]*sync.Mutex),
	}
}

// Store exposes the underlying local store for read-only UI queries.
func (s *Syncer) Store() *store.Store {
	return s.store
}

// userLock returns the mutex serializing one user's mutations.
func (s *Syncer) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// online queries connectivity immediately before a strategy decision.
func (s *Syncer) online(ctx context.Context) bool {
	return s.probe.Online(ctx)
}

// localErr wraps a store failure. Local-store errors are always fatal to
// the operation and never swallowed.
func localErr(op Op, err error) *OpError {
	return opErr(CodeLocalStore, string(op), err)
}

// remoteErr classifies a remote client failure into the taxonomy.
func remoteErr(op Op, err error) *OpError {
	if remote.IsNetworkError(err) {
		return opErr(CodeNetworkUnavailable, string(op), err)
	}
	return opErr(CodeRejected, string(op), err)
}
