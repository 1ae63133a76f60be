// Package session holds the observable application state: who is signed
// in, whether the session is an offline one, how many lines the cart
// has, and whether an operation is in flight.
//
// UI layers subscribe for change notifications and re-read a snapshot
// when signaled. Signals are coalesced per subscriber (buffered channel
// of one), so a burst of changes wakes each subscriber once.
package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/satchel-app/satchel/internal/store"
	"github.com/satchel-app/satchel/internal/syncer"
)

// State is an immutable snapshot of the observable application state.
type State struct {
	SignedIn  bool
	Identity  syncer.Identity
	CartCount int
	Loading   bool
}

// Manager owns the state and fans change signals out to subscribers.
type Manager struct {
	syncer *syncer.Syncer
	log    *zap.Logger

	mu      sync.Mutex
	state   State
	subs    map[int]chan struct{}
	nextSub int
	closed  bool
}

// NewManager creates a Manager around a syncer. logger may be nil.
func NewManager(s *syncer.Syncer, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		syncer: s,
		log:    logger,
		subs:   make(map[int]chan struct{}),
	}
}

// State returns the current snapshot.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers for change signals. The returned channel receives
// a (coalesced) signal after every state change; cancel removes the
// subscription. Subscribers re-read State() on each signal.
func (m *Manager) Subscribe() (<-chan struct{}, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan struct{}, 1)
	m.subs[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
	return ch, cancel
}

// Close drops all subscribers. Further mutations update state silently.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for id, ch := range m.subs {
		close(ch)
		delete(m.subs, id)
	}
}

// mutate applies fn to the state under the lock and signals subscribers.
func (m *Manager) mutate(fn func(*State)) {
	m.mu.Lock()
	fn(&m.state)
	if m.closed {
		m.mu.Unlock()
		return
	}
	for _, ch := range m.subs {
		select {
		case ch <- struct{}{}:
		default: // a pending signal already covers this change
		}
	}
	m.mu.Unlock()
}

func (m *Manager) setLoading(v bool) {
	m.mutate(func(s *State) { s.Loading = v })
}

// Bootstrap restores a persisted session, if any, and recomputes the
// cart badge. Called once at startup.
func (m *Manager) Bootstrap(ctx context.Context) error {
	ident, ok, err := m.syncer.Resume(ctx)
	if err != nil {
		return err
	}
	if !ok {
		m.mutate(func(s *State) { *s = State{} })
		return nil
	}

	count, err := m.syncer.Store().CartLineCount(ctx, ident.UserID)
	if err != nil {
		return err
	}
	m.mutate(func(s *State) {
		s.SignedIn = true
		s.Identity = ident
		s.CartCount = count
	})
	m.log.Info("session restored",
		zap.Int64("user_id", ident.UserID), zap.Bool("offline", ident.Offline))
	return nil
}

// SignIn authenticates and publishes the resulting identity.
func (m *Manager) SignIn(ctx context.Context, email, password string) (syncer.Identity, error) {
	m.setLoading(true)
	defer m.setLoading(false)

	ident, err := m.syncer.Login(ctx, email, password)
	if err != nil {
		return syncer.Identity{}, err
	}
	count, err := m.syncer.Store().CartLineCount(ctx, ident.UserID)
	if err != nil {
		return syncer.Identity{}, err
	}
	m.mutate(func(s *State) {
		s.SignedIn = true
		s.Identity = ident
		s.CartCount = count
	})
	return ident, nil
}

// Register creates an account and publishes the resulting identity.
func (m *Manager) Register(ctx context.Context, profile store.Profile, email, password string) (syncer.Identity, error) {
	m.setLoading(true)
	defer m.setLoading(false)

	ident, err := m.syncer.Register(ctx, profile, email, password)
	if err != nil {
		return syncer.Identity{}, err
	}
	m.mutate(func(s *State) {
		s.SignedIn = true
		s.Identity = ident
		s.CartCount = 0
	})
	return ident, nil
}

// SignOut clears the session. The cart and mirrored data survive
// locally for the next sign-in.
func (m *Manager) SignOut(ctx context.Context) error {
	if err := m.syncer.Logout(ctx); err != nil {
		return err
	}
	m.mutate(func(s *State) { *s = State{} })
	return nil
}

// currentUser returns the signed-in user id or zero.
func (m *Manager) currentUser() (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.SignedIn {
		return 0, false
	}
	return m.state.Identity.UserID, true
}

// refreshCartCount re-reads the badge count after a cart mutation.
func (m *Manager) refreshCartCount(ctx context.Context, userID int64) error {
	count, err := m.syncer.Store().CartLineCount(ctx, userID)
	if err != nil {
		return err
	}
	m.mutate(func(s *State) { s.CartCount = count })
	return nil
}

// AddToCart adds a product for the signed-in user and updates the badge.
func (m *Manager) AddToCart(ctx context.Context, productID, qty int64) error {
	userID, ok := m.currentUser()
	if !ok {
		return ErrNotSignedIn
	}
	if err := m.syncer.AddToCart(ctx, userID, productID, qty); err != nil {
		return err
	}
	return m.refreshCartCount(ctx, userID)
}

// SetCartQuantity overwrites a line quantity and updates the badge.
func (m *Manager) SetCartQuantity(ctx context.Context, productID, qty int64) error {
	userID, ok := m.currentUser()
	if !ok {
		return ErrNotSignedIn
	}
	if err := m.syncer.SetCartQuantity(ctx, userID, productID, qty); err != nil {
		return err
	}
	return m.refreshCartCount(ctx, userID)
}

// RemoveFromCart deletes a line and updates the badge.
func (m *Manager) RemoveFromCart(ctx context.Context, productID int64) error {
	userID, ok := m.currentUser()
	if !ok {
		return ErrNotSignedIn
	}
	if err := m.syncer.RemoveFromCart(ctx, userID, productID); err != nil {
		return err
	}
	return m.refreshCartCount(ctx, userID)
}

// Cart returns the signed-in user's priced cart.
func (m *Manager) Cart(ctx context.Context) (store.CartView, error) {
	userID, ok := m.currentUser()
	if !ok {
		return store.CartView{}, ErrNotSignedIn
	}
	return m.syncer.Cart(ctx, userID)
}

// Checkout runs the checkout flow for the signed-in user and resets the
// badge on success.
func (m *Manager) Checkout(ctx context.Context, payment string) (store.Order, error) {
	userID, ok := m.currentUser()
	if !ok {
		return store.Order{}, ErrNotSignedIn
	}
	m.setLoading(true)
	defer m.setLoading(false)

	order, err := m.syncer.Checkout(ctx, userID, payment)
	if err != nil {
		return store.Order{}, err
	}
	if err := m.refreshCartCount(ctx, userID); err != nil {
		return store.Order{}, err
	}
	return order, nil
}
