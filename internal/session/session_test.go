package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/satchel-app/satchel/internal/remote"
	"github.com/satchel-app/satchel/internal/store"
	"github.com/satchel-app/satchel/internal/syncer"
)

func newTestManager(t *testing.T) (*Manager, *store.Store) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "satchel.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(remote.AuthResponse{
			Token: "tok",
			User:  remote.UserPayload{Email: "ana@example.com", DisplayName: "Ana", Role: "customer"},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := remote.NewClientWithTimeout(srv.URL, 2*time.Second)
	probe := syncer.ProbeFunc(func(context.Context) bool { return true })
	sy := syncer.New(st, client, probe, zaptest.NewLogger(t), "test-key")
	return NewManager(sy, zaptest.NewLogger(t)), st
}

func drain(ch <-chan struct{}) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

func TestSignInPublishesIdentity(t *testing.T) {
	m, _ := newTestManager(t)
	ch, cancel := m.Subscribe()
	defer cancel()

	ident, err := m.SignIn(context.Background(), "ana@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Ana", ident.DisplayName)

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no change signal after sign-in")
	}
	state := m.State()
	assert.True(t, state.SignedIn)
	assert.Equal(t, ident.UserID, state.Identity.UserID)
	assert.Zero(t, state.CartCount)
	assert.False(t, state.Loading)
}

func TestCartMutationsUpdateBadge(t *testing.T) {
	m, st := newTestManager(t)
	ctx := context.Background()
	_, err := m.SignIn(ctx, "ana@example.com", "pw")
	require.NoError(t, err)

	espresso, err := st.InsertProduct(ctx, store.Product{Title: "Espresso", PriceCents: 350, Visible: true})
	require.NoError(t, err)
	latte, err := st.InsertProduct(ctx, store.Product{Title: "Latte", PriceCents: 450, Visible: true})
	require.NoError(t, err)

	require.NoError(t, m.AddToCart(ctx, espresso, 2))
	assert.Equal(t, 1, m.State().CartCount)

	// Merging into the same line keeps the line count at one.
	require.NoError(t, m.AddToCart(ctx, espresso, 1))
	assert.Equal(t, 1, m.State().CartCount)

	require.NoError(t, m.AddToCart(ctx, latte, 1))
	assert.Equal(t, 2, m.State().CartCount)

	require.NoError(t, m.RemoveFromCart(ctx, latte))
	assert.Equal(t, 1, m.State().CartCount)
}

func TestMutationsRequireSignIn(t *testing.T) {
	m, _ := newTestManager(t)
	err := m.AddToCart(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrNotSignedIn)
	_, err = m.Cart(context.Background())
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestSignOutResetsStateButKeepsCart(t *testing.T) {
	m, st := newTestManager(t)
	ctx := context.Background()
	ident, err := m.SignIn(ctx, "ana@example.com", "pw")
	require.NoError(t, err)

	id, err := st.InsertProduct(ctx, store.Product{Title: "Espresso", PriceCents: 350, Visible: true})
	require.NoError(t, err)
	require.NoError(t, m.AddToCart(ctx, id, 1))

	require.NoError(t, m.SignOut(ctx))
	state := m.State()
	assert.False(t, state.SignedIn)
	assert.Zero(t, state.CartCount)

	// The cart rows survive locally for the next sign-in.
	n, err := st.CartLineCount(ctx, ident.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBootstrapRestoresSession(t *testing.T) {
	m, st := newTestManager(t)
	ctx := context.Background()
	ident, err := m.SignIn(ctx, "ana@example.com", "pw")
	require.NoError(t, err)

	id, err := st.InsertProduct(ctx, store.Product{Title: "Espresso", PriceCents: 350, Visible: true})
	require.NoError(t, err)
	require.NoError(t, m.AddToCart(ctx, id, 1))

	// A fresh manager over the same store picks the session back up.
	client := remote.NewClientWithTimeout("http://127.0.0.1:1", time.Second)
	probe := syncer.ProbeFunc(func(context.Context) bool { return false })
	sy := syncer.New(st, client, probe, zaptest.NewLogger(t), "test-key")
	fresh := NewManager(sy, zaptest.NewLogger(t))

	require.NoError(t, fresh.Bootstrap(ctx))
	state := fresh.State()
	assert.True(t, state.SignedIn)
	assert.Equal(t, ident.UserID, state.Identity.UserID)
	assert.Equal(t, 1, state.CartCount)
}

func TestSignalsCoalesce(t *testing.T) {
	m, st := newTestManager(t)
	ctx := context.Background()
	_, err := m.SignIn(ctx, "ana@example.com", "pw")
	require.NoError(t, err)

	id, err := st.InsertProduct(ctx, store.Product{Title: "Espresso", PriceCents: 350, Visible: true})
	require.NoError(t, err)

	ch, cancel := m.Subscribe()
	defer cancel()
	drain(ch)

	// A burst of changes may coalesce into a single pending signal; the
	// subscriber still observes the final state.
	for i := 0; i < 5; i++ {
		require.NoError(t, m.AddToCart(ctx, id, 1))
	}
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no signal after burst")
	}
	assert.Equal(t, 1, m.State().CartCount)
}
