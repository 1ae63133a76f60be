package syncer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategyTableCoversEveryOperation(t *testing.T) {
	ops := []Op{
		OpLogin, OpRegister, OpProfileUpdate, OpProfileRefresh,
		OpPreferences, OpCheckout, OpCartMutate, OpCartRead,
		OpPromotionEdit, OpPromotionRead, OpCatalogRefresh,
		OpCatalogRead, OpCatalogEdit, OpOrderHistory, OpOrderStatus,
		OpCardList, OpCardEdit,
	}
	for _, op := range ops {
		if _, ok := strategies[op]; !ok {
			t.Errorf("no strategy table entry for %q", op)
		}
	}
}

func TestPlanRemoteOnline(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for _, op := range []Op{OpLogin, OpCheckout, OpOrderHistory, OpCatalogRefresh} {
		useRemote, err := f.syncer.planRemote(ctx, op)
		require.NoError(t, err, "op %q", op)
		assert.True(t, useRemote, "op %q should go remote when online", op)
	}
}

func TestPlanRemoteOffline(t *testing.T) {
	f := newFixture(t, nil)
	f.online = false
	ctx := context.Background()

	// Remote-then-mirror: no error, the caller takes its fallback or
	// fails itself.
	useRemote, err := f.syncer.planRemote(ctx, OpCheckout)
	require.NoError(t, err)
	assert.False(t, useRemote)

	// Remote-only: connectivity is a hard requirement.
	for _, op := range []Op{OpOrderHistory, OpCatalogRefresh, OpProfileRefresh, OpCardEdit} {
		_, err := f.syncer.planRemote(ctx, op)
		require.Error(t, err, "op %q", op)
		assert.True(t, IsConnectivityRequired(err), "op %q: got %v", op, err)
	}
}

func TestPlanRemoteNeverProbesLocalOperations(t *testing.T) {
	f := newFixture(t, nil)
	f.syncer.probe = ProbeFunc(func(context.Context) bool {
		t.Error("local-only operation consulted the connectivity probe")
		return false
	})

	for _, op := range []Op{OpCartMutate, OpCartRead, OpCatalogRead, OpPromotionRead} {
		useRemote, err := f.syncer.planRemote(context.Background(), op)
		require.NoError(t, err, "op %q", op)
		assert.False(t, useRemote, "op %q", op)
	}
}
