package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotReportsIncrementedCounters(t *testing.T) {
	Checkouts.WithLabelValues("ok").Inc()

	snap, err := Snapshot()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, snap["satchel_checkouts_total{outcome=ok}"], 1.0)
}

func TestObserveRemoteCallClassifiesOutcomes(t *testing.T) {
	isNetwork := func(err error) bool { return err != nil && err.Error() == "transport" }

	ObserveRemoteCall("status test", nil, isNetwork)
	ObserveRemoteCall("status test", errors.New("transport"), isNetwork)
	ObserveRemoteCall("status test", errors.New("409"), isNetwork)

	snap, err := Snapshot()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, snap["satchel_remote_calls_total{operation=status test,outcome=ok}"], 1.0)
	assert.GreaterOrEqual(t, snap["satchel_remote_calls_total{operation=status test,outcome=network_error}"], 1.0)
	assert.GreaterOrEqual(t, snap["satchel_remote_calls_total{operation=status test,outcome=rejected}"], 1.0)
}
