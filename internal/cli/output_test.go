package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satchel-app/satchel/internal/syncer"
)

func TestSuccessTextAndJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}
	require.NoError(t, f.Success("hello", map[string]int{"n": 1}))
	assert.Equal(t, "hello\n", buf.String())

	buf.Reset()
	f.Format = "json"
	require.NoError(t, f.Success("hello", map[string]int{"n": 1}))

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
}

func TestFailEmitsUserSafeMessage(t *testing.T) {
	opErr := &syncer.OpError{
		Code: syncer.CodeNetworkUnavailable,
		Op:   "checkout",
		Err:  errors.New("dial tcp 127.0.0.1:1: connection refused"),
	}

	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}
	err := f.Fail(opErr)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "Something went wrong")
	assert.NotContains(t, buf.String(), "127.0.0.1")
	assert.Equal(t, ExitOffline, GetExitCode(err))
}

func TestFailJSONEnvelope(t *testing.T) {
	opErr := &syncer.OpError{Code: syncer.CodeEmptyCart, Op: "checkout"}

	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}
	err := f.Fail(opErr)
	require.Error(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "EMPTY_CART", resp.Error.Code)
	assert.Equal(t, "Your cart is empty.", resp.Error.Message)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitCommandError,
		GetExitCode(WrapExitError(ExitCommandError, "bad flag", nil)))
	assert.Equal(t, ExitOffline,
		GetExitCode(&syncer.OpError{Code: syncer.CodeConnectivityRequired, Op: "order history"}))
	assert.Equal(t, ExitFailure,
		GetExitCode(&syncer.OpError{Code: syncer.CodeRejected, Op: "checkout"}))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
}
