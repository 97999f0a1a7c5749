package auth

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startFlow(t *testing.T, ops *Operations, rt ResponseType) (*Flow, string) {
	t.Helper()
	flow := NewFlow(ops, rt)
	assert.Equal(t, Unauthenticated, flow.State())

	authURL, err := flow.AuthorizationURL()
	require.NoError(t, err)
	assert.Equal(t, AwaitingRedirect, flow.State())

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	assert.Equal(t, string(rt), u.Query().Get("response_type"))
	return flow, state
}

func TestFlowCodeGrant(t *testing.T) {
	ops := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok","token_type":"bearer","uid":"1","account_id":"a"}`))
	})
	flow, state := startFlow(t, ops, ResponseTypeCode)

	resp, err := flow.HandleRedirect("http://localhost/cb?code=the-code&state=" + state)
	require.NoError(t, err)
	assert.IsType(t, &CodeResponse{}, resp)
	assert.Equal(t, HasCode, flow.State())

	tok, err := flow.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", tok.AccessToken)
	assert.Equal(t, &state, tok.State)
	assert.Equal(t, HasToken, flow.State())

	// The exchange happens once.
	again, err := flow.Token(context.Background())
	require.NoError(t, err)
	assert.Same(t, tok, again)
}

func TestFlowImplicitGrant(t *testing.T) {
	flow, state := startFlow(t, NewOperations("key", "", "http://localhost/cb"), ResponseTypeToken)

	_, err := flow.HandleRedirect("http://localhost/cb#access_token=tok&token_type=bearer&uid=1&account_id=a&state=" + state)
	require.NoError(t, err)
	assert.Equal(t, HasToken, flow.State())

	tok, err := flow.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", tok.AccessToken)
}

func TestFlowRejections(t *testing.T) {
	t.Run("state mismatch", func(t *testing.T) {
		flow, _ := startFlow(t, NewOperations("key", "", ""), ResponseTypeCode)
		_, err := flow.HandleRedirect("http://localhost/cb?code=c&state=forged")
		assert.ErrorIs(t, err, ErrStateMismatch)
		assert.Equal(t, AwaitingRedirect, flow.State())
	})

	t.Run("missing state", func(t *testing.T) {
		flow, _ := startFlow(t, NewOperations("key", "", ""), ResponseTypeCode)
		_, err := flow.HandleRedirect("http://localhost/cb?code=c")
		assert.ErrorIs(t, err, ErrStateMismatch)
	})

	t.Run("no response", func(t *testing.T) {
		flow, _ := startFlow(t, NewOperations("key", "", ""), ResponseTypeCode)
		_, err := flow.HandleRedirect("http://localhost/cb")
		assert.ErrorIs(t, err, ErrNoAuthorizationResponse)
	})

	t.Run("access denied", func(t *testing.T) {
		flow, state := startFlow(t, NewOperations("key", "", ""), ResponseTypeCode)
		_, err := flow.HandleRedirect("http://localhost/cb?error=access_denied&state=" + state)
		var redirectErr *RedirectError
		require.ErrorAs(t, err, &redirectErr)
		assert.Equal(t, "access_denied", redirectErr.Code)
	})

	t.Run("redirect before authorize", func(t *testing.T) {
		flow := NewFlow(NewOperations("key", "", ""), ResponseTypeCode)
		_, err := flow.HandleRedirect("http://localhost/cb?code=c")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("token before redirect", func(t *testing.T) {
		flow, _ := startFlow(t, NewOperations("key", "", ""), ResponseTypeCode)
		_, err := flow.Token(context.Background())
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestFlowRegeneratesState(t *testing.T) {
	flow, first := startFlow(t, NewOperations("key", "", ""), ResponseTypeCode)

	authURL, err := flow.AuthorizationURL()
	require.NoError(t, err)
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	second := u.Query().Get("state")
	assert.NotEqual(t, first, second)

	_, err = flow.HandleRedirect("http://localhost/cb?code=c&state=" + first)
	assert.ErrorIs(t, err, ErrStateMismatch)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "awaiting redirect", AwaitingRedirect.String())
	assert.Equal(t, "State(9)", State(9).String())
}
