package auth

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/s0up4200/paperbox/dropbox"
)

func newTokenServer(t *testing.T, handler http.HandlerFunc) *Operations {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	ops := NewOperations("app-key", "app-secret", "http://localhost/cb")
	ops.TokenURL = server.URL + "/oauth2/token"
	ops.APIBaseURL = server.URL + "/2"
	return ops
}

func TestFetchToken(t *testing.T) {
	ops := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/oauth2/token", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "app-key", r.PostForm.Get("client_id"))
		assert.Equal(t, "app-secret", r.PostForm.Get("client_secret"))
		assert.Equal(t, "http://localhost/cb", r.PostForm.Get("redirect_uri"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok","token_type":"bearer","uid":"12345","account_id":"dbid:AAH4"}`))
	})

	tok, err := ops.FetchToken(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, &TokenResponse{AccessToken: "tok", TokenType: "bearer", UID: "12345", AccountID: "dbid:AAH4"}, tok)
}

func TestFetchTokenWithTeam(t *testing.T) {
	ops := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok","token_type":"bearer","uid":"1","account_id":"a","team_id":"dbtid:1"}`))
	})

	tok, err := ops.FetchToken(context.Background(), "code")
	require.NoError(t, err)
	require.NotNil(t, tok.TeamID)
	assert.Equal(t, "dbtid:1", *tok.TeamID)
}

func TestFetchTokenFailures(t *testing.T) {
	t.Run("rejected code", func(t *testing.T) {
		ops := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant","error_description":"code doesn't exist or has expired"}`))
		})

		_, err := ops.FetchToken(context.Background(), "stale")
		require.Error(t, err)
		assert.ErrorIs(t, err, dropbox.ErrTransport)

		var retrieveErr *oauth2.RetrieveError
		require.True(t, errors.As(err, &retrieveErr))
		assert.Equal(t, "invalid_grant", retrieveErr.ErrorCode)
	})

	t.Run("unparseable body", func(t *testing.T) {
		ops := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":`))
		})

		_, err := ops.FetchToken(context.Background(), "code")
		assert.ErrorIs(t, err, dropbox.ErrDecode)
	})

	t.Run("missing access token", func(t *testing.T) {
		ops := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"token_type":"bearer"}`))
		})

		_, err := ops.FetchToken(context.Background(), "code")
		assert.ErrorIs(t, err, dropbox.ErrDecode)
	})

	t.Run("unreachable server", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()
		ops := NewOperations("app-key", "app-secret", "http://localhost/cb")
		ops.TokenURL = server.URL

		_, err := ops.FetchToken(context.Background(), "code")
		assert.ErrorIs(t, err, dropbox.ErrTransport)
	})

	t.Run("empty code", func(t *testing.T) {
		_, err := NewOperations("k", "s", "").FetchToken(context.Background(), "")
		assert.ErrorIs(t, err, dropbox.ErrInvalidArgument)
	})
}

func TestFetchTokenUsesHTTPClient(t *testing.T) {
	var used bool
	ops := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok","token_type":"bearer"}`))
	})
	ops.HTTPClient = &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		used = true
		return http.DefaultTransport.RoundTrip(r)
	})}

	_, err := ops.FetchToken(context.Background(), "code")
	require.NoError(t, err)
	assert.True(t, used)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestTokenFromOAuth1(t *testing.T) {
	ops := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2/auth/token/from_oauth1", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "app-key", user)
		assert.Equal(t, "app-secret", pass)

		body := new(bytes.Buffer)
		_, err := body.ReadFrom(r.Body)
		require.NoError(t, err)
		if strings.Contains(body.String(), `"oauth1_token":"bad"`) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"error_summary":"app_id_mismatch/","error":{".tag":"app_id_mismatch"},"user_message":null}`))
			return
		}
		assert.JSONEq(t, `{"oauth1_token":"t1","oauth1_token_secret":"s1"}`, body.String())
		w.Write([]byte(`{"oauth2_token":"new-token"}`))
	})
	ctx := context.Background()

	token, err := ops.TokenFromOAuth1(ctx, "t1", "s1")
	require.NoError(t, err)
	assert.Equal(t, "new-token", token)

	_, err = ops.TokenFromOAuth1(ctx, "bad", "s1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenFromOAuth1)
	apiErr, ok := dropbox.AsAPIError[TokenFromOAuth1Error](err)
	require.True(t, ok)
	assert.Equal(t, AppIDMismatch, apiErr.EndpointError)

	_, err = ops.TokenFromOAuth1(ctx, "", "s1")
	assert.ErrorIs(t, err, dropbox.ErrInvalidArgument)
}

func TestRevokeToken(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "empty 200", status: http.StatusOK, body: ""},
		{name: "null 200", status: http.StatusOK, body: "null"},
		{name: "typed error breaks contract", status: http.StatusBadRequest,
			body: `{"error_summary":"other/","error":{".tag":"other"},"user_message":null}`, wantErr: dropbox.ErrContractViolation},
		{name: "unparseable error", status: http.StatusUnauthorized, body: "Invalid authorization value", wantErr: dropbox.ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/auth/token/revoke", r.URL.Path)
				assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := dropbox.New("tok", dropbox.WithBaseURL(server.URL), dropbox.WithLogger(zerolog.Nop()))
			require.NoError(t, err)

			err = RevokeToken(context.Background(), client)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
