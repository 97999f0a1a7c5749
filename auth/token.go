package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/s0up4200/paperbox/dropbox"
)

const (
	routeRevoke     = "auth/token/revoke"
	routeFromOAuth1 = "auth/token/from_oauth1"
)

// ErrTokenFromOAuth1 indicates an OAuth1 token could not be migrated
var ErrTokenFromOAuth1 = errors.New("oauth1 token migration failed")

// Operations are the app-level auth calls. ClientID and ClientSecret are
// the app key and secret.
type Operations struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// TokenURL overrides the token endpoint. Empty means TokenURL.
	TokenURL string
	// APIBaseURL overrides the RPC root used by TokenFromOAuth1.
	APIBaseURL string
	// HTTPClient is used for every request when set.
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// NewOperations creates Operations for an app.
func NewOperations(clientID, clientSecret, redirectURI string) *Operations {
	return &Operations{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
		Logger:       zerolog.Nop(),
	}
}

func (o *Operations) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     o.ClientID,
		ClientSecret: o.ClientSecret,
		RedirectURL:  o.RedirectURI,
		Endpoint:     endpoint(o.TokenURL),
	}
}

// FetchToken exchanges an authorization code for an access token with a
// form encoded grant_type=authorization_code POST. The token endpoint has
// no typed error body: an HTTP failure is a dropbox.ErrTransport and an
// unreadable response a dropbox.ErrDecode. A non-2xx status keeps its
// *oauth2.RetrieveError in the chain.
func (o *Operations) FetchToken(ctx context.Context, code string) (*TokenResponse, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: authorization code is required", dropbox.ErrInvalidArgument)
	}
	if o.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, o.HTTPClient)
	}

	tok, err := o.oauthConfig().Exchange(ctx, code)
	if err != nil {
		var urlErr *url.Error
		var retrieveErr *oauth2.RetrieveError
		switch {
		case errors.As(err, &retrieveErr):
			o.Logger.Error().
				Int("status", retrieveErr.Response.StatusCode).
				Str("error_code", retrieveErr.ErrorCode).
				Msg("Token exchange rejected")
			return nil, &dropbox.TransportError{Op: "exchange authorization code", Err: err}
		case errors.As(err, &urlErr):
			return nil, &dropbox.TransportError{Op: "exchange authorization code", Err: err}
		default:
			return nil, &dropbox.DecodeError{Source: "token response", Err: err}
		}
	}

	resp := &TokenResponse{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		UID:         extraString(tok, "uid"),
		AccountID:   extraString(tok, "account_id"),
	}
	if teamID := extraString(tok, "team_id"); teamID != "" {
		resp.TeamID = &teamID
	}

	o.Logger.Debug().Str("account_id", resp.AccountID).Msg("Exchanged authorization code")
	return resp, nil
}

func extraString(tok *oauth2.Token, key string) string {
	s, _ := tok.Extra(key).(string)
	return s
}

// TokenFromOAuth1Error is the error union of auth/token/from_oauth1.
type TokenFromOAuth1Error string

const (
	InvalidOAuth1TokenInfo TokenFromOAuth1Error = "invalid_oauth1_token_info"
	AppIDMismatch          TokenFromOAuth1Error = "app_id_mismatch"
)

func (e *TokenFromOAuth1Error) UnmarshalJSON(data []byte) error {
	tag, err := dropbox.ParseTag(data)
	if err != nil {
		return err
	}
	*e = TokenFromOAuth1Error(tag)
	return nil
}

type tokenFromOAuth1Args struct {
	OAuth1Token       string `json:"oauth1_token" validate:"required"`
	OAuth1TokenSecret string `json:"oauth1_token_secret" validate:"required"`
}

type tokenFromOAuth1Result struct {
	OAuth2Token string `json:"oauth2_token"`
}

// TokenFromOAuth1 trades an OAuth1 token and secret for an OAuth2 access
// token. The call authenticates as the app with basic auth.
func (o *Operations) TokenFromOAuth1(ctx context.Context, token, secret string) (string, error) {
	opts := []dropbox.Option{dropbox.WithLogger(o.Logger), dropbox.WithBaseURL(o.APIBaseURL)}
	if o.HTTPClient != nil {
		opts = append(opts, dropbox.WithHTTPClient(o.HTTPClient))
	}
	app, err := dropbox.NewAppClient(o.ClientID, o.ClientSecret, opts...)
	if err != nil {
		return "", err
	}

	args := tokenFromOAuth1Args{OAuth1Token: token, OAuth1TokenSecret: secret}
	env, err := dropbox.RPC[tokenFromOAuth1Result, TokenFromOAuth1Error](ctx, app, routeFromOAuth1, args)
	if err != nil {
		return "", err
	}
	if env.Err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenFromOAuth1, env.Err)
	}
	return env.Ok.Body.OAuth2Token, nil
}

// RevokeToken disables the access token client authenticates with. The
// route has no error union; an error response is a dropbox.ErrContractViolation.
func RevokeToken(ctx context.Context, client *dropbox.Client) error {
	env, err := dropbox.RPC[dropbox.Empty, dropbox.NoError](ctx, client, routeRevoke, nil)
	if _, err := dropbox.Infallible(routeRevoke, env, err); err != nil {
		return err
	}

	logger := client.Logger()
	logger.Info().Msg("Revoked access token")
	return nil
}
