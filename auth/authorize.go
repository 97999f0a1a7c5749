// Package auth implements the Dropbox OAuth2 authorization flow: building
// the authorize URL, reading the redirect, exchanging codes for tokens and
// revoking them.
package auth

import (
	"net/url"

	"golang.org/x/oauth2"
)

const (
	// AuthorizeURL is the Dropbox authorize endpoint users are sent to.
	AuthorizeURL = "https://www.dropbox.com/oauth2/authorize"
	// TokenURL is the endpoint authorization codes are exchanged at.
	TokenURL = "https://api.dropboxapi.com/oauth2/token"
)

// ResponseType selects the grant requested from the authorize endpoint.
type ResponseType string

const (
	// ResponseTypeCode requests an authorization code, delivered in the query.
	ResponseTypeCode ResponseType = "code"
	// ResponseTypeToken requests a token directly, delivered in the fragment.
	ResponseTypeToken ResponseType = "token"
)

func endpoint(tokenURL string) oauth2.Endpoint {
	if tokenURL == "" {
		tokenURL = TokenURL
	}
	return oauth2.Endpoint{
		AuthURL:   AuthorizeURL,
		TokenURL:  tokenURL,
		AuthStyle: oauth2.AuthStyleInParams,
	}
}

func authCodeURL(clientID, redirectURI string, responseType ResponseType, state string) string {
	cfg := oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURI,
		Endpoint:    endpoint(""),
	}
	// AuthCodeURL drops an empty redirect_uri; the authorize endpoint always gets one.
	return cfg.AuthCodeURL(state,
		oauth2.SetAuthURLParam("response_type", string(responseType)),
		oauth2.SetAuthURLParam("redirect_uri", redirectURI),
	)
}

// BuildAuthorizationURI returns the authorize URL carrying client_id,
// redirect_uri and response_type. It performs no I/O.
func BuildAuthorizationURI(clientID, redirectURI string, responseType ResponseType) string {
	return authCodeURL(clientID, redirectURI, responseType, "")
}

// AuthorizationResponse is either a *CodeResponse or a *TokenResponse.
type AuthorizationResponse interface {
	isAuthorizationResponse()
}

// CodeResponse is the redirect of the authorization code grant.
type CodeResponse struct {
	Code  string
	State *string
}

// TokenResponse carries an access token, either from the implicit grant
// redirect or from FetchToken.
type TokenResponse struct {
	AccessToken string
	TokenType   string
	UID         string
	AccountID   string
	TeamID      *string
	State       *string
}

func (*CodeResponse) isAuthorizationResponse()  {}
func (*TokenResponse) isAuthorizationResponse() {}

// ParseAuthorizationResponse reads the parameters of a redirect URI. The
// query is used when present, otherwise the fragment, where implicit grant
// parameters arrive. A code takes precedence over an access token. When a
// key repeats, its last value wins.
//
// It returns nil when the URI does not parse or carries neither a code nor
// an access token.
func ParseAuthorizationResponse(redirectURI string) AuthorizationResponse {
	params, ok := redirectParams(redirectURI)
	if !ok {
		return nil
	}

	if params.Has("code") {
		return &CodeResponse{
			Code:  last(params, "code"),
			State: optional(params, "state"),
		}
	}
	if params.Has("access_token") {
		return &TokenResponse{
			AccessToken: last(params, "access_token"),
			TokenType:   last(params, "token_type"),
			UID:         last(params, "uid"),
			AccountID:   last(params, "account_id"),
			TeamID:      optional(params, "team_id"),
			State:       optional(params, "state"),
		}
	}
	return nil
}

// RedirectError is an authorization failure reported on the redirect, such
// as the user declining access.
type RedirectError struct {
	Code        string
	Description string
	State       *string
}

func (e *RedirectError) Error() string {
	if e.Description != "" {
		return "authorization failed: " + e.Code + ": " + e.Description
	}
	return "authorization failed: " + e.Code
}

// ParseRedirectError returns the error carried by a redirect URI, or nil.
func ParseRedirectError(redirectURI string) *RedirectError {
	params, ok := redirectParams(redirectURI)
	if !ok || !params.Has("error") {
		return nil
	}
	return &RedirectError{
		Code:        last(params, "error"),
		Description: last(params, "error_description"),
		State:       optional(params, "state"),
	}
}

func redirectParams(redirectURI string) (url.Values, bool) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, false
	}

	raw := u.RawQuery
	if raw == "" && !u.ForceQuery {
		raw = u.EscapedFragment()
	}
	// Malformed pairs are skipped; the well-formed ones are still returned.
	params, _ := url.ParseQuery(raw)
	return params, true
}

func last(params url.Values, key string) string {
	values := params[key]
	if len(values) == 0 {
		return ""
	}
	return values[len(values)-1]
}

func optional(params url.Values, key string) *string {
	if !params.Has(key) {
		return nil
	}
	v := last(params, key)
	return &v
}
