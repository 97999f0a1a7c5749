package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrInvalidTransition indicates a Flow method was called in the wrong state
	ErrInvalidTransition = errors.New("invalid authorization flow transition")
	// ErrNoAuthorizationResponse indicates the redirect carried neither a code nor a token
	ErrNoAuthorizationResponse = errors.New("redirect carries no authorization response")
	// ErrStateMismatch indicates the redirect state does not match the one sent
	ErrStateMismatch = errors.New("authorization state mismatch")
)

// State is a step of the authorization flow.
type State int

const (
	Unauthenticated State = iota
	AwaitingRedirect
	HasCode
	HasToken
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case AwaitingRedirect:
		return "awaiting redirect"
	case HasCode:
		return "has code"
	case HasToken:
		return "has token"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Flow drives one authorization from the authorize URL to an access token:
//
//	Unauthenticated -> AwaitingRedirect -> HasCode -> HasToken
//	                                    -> HasToken
//
// A Flow is not safe for concurrent use.
type Flow struct {
	ops          *Operations
	responseType ResponseType
	state        State
	nonce        string
	code         *CodeResponse
	token        *TokenResponse
}

// NewFlow starts a flow requesting responseType.
func NewFlow(ops *Operations, responseType ResponseType) *Flow {
	return &Flow{ops: ops, responseType: responseType}
}

func (f *Flow) State() State {
	return f.state
}

// AuthorizationURL returns the URL to send the user to, with a fresh random
// state parameter, and moves the flow to AwaitingRedirect. Calling it again
// before the redirect replaces the state.
func (f *Flow) AuthorizationURL() (string, error) {
	if f.state != Unauthenticated && f.state != AwaitingRedirect {
		return "", fmt.Errorf("%w: authorization URL requested in state %s", ErrInvalidTransition, f.state)
	}
	f.nonce = uuid.NewString()
	f.state = AwaitingRedirect
	return authCodeURL(f.ops.ClientID, f.ops.RedirectURI, f.responseType, f.nonce), nil
}

// HandleRedirect reads the redirect URI the provider sent the user back to.
func (f *Flow) HandleRedirect(redirectURI string) (AuthorizationResponse, error) {
	if f.state != AwaitingRedirect {
		return nil, fmt.Errorf("%w: redirect received in state %s", ErrInvalidTransition, f.state)
	}
	if redirectErr := ParseRedirectError(redirectURI); redirectErr != nil {
		return nil, redirectErr
	}

	resp := ParseAuthorizationResponse(redirectURI)
	switch r := resp.(type) {
	case *CodeResponse:
		if err := f.checkState(r.State); err != nil {
			return nil, err
		}
		f.code = r
		f.state = HasCode
	case *TokenResponse:
		if err := f.checkState(r.State); err != nil {
			return nil, err
		}
		f.token = r
		f.state = HasToken
	default:
		return nil, ErrNoAuthorizationResponse
	}
	return resp, nil
}

func (f *Flow) checkState(got *string) error {
	if got == nil || *got != f.nonce {
		return ErrStateMismatch
	}
	return nil
}

// Token returns the access token, exchanging the code first when the flow
// is in HasCode.
func (f *Flow) Token(ctx context.Context) (*TokenResponse, error) {
	switch f.state {
	case HasToken:
		return f.token, nil
	case HasCode:
		tok, err := f.ops.FetchToken(ctx, f.code.Code)
		if err != nil {
			return nil, err
		}
		tok.State = f.code.State
		f.token = tok
		f.state = HasToken
		return tok, nil
	default:
		return nil, fmt.Errorf("%w: token requested in state %s", ErrInvalidTransition, f.state)
	}
}
