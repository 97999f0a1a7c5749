package paper

import (
	"github.com/rs/zerolog"

	"github.com/s0up4200/paperbox/dropbox"
)

const (
	routeArchive                 = "paper/docs/archive"
	routeCreate                  = "paper/docs/create"
	routeDownload                = "paper/docs/download"
	routeFolderUsersList         = "paper/docs/folder_users/list"
	routeFolderUsersListContinue = "paper/docs/folder_users/list/continue"
	routeGetFolderInfo           = "paper/docs/get_folder_info"
	routeList                    = "paper/docs/list"
	routeListContinue            = "paper/docs/list/continue"
	routePermanentlyDelete       = "paper/docs/permanently_delete"
	routeSharingPolicyGet        = "paper/docs/sharing_policy/get"
	routeSharingPolicySet        = "paper/docs/sharing_policy/set"
	routeUpdate                  = "paper/docs/update"
	routeUsersAdd                = "paper/docs/users/add"
	routeUsersList               = "paper/docs/users/list"
	routeUsersListContinue       = "paper/docs/users/list/continue"
	routeUsersRemove             = "paper/docs/users/remove"
)

// DefaultConcurrency bounds batch helpers such as SharingPolicies.
const DefaultConcurrency = 5

// Client exposes the paper/docs routes. It shares the credential of the
// dropbox.Client it was built from.
type Client struct {
	dbx         *dropbox.Client
	logger      zerolog.Logger
	concurrency int
}

// Option configures a Client.
type Option func(*Client)

// WithConcurrency sets how many requests batch helpers run at once.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// New creates a Paper client on top of dbx.
func New(dbx *dropbox.Client, opts ...Option) *Client {
	c := &Client{
		dbx:         dbx,
		logger:      dbx.Logger().With().Str("namespace", "paper").Logger(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
