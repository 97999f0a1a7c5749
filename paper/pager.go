package paper

import (
	"context"

	"github.com/s0up4200/paperbox/dropbox"
)

// ListAll follows docs/list and docs/list/continue until every doc ID has
// been collected.
func (c *Client) ListAll(ctx context.Context, opts ListOptions) ([]string, error) {
	var ids []string
	err := dropbox.Paginate(ctx,
		func(ctx context.Context) (*DocsPage, error) { return c.List(ctx, opts) },
		c.ListContinue,
		func(page *DocsPage) error {
			ids = append(ids, page.DocIDs...)
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Int("docs", len(ids)).Msg("Retrieved all Paper docs")
	return ids, nil
}

// UserListing is the merged result of every users/list page of a doc.
type UserListing struct {
	DocOwner UserInfo
	Users    []UserWithPermission
	Invitees []InviteeWithPermission
}

// ListUsersAll collects every page of users/list for a doc.
func (c *Client) ListUsersAll(ctx context.Context, docID string, pageSize int, filter UserFilter) (*UserListing, error) {
	listing := &UserListing{}
	err := dropbox.Paginate(ctx,
		func(ctx context.Context) (*UsersPage, error) { return c.ListUsers(ctx, docID, pageSize, filter) },
		func(ctx context.Context, cursor string) (*UsersPage, error) {
			return c.ListUsersContinue(ctx, docID, cursor)
		},
		func(page *UsersPage) error {
			listing.DocOwner = page.DocOwner
			listing.Users = append(listing.Users, page.Users...)
			listing.Invitees = append(listing.Invitees, page.Invitees...)
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// FolderUserListing is the merged result of every folder_users/list page.
type FolderUserListing struct {
	Users    []UserInfo
	Invitees []InviteeInfo
}

// ListFolderUsersAll collects every page of folder_users/list for a doc.
func (c *Client) ListFolderUsersAll(ctx context.Context, docID string, pageSize int) (*FolderUserListing, error) {
	listing := &FolderUserListing{}
	err := dropbox.Paginate(ctx,
		func(ctx context.Context) (*FolderUsersPage, error) { return c.ListFolderUsers(ctx, docID, pageSize) },
		func(ctx context.Context, cursor string) (*FolderUsersPage, error) {
			return c.ListFolderUsersContinue(ctx, docID, cursor)
		},
		func(page *FolderUsersPage) error {
			listing.Users = append(listing.Users, page.Users...)
			listing.Invitees = append(listing.Invitees, page.Invitees...)
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// Collaborator is a flattened view of anyone with access to a doc, used for
// filtering and display.
type Collaborator struct {
	AccountID   string
	Email       string
	DisplayName string
	SameTeam    bool
	Permission  PermissionLevel
	// Invitee is set for invited emails without a Dropbox account.
	Invitee bool
	Owner   bool
}

// Collaborators flattens the listing. The owner comes first.
func (l *UserListing) Collaborators() []Collaborator {
	out := make([]Collaborator, 0, 1+len(l.Users)+len(l.Invitees))
	if l.DocOwner.AccountID != "" {
		out = append(out, Collaborator{
			AccountID:   l.DocOwner.AccountID,
			Email:       l.DocOwner.Email,
			DisplayName: l.DocOwner.DisplayName,
			SameTeam:    l.DocOwner.SameTeam,
			Permission:  PermissionEdit,
			Owner:       true,
		})
	}
	for _, u := range l.Users {
		if l.DocOwner.AccountID != "" && u.User.AccountID == l.DocOwner.AccountID {
			continue
		}
		out = append(out, Collaborator{
			AccountID:   u.User.AccountID,
			Email:       u.User.Email,
			DisplayName: u.User.DisplayName,
			SameTeam:    u.User.SameTeam,
			Permission:  u.PermissionLevel,
		})
	}
	for _, i := range l.Invitees {
		out = append(out, Collaborator{
			Email:      i.Invitee.Email,
			Permission: i.PermissionLevel,
			Invitee:    true,
		})
	}
	return out
}
