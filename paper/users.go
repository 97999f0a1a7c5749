package paper

import (
	"context"

	"github.com/s0up4200/paperbox/dropbox"
)

// MaxMembersPerAdd is the most members a single users/add call accepts.
const MaxMembersPerAdd = 20

// AddMember is one entry of a users/add request.
type AddMember struct {
	Member          MemberSelector  `json:"member"`
	PermissionLevel PermissionLevel `json:"permission_level" validate:"required,oneof=edit view_and_comment"`
}

// AddUsersArgs is the body of a users/add call.
type AddUsersArgs struct {
	DocID         string      `json:"doc_id" validate:"required"`
	Members       []AddMember `json:"members" validate:"min=1,max=20,dive"`
	CustomMessage string      `json:"custom_message,omitempty"`
	Quiet         bool        `json:"quiet"`
}

// AddUsersRequest accumulates the arguments of a users/add call. Building it
// performs no I/O; Send does.
type AddUsersRequest struct {
	client *Client
	args   AddUsersArgs
}

// UsersAdd starts a request that adds users to a doc or changes their
// permissions. The owner's permissions cannot be changed.
func (c *Client) UsersAdd(docID string) *AddUsersRequest {
	return &AddUsersRequest{client: c, args: AddUsersArgs{DocID: docID}}
}

func (r *AddUsersRequest) AddMember(member MemberSelector, level PermissionLevel) *AddUsersRequest {
	r.args.Members = append(r.args.Members, AddMember{Member: member, PermissionLevel: level})
	return r
}

// CustomMessage is included in the invitation email.
func (r *AddUsersRequest) CustomMessage(msg string) *AddUsersRequest {
	r.args.CustomMessage = msg
	return r
}

// Quiet suppresses notification emails.
func (r *AddUsersRequest) Quiet(quiet bool) *AddUsersRequest {
	r.args.Quiet = quiet
	return r
}

// Build returns a copy of the accumulated arguments.
func (r *AddUsersRequest) Build() AddUsersArgs {
	args := r.args
	args.Members = append([]AddMember(nil), r.args.Members...)
	return args
}

// Send performs the users/add call and returns one result per member.
func (r *AddUsersRequest) Send(ctx context.Context) ([]AddUserMemberResult, error) {
	args := r.Build()
	env, err := dropbox.RPC[[]AddUserMemberResult, DocLookupError](ctx, r.client.dbx, routeUsersAdd, args)
	results, err := lift(ErrDocLookup, env, err)
	if err != nil {
		return nil, err
	}

	r.client.logger.Info().
		Str("doc_id", args.DocID).
		Int("members", len(args.Members)).
		Msg("Added users to Paper doc")
	return results, nil
}

// ListUsers returns the first page of users who visited or were shared on a
// doc. Removed users are excluded.
func (c *Client) ListUsers(ctx context.Context, docID string, limit int, filter UserFilter) (*UsersPage, error) {
	args := listUsersArgs{DocID: docID, Limit: limit, FilterBy: filter}
	env, err := dropbox.RPC[UsersPage, DocLookupError](ctx, c.dbx, routeUsersList, args)
	page, err := lift(ErrDocLookup, env, err)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) ListUsersContinue(ctx context.Context, docID, cursor string) (*UsersPage, error) {
	env, err := dropbox.RPC[UsersPage, ListUsersCursorError](ctx, c.dbx, routeUsersListContinue,
		docCursorArgs{DocID: docID, Cursor: cursor})
	page, err := lift(ErrListUsersCursor, env, err)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// RemoveUser removes a user from a doc. The owner cannot be removed.
func (c *Client) RemoveUser(ctx context.Context, docID string, member MemberSelector) error {
	env, err := dropbox.RPC[dropbox.Empty, DocLookupError](ctx, c.dbx, routeUsersRemove,
		removeUserArgs{DocID: docID, Member: member})
	if _, err := lift(ErrDocLookup, env, err); err != nil {
		return err
	}

	c.logger.Info().Str("doc_id", docID).Str("member", member.String()).Msg("Removed user from Paper doc")
	return nil
}

// ListFolderUsers returns the first page of users invited to the folder
// containing a doc.
func (c *Client) ListFolderUsers(ctx context.Context, docID string, limit int) (*FolderUsersPage, error) {
	env, err := dropbox.RPC[FolderUsersPage, DocLookupError](ctx, c.dbx, routeFolderUsersList,
		docLimitArgs{DocID: docID, Limit: limit})
	page, err := lift(ErrDocLookup, env, err)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) ListFolderUsersContinue(ctx context.Context, docID, cursor string) (*FolderUsersPage, error) {
	env, err := dropbox.RPC[FolderUsersPage, ListUsersCursorError](ctx, c.dbx, routeFolderUsersListContinue,
		docCursorArgs{DocID: docID, Cursor: cursor})
	page, err := lift(ErrListUsersCursor, env, err)
	if err != nil {
		return nil, err
	}
	return &page, nil
}
