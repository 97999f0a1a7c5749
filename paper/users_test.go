package paper

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/paperbox/dropbox"
)

func TestUsersAddBuilder(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, map[string]http.HandlerFunc{
		"/paper/docs/users/add": func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			assert.JSONEq(t, `{
				"doc_id": "abc",
				"members": [
					{"member": {".tag": "email", "email": "jane@example.com"}, "permission_level": "edit"},
					{"member": {".tag": "dropbox_id", "dropbox_id": "dbid:123"}, "permission_level": "view_and_comment"}
				],
				"custom_message": "Have a look",
				"quiet": true
			}`, readBody(t, r))
			writeJSON(w, http.StatusOK, `[
				{"member": {".tag": "email", "email": "jane@example.com"}, "result": {".tag": "success"}},
				{"member": {".tag": "dropbox_id", "dropbox_id": "dbid:123"}, "result": "permission_already_granted"}
			]`)
		},
	})

	req := client.UsersAdd("abc").
		AddMember(Email("jane@example.com"), PermissionEdit).
		AddMember(DropboxID("dbid:123"), PermissionViewAndComment).
		CustomMessage("Have a look").
		Quiet(true)

	args := req.Build()
	assert.Equal(t, "abc", args.DocID)
	assert.Len(t, args.Members, 2)
	assert.Equal(t, int32(0), calls.Load(), "building must not send")

	results, err := req.Send(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, AddUserSuccess, results[0].Result)
	assert.Equal(t, Email("jane@example.com"), results[0].Member)
	assert.Equal(t, AddUserPermissionAlreadyGranted, results[1].Result)
	assert.Equal(t, int32(1), calls.Load())
}

func TestUsersAddValidation(t *testing.T) {
	client := newTestClient(t, map[string]http.HandlerFunc{})
	ctx := context.Background()

	t.Run("no members", func(t *testing.T) {
		_, err := client.UsersAdd("abc").Send(ctx)
		assert.ErrorIs(t, err, dropbox.ErrInvalidArgument)
	})

	t.Run("too many members", func(t *testing.T) {
		req := client.UsersAdd("abc")
		for range MaxMembersPerAdd + 1 {
			req.AddMember(Email("a@example.com"), PermissionEdit)
		}
		_, err := req.Send(ctx)
		assert.ErrorIs(t, err, dropbox.ErrInvalidArgument)
	})

	t.Run("selector without value", func(t *testing.T) {
		_, err := client.UsersAdd("abc").AddMember(MemberSelector{Tag: "email"}, PermissionEdit).Send(ctx)
		assert.ErrorIs(t, err, dropbox.ErrInvalidArgument)
	})

	t.Run("unknown permission", func(t *testing.T) {
		_, err := client.UsersAdd("abc").AddMember(Email("a@example.com"), "owner").Send(ctx)
		assert.ErrorIs(t, err, dropbox.ErrInvalidArgument)
	})
}

func TestBuildReturnsCopy(t *testing.T) {
	client := newTestClient(t, map[string]http.HandlerFunc{})
	req := client.UsersAdd("abc").AddMember(Email("a@example.com"), PermissionEdit)

	args := req.Build()
	req.AddMember(Email("b@example.com"), PermissionEdit)

	assert.Len(t, args.Members, 1)
	assert.Len(t, req.Build().Members, 2)
}

func TestListUsersAll(t *testing.T) {
	client := newTestClient(t, map[string]http.HandlerFunc{
		"/paper/docs/users/list": func(w http.ResponseWriter, r *http.Request) {
			assert.JSONEq(t, `{"doc_id":"abc","limit":2,"filter_by":"shared"}`, readBody(t, r))
			writeJSON(w, http.StatusOK, `{
				"invitees": [{"invitee": {"email": "guest@example.com"}, "permission_level": {".tag": "view_and_comment"}}],
				"users": [{"user": {"account_id": "dbid:owner", "same_team": true}, "permission_level": {".tag": "edit"}}],
				"doc_owner": {"account_id": "dbid:owner", "email": "owner@example.com", "same_team": true},
				"cursor": {"value": "u1", "expiration": "2025-01-01T00:00:00Z"},
				"has_more": true
			}`)
		},
		"/paper/docs/users/list/continue": func(w http.ResponseWriter, r *http.Request) {
			assert.JSONEq(t, `{"doc_id":"abc","cursor":"u1"}`, readBody(t, r))
			writeJSON(w, http.StatusOK, `{
				"invitees": [],
				"users": [{"user": {"account_id": "dbid:bob", "email": "bob@example.com", "same_team": false}, "permission_level": {".tag": "edit"}}],
				"doc_owner": {"account_id": "dbid:owner", "email": "owner@example.com", "same_team": true},
				"cursor": {"value": "u2", "expiration": "2025-01-01T00:00:00Z"},
				"has_more": false
			}`)
		},
	})

	listing, err := client.ListUsersAll(context.Background(), "abc", 2, UsersShared)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", listing.DocOwner.Email)
	assert.Len(t, listing.Users, 2)
	require.Len(t, listing.Invitees, 1)
	assert.Equal(t, PermissionViewAndComment, listing.Invitees[0].PermissionLevel)

	collaborators := listing.Collaborators()
	require.Len(t, collaborators, 3)
	assert.True(t, collaborators[0].Owner)
	assert.Equal(t, "owner@example.com", collaborators[0].Email)
	assert.Equal(t, "bob@example.com", collaborators[1].Email)
	assert.False(t, collaborators[1].SameTeam)
	assert.True(t, collaborators[2].Invitee)
	assert.Equal(t, "guest@example.com", collaborators[2].Email)
}

func TestListUsersContinueErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantTag    string
		wantCursor *PaperAPICursorError
	}{
		{
			name:    "doc not found",
			body:    docNotFound,
			wantTag: "doc_not_found",
		},
		{
			name:       "nested cursor error",
			body:       `{"error_summary":"x","error":{"cursor_error":{".tag":"expired_cursor"}},"user_message":null}`,
			wantTag:    TagCursorError,
			wantCursor: ptr(ExpiredCursor),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusConflict, tt.body)
			}
			client := newTestClient(t, map[string]http.HandlerFunc{
				"/paper/docs/users/list/continue":        handler,
				"/paper/docs/folder_users/list/continue": handler,
			})
			ctx := context.Background()

			_, usersErr := client.ListUsersContinue(ctx, "abc", "u1")
			_, folderErr := client.ListFolderUsersContinue(ctx, "abc", "f1")

			for _, err := range []error{usersErr, folderErr} {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrListUsersCursor)

				outer, ok := EndpointError[ListUsersCursorError](err)
				require.True(t, ok)
				assert.Equal(t, tt.wantTag, outer.Tag)
				assert.Equal(t, tt.wantCursor, outer.CursorError)

				inner, ok := CursorErrorOf(err)
				assert.Equal(t, tt.wantCursor != nil, ok)
				if tt.wantCursor != nil {
					assert.Equal(t, *tt.wantCursor, inner)
				}
			}
		})
	}
}

func TestListFolderUsersAll(t *testing.T) {
	client := newTestClient(t, map[string]http.HandlerFunc{
		"/paper/docs/folder_users/list": func(w http.ResponseWriter, r *http.Request) {
			assert.JSONEq(t, `{"doc_id":"abc","limit":100}`, readBody(t, r))
			writeJSON(w, http.StatusOK, `{
				"invitees": [{"email": "guest@example.com"}],
				"users": [{"account_id": "dbid:1", "same_team": true, "team_member_id": "dbmid:1"}],
				"cursor": {"value": "f1", "expiration": ""},
				"has_more": false
			}`)
		},
	})

	listing, err := client.ListFolderUsersAll(context.Background(), "abc", 100)
	require.NoError(t, err)
	require.Len(t, listing.Users, 1)
	require.NotNil(t, listing.Users[0].TeamMemberID)
	assert.Equal(t, "dbmid:1", *listing.Users[0].TeamMemberID)
	assert.Equal(t, []InviteeInfo{{Email: "guest@example.com"}}, listing.Invitees)
}

func TestRemoveUser(t *testing.T) {
	client := newTestClient(t, map[string]http.HandlerFunc{
		"/paper/docs/users/remove": func(w http.ResponseWriter, r *http.Request) {
			var args map[string]json.RawMessage
			require.NoError(t, json.Unmarshal([]byte(readBody(t, r)), &args))
			assert.JSONEq(t, `{".tag":"email","email":"jane@example.com"}`, string(args["member"]))
			writeJSON(w, http.StatusOK, "null")
		},
	})

	require.NoError(t, client.RemoveUser(context.Background(), "abc", Email("jane@example.com")))
	assert.ErrorIs(t, client.RemoveUser(context.Background(), "abc", MemberSelector{}), dropbox.ErrInvalidArgument)
}

func TestCollaboratorsWithoutOwner(t *testing.T) {
	listing := &UserListing{
		Users: []UserWithPermission{
			{User: UserInfo{Email: "ann@example.com"}, PermissionLevel: PermissionEdit},
			{User: UserInfo{Email: "bob@example.com"}, PermissionLevel: PermissionViewAndComment},
		},
	}

	collaborators := listing.Collaborators()
	require.Len(t, collaborators, 2)
	assert.False(t, collaborators[0].Owner)
	assert.Equal(t, "ann@example.com", collaborators[0].Email)
	assert.Equal(t, "bob@example.com", collaborators[1].Email)
}

func ptr[T any](v T) *T { return &v }
