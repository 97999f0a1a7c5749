package paper

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/paperbox/dropbox"
)

func TestArgsHeaderRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		arg  any
	}{
		{"ref paper doc", refPaperDoc{DocID: "uaSvRuxvnkFa12PTkBv5q"}},
		{"create", createArgs{ImportFormat: ImportMarkdown, ParentFolderID: "e.gZYKhbqQ"}},
		{"create unfiled", createArgs{ImportFormat: ImportHTML}},
		{"update", updateArgs{DocID: "abc", DocUpdatePolicy: UpdateOverwriteAll, Revision: 12, ImportFormat: ImportPlainText}},
		{"export", exportArgs{DocID: "abc", ExportFormat: ExportHTML}},
		{"list options", ListOptions{FilterBy: FilterDocsAccessed, SortBy: SortAccessed, SortOrder: SortAscending, Limit: 100}},
		{"list continue", listContinueArgs{Cursor: "c1"}},
		{"doc limit", docLimitArgs{DocID: "abc", Limit: 50}},
		{"list users", listUsersArgs{DocID: "abc", Limit: 50, FilterBy: UsersVisited}},
		{"doc cursor", docCursorArgs{DocID: "abc", Cursor: "u1"}},
		{"set sharing policy", setSharingPolicyArgs{DocID: "abc", SharingPolicy: setSharingPolicy{
			PublicSharingPolicy: ptr(PublicInviteOnly),
			TeamSharingPolicy:   ptr(TeamPeopleWithLinkCanEdit),
		}}},
		{"remove user", removeUserArgs{DocID: "abc", Member: DropboxID("dbid:123")}},
		{"add users", AddUsersArgs{
			DocID: "abc",
			Members: []AddMember{
				{Member: Email("zoë@example.com"), PermissionLevel: PermissionViewAndComment},
			},
			CustomMessage: "Schau mal ☕",
			Quiet:         true,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, err := dropbox.EncodeArg(tt.arg)
			require.NoError(t, err)

			out := reflect.New(reflect.TypeOf(tt.arg))
			require.NoError(t, dropbox.DecodeArg(header, out.Interface()))
			assert.Equal(t, tt.arg, out.Elem().Interface())
		})
	}
}

func TestMemberSelectorString(t *testing.T) {
	assert.Equal(t, "jane@example.com", Email("jane@example.com").String())
	assert.Equal(t, "dbid:1", DropboxID("dbid:1").String())
}
