package paper

import (
	"github.com/s0up4200/paperbox/dropbox"
)

// ImportFormat is the format of content sent to create and update.
type ImportFormat string

const (
	ImportHTML      ImportFormat = "html"
	ImportMarkdown  ImportFormat = "markdown"
	ImportPlainText ImportFormat = "plain_text"
)

// ExportFormat is the format a doc is downloaded in.
type ExportFormat string

const (
	ExportHTML     ExportFormat = "html"
	ExportMarkdown ExportFormat = "markdown"
)

// UpdatePolicy controls how update content is merged into a doc.
type UpdatePolicy string

const (
	UpdateAppend       UpdatePolicy = "append"
	UpdatePrepend      UpdatePolicy = "prepend"
	UpdateOverwriteAll UpdatePolicy = "overwrite_all"
)

// FilterBy selects which docs docs/list returns.
type FilterBy string

const (
	FilterDocsAccessed FilterBy = "docs_accessed"
	FilterDocsCreated  FilterBy = "docs_created"
)

// SortBy orders docs/list results.
type SortBy string

const (
	SortAccessed SortBy = "accessed"
	SortModified SortBy = "modified"
	SortCreated  SortBy = "created"
)

// SortOrder is the direction of SortBy.
type SortOrder string

const (
	SortAscending  SortOrder = "ascending"
	SortDescending SortOrder = "descending"
)

// DefaultListLimit is used when ListOptions.Limit is zero.
const DefaultListLimit = 1000

// ListOptions are the arguments of docs/list. Empty fields are omitted and
// the server defaults apply.
type ListOptions struct {
	FilterBy  FilterBy  `json:"filter_by,omitempty" validate:"omitempty,oneof=docs_accessed docs_created"`
	SortBy    SortBy    `json:"sort_by,omitempty" validate:"omitempty,oneof=accessed modified created"`
	SortOrder SortOrder `json:"sort_order,omitempty" validate:"omitempty,oneof=ascending descending"`
	Limit     int       `json:"limit" validate:"min=1,max=1000"`
}

// DocsPage is one page of docs/list or docs/list/continue.
type DocsPage struct {
	DocIDs  []string       `json:"doc_ids"`
	Cursor  dropbox.Cursor `json:"cursor"`
	HasMore bool           `json:"has_more"`
}

func (p DocsPage) PageCursor() dropbox.Cursor { return p.Cursor }
func (p DocsPage) More() bool                 { return p.HasMore }

// CreateUpdateResult is returned by create and update.
type CreateUpdateResult struct {
	DocID    string `json:"doc_id"`
	Revision int64  `json:"revision"`
	Title    string `json:"title"`
}

// ExportResult is the metadata of a downloaded doc.
type ExportResult struct {
	Owner    string `json:"owner"`
	Title    string `json:"title"`
	Revision int64  `json:"revision"`
	MimeType string `json:"mime_type"`
}

// FolderSharingPolicyType is the sharing policy of the folder holding a doc.
type FolderSharingPolicyType string

const (
	FolderSharingTeam       FolderSharingPolicyType = "team"
	FolderSharingInviteOnly FolderSharingPolicyType = "invite_only"
)

func (t *FolderSharingPolicyType) UnmarshalJSON(data []byte) error { return decodeTag(data, t) }

// Folder is one element of a doc's folder path.
type Folder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FolderInfo describes the folders containing a doc. Both fields are empty
// for unfiled docs.
type FolderInfo struct {
	FolderSharingPolicyType *FolderSharingPolicyType `json:"folder_sharing_policy_type,omitempty"`
	// Folders runs from the root folder down to the folder containing the doc.
	Folders []Folder `json:"folders,omitempty"`
}

// PublicPolicy is the link sharing policy of a doc.
type PublicPolicy string

const (
	PublicPeopleWithLinkCanEdit           PublicPolicy = "people_with_link_can_edit"
	PublicPeopleWithLinkCanViewAndComment PublicPolicy = "people_with_link_can_view_and_comment"
	PublicInviteOnly                      PublicPolicy = "invite_only"
	// PublicDisabled can only be set from the team admin console.
	PublicDisabled PublicPolicy = "disabled"
)

func (p *PublicPolicy) UnmarshalJSON(data []byte) error { return decodeTag(data, p) }

// TeamPolicy is the sharing policy of a doc for members of the owner's team.
type TeamPolicy string

const (
	TeamPeopleWithLinkCanEdit           TeamPolicy = "people_with_link_can_edit"
	TeamPeopleWithLinkCanViewAndComment TeamPolicy = "people_with_link_can_view_and_comment"
	TeamInviteOnly                      TeamPolicy = "invite_only"
)

func (p *TeamPolicy) UnmarshalJSON(data []byte) error { return decodeTag(data, p) }

// SharingPolicy is the default sharing policy of a doc.
type SharingPolicy struct {
	PublicSharingPolicy *PublicPolicy `json:"public_sharing_policy,omitempty"`
	TeamSharingPolicy   *TeamPolicy   `json:"team_sharing_policy,omitempty"`
}

// PermissionLevel is the access a collaborator has on a doc.
type PermissionLevel string

const (
	PermissionEdit           PermissionLevel = "edit"
	PermissionViewAndComment PermissionLevel = "view_and_comment"
)

func (l *PermissionLevel) UnmarshalJSON(data []byte) error { return decodeTag(data, l) }

// MemberSelector identifies a user by email or Dropbox account ID.
type MemberSelector struct {
	Tag       string `json:".tag" validate:"required,oneof=email dropbox_id"`
	Email     string `json:"email,omitempty" validate:"required_if=Tag email"`
	DropboxID string `json:"dropbox_id,omitempty" validate:"required_if=Tag dropbox_id"`
}

// Email selects a member by email address.
func Email(address string) MemberSelector {
	return MemberSelector{Tag: "email", Email: address}
}

// DropboxID selects a member by account ID.
func DropboxID(id string) MemberSelector {
	return MemberSelector{Tag: "dropbox_id", DropboxID: id}
}

func (m MemberSelector) String() string {
	if m.Tag == "email" {
		return m.Email
	}
	return m.DropboxID
}

// UserFilter selects which users users/list returns.
type UserFilter string

const (
	UsersVisited UserFilter = "visited"
	UsersShared  UserFilter = "shared"
)

// UserInfo is a Dropbox account with access to a doc or folder.
type UserInfo struct {
	AccountID    string  `json:"account_id"`
	Email        string  `json:"email,omitempty"`
	DisplayName  string  `json:"display_name,omitempty"`
	SameTeam     bool    `json:"same_team"`
	TeamMemberID *string `json:"team_member_id,omitempty"`
}

// InviteeInfo is an invited user without a Dropbox account.
type InviteeInfo struct {
	Email string `json:"email"`
}

type UserWithPermission struct {
	User            UserInfo        `json:"user"`
	PermissionLevel PermissionLevel `json:"permission_level"`
}

type InviteeWithPermission struct {
	Invitee         InviteeInfo     `json:"invitee"`
	PermissionLevel PermissionLevel `json:"permission_level"`
}

// UsersPage is one page of users/list or users/list/continue.
type UsersPage struct {
	Invitees []InviteeWithPermission `json:"invitees"`
	Users    []UserWithPermission    `json:"users"`
	DocOwner UserInfo                `json:"doc_owner"`
	Cursor   dropbox.Cursor          `json:"cursor"`
	HasMore  bool                    `json:"has_more"`
}

func (p UsersPage) PageCursor() dropbox.Cursor { return p.Cursor }
func (p UsersPage) More() bool                 { return p.HasMore }

// FolderUsersPage is one page of folder_users/list or its continue route.
type FolderUsersPage struct {
	Invitees []InviteeInfo  `json:"invitees"`
	Users    []UserInfo     `json:"users"`
	Cursor   dropbox.Cursor `json:"cursor"`
	HasMore  bool           `json:"has_more"`
}

func (p FolderUsersPage) PageCursor() dropbox.Cursor { return p.Cursor }
func (p FolderUsersPage) More() bool                 { return p.HasMore }

// AddUserResult is the per-member outcome of users/add.
type AddUserResult string

const (
	AddUserSuccess                    AddUserResult = "success"
	AddUserUnknownError               AddUserResult = "unknown_error"
	AddUserSharingOutsideTeamDisabled AddUserResult = "sharing_outside_team_disabled"
	AddUserDailyLimitReached          AddUserResult = "daily_limit_reached"
	AddUserIsOwner                    AddUserResult = "user_is_owner"
	AddUserFailedUserDataRetrieval    AddUserResult = "failed_user_data_retrieval"
	AddUserPermissionAlreadyGranted   AddUserResult = "permission_already_granted"
)

func (r *AddUserResult) UnmarshalJSON(data []byte) error { return decodeTag(data, r) }

func (r AddUserResult) String() string { return humanize(string(r)) }

type AddUserMemberResult struct {
	Member MemberSelector `json:"member"`
	Result AddUserResult  `json:"result"`
}

// request arguments

type refPaperDoc struct {
	DocID string `json:"doc_id" validate:"required"`
}

type createArgs struct {
	ImportFormat   ImportFormat `json:"import_format" validate:"required,oneof=html markdown plain_text"`
	ParentFolderID string       `json:"parent_folder_id,omitempty"`
}

type updateArgs struct {
	DocID           string       `json:"doc_id" validate:"required"`
	DocUpdatePolicy UpdatePolicy `json:"doc_update_policy" validate:"required,oneof=append prepend overwrite_all"`
	Revision        int64        `json:"revision" validate:"min=0"`
	ImportFormat    ImportFormat `json:"import_format" validate:"required,oneof=html markdown plain_text"`
}

type exportArgs struct {
	DocID        string       `json:"doc_id" validate:"required"`
	ExportFormat ExportFormat `json:"export_format" validate:"required,oneof=html markdown"`
}

type listContinueArgs struct {
	Cursor string `json:"cursor" validate:"required"`
}

type docLimitArgs struct {
	DocID string `json:"doc_id" validate:"required"`
	Limit int    `json:"limit" validate:"min=1,max=1000"`
}

type listUsersArgs struct {
	DocID    string     `json:"doc_id" validate:"required"`
	Limit    int        `json:"limit" validate:"min=1,max=1000"`
	FilterBy UserFilter `json:"filter_by,omitempty" validate:"omitempty,oneof=visited shared"`
}

type docCursorArgs struct {
	DocID  string `json:"doc_id" validate:"required"`
	Cursor string `json:"cursor" validate:"required"`
}

// setSharingPolicy rejects PublicDisabled locally since the server never accepts it.
type setSharingPolicy struct {
	PublicSharingPolicy *PublicPolicy `json:"public_sharing_policy,omitempty" validate:"omitempty,oneof=people_with_link_can_edit people_with_link_can_view_and_comment invite_only"`
	TeamSharingPolicy   *TeamPolicy   `json:"team_sharing_policy,omitempty" validate:"omitempty,oneof=people_with_link_can_edit people_with_link_can_view_and_comment invite_only"`
}

type setSharingPolicyArgs struct {
	DocID         string           `json:"doc_id" validate:"required"`
	SharingPolicy setSharingPolicy `json:"sharing_policy"`
}

type removeUserArgs struct {
	DocID  string         `json:"doc_id" validate:"required"`
	Member MemberSelector `json:"member"`
}
