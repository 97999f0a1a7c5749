package paper

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iancoleman/strcase"

	"github.com/s0up4200/paperbox/dropbox"
)

// Operation kinds. Every typed API error returned by this package is an
// *Error whose Kind is one of these.
var (
	// ErrDocLookup indicates the doc could not be found or accessed
	ErrDocLookup = errors.New("paper doc lookup failed")
	// ErrDocCreate indicates a doc could not be created
	ErrDocCreate = errors.New("paper doc create failed")
	// ErrDocUpdate indicates a doc could not be updated
	ErrDocUpdate = errors.New("paper doc update failed")
	// ErrListDocsCursor indicates docs/list/continue rejected the request
	ErrListDocsCursor = errors.New("paper docs list cursor error")
	// ErrListUsersCursor indicates a users or folder_users continue call rejected the request
	ErrListUsersCursor = errors.New("paper users list cursor error")
)

// Error lifts an endpoint's typed API error into a single error type.
// Err is the original *dropbox.APIError[E], so the closed endpoint union
// stays reachable through EndpointError or errors.As.
type Error struct {
	Kind error
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// CursorError returns the nested cursor failure when the error came from a
// continue route and the outer variant is cursor_error.
func (e *Error) CursorError() (PaperAPICursorError, bool) {
	return CursorErrorOf(e.Err)
}

// EndpointError extracts the typed endpoint union E from err.
func EndpointError[E any](err error) (E, bool) {
	apiErr, ok := dropbox.AsAPIError[E](err)
	if !ok {
		var zero E
		return zero, false
	}
	return apiErr.EndpointError, true
}

// CursorErrorOf finds a cursor failure in err regardless of which continue
// route produced it.
func CursorErrorOf(err error) (PaperAPICursorError, bool) {
	if e, ok := EndpointError[ListDocsCursorError](err); ok && e.CursorError != nil {
		return *e.CursorError, true
	}
	if e, ok := EndpointError[ListUsersCursorError](err); ok && e.CursorError != nil {
		return *e.CursorError, true
	}
	return "", false
}

// lift unwraps an envelope, turning its Err arm into an *Error of kind.
func lift[T, E any](kind error, env dropbox.Envelope[T, E], err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if env.Err != nil {
		return zero, &Error{Kind: kind, Err: env.Err}
	}
	return env.Ok.Body, nil
}

func humanize(tag string) string {
	return strcase.ToDelimited(tag, ' ')
}

// decodeTag is shared by the void-only unions below. Unknown tags are kept
// verbatim so newer server variants survive decoding.
func decodeTag[S ~string](data []byte, out *S) error {
	tag, err := dropbox.ParseTag(data)
	if err != nil {
		return err
	}
	*out = S(tag)
	return nil
}

// DocLookupError is returned by routes that address a single doc.
type DocLookupError string

const (
	DocLookupInsufficientPermissions DocLookupError = "insufficient_permissions"
	DocNotFound                      DocLookupError = "doc_not_found"
)

func (e *DocLookupError) UnmarshalJSON(data []byte) error { return decodeTag(data, e) }

func (e DocLookupError) String() string { return humanize(string(e)) }

// PaperDocCreateError is returned by docs/create.
type PaperDocCreateError string

const (
	CreateInsufficientPermissions PaperDocCreateError = "insufficient_permissions"
	CreateContentMalformed        PaperDocCreateError = "content_malformed"
	CreateFolderNotFound          PaperDocCreateError = "folder_not_found"
	CreateDocLengthExceeded       PaperDocCreateError = "doc_length_exceeded"
	CreateImageSizeExceeded       PaperDocCreateError = "image_size_exceeded"
)

func (e *PaperDocCreateError) UnmarshalJSON(data []byte) error { return decodeTag(data, e) }

func (e PaperDocCreateError) String() string { return humanize(string(e)) }

// PaperDocUpdateError is returned by docs/update.
type PaperDocUpdateError string

const (
	UpdateInsufficientPermissions PaperDocUpdateError = "insufficient_permissions"
	UpdateDocNotFound             PaperDocUpdateError = "doc_not_found"
	UpdateContentMalformed        PaperDocUpdateError = "content_malformed"
	UpdateRevisionMismatch        PaperDocUpdateError = "revision_mismatch"
	UpdateDocLengthExceeded       PaperDocUpdateError = "doc_length_exceeded"
	UpdateImageSizeExceeded       PaperDocUpdateError = "image_size_exceeded"
	UpdateDocArchived             PaperDocUpdateError = "doc_archived"
	UpdateDocDeleted              PaperDocUpdateError = "doc_deleted"
)

func (e *PaperDocUpdateError) UnmarshalJSON(data []byte) error { return decodeTag(data, e) }

func (e PaperDocUpdateError) String() string { return humanize(string(e)) }

// PaperAPICursorError is the cursor failure shared by every continue route.
type PaperAPICursorError string

const (
	ExpiredCursor     PaperAPICursorError = "expired_cursor"
	InvalidCursor     PaperAPICursorError = "invalid_cursor"
	WrongUserInCursor PaperAPICursorError = "wrong_user_in_cursor"
	CursorReset       PaperAPICursorError = "reset"
)

func (e *PaperAPICursorError) UnmarshalJSON(data []byte) error { return decodeTag(data, e) }

func (e PaperAPICursorError) String() string { return humanize(string(e)) }

// TagCursorError is the outer variant of both continue unions.
const TagCursorError = "cursor_error"

// ListDocsCursorError is returned by docs/list/continue.
type ListDocsCursorError struct {
	Tag         string
	CursorError *PaperAPICursorError
}

func (e *ListDocsCursorError) UnmarshalJSON(data []byte) error {
	tag, cursorErr, err := decodeCursorUnion(data)
	if err != nil {
		return err
	}
	e.Tag, e.CursorError = tag, cursorErr
	return nil
}

func (e ListDocsCursorError) String() string { return cursorUnionString(e.Tag, e.CursorError) }

// ListUsersCursorError is returned by users/list/continue and
// folder_users/list/continue.
type ListUsersCursorError struct {
	// Tag is insufficient_permissions, doc_not_found or cursor_error.
	Tag         string
	CursorError *PaperAPICursorError
}

func (e *ListUsersCursorError) UnmarshalJSON(data []byte) error {
	tag, cursorErr, err := decodeCursorUnion(data)
	if err != nil {
		return err
	}
	e.Tag, e.CursorError = tag, cursorErr
	return nil
}

func (e ListUsersCursorError) String() string { return cursorUnionString(e.Tag, e.CursorError) }

// decodeCursorUnion accepts the tagged form
//
//	{".tag": "cursor_error", "cursor_error": {".tag": "expired_cursor"}}
//
// the bare string form for void variants, and the untagged form
// {"cursor_error": {...}} which some responses use.
func decodeCursorUnion(data []byte) (string, *PaperAPICursorError, error) {
	data = bytes.TrimSpace(data)
	var raw struct {
		Tag         string          `json:".tag"`
		CursorError json.RawMessage `json:"cursor_error"`
	}
	if tag, err := dropbox.ParseTag(data); err == nil {
		raw.Tag = tag
	}
	if len(data) > 0 && data[0] == '{' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return "", nil, err
		}
	}

	if raw.Tag == "" {
		if len(raw.CursorError) == 0 {
			return "", nil, fmt.Errorf("cursor error union has no .tag: %s", data)
		}
		raw.Tag = TagCursorError
	}
	if raw.Tag != TagCursorError {
		return raw.Tag, nil, nil
	}
	if len(raw.CursorError) == 0 {
		return "", nil, errors.New("cursor_error variant without cursor_error field")
	}

	var inner PaperAPICursorError
	if err := json.Unmarshal(raw.CursorError, &inner); err != nil {
		return "", nil, fmt.Errorf("cursor_error: %w", err)
	}
	return raw.Tag, &inner, nil
}

func cursorUnionString(tag string, inner *PaperAPICursorError) string {
	if inner != nil {
		return humanize(tag) + ": " + inner.String()
	}
	return humanize(tag)
}
