package paper

import (
	"context"
	"io"

	"github.com/s0up4200/paperbox/dropbox"
)

// Archive marks a doc as archived. Anyone with edit access can archive or
// restore a doc.
func (c *Client) Archive(ctx context.Context, docID string) error {
	env, err := dropbox.RPC[dropbox.Empty, DocLookupError](ctx, c.dbx, routeArchive, refPaperDoc{DocID: docID})
	if _, err := lift(ErrDocLookup, env, err); err != nil {
		return err
	}

	c.logger.Info().Str("doc_id", docID).Msg("Archived Paper doc")
	return nil
}

// PermanentlyDelete deletes a doc. The doc cannot be recovered and only its
// owner may delete it.
func (c *Client) PermanentlyDelete(ctx context.Context, docID string) error {
	env, err := dropbox.RPC[dropbox.Empty, DocLookupError](ctx, c.dbx, routePermanentlyDelete, refPaperDoc{DocID: docID})
	if _, err := lift(ErrDocLookup, env, err); err != nil {
		return err
	}

	c.logger.Info().Str("doc_id", docID).Msg("Permanently deleted Paper doc")
	return nil
}

// Create creates a doc from content. parentFolderID may be empty to create
// the doc unfiled.
func (c *Client) Create(ctx context.Context, format ImportFormat, parentFolderID string, content io.Reader) (*CreateUpdateResult, error) {
	args := createArgs{ImportFormat: format, ParentFolderID: parentFolderID}
	env, err := dropbox.Upload[CreateUpdateResult, PaperDocCreateError](ctx, c.dbx, routeCreate, args, content)
	result, err := lift(ErrDocCreate, env, err)
	if err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("doc_id", result.DocID).
		Int64("revision", result.Revision).
		Msg("Created Paper doc")
	return &result, nil
}

// UpdateRequest describes a docs/update call.
type UpdateRequest struct {
	DocID  string
	Policy UpdatePolicy
	// Revision is the latest revision of the doc known to the caller.
	Revision int64
	Format   ImportFormat
}

// Update writes content into an existing doc.
func (c *Client) Update(ctx context.Context, req UpdateRequest, content io.Reader) (*CreateUpdateResult, error) {
	args := updateArgs{
		DocID:           req.DocID,
		DocUpdatePolicy: req.Policy,
		Revision:        req.Revision,
		ImportFormat:    req.Format,
	}
	env, err := dropbox.Upload[CreateUpdateResult, PaperDocUpdateError](ctx, c.dbx, routeUpdate, args, content)
	result, err := lift(ErrDocUpdate, env, err)
	if err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("doc_id", result.DocID).
		Int64("revision", result.Revision).
		Msg("Updated Paper doc")
	return &result, nil
}

// Download exports a doc. The caller must close the returned response.
func (c *Client) Download(ctx context.Context, docID string, format ExportFormat) (*dropbox.ContentResponse[ExportResult], error) {
	env, err := dropbox.Download[ExportResult, DocLookupError](ctx, c.dbx, routeDownload,
		exportArgs{DocID: docID, ExportFormat: format})
	if err != nil {
		return nil, err
	}
	if env.Err != nil {
		return nil, &Error{Kind: ErrDocLookup, Err: env.Err}
	}
	return env.Ok, nil
}

// GetFolderInfo returns the folder path and folder sharing policy of a doc.
func (c *Client) GetFolderInfo(ctx context.Context, docID string) (*FolderInfo, error) {
	env, err := dropbox.RPC[FolderInfo, DocLookupError](ctx, c.dbx, routeGetFolderInfo, refPaperDoc{DocID: docID})
	info, err := lift(ErrDocLookup, env, err)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// List returns the first page of docs. A zero Limit means DefaultListLimit.
// docs/list has no error union; an error response is reported as
// dropbox.ErrContractViolation.
func (c *Client) List(ctx context.Context, opts ListOptions) (*DocsPage, error) {
	if opts.Limit == 0 {
		opts.Limit = DefaultListLimit
	}
	env, err := dropbox.RPC[DocsPage, dropbox.NoError](ctx, c.dbx, routeList, opts)
	resp, err := dropbox.Infallible(routeList, env, err)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int("docs", len(resp.Body.DocIDs)).
		Bool("has_more", resp.Body.HasMore).
		Msg("Listed Paper docs")
	return &resp.Body, nil
}

// ListContinue returns the page after cursor, which must come from List or
// a previous ListContinue.
func (c *Client) ListContinue(ctx context.Context, cursor string) (*DocsPage, error) {
	env, err := dropbox.RPC[DocsPage, ListDocsCursorError](ctx, c.dbx, routeListContinue, listContinueArgs{Cursor: cursor})
	page, err := lift(ErrListDocsCursor, env, err)
	if err != nil {
		return nil, err
	}
	return &page, nil
}
