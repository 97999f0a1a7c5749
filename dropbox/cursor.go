package dropbox

import (
	"context"
	"errors"
	"time"

	"github.com/araddon/dateparse"
)

// ErrStopPagination can be returned by a Paginate visitor to stop early without error.
var ErrStopPagination = errors.New("stop pagination")

// Cursor is the opaque continuation token returned by list routes. It is only
// meaningful to the continue route of the family that issued it.
type Cursor struct {
	Value      string `json:"value"`
	Expiration string `json:"expiration"`
}

// ExpiresAt parses Expiration. It is informational: expiry is enforced by
// Dropbox and surfaced as a typed cursor error, never checked locally.
func (c Cursor) ExpiresAt() (time.Time, error) {
	return dateparse.ParseIn(c.Expiration, time.UTC)
}

// Page is one page of a cursor-paginated listing.
type Page interface {
	PageCursor() Cursor
	More() bool
}

// Paginate fetches the first page, then follows cursors until a page reports
// no more results. visit is called once per page, in order. Continue is never
// called after a page with has_more=false.
func Paginate[P Page](
	ctx context.Context,
	first func(ctx context.Context) (P, error),
	next func(ctx context.Context, cursor string) (P, error),
	visit func(page P) error,
) error {
	page, err := first(ctx)
	for {
		if err != nil {
			return err
		}
		if err := visit(page); err != nil {
			if errors.Is(err, ErrStopPagination) {
				return nil
			}
			return err
		}
		if !page.More() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err = next(ctx, page.PageCursor().Value)
	}
}
