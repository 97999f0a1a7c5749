package paper

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/paperbox/dropbox"
)

// GetSharingPolicy returns the default sharing policy of a doc.
func (c *Client) GetSharingPolicy(ctx context.Context, docID string) (*SharingPolicy, error) {
	env, err := dropbox.RPC[SharingPolicy, DocLookupError](ctx, c.dbx, routeSharingPolicyGet, refPaperDoc{DocID: docID})
	policy, err := lift(ErrDocLookup, env, err)
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

// SetSharingPolicy changes the default sharing policy of a doc. A nil team
// policy is omitted, as personal accounts must do. PublicDisabled is
// rejected before sending because only team admins can set it.
func (c *Client) SetSharingPolicy(ctx context.Context, docID string, public *PublicPolicy, team *TeamPolicy) error {
	args := setSharingPolicyArgs{
		DocID: docID,
		SharingPolicy: setSharingPolicy{
			PublicSharingPolicy: public,
			TeamSharingPolicy:   team,
		},
	}
	env, err := dropbox.RPC[dropbox.Empty, DocLookupError](ctx, c.dbx, routeSharingPolicySet, args)
	if _, err := lift(ErrDocLookup, env, err); err != nil {
		return err
	}

	c.logger.Info().Str("doc_id", docID).Msg("Updated Paper doc sharing policy")
	return nil
}

// PolicyResult is the outcome of one doc in SharingPolicies.
type PolicyResult struct {
	DocID  string
	Policy *SharingPolicy
	Err    error
}

// SharingPolicies fetches the sharing policy of each doc concurrently.
// Results keep the order of docIDs. A failing doc does not stop the others;
// its error is reported in its PolicyResult.
func (c *Client) SharingPolicies(ctx context.Context, docIDs []string) []PolicyResult {
	results := make([]PolicyResult, len(docIDs))
	if len(docIDs) == 0 {
		return results
	}

	var g errgroup.Group
	g.SetLimit(c.concurrency)

	for i, docID := range docIDs {
		g.Go(func() error {
			policy, err := c.GetSharingPolicy(ctx, docID)
			if err != nil {
				c.logger.Warn().
					Err(err).
					Str("doc_id", docID).
					Msg("Failed to get sharing policy")
			}
			results[i] = PolicyResult{DocID: docID, Policy: policy, Err: err}
			return nil
		})
	}

	g.Wait()
	return results
}
