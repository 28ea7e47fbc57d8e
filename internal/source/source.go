// Package source defines the contract every provider client satisfies.
package source

import (
	"context"

	"newsfuse/internal/content"
)

// Client is the uniform fetch contract for one external provider.
//
// Search returns canonical items for a query. Implementations own their wire
// format and canonicalization; transport and parse errors surface as a
// returned error, never a panic. Available reports whether credentials and
// transport are configured; the aggregator skips unavailable clients without
// calling Search.
type Client interface {
	Search(ctx context.Context, query string, limit int) ([]content.Item, error)
	Available() bool
	Type() content.SourceType
}
