package records

import (
	"context"
	"fmt"
)

// WalkOptions carries the parameters of a full collection walk.
type WalkOptions struct {
	Filter   string
	Sort     []Sort
	PageSize int
	// Limit caps the number of records returned. Zero means no cap. A capped
	// walk may stop before the collection is exhausted.
	Limit int
}

// FetchAll walks the named collection page by page until the store stops
// returning a continuation cursor. Any failed page aborts the whole walk;
// pages already fetched are discarded.
func FetchAll(ctx context.Context, s Store, collection string, opts WalkOptions) ([]Record, error) {
	var all []Record
	offset := ""

	for {
		page, err := s.List(ctx, collection, ListOptions{
			Filter:   opts.Filter,
			Sort:     opts.Sort,
			PageSize: opts.PageSize,
			Offset:   offset,
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", collection, err)
		}

		all = append(all, page.Records...)

		if opts.Limit > 0 && len(all) >= opts.Limit {
			return all[:opts.Limit], nil
		}

		if page.Offset == "" {
			return all, nil
		}
		offset = page.Offset
	}
}
