package records

import (
	"context"

	"arcade/pkg/metrics"
)

// LocalFilter is the in-memory equivalent of a server-side filter expression.
type LocalFilter func(Record) bool

// Escalation is an ordered ladder of retrieval strategies for a collection
// whose server-side filter language is unreliable. Each strategy is tried in
// turn and the first non-empty result wins; escalation is one-directional.
//
// The ladder is: Primary server filter, then Fallback server filter (if
// set), then an unfiltered full scan with Local applied in memory. Running
// the ladder twice over unchanged data returns the same set.
type Escalation struct {
	// Primary is the preferred server-side filter expression.
	Primary string
	// Fallback is an alternate filter syntax for the same predicate.
	// Optional; skipped when empty.
	Fallback string
	// Local is applied to every record of an unfiltered walk when both
	// server strategies come back empty. Required.
	Local LocalFilter
}

type strategy struct {
	name string
	run  func(ctx context.Context) ([]Record, error)
}

// FetchFiltered runs the escalation ladder against the named collection.
// A retrieval failure at any rung aborts the whole operation.
func FetchFiltered(ctx context.Context, s Store, collection string, esc Escalation, opts WalkOptions) ([]Record, error) {
	serverWalk := func(filter string) func(ctx context.Context) ([]Record, error) {
		return func(ctx context.Context) ([]Record, error) {
			walk := opts
			walk.Filter = filter
			return FetchAll(ctx, s, collection, walk)
		}
	}

	strategies := []strategy{
		{name: "primary", run: serverWalk(esc.Primary)},
	}
	if esc.Fallback != "" {
		strategies = append(strategies, strategy{name: "fallback", run: serverWalk(esc.Fallback)})
	}
	strategies = append(strategies, strategy{name: "scan", run: func(ctx context.Context) ([]Record, error) {
		walk := opts
		walk.Filter = ""
		walk.Limit = 0 // the cap applies to matches, not scanned records
		recs, err := FetchAll(ctx, s, collection, walk)
		if err != nil {
			return nil, err
		}
		var matched []Record
		for _, rec := range recs {
			if esc.Local(rec) {
				matched = append(matched, rec)
				if opts.Limit > 0 && len(matched) >= opts.Limit {
					break
				}
			}
		}
		return matched, nil
	}})

	for i, st := range strategies {
		recs, err := st.run(ctx)
		if err != nil {
			return nil, err
		}
		if len(recs) > 0 {
			return recs, nil
		}
		if i < len(strategies)-1 {
			metrics.StoreFilterFallbacksTotal.WithLabelValues(collection, st.name).Inc()
		}
	}

	return nil, nil
}
