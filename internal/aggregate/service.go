package aggregate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"arcade/pkg/logger"
	"arcade/pkg/metrics"
	"arcade/pkg/profile"
	"arcade/pkg/records"

	"go.uber.org/zap"
)

// ErrNotFound is returned by Get when no game matches the id.
var ErrNotFound = errors.New("game not found")

// publishLinkFilter gates listing: only games with a non-empty publish link
// are eligible.
const publishLinkFilter = `NOT({ShibaLink} = "")`

// Tables names the five collections in the record store.
type Tables struct {
	Games    string
	Posts    string
	Plays    string
	Feedback string
	Users    string
}

// Service is the aggregation pipeline: paginated retrieval, filter
// escalation, cross-collection join, profile enrichment and projection,
// computed fresh per request.
type Service struct {
	store    records.Store
	tables   Tables
	pageSize int
	enricher *profile.Enricher
	logger   *logger.Logger
}

// NewService creates a new Service instance
func NewService(store records.Store, tables Tables, pageSize int, enricher *profile.Enricher, l *logger.Logger) *Service {
	return &Service{
		store:    store,
		tables:   tables,
		pageSize: pageSize,
		enricher: enricher,
		logger:   l,
	}
}

func (s *Service) fetchGames(ctx context.Context, limit int) ([]Game, error) {
	recs, err := records.FetchFiltered(ctx, s.store, s.tables.Games, records.Escalation{
		Primary: publishLinkFilter,
		Local: func(r records.Record) bool {
			return r.Str(fieldPublishLink) != ""
		},
	}, records.WalkOptions{
		Sort:     []records.Sort{{Field: fieldLastUpdated, Direction: "desc"}},
		PageSize: s.pageSize,
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}

	games := make([]Game, 0, len(recs))
	for _, rec := range recs {
		games = append(games, parseGame(rec))
	}
	return games, nil
}

// ListBasic returns the lightweight projection of every listed game, capped
// at limit, newest-updated first.
func (s *Service) ListBasic(ctx context.Context, limit int) ([]BasicGame, error) {
	start := time.Now()
	metrics.AggregationsTotal.WithLabelValues("basic").Inc()

	games, err := s.fetchGames(ctx, limit)
	if err != nil {
		metrics.AggregationErrorsTotal.Inc()
		return nil, fmt.Errorf("aggregation failed: %w", err)
	}

	graph := buildGraph(games, nil, nil, nil, nil)
	profiles := s.enricher.Resolve(ctx, graph.creatorIdentities())

	out := make([]BasicGame, 0, len(graph.Games))
	for _, g := range graph.Games {
		out = append(out, basicView(g, profiles))
	}

	metrics.AggregationLatency.Observe(time.Since(start).Seconds())
	s.logger.Debug("basic aggregation complete",
		zap.Int("games", len(out)),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

// ListFull returns the full projection of every listed game: posts, distinct
// player profiles, feedback, scores and counts. The limit caps the games
// returned, never the children within a returned game.
func (s *Service) ListFull(ctx context.Context, limit int) ([]FullGame, error) {
	start := time.Now()
	metrics.AggregationsTotal.WithLabelValues("full").Inc()

	var (
		games    []Game
		posts    []Post
		plays    []Play
		feedback []Feedback
		users    []UserAccount
	)
	childSort := []records.Sort{{Field: fieldCreatedAt, Direction: "desc"}}

	// The five collection fetches are independent reads; any failure aborts
	// the whole invocation.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		games, err = s.fetchGames(gctx, limit)
		return err
	})
	g.Go(func() error {
		recs, err := records.FetchAll(gctx, s.store, s.tables.Posts, records.WalkOptions{PageSize: s.pageSize, Sort: childSort})
		if err != nil {
			return err
		}
		for _, rec := range recs {
			posts = append(posts, parsePost(rec))
		}
		return nil
	})
	g.Go(func() error {
		recs, err := records.FetchAll(gctx, s.store, s.tables.Plays, records.WalkOptions{PageSize: s.pageSize, Sort: childSort})
		if err != nil {
			return err
		}
		for _, rec := range recs {
			plays = append(plays, parsePlay(rec))
		}
		return nil
	})
	g.Go(func() error {
		recs, err := records.FetchAll(gctx, s.store, s.tables.Feedback, records.WalkOptions{PageSize: s.pageSize, Sort: childSort})
		if err != nil {
			return err
		}
		for _, rec := range recs {
			feedback = append(feedback, parseFeedback(rec))
		}
		return nil
	})
	g.Go(func() error {
		recs, err := records.FetchAll(gctx, s.store, s.tables.Users, records.WalkOptions{PageSize: s.pageSize})
		if err != nil {
			return err
		}
		for _, rec := range recs {
			users = append(users, parseUser(rec))
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		metrics.AggregationErrorsTotal.Inc()
		return nil, fmt.Errorf("aggregation failed: %w", err)
	}

	graph := buildGraph(games, posts, plays, feedback, users)

	// The enrichment fan-out needs the joined graph's distinct identity set
	identities := append(graph.creatorIdentities(), graph.playerIdentities()...)
	profiles := s.enricher.Resolve(ctx, identities)

	out := make([]FullGame, 0, len(graph.Games))
	for _, game := range graph.Games {
		out = append(out, fullView(graph, game, profiles))
	}

	metrics.AggregationLatency.Observe(time.Since(start).Seconds())
	s.logger.Debug("full aggregation complete",
		zap.Int("games", len(out)),
		zap.Int("posts", len(posts)),
		zap.Int("plays", len(plays)),
		zap.Int("feedback", len(feedback)),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

// Get returns the full projection of a single game. Its children are
// retrieved through the complete filter-escalation ladder, since the store's
// relation-array predicates are unreliable.
func (s *Service) Get(ctx context.Context, gameID string) (FullGame, error) {
	start := time.Now()
	metrics.AggregationsTotal.WithLabelValues("get").Inc()

	escaped := records.EscapeFormula(gameID)

	gameRecs, err := records.FetchAll(ctx, s.store, s.tables.Games, records.WalkOptions{
		Filter:   fmt.Sprintf(`RECORD_ID() = "%s"`, escaped),
		PageSize: 1,
		Limit:    1,
	})
	if err != nil {
		metrics.AggregationErrorsTotal.Inc()
		return FullGame{}, fmt.Errorf("aggregation failed: %w", err)
	}
	if len(gameRecs) == 0 {
		return FullGame{}, ErrNotFound
	}
	game := parseGame(gameRecs[0])
	if !game.Usable() {
		return FullGame{}, ErrNotFound
	}

	childSort := []records.Sort{{Field: fieldCreatedAt, Direction: "desc"}}
	refLadder := records.Escalation{
		Primary:  fmt.Sprintf(`ARRAYJOIN({Game}) = "%s"`, escaped),
		Fallback: fmt.Sprintf(`{Game} = "%s"`, escaped),
		Local: func(r records.Record) bool {
			return r.HasRef(fieldGameRef, gameID)
		},
	}

	var (
		posts    []Post
		plays    []Play
		feedback []Feedback
		users    []UserAccount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := records.FetchFiltered(gctx, s.store, s.tables.Posts, refLadder, records.WalkOptions{PageSize: s.pageSize, Sort: childSort})
		if err != nil {
			return err
		}
		for _, rec := range recs {
			posts = append(posts, parsePost(rec))
		}
		return nil
	})
	g.Go(func() error {
		recs, err := records.FetchFiltered(gctx, s.store, s.tables.Plays, refLadder, records.WalkOptions{PageSize: s.pageSize, Sort: childSort})
		if err != nil {
			return err
		}
		for _, rec := range recs {
			plays = append(plays, parsePlay(rec))
		}
		return nil
	})
	g.Go(func() error {
		ownerEsc := records.EscapeFormula(game.OwnerIdentity)
		nameEsc := records.EscapeFormula(game.Name)
		recs, err := records.FetchFiltered(gctx, s.store, s.tables.Feedback, records.Escalation{
			Primary: fmt.Sprintf(`AND({gameSlackId} = "%s", {gameName} = "%s")`, ownerEsc, nameEsc),
			Local: func(r records.Record) bool {
				return r.Str(fieldFeedbackOwner) == game.OwnerIdentity &&
					r.Str(fieldFeedbackGame) == game.Name
			},
		}, records.WalkOptions{PageSize: s.pageSize, Sort: childSort})
		if err != nil {
			return err
		}
		for _, rec := range recs {
			feedback = append(feedback, parseFeedback(rec))
		}
		return nil
	})
	g.Go(func() error {
		recs, err := records.FetchAll(gctx, s.store, s.tables.Users, records.WalkOptions{PageSize: s.pageSize})
		if err != nil {
			return err
		}
		for _, rec := range recs {
			users = append(users, parseUser(rec))
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		metrics.AggregationErrorsTotal.Inc()
		return FullGame{}, fmt.Errorf("aggregation failed: %w", err)
	}

	graph := buildGraph([]Game{game}, posts, plays, feedback, users)
	identities := append(graph.creatorIdentities(), graph.playerIdentities()...)
	profiles := s.enricher.Resolve(ctx, identities)

	metrics.AggregationLatency.Observe(time.Since(start).Seconds())
	return fullView(graph, game, profiles), nil
}
