// Package service wires the catalog, the record source and the cache to the
// query and selection engine for the HTTP API.
package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/maifilter/internal/adapters/cache"
	"github.com/okian/maifilter/internal/adapters/catalog"
	"github.com/okian/maifilter/internal/adapters/source"
	"github.com/okian/maifilter/internal/domain/model"
	"github.com/okian/maifilter/internal/domain/query"
	"github.com/okian/maifilter/internal/domain/scoring"
	"github.com/okian/maifilter/internal/domain/selection"
	"github.com/okian/maifilter/internal/domain/types"
	"github.com/okian/maifilter/pkg/logger"
	"github.com/okian/maifilter/pkg/metrics"
)

const (
	helpToken         = "help"
	maxDifficulty     = 20.0
	qqAccountPrefix   = "qq"
	userAccountPrefix = "user"
)

// Catalog is the part of catalog.Store the service needs.
type Catalog interface {
	Snapshot() *catalog.Snapshot
	Load(ctx context.Context) error
	LoadedAt() time.Time
}

// Request is one filter_50 invocation.
type Request struct {
	Tokens   []string `json:"tokens"`
	QQ       int64    `json:"qq,omitempty"`
	Username string   `json:"username,omitempty"`
}

// Response is everything a renderer needs to draw the result.
type Response struct {
	RequestID string `json:"request_id"`
	Help      string `json:"help,omitempty"`

	Username     string         `json:"username,omitempty"`
	Nickname     string         `json:"nickname,omitempty"`
	Plate        string         `json:"plate,omitempty"`
	AvatarQQ     int64          `json:"avatar_qq,omitempty"`
	ProberRating int            `json:"prober_rating,omitempty"`
	Rating       int            `json:"rating"`
	RatingPlate  int            `json:"rating_plate,omitempty"`
	DaniPlate    int            `json:"dani_plate,omitempty"`
	Query        string         `json:"query,omitempty"`
	Buckets      []types.Bucket `json:"buckets,omitempty"`
	Misses       int            `json:"misses,omitempty"`
}

// RatingResult is the answer to a single rating lookup.
type RatingResult struct {
	DS          float64 `json:"ds"`
	Achievement float64 `json:"achievement"`
	Rating      int     `json:"rating"`
	Rank        string  `json:"rank"`
}

// Service implements the API dependencies.
type Service struct {
	mu sync.RWMutex

	catalog Catalog
	source  source.Fetcher
	cache   cache.Cache

	started bool
	queries int64
	failed  int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCatalog sets the song catalog.
func WithCatalog(c Catalog) Option {
	return func(s *Service) {
		s.catalog = c
	}
}

// WithSource sets the record source.
func WithSource(f source.Fetcher) Option {
	return func(s *Service) {
		s.source = f
	}
}

// WithCache sets the player record cache.
func WithCache(c cache.Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service.
func New(opts ...Option) *Service {
	s := &Service{
		cache: cache.Noop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start checks the dependencies and marks the service ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.catalog == nil {
		return errors.New("service: no catalog configured")
	}
	if s.source == nil {
		return errors.New("service: no record source configured")
	}

	s.started = true
	snap := s.catalog.Snapshot()
	s.logger.Info(ctx, "filter service started",
		logger.Int("songs", snap.Songs()),
		logger.Int("aliases", snap.Aliases()),
	)
	return nil
}

// Stop marks the service stopped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "filter service stopped")
}

func (s *Service) ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Filter runs one filter_50 request end to end.
func (s *Service) Filter(ctx context.Context, req Request) (*Response, error) {
	if !s.ready() {
		return nil, ErrNotStarted
	}
	start := time.Now()
	id := uuid.NewString()
	ctx = logger.WithRequestID(ctx, id)

	resp, err := s.filter(ctx, req)
	outcome := outcomeOf(resp, err)
	metrics.RecordQuery(outcome, time.Since(start))

	s.mu.Lock()
	s.queries++
	if err != nil {
		s.failed++
	}
	s.mu.Unlock()

	if err != nil {
		severity, _ := metrics.SeverityOf(outcome)
		metrics.RecordErrorByType(outcome, severity)
		if outcome == metrics.OutcomeError || outcome == metrics.OutcomeUnavailable {
			s.logger.Error(ctx, "filter failed", logger.String("outcome", outcome), logger.Error(err))
		} else {
			s.logger.Debug(ctx, "filter rejected", logger.String("outcome", outcome), logger.Error(err))
		}
		return nil, err
	}
	resp.RequestID = id
	s.logger.Info(ctx, "filter served",
		logger.String("query", resp.Query),
		logger.Int("rating", resp.Rating),
		logger.Int("misses", resp.Misses),
		logger.Duration("took", time.Since(start)),
	)
	return resp, nil
}

func (s *Service) filter(ctx context.Context, req Request) (*Response, error) {
	for _, tok := range req.Tokens {
		if strings.EqualFold(strings.TrimSpace(tok), helpToken) {
			return &Response{Help: HelpText}, nil
		}
	}

	tokens, acc, err := splitAccount(req.Tokens, source.Account{QQ: req.QQ, Username: req.Username})
	if err != nil {
		return nil, err
	}

	info, err := s.records(ctx, acc)
	if err != nil {
		return nil, err
	}

	snap := s.catalog.Snapshot()
	q, err := query.Parse(tokens, snap)
	if err != nil {
		var pe *query.ParseError
		if errors.As(err, &pe) {
			metrics.RecordParseError(pe.Reason)
		}
		return nil, err
	}

	res, err := selection.Select(info.Records, q, snap)
	if err != nil {
		return nil, err
	}
	metrics.RecordLookupMisses(res.Misses)
	metrics.UpdateLastRating(res.Rating)

	return &Response{
		Username:     info.Username,
		Nickname:     info.Nickname,
		Plate:        info.Plate,
		AvatarQQ:     acc.QQ,
		ProberRating: info.Rating,
		Rating:       res.Rating,
		RatingPlate:  scoring.RatingPlate(res.Rating),
		DaniPlate:    scoring.DaniPlate(info.AdditionalRating),
		Query:        q.String(),
		Buckets:      res.Buckets,
		Misses:       res.Misses,
	}, nil
}

// records returns a private copy of the player's records, from the cache
// when possible.
func (s *Service) records(ctx context.Context, acc source.Account) (*model.PlayerInfo, error) {
	key := acc.Key()
	if info, ok := s.cache.Get(ctx, key); ok {
		return info, nil
	}
	info, err := s.source.Fetch(ctx, acc)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, info)
	return info.Clone(), nil
}

// splitAccount removes qq=/user= tokens and folds them into acc. A username
// always wins over a QQ id.
func splitAccount(tokens []string, acc source.Account) ([]string, source.Account, error) {
	rest := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		switch {
		case hasFoldPrefix(tok, userAccountPrefix):
			acc.Username = accountValue(tok, userAccountPrefix)
		case hasFoldPrefix(tok, qqAccountPrefix):
			qq, err := strconv.ParseInt(accountValue(tok, qqAccountPrefix), 10, 64)
			if err != nil {
				return nil, acc, &query.ParseError{Token: tok, Reason: query.ReasonMalformed}
			}
			acc.QQ = qq
		default:
			rest = append(rest, tok)
		}
	}
	if acc.Username != "" {
		acc.QQ = 0
	}
	if acc.Empty() {
		return nil, acc, source.ErrNoAccount
	}
	return rest, acc, nil
}

func hasFoldPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func accountValue(tok, prefix string) string {
	v := tok[len(prefix):]
	v = strings.TrimPrefix(v, "=")
	v = strings.TrimPrefix(v, "＝")
	return strings.TrimSpace(v)
}

func outcomeOf(resp *Response, err error) string {
	switch {
	case err == nil && resp != nil && resp.Help != "":
		return metrics.OutcomeHelp
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, query.ErrParse):
		return metrics.OutcomeParseError
	case errors.Is(err, source.ErrUserNotFound), errors.Is(err, source.ErrNoAccount):
		return metrics.OutcomeNotFound
	case errors.Is(err, source.ErrQueryDisabled):
		return metrics.OutcomeDisabled
	case errors.Is(err, source.ErrUnavailable):
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeError
	}
}

// Rating computes the rating and rank label of one play.
func (s *Service) Rating(ds, achievement float64) (RatingResult, error) {
	if err := validateDifficulty(ds); err != nil {
		return RatingResult{}, err
	}
	if achievement < 0 || achievement > model.AchievementPerfect {
		return RatingResult{}, ErrInvalidAchievement
	}
	ra, rank := scoring.ComputeRa(ds, achievement)
	return RatingResult{DS: ds, Achievement: achievement, Rating: ra, Rank: rank}, nil
}

// Breakpoints lists every achievement at which the rating of a chart with
// constant ds changes.
func (s *Service) Breakpoints(ds float64) ([]scoring.Breakpoint, error) {
	if err := validateDifficulty(ds); err != nil {
		return nil, err
	}
	return scoring.Breakpoints(ds), nil
}

func validateDifficulty(ds float64) error {
	if !(ds > 0 && ds <= maxDifficulty) {
		return ErrInvalidDifficulty
	}
	return nil
}

// ReloadCatalog swaps in a freshly loaded catalog. Queries already running
// keep the snapshot they started with.
func (s *Service) ReloadCatalog(ctx context.Context) error {
	if !s.ready() {
		return ErrNotStarted
	}
	if err := s.catalog.Load(ctx); err != nil {
		return err
	}
	snap := s.catalog.Snapshot()
	s.logger.Info(ctx, "catalog reloaded",
		logger.Int("songs", snap.Songs()),
		logger.Int("aliases", snap.Aliases()),
	)
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":       s.started,
		"queries":       s.queries,
		"failedQueries": s.failed,
		"cacheEntries":  s.cache.Len(),
	}
	if s.catalog != nil {
		snap := s.catalog.Snapshot()
		stats["songs"] = snap.Songs()
		stats["aliases"] = snap.Aliases()
		if at := s.catalog.LoadedAt(); !at.IsZero() {
			stats["catalogLoadedAt"] = at.UTC().Format(time.RFC3339)
		}
	}
	return stats
}
