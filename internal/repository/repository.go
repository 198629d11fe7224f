package repository

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/rmcat/internal/api"
	"github.com/roach88/rmcat/internal/catalog"
	"github.com/roach88/rmcat/internal/metrics"
	"github.com/roach88/rmcat/internal/store"
)

// DefaultRefreshTimeout bounds a single background refresh.
const DefaultRefreshTimeout = 15 * time.Second

// Remote is the network side of a repository.
type Remote[D any] interface {
	List(ctx context.Context, page int) (api.Page[D], error)
	Get(ctx context.Context, id int) (D, error)
	Search(ctx context.Context, name string, page int) (api.Page[D], error)
}

// Local is the cache side of a repository.
type Local[M any] interface {
	SavePage(ctx context.Context, page int, items []M) error
	SaveOne(ctx context.Context, item M) error
	Page(ctx context.Context, page int) ([]M, error)
	All(ctx context.Context) ([]M, error)
	Get(ctx context.Context, id int) (M, bool, error)
}

// Model is a domain value that can be cached and re-validated on read.
type Model interface {
	EntityID() int
	Validate() error
}

// Option configures a Repository.
type Option func(*options)

type options struct {
	logger         *zap.Logger
	metrics        *metrics.Collectors
	refreshTimeout time.Duration
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics records result sources, failures and refresh outcomes.
func WithMetrics(m *metrics.Collectors) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithRefreshTimeout bounds each background refresh. Non-positive values keep
// the default.
func WithRefreshTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.refreshTimeout = d
		}
	}
}

// Repository serves one entity from the cache and the remote API.
// It implements catalog.Repository[M].
type Repository[D any, M Model] struct {
	entity   catalog.Entity
	remote   Remote[D]
	local    Local[M]
	toDomain Mapper[D, M]

	logger         *zap.Logger
	metrics        *metrics.Collectors
	refreshTimeout time.Duration

	// Background refreshes run on ctx, never on the caller's context.
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

var _ catalog.Repository[catalog.Character] = (*Repository[api.CharacterDTO, catalog.Character])(nil)

// New creates a Repository for entity.
func New[D any, M Model](entity catalog.Entity, remote Remote[D], local Local[M], toDomain Mapper[D, M], opts ...Option) *Repository[D, M] {
	o := options{
		logger:         zap.NewNop(),
		refreshTimeout: DefaultRefreshTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Repository[D, M]{
		entity:         entity,
		remote:         remote,
		local:          local,
		toDomain:       toDomain,
		logger:         o.logger.With(zap.String("entity", string(entity))),
		metrics:        o.metrics,
		refreshTimeout: o.refreshTimeout,
		ctx:            ctx,
		cancel:         cancel,
	}
}

// NewCharacters wires the character repository over client and s.
func NewCharacters(client *api.Client, s *store.Store, opts ...Option) *Repository[api.CharacterDTO, catalog.Character] {
	local := store.NewCollection[catalog.Character](s, store.KindCharacters, func(c catalog.Character) (int, string) {
		return c.ID, c.Name
	})
	return New[api.CharacterDTO, catalog.Character](catalog.EntityCharacter, client.Characters(), local, CharacterToDomain, opts...)
}

// NewLocations wires the location repository over client and s.
func NewLocations(client *api.Client, s *store.Store, opts ...Option) *Repository[api.LocationDTO, catalog.Location] {
	local := store.NewCollection[catalog.Location](s, store.KindLocations, func(l catalog.Location) (int, string) {
		return l.ID, l.Name
	})
	return New[api.LocationDTO, catalog.Location](catalog.EntityLocation, client.Locations(), local, LocationToDomain, opts...)
}

// NewEpisodes wires the episode repository over client and s.
func NewEpisodes(client *api.Client, s *store.Store, opts ...Option) *Repository[api.EpisodeDTO, catalog.Episode] {
	local := store.NewCollection[catalog.Episode](s, store.KindEpisodes, func(e catalog.Episode) (int, string) {
		return e.ID, e.Name
	})
	return New[api.EpisodeDTO, catalog.Episode](catalog.EntityEpisode, client.Episodes(), local, EpisodeToDomain, opts...)
}

// Entity returns the entity this repository serves.
func (r *Repository[D, M]) Entity() catalog.Entity {
	return r.entity
}

// List returns one page.
//
// A cached page is returned as is and refreshed in the background. Otherwise
// the page is fetched and cached. If the fetch fails, every cached item of the
// entity is returned instead; with an empty cache the translated error is.
// A canceled fetch never falls back.
func (r *Repository[D, M]) List(ctx context.Context, page int) (catalog.Result[[]M], error) {
	const op = "list"

	cached, err := r.local.Page(ctx, page)
	if err != nil {
		r.logger.Warn("cache read failed", zap.Int("page", page), zap.Error(err))
		cached = nil
	}
	if len(cached) > 0 {
		invalid := validateAll(cached)
		if invalid == nil {
			r.background("page", func(ctx context.Context) error {
				return r.refreshPage(ctx, page)
			})
			r.served(op, catalog.SourceCache)
			return catalog.Result[[]M]{Data: cached, Source: catalog.SourceCache}, nil
		}
		r.logger.Warn("cached page failed validation, refetching", zap.Int("page", page), zap.Error(invalid))
	}

	items, fetchErr := r.fetchPage(ctx, page)
	if fetchErr == nil {
		if err := r.local.SavePage(ctx, page, items); err != nil {
			r.logger.Warn("cache write failed", zap.Int("page", page), zap.Error(err))
		}
		r.served(op, catalog.SourceAPI)
		return catalog.Result[[]M]{Data: items, Source: catalog.SourceAPI}, nil
	}

	if api.KindOf(fetchErr) == api.KindCanceled {
		return catalog.Result[[]M]{}, r.failure(op, translate(r.entity, fetchErr, lookup{}))
	}

	all, err := r.local.All(ctx)
	if store.IsCorrupt(err) {
		return catalog.Result[[]M]{}, r.failure(op, catalog.InvalidData(r.entity, "", err))
	}
	if err != nil {
		r.logger.Warn("cache fallback read failed", zap.Error(err))
	}
	if len(all) > 0 {
		if err := validateAll(all); err != nil {
			return catalog.Result[[]M]{}, r.failure(op, catalog.InvalidData(r.entity, "", err))
		}
		r.logger.Info("serving cached fallback",
			zap.Int("page", page),
			zap.Int("items", len(all)),
			zap.NamedError("cause", fetchErr),
		)
		r.served(op, catalog.SourceCache)
		return catalog.Result[[]M]{Data: all, Source: catalog.SourceCache}, nil
	}

	return catalog.Result[[]M]{}, r.failure(op, translate(r.entity, fetchErr, lookup{}))
}

// Get returns a single item, from the cache when present (refreshing it in the
// background) or from the network.
func (r *Repository[D, M]) Get(ctx context.Context, id int) (catalog.Result[M], error) {
	const op = "get"

	cached, ok, err := r.local.Get(ctx, id)
	if err != nil {
		r.logger.Warn("cache read failed", zap.Int("id", id), zap.Error(err))
		ok = false
	}
	if ok {
		invalid := cached.Validate()
		if invalid == nil {
			r.background("item", func(ctx context.Context) error {
				_, err := r.fetchOne(ctx, id)
				return err
			})
			r.served(op, catalog.SourceCache)
			return catalog.Result[M]{Data: cached, Source: catalog.SourceCache}, nil
		}
		r.logger.Warn("cached item failed validation, refetching", zap.Int("id", id), zap.Error(invalid))
	}

	item, err := r.fetchOne(ctx, id)
	if err != nil {
		var zero catalog.Result[M]
		return zero, r.failure(op, err)
	}
	r.served(op, catalog.SourceAPI)
	return catalog.Result[M]{Data: item, Source: catalog.SourceAPI}, nil
}

// Search returns one page of items whose name contains name. Results are
// never cached.
func (r *Repository[D, M]) Search(ctx context.Context, name string, page int) (catalog.Result[[]M], error) {
	const op = "search"

	resp, err := r.remote.Search(ctx, name, page)
	if err != nil {
		return catalog.Result[[]M]{}, r.failure(op, translate(r.entity, err, byName(name)))
	}
	if len(resp.Results) == 0 {
		return catalog.Result[[]M]{}, r.failure(op, catalog.NotFoundByName(r.entity, name))
	}
	items, err := mapAll(resp.Results, r.toDomain)
	if err != nil {
		return catalog.Result[[]M]{}, r.failure(op, err)
	}
	r.served(op, catalog.SourceAPI)
	return catalog.Result[[]M]{Data: items, Source: catalog.SourceAPI}, nil
}

// Refresh fetches page and replaces its cached copy. Unlike List it never
// serves the cache, so every failure is returned.
func (r *Repository[D, M]) Refresh(ctx context.Context, page int) error {
	const op = "refresh"

	if err := r.refreshPage(ctx, page); err != nil {
		return r.failure(op, translate(r.entity, err, lookup{}))
	}
	r.served(op, catalog.SourceAPI)
	return nil
}

// Wait blocks until every in-flight background refresh has finished.
func (r *Repository[D, M]) Wait() {
	r.wg.Wait()
}

// Close cancels in-flight background refreshes and waits for them to return.
// No refresh is started after Close.
func (r *Repository[D, M]) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
}

func (r *Repository[D, M]) fetchPage(ctx context.Context, page int) ([]M, error) {
	resp, err := r.remote.List(ctx, page)
	if err != nil {
		return nil, err
	}
	return mapAll(resp.Results, r.toDomain)
}

func (r *Repository[D, M]) refreshPage(ctx context.Context, page int) error {
	items, err := r.fetchPage(ctx, page)
	if err != nil {
		return err
	}
	return r.local.SavePage(ctx, page, items)
}

// fetchOne fetches, maps and caches a single item. Errors are translated.
func (r *Repository[D, M]) fetchOne(ctx context.Context, id int) (M, error) {
	var zero M
	dto, err := r.remote.Get(ctx, id)
	if err != nil {
		return zero, translate(r.entity, err, byID(id))
	}
	item, err := r.toDomain(dto)
	if err != nil {
		return zero, err
	}
	if err := r.local.SaveOne(ctx, item); err != nil {
		r.logger.Warn("cache write failed", zap.Int("id", id), zap.Error(err))
	}
	return item, nil
}

// background runs fn on the repository context. Failures are logged and
// dropped.
func (r *Repository[D, M]) background(what string, fn func(ctx context.Context) error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(r.ctx, r.refreshTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			r.logger.Debug("background refresh failed", zap.String("target", what), zap.Error(err))
			r.metrics.RecordRefresh(string(r.entity), "error")
			return
		}
		r.metrics.RecordRefresh(string(r.entity), "ok")
	}()
}

func (r *Repository[D, M]) served(op string, source catalog.Source) {
	r.metrics.RecordResult(string(r.entity), op, string(source))
}

func (r *Repository[D, M]) failure(op string, err error) error {
	r.metrics.RecordFailure(string(r.entity), op, string(catalog.CodeOf(err)))
	r.logger.Debug("repository read failed", zap.String("op", op), zap.Error(err))
	return err
}

func validateAll[M Model](items []M) error {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}
