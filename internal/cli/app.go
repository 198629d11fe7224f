package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/rmcat/internal/api"
	"github.com/roach88/rmcat/internal/catalog"
	"github.com/roach88/rmcat/internal/config"
	"github.com/roach88/rmcat/internal/logging"
	"github.com/roach88/rmcat/internal/metrics"
	"github.com/roach88/rmcat/internal/repository"
	"github.com/roach88/rmcat/internal/store"
)

// app is the dependency graph shared by every catalog command.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *store.Store
	metrics *metrics.Collectors
	client  *api.Client

	characters *repository.Repository[api.CharacterDTO, catalog.Character]
	locations  *repository.Repository[api.LocationDTO, catalog.Location]
	episodes   *repository.Repository[api.EpisodeDTO, catalog.Episode]

	service *catalog.Service
}

// loadConfig layers the config file, environment and flags. An explicit
// --config that does not exist is an error; the default path may be absent.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	} else if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config file %s does not exist", path)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if opts.Database != "" {
		cfg.Cache.Path = opts.Database
	}
	if opts.APIURL != "" {
		cfg.API.BaseURL = opts.APIURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore opens the cache database, creating its directory if needed.
func openStore(path string) (*store.Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}
	return store.Open(path)
}

// openApp wires config, logger, cache, API client and repositories. Failures
// are reported through the formatter and returned as ExitErrors.
func openApp(opts *RootOptions, cmd *cobra.Command) (*app, error) {
	out := opts.formatter(cmd)

	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, out.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}

	logger, err := logging.New(cfg.Log.Level, opts.Verbose, cmd.ErrOrStderr())
	if err != nil {
		return nil, out.Fail(ExitCommandError, ErrCodeConfig, "failed to initialize logger", err)
	}
	logger = logger.With(zap.String("trace_id", opts.traceID))

	logger.Debug("opening cache", zap.String("path", cfg.Cache.Path))
	st, err := openStore(cfg.Cache.Path)
	if err != nil {
		return nil, out.Fail(ExitCommandError, ErrCodeStore, "failed to open cache database", err)
	}

	m := metrics.New()
	client := api.New(
		api.WithBaseURL(cfg.API.BaseURL),
		api.WithTimeout(cfg.APITimeout()),
		api.WithRateLimit(cfg.API.RateLimit, cfg.API.Burst),
		api.WithUserAgent(cfg.API.UserAgent),
		api.WithLogger(logger.Named("api")),
		api.WithMetrics(m),
	)

	repoOpts := []repository.Option{
		repository.WithLogger(logger.Named("repository")),
		repository.WithMetrics(m),
		repository.WithRefreshTimeout(cfg.RefreshTimeout()),
	}
	a := &app{
		cfg:        cfg,
		logger:     logger,
		store:      st,
		metrics:    m,
		client:     client,
		characters: repository.NewCharacters(client, st, repoOpts...),
		locations:  repository.NewLocations(client, st, repoOpts...),
		episodes:   repository.NewEpisodes(client, st, repoOpts...),
	}
	a.service = catalog.NewService(a.characters, a.locations, a.episodes)
	return a, nil
}

// Close lets background refreshes finish, then releases the cache.
func (a *app) Close() {
	a.characters.Wait()
	a.locations.Wait()
	a.episodes.Wait()

	a.characters.Close()
	a.locations.Close()
	a.episodes.Close()

	if err := a.store.Close(); err != nil {
		a.logger.Error("error closing database", zap.Error(err))
	}
	_ = a.logger.Sync()
}
