// Package server exposes the catalog as a read-only JSON HTTP service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/rmcat/internal/catalog"
	"github.com/roach88/rmcat/internal/metrics"
)

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = "X-Request-ID"

const shutdownTimeout = 5 * time.Second

// Server routes HTTP requests to the catalog service.
type Server struct {
	logger  *zap.Logger
	service *catalog.Service
	metrics *metrics.Collectors
	newID   func() string
	router  *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the access and error logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMetrics instruments every route and serves /metrics.
func WithMetrics(m *metrics.Collectors) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithRequestIDs overrides the request id generator.
func WithRequestIDs(gen func() string) Option {
	return func(s *Server) {
		s.newID = gen
	}
}

// New builds the router for service.
func New(service *catalog.Service, opts ...Option) *Server {
	s := &Server{
		logger:  zap.NewNop(),
		service: service,
		newID:   newRequestID,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := mux.NewRouter()
	r.Use(s.requestLog)
	s.handle(r, "/api/{entity}", s.handleList)
	s.handle(r, "/api/{entity}/{id}", s.handleGet)
	s.handle(r, "/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	s.router = r
	return s
}

func (s *Server) handle(r *mux.Router, route string, h http.HandlerFunc) {
	r.Handle(route, s.metrics.InstrumentHandler(route, h)).Methods(http.MethodGet)
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type envelope struct {
	Status    string         `json:"status"`
	Source    catalog.Source `json:"source,omitempty"`
	Page      int            `json:"page,omitempty"`
	Data      any            `json:"data,omitempty"`
	Error     *errorBody     `json:"error,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	entity, ok := s.entity(w, r)
	if !ok {
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, string(catalog.CodeInvalidPage), "page must be an integer")
			return
		}
		page = n
	}
	name := r.URL.Query().Get("name")

	var (
		data   any
		source catalog.Source
		err    error
	)
	switch entity {
	case catalog.EntityCharacter:
		data, source, err = listOrSearch(r.Context(), s.service.Characters, name, page)
	case catalog.EntityLocation:
		data, source, err = listOrSearch(r.Context(), s.service.Locations, name, page)
	case catalog.EntityEpisode:
		data, source, err = listOrSearch(r.Context(), s.service.Episodes, name, page)
	}
	if err != nil {
		s.writeCatalogError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, envelope{Status: "ok", Source: source, Page: page, Data: data})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	entity, ok := s.entity(w, r)
	if !ok {
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, string(catalog.CodeInvalidID), "id must be an integer")
		return
	}

	var (
		data   any
		source catalog.Source
	)
	switch entity {
	case catalog.EntityCharacter:
		data, source, err = byID(r.Context(), s.service.Characters, id)
	case catalog.EntityLocation:
		data, source, err = byID(r.Context(), s.service.Locations, id)
	case catalog.EntityEpisode:
		data, source, err = byID(r.Context(), s.service.Episodes, id)
	}
	if err != nil {
		s.writeCatalogError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, envelope{Status: "ok", Source: source, Data: data})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, envelope{Status: "ok"})
}

func (s *Server) entity(w http.ResponseWriter, r *http.Request) (catalog.Entity, bool) {
	entity, err := catalog.ParseEntity(mux.Vars(r)["entity"])
	if err != nil {
		s.writeError(w, r, http.StatusNotFound, "UNKNOWN_ENTITY", err.Error())
		return "", false
	}
	return entity, true
}

func listOrSearch[T any](ctx context.Context, c *catalog.Catalog[T], name string, page int) (any, catalog.Source, error) {
	var (
		res catalog.Result[[]T]
		err error
	)
	if name != "" {
		res, err = c.Search(ctx, name, page)
	} else {
		res, err = c.Page(ctx, page)
	}
	return res.Data, res.Source, err
}

func byID[T any](ctx context.Context, c *catalog.Catalog[T], id int) (any, catalog.Source, error) {
	res, err := c.ByID(ctx, id)
	return res.Data, res.Source, err
}

// StatusFor maps a catalog error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case catalog.IsNotFound(err):
		return http.StatusNotFound
	case catalog.IsValidation(err):
		return http.StatusBadRequest
	case catalog.IsInvalidData(err):
		return http.StatusBadGateway
	case catalog.IsUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Warn("error during API request",
			zap.String("request_id", w.Header().Get(RequestIDHeader)),
			zap.Error(err),
		)
	}

	ce, ok := catalog.AsError(err)
	if !ok {
		s.writeError(w, r, status, "INTERNAL", "internal error")
		return
	}
	s.writeError(w, r, status, ce.QualifiedCode(), ce.Message)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	s.writeJSON(w, r, status, envelope{
		Status: "error",
		Error:  &errorBody{Code: code, Message: message},
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, body envelope) {
	body.RequestID = w.Header().Get(RequestIDHeader)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Debug("write response", zap.String("path", r.URL.Path), zap.Error(err))
	}
}
