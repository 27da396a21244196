// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/maifilter/internal/adapters/source"
	service "github.com/okian/maifilter/internal/app"
	"github.com/okian/maifilter/internal/domain/query"
	"github.com/okian/maifilter/internal/domain/scoring"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider

	Filter(ctx context.Context, req service.Request) (*service.Response, error)
	Rating(ds, achievement float64) (service.RatingResult, error)
	Breakpoints(ds float64) ([]scoring.Breakpoint, error)
	ReloadCatalog(ctx context.Context) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	filterHandler  *FilterHandler
	scoringHandler *ScoringHandler
	catalogHandler *CatalogHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		filterHandler:  NewFilterHandler(deps),
		scoringHandler: NewScoringHandler(deps),
		catalogHandler: NewCatalogHandler(deps),
	}
}

func (s *Server) routes() []route {
	return []route{
		{pattern: "/healthz", name: "healthz", handler: s.healthHandler.HandleHealth},
		{pattern: "/stats", name: "stats", handler: s.statsHandler.HandleStats},
		{pattern: "/help", name: "help", handler: s.filterHandler.HandleHelp},
		{pattern: "/filter50", name: "filter50", handler: s.filterHandler.HandleFilter},
		{pattern: "/rating", name: "rating", handler: s.scoringHandler.HandleRating},
		{pattern: "/breakpoints", name: "breakpoints", handler: s.scoringHandler.HandleBreakpoints},
		{pattern: "/catalog/reload", name: "catalog_reload", handler: s.catalogHandler.HandleReload},
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	for _, rt := range s.routes() {
		mux.HandleFunc(rt.pattern, instrument(rt.name, rt.handler))
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	setErrorCode(w, code)
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps a service error to its status. Parse errors and
// account errors are meant for end users and are written without the op.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	var pe *query.ParseError
	switch {
	case errors.As(err, &pe):
		writeError(w, http.StatusBadRequest, "parse_error", pe)
	case errors.Is(err, source.ErrNoAccount):
		writeError(w, http.StatusBadRequest, "bad_request", source.ErrNoAccount)
	case errors.Is(err, source.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user_not_found", source.ErrUserNotFound)
	case errors.Is(err, source.ErrQueryDisabled):
		writeError(w, http.StatusForbidden, "query_disabled", source.ErrQueryDisabled)
	case errors.Is(err, source.ErrUnavailable):
		writeError(w, http.StatusBadGateway, "upstream_unavailable", WrapKind(op, ErrUpstream, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	case errors.Is(err, service.ErrInvalidDifficulty), errors.Is(err, service.ErrInvalidAchievement):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
	}
}
