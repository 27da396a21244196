package api

import (
	"context"
	"net/http"
	"strconv"

	service "github.com/okian/maifilter/internal/app"
	"github.com/okian/maifilter/internal/domain/scoring"
)

// ScoringDependencies defines the rating lookups.
type ScoringDependencies interface {
	Rating(ds, achievement float64) (service.RatingResult, error)
	Breakpoints(ds float64) ([]scoring.Breakpoint, error)
}

// ScoringHandler answers single rating questions.
type ScoringHandler struct {
	deps ScoringDependencies
}

// NewScoringHandler creates a new scoring handler.
func NewScoringHandler(deps ScoringDependencies) *ScoringHandler {
	return &ScoringHandler{deps: deps}
}

// HandleRating handles GET /rating?ds=&achv= requests.
func (h *ScoringHandler) HandleRating(w http.ResponseWriter, r *http.Request) {
	const op = "api.rating"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	ds, err := floatParam(r, "ds")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	achv, err := floatParam(r, "achv")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.Rating(ds, achv)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type breakpointsResponse struct {
	DS          float64              `json:"ds"`
	Breakpoints []scoring.Breakpoint `json:"breakpoints"`
}

// HandleBreakpoints handles GET /breakpoints?ds= requests.
func (h *ScoringHandler) HandleBreakpoints(w http.ResponseWriter, r *http.Request) {
	const op = "api.breakpoints"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	ds, err := floatParam(r, "ds")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	points, err := h.deps.Breakpoints(ds)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, breakpointsResponse{DS: ds, Breakpoints: points})
}

func floatParam(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, &paramError{name: name}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &paramError{name: name, err: err}
	}
	return v, nil
}

type paramError struct {
	name string
	err  error
}

func (e *paramError) Error() string {
	if e.err == nil {
		return "missing " + e.name
	}
	return "invalid " + e.name
}

func (e *paramError) Unwrap() error { return e.err }

// CatalogDependencies defines the catalog admin operations.
type CatalogDependencies interface {
	ReloadCatalog(ctx context.Context) error
}

// CatalogHandler handles catalog administration.
type CatalogHandler struct {
	deps CatalogDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

type reloadResponse struct {
	Status string `json:"status"`
}

// HandleReload handles POST /catalog/reload requests.
func (h *CatalogHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	const op = "api.catalog_reload"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.ReloadCatalog(r.Context()); err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, reloadResponse{Status: "reloaded"})
}
