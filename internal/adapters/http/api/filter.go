package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	service "github.com/okian/maifilter/internal/app"
)

const maxRequestBytes = 64 << 10

// filterRequest is the body of POST /filter50. Args is a whitespace separated
// alternative to Tokens, as typed in chat.
type filterRequest struct {
	Tokens   []string `json:"tokens"`
	Args     string   `json:"args"`
	QQ       int64    `json:"qq"`
	Username string   `json:"username"`
}

func (f filterRequest) toService() service.Request {
	tokens := append([]string(nil), f.Tokens...)
	tokens = append(tokens, strings.Fields(f.Args)...)
	return service.Request{Tokens: tokens, QQ: f.QQ, Username: f.Username}
}

// FilterDependencies defines what the filter handler needs.
type FilterDependencies interface {
	Filter(ctx context.Context, req service.Request) (*service.Response, error)
}

// FilterHandler handles filter_50 requests.
type FilterHandler struct {
	deps FilterDependencies
}

// NewFilterHandler creates a new filter handler.
func NewFilterHandler(deps FilterDependencies) *FilterHandler {
	return &FilterHandler{deps: deps}
}

// HandleFilter handles POST /filter50 requests.
func (h *FilterHandler) HandleFilter(w http.ResponseWriter, r *http.Request) {
	const op = "api.filter50"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req filterRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	resp, err := h.deps.Filter(r.Context(), req.toService())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type helpResponse struct {
	Help string `json:"help"`
}

// HandleHelp handles GET /help requests.
func (h *FilterHandler) HandleHelp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, helpResponse{Help: service.HelpText})
}
