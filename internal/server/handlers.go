package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/archlayout/pkg/buildinfo"
	"github.com/matzehuels/archlayout/pkg/classify"
	"github.com/matzehuels/archlayout/pkg/errors"
	"github.com/matzehuels/archlayout/pkg/graph"
	"github.com/matzehuels/archlayout/pkg/history"
	"github.com/matzehuels/archlayout/pkg/pipeline"
	"github.com/matzehuels/archlayout/pkg/quality"
)

// HeaderCache reports whether a layout was served from the cache.
const HeaderCache = "X-Cache"

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

type classifyResponse struct {
	Nodes        []graph.Node           `json:"nodes"`
	Explanations []classify.Explanation `json:"explanations,omitempty"`
}

type statsResponse struct {
	history.Stats
	Layouting bool `json:"layouting"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := string(errors.GetCode(err))
	msg := errors.UserMessage(err)
	if stderrors.Is(err, errBodyTooLarge) {
		status = http.StatusRequestEntityTooLarge
		code = string(errors.ErrCodeInvalidInput)
	}
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err, "request_id", RequestIDFrom(r.Context()))
		if errors.GetCode(err) == "" {
			msg = "internal error"
		}
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg, RequestID: RequestIDFrom(r.Context())})
}

func cacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set(HeaderCache, "hit")
	} else {
		w.Header().Set(HeaderCache, "miss")
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, hit, err := s.runner.Layout(r.Context(), req.Graph(), pipeline.Options{Layout: req.Options, Refresh: req.Refresh})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cacheHeader(w, hit)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGrouped(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	out, hit, err := s.runner.Grouped(r.Context(), req.Graph(), pipeline.Options{Layout: req.Options, Refresh: req.Refresh}, nil)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cacheHeader(w, hit)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req graphRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := classifyResponse{Nodes: s.runner.Classifier.Classify(req.Nodes, req.Edges)}
	if r.URL.Query().Get("explain") == "true" {
		resp.Explanations = s.runner.Classifier.ExplainAll(req.Nodes, req.Edges)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleContainers(w http.ResponseWriter, r *http.Request) {
	var req containersRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	containers := s.runner.Builder.Build(req.Nodes, req.Previous)
	writeJSON(w, http.StatusOK, map[string]any{"containers": containers})
}

func (s *Server) handleQuality(w http.ResponseWriter, r *http.Request) {
	var req qualityRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quality.Breakdown(req.Nodes))
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	e := s.runner.Engine
	writeJSON(w, http.StatusOK, statsResponse{Stats: e.Stats(), Layouting: e.IsLayouting()})
}

func (s *Server) handleResetStats(w http.ResponseWriter, _ *http.Request) {
	s.runner.Engine.ResetStats()
	w.WriteHeader(http.StatusNoContent)
}
