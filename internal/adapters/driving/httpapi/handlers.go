package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/custodia-labs/mediasync/internal/core/domain"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type healthResponse struct {
	Status string `json:"status"`
}

// runResponse is returned by the run endpoints.
type runResponse struct {
	Handle string `json:"handle"`
	State  string `json:"state"`
}

// resultView is the JSON form of a terminal run result.
type resultView struct {
	Handle    string    `json:"handle"`
	Outcome   string    `json:"outcome"`
	Reason    string    `json:"reason,omitempty"`
	Items     int       `json:"items"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

type stateResponse struct {
	State      string      `json:"state"`
	Handle     string      `json:"handle,omitempty"`
	LastResult *resultView `json:"last_result,omitempty"`
	NextRun    *time.Time  `json:"next_run,omitempty"`
}

type historyResponse struct {
	Results []resultView `json:"results"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Handle string `json:"active_handle,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	handle, err := s.scheduler.RequestRun(r.Context())
	if errors.Is(err, domain.ErrBusy) {
		s.writeJSON(w, http.StatusConflict, errorResponse{
			Error:  err.Error(),
			Handle: s.scheduler.ActiveHandle().String(),
		})
		return
	}
	if err != nil {
		s.logger.Error("request run", zap.Error(err))
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	s.writeJSON(w, http.StatusAccepted, runResponse{
		Handle: handle.String(),
		State:  s.scheduler.CurrentState().String(),
	})
}

func (s *Server) handleStopRun(w http.ResponseWriter, r *http.Request) {
	handle := domain.RunHandle(chi.URLParam(r, "handle"))

	if err := s.scheduler.RequestStop(handle); err != nil {
		if errors.Is(err, domain.ErrStaleHandle) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusAccepted, runResponse{
		Handle: handle.String(),
		State:  s.scheduler.CurrentState().String(),
	})
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	resp := stateResponse{
		State:  s.scheduler.CurrentState().String(),
		Handle: s.scheduler.ActiveHandle().String(),
	}
	if last, ok := s.scheduler.LastResult(); ok {
		view := newResultView(last)
		resp.LastResult = &view
	}

	if s.status != nil {
		st, err := s.status.Status(r.Context(), 0)
		if err == nil && st.Task != nil && st.Task.Enabled {
			next := st.Task.NextRun
			resp.NextRun = &next
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.status == nil {
		s.writeJSON(w, http.StatusOK, historyResponse{Results: []resultView{}})
		return
	}

	limit := parseIntQuery(r, "limit", defaultHistoryLimit)
	if limit <= 0 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}

	st, err := s.status.Status(r.Context(), limit)
	if err != nil {
		s.logger.Error("load history", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	resp := historyResponse{Results: make([]resultView, 0, len(st.History))}
	for _, tr := range st.History {
		resp.Results = append(resp.Results, resultView{
			Handle:    tr.RunHandle.String(),
			Outcome:   string(tr.Outcome),
			Reason:    tr.Error,
			Items:     tr.ItemsProcessed,
			StartedAt: tr.StartedAt,
			EndedAt:   tr.EndedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func newResultView(r domain.RunResult) resultView {
	return resultView{
		Handle:    r.Handle.String(),
		Outcome:   string(r.Outcome),
		Reason:    r.Reason,
		Items:     r.Items,
		StartedAt: r.StartedAt,
		EndedAt:   r.EndedAt,
	}
}

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
