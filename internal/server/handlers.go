package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/KaramelBytes/caproi-cli/internal/pipeline"
	"github.com/KaramelBytes/caproi-cli/internal/roi"
	"github.com/KaramelBytes/caproi-cli/internal/roster"
	"github.com/KaramelBytes/caproi-cli/internal/session"
)

// sessionSummary is the list view of a session.
type sessionSummary struct {
	ID        string `json:"id"`
	Roster    string `json:"roster"`
	Players   int    `json:"players"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "healthy",
		"service":  "caproi",
		"sessions": s.store.Len(),
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	list := s.store.List()
	out := make([]sessionSummary, 0, len(list))
	for _, sess := range list {
		sum := sessionSummary{
			ID:        sess.ID,
			CreatedAt: sess.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt: sess.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if sess.Result != nil {
			sum.Roster = sess.Result.Roster
			sum.Players = len(sess.Result.Entities)
		}
		out = append(out, sum)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	res, ok := s.scoreUpload(w, r)
	if !ok {
		return
	}
	sess := s.store.Create(res)
	s.metrics.SetActiveSessions(s.store.Len())
	s.log.Info().Str("session", sess.ID).Int("players", len(res.Entities)).Msg("session created")
	s.writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handlePutSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.Get(id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	res, ok := s.scoreUpload(w, r)
	if !ok {
		return
	}
	sess, err := s.store.Put(id, res)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(chi.URLParam(r, "id")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.metrics.SetActiveSessions(s.store.Len())
	w.WriteHeader(http.StatusNoContent)
}

// handleEntities serves the ROI ranking; order=desc (default) is best first.
func (s *Server) handleEntities(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	limit := 0
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	var out []roster.Entity
	switch strings.ToLower(strings.TrimSpace(q.Get("order"))) {
	case "", "desc":
		out = roi.Top(sess.Result.Entities, limit)
	case "asc":
		out = roi.Bottom(sess.Result.Entities, limit)
	default:
		s.writeError(w, http.StatusBadRequest, "order must be asc or desc")
		return
	}
	if out == nil {
		out = []roster.Entity{}
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories": sess.Result.Views.Categories,
		"spend_pct":  sess.Result.Metrics.CategorySpend,
	})
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	audit := sess.Result.Views.Audit
	if audit == nil {
		audit = []roi.Assessment{}
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"thresholds": sess.Result.Thresholds,
		"audit":      audit,
	})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, err)
		return sess, false
	}
	if sess.Result == nil {
		sess.Result = &pipeline.Result{}
	}
	return sess, true
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("session store: %v", err))
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
