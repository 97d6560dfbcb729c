package api

import (
	"net/http"
	"strings"

	"verseline/internal/poetry"
	"verseline/internal/theme"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := HealthResponse{Status: "ok"}
	if s.workflow != nil {
		summary := s.workflow.Status(r.Context())
		ready, checks := s.workflow.Healthy(r.Context())
		resp.Running = summary.Running
		resp.Workers = summary.Workers
		resp.Stages = fromStageHealth(checks)
		if !ready {
			resp.Status = "degraded"
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleThemes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	themes := theme.All()
	views := make([]ThemeView, 0, len(themes))
	for _, t := range themes {
		views = append(views, FromTheme(t))
	}
	s.writeJSON(w, http.StatusOK, map[string][]ThemeView{"themes": views})
}

func (s *Server) handleRandomPoem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var poem poetry.Poem
	if key := strings.TrimSpace(r.URL.Query().Get("theme")); key != "" {
		t, ok := theme.Get(key)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "unknown theme: "+key)
			return
		}
		poem = s.catalog.ForThemes(t.PoetryThemes, s.cfg.Poetry.MinLines, s.cfg.Poetry.MaxLines)
	} else {
		poem = s.catalog.Random()
	}

	s.writeJSON(w, http.StatusOK, PoemResponse{
		Title:  poem.Title,
		Author: poem.Author,
		Lines:  poem.Lines,
		Themes: poem.Themes,
	})
}
