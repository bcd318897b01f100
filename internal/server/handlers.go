package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"salesdesk/internal/orchestration"
	"salesdesk/internal/shell"
	"salesdesk/pkg/salestypes"
)

const maxBodyBytes = 64 << 10

type pageData struct {
	Title       string
	Placeholder string
	Messages    []salestypes.Message
	Error       string
}

type messageRequest struct {
	Message string `json:"message"`
}

type messageResponse struct {
	Answer   string               `json:"answer"`
	Messages []salestypes.Message `json:"messages"`
}

type messagesResponse struct {
	Messages []salestypes.Message `json:"messages"`
}

type sessionResponse struct {
	ID string `json:"id"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	_, pipeline := s.sessionFromCookie(w, r)
	s.renderPage(w, http.StatusOK, pipeline, "")
}

func (s *Server) handleChatForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	_, pipeline := s.sessionFromCookie(w, r)

	if _, err := s.runTurn(r, pipeline, r.PostForm.Get("message")); err != nil {
		status, msg := turnErrorStatus(err)
		s.renderPage(w, status, pipeline, msg)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	id, _ := s.sessions.Create()
	writeJSON(w, http.StatusCreated, sessionResponse{ID: id})
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	pipeline, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, messagesResponse{Messages: pipeline.Store().All()})
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	pipeline, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	var req messageRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := s.runTurn(r, pipeline, req.Message)
	if err != nil {
		status, msg := turnErrorStatus(err)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Answer:   answer,
		Messages: pipeline.Store().All(),
	})
}

// runTurn executes one non-waiting turn and records its outcome.
func (s *Server) runTurn(r *http.Request, pipeline *orchestration.Pipeline, question string) (string, error) {
	start := time.Now()
	answer, err := pipeline.TryHandleTurn(r.Context(), question)

	switch {
	case err == nil:
		turnsTotal.WithLabelValues(outcomeOK).Inc()
		turnDuration.Observe(time.Since(start).Seconds())
	case errors.Is(err, orchestration.ErrTurnInProgress):
		turnsTotal.WithLabelValues(outcomeBusy).Inc()
	case errors.Is(err, orchestration.ErrEmptyQuestion):
		turnsTotal.WithLabelValues(outcomeEmpty).Inc()
	default:
		turnsTotal.WithLabelValues(outcomeError).Inc()
		s.log.Error("turn failed", "error", err)
	}
	return answer, err
}

// turnErrorStatus maps a pipeline error to an HTTP status and a user-facing message.
func turnErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, orchestration.ErrEmptyQuestion):
		return http.StatusBadRequest, "message must not be empty"
	case errors.Is(err, orchestration.ErrTurnInProgress):
		return http.StatusConflict, "a reply is already being generated for this session"
	default:
		return http.StatusBadGateway, "the assistant could not answer: " + err.Error()
	}
}

// sessionFromCookie resolves the browser session, issuing a new cookie when needed.
func (s *Server) sessionFromCookie(w http.ResponseWriter, r *http.Request) (string, *orchestration.Pipeline) {
	var current string
	if c, err := r.Cookie(SessionCookie); err == nil {
		current = c.Value
	}

	id, pipeline := s.sessions.GetOrCreate(current)
	if id != current {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return id, pipeline
}

func (s *Server) renderPage(w http.ResponseWriter, status int, pipeline *orchestration.Pipeline, errMsg string) {
	data := pageData{
		Title:       shell.Title,
		Placeholder: shell.PromptText,
		Messages:    pipeline.Store().All(),
		Error:       errMsg,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.page.Execute(w, data); err != nil {
		s.log.Error("failed to render page", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
