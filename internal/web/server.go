// Package web is the browser surface: one page, form-post interactions,
// and a session cookie binding the browser to its server-side session.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"llm-chat/internal/history"
	"llm-chat/internal/llm"
	"llm-chat/internal/session"
	"llm-chat/internal/store"
)

const sessionCookieName = "chat_session"

//go:embed templates
var templatesFS embed.FS

// Sender is the chat orchestrator seam; see chat.Orchestrator.
type Sender interface {
	Send(ctx context.Context, sess *session.Session, prompt, model string) (string, error)
}

type Server struct {
	sessions     *session.Manager
	hist         *history.Recorder
	sender       Sender
	models       llm.ModelSource
	defaultModel string
	dev          bool
	tmpl         *template.Template
}

func New(sessions *session.Manager, hist *history.Recorder, sender Sender, models llm.ModelSource, defaultModel string, dev bool) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	return &Server{
		sessions:     sessions,
		hist:         hist,
		sender:       sender,
		models:       models,
		defaultModel: defaultModel,
		dev:          dev,
		tmpl:         tmpl,
	}, nil
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.withSession(s.handleIndex))
	r.Post("/chat", s.withSession(s.handleChat))
	r.Post("/chat/clear", s.withSession(s.handleClear))
	r.Post("/login/show", s.withSession(s.handleShowLogin))
	r.Post("/login/cancel", s.withSession(s.handleCancelLogin))
	r.Post("/login", s.withSession(s.handleLogin))
	r.Post("/register", s.withSession(s.handleRegister))
	r.Post("/logout", s.withSession(s.handleLogout))

	r.Get("/api/models", s.handleModels)
	r.Get("/api/status", s.handleStatus)
	return r
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session)

// withSession resolves the browser's session from the cookie, minting a
// guest identity on first contact, and counts the interaction for the
// sampled guest cleanup.
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var token string
		if c, err := r.Cookie(sessionCookieName); err == nil {
			token = c.Value
		}
		sess, err := s.sessions.Ensure(token)
		if err != nil {
			s.fail(w, err)
			return
		}
		if sess.Token != token {
			s.setSessionCookie(w, sess.Token)
		}
		s.sessions.Touch(sess)
		next(w, r, sess)
	}
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !s.dev,
	})
}

// fail reports errors that no inline message can express, notably a corrupt
// backing document.
func (s *Server) fail(w http.ResponseWriter, err error) {
	var pe *store.ParseError
	if errors.As(err, &pe) {
		log.Printf("user store is corrupt: %v", err)
		http.Error(w, "user store is corrupt; manual repair required", http.StatusInternalServerError)
		return
	}
	log.Printf("internal error: %v", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"models": s.models.Models(r.Context()),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ok, detail := s.models.Status(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":     ok,
		"status": detail,
	})
}
