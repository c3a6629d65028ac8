package web

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"llm-chat/internal/chat"
	"llm-chat/internal/llm"
	"llm-chat/internal/session"
	"llm-chat/internal/store"
)

// sidebarHistory is how many persisted exchanges the sidebar shows.
const sidebarHistory = 5

type historyView struct {
	Prompt string
	Model  string
	Date   string
}

type pageData struct {
	User          string
	IsGuest       bool
	ShowLogin     bool
	Authenticated bool
	Models        []string
	SelectedModel string
	LastUser      string
	LastReply     template.HTML
	History       []historyView
	StatusOK      bool
	StatusDetail  string
	Error         string
	Notice        string
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, sess *session.Session, errMsg, notice string) {
	ctx := r.Context()
	ok, detail := s.models.Status(ctx)

	recent, err := s.hist.Recent(sess.Identifier, sidebarHistory)
	if err != nil {
		s.fail(w, err)
		return
	}

	selected := r.FormValue("model")
	if selected == "" {
		selected = s.defaultModel
	}

	data := pageData{
		User:          sess.Identifier,
		IsGuest:       sess.IsGuest(),
		ShowLogin:     sess.State == session.StateAuthenticating,
		Authenticated: sess.State == session.StateAuthenticated,
		Models:        s.models.Models(ctx),
		SelectedModel: selected,
		History:       historyViews(recent),
		StatusOK:      ok,
		StatusDetail:  detail,
		Error:         errMsg,
		Notice:        notice,
	}

	// Show only the latest exchange of the working buffer.
	if n := len(sess.Buffer); n >= 2 &&
		sess.Buffer[n-2].Role == llm.RoleUser && sess.Buffer[n-1].Role == llm.RoleAssistant {
		data.LastUser = sess.Buffer[n-2].Content
		data.LastReply = template.HTML(chat.FormatThinking(sess.Buffer[n-1].Content))
	}

	if err := s.tmpl.ExecuteTemplate(w, "index.html.tmpl", data); err != nil {
		s.fail(w, err)
	}
}

func historyViews(recent []store.Exchange) []historyView {
	out := make([]historyView, 0, len(recent))
	// Newest first in the sidebar.
	for i := len(recent) - 1; i >= 0; i-- {
		ex := recent[i]
		out = append(out, historyView{
			Prompt: truncate(ex.Prompt, 50),
			Model:  ex.Model,
			Date:   ex.Timestamp.Format("2006-01-02 15:04:05"),
		})
	}
	return out
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.render(w, r, sess, "", "")
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	prompt := strings.TrimSpace(r.FormValue("prompt"))
	if prompt == "" {
		s.render(w, r, sess, "", "")
		return
	}
	model := r.FormValue("model")
	if model == "" {
		model = s.defaultModel
	}
	if _, err := s.sender.Send(r.Context(), sess, prompt, model); err != nil {
		s.render(w, r, sess, err.Error(), "")
		return
	}
	s.render(w, r, sess, "", "")
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	sess.ClearBuffer()
	s.render(w, r, sess, "", "")
}

func (s *Server) handleShowLogin(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.sessions.BeginSignIn(sess)
	s.render(w, r, sess, "", "")
}

func (s *Server) handleCancelLogin(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.sessions.CancelSignIn(sess)
	s.render(w, r, sess, "", "")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	identifier := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if identifier == "" || password == "" {
		s.render(w, r, sess, "email and password are required", "")
		return
	}
	if err := s.sessions.SignIn(sess, identifier, password); err != nil {
		var pe *store.ParseError
		if errors.As(err, &pe) {
			s.fail(w, err)
			return
		}
		s.render(w, r, sess, err.Error(), "")
		return
	}
	s.render(w, r, sess, "", "Login successful!")
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	identifier := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	confirm := r.FormValue("password_confirm")
	if err := s.sessions.Register(sess, identifier, password, confirm); err != nil {
		var pe *store.ParseError
		if errors.As(err, &pe) {
			s.fail(w, err)
			return
		}
		s.render(w, r, sess, err.Error(), "")
		return
	}
	s.render(w, r, sess, "", "Registration successful!")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	fresh, err := s.sessions.SignOut(sess)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.setSessionCookie(w, fresh.Token)
	s.render(w, r, fresh, "", "")
}
