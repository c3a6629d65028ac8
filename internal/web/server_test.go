package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"llm-chat/internal/auth"
	"llm-chat/internal/history"
	"llm-chat/internal/llm"
	"llm-chat/internal/reaper"
	"llm-chat/internal/session"
	"llm-chat/internal/store"
)

type memRepo struct {
	st      store.Store
	loadErr error
}

func (m *memRepo) Load() (store.Store, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.st.Clone(), nil
}

func (m *memRepo) Save(st store.Store) error {
	m.st = st.Clone()
	return nil
}

type fakeSender struct {
	reply string
	err   error
}

func (f *fakeSender) Send(_ context.Context, sess *session.Session, prompt, _ string) (string, error) {
	sess.Buffer = append(sess.Buffer, llm.Message{Role: llm.RoleUser, Content: prompt})
	if f.err != nil {
		return "", f.err
	}
	sess.Buffer = append(sess.Buffer, llm.Message{Role: llm.RoleAssistant, Content: f.reply})
	return f.reply, nil
}

type fakeModels struct{}

func (fakeModels) Models(context.Context) []string { return []string{"llama3-8b-8192"} }
func (fakeModels) Status(context.Context) (bool, string) {
	return true, "API Connected - 1 models available"
}

func newTestServer(t *testing.T, repo *memRepo, sender Sender) (*Server, *session.Manager) {
	t.Helper()
	authSvc := auth.New(repo)
	hist := history.New(repo)
	mgr := session.NewManager(authSvc, hist, reaper.New(repo), 10)
	srv, err := New(mgr, hist, sender, fakeModels{}, "llama3-8b-8192", true)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv, mgr
}

func doRequest(t *testing.T, h http.Handler, method, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	t.Fatalf("no session cookie set")
	return nil
}

func TestIndexMintsGuest(t *testing.T) {
	repo := &memRepo{st: store.Store{}}
	srv, _ := newTestServer(t, repo, &fakeSender{reply: "ok"})
	router := srv.Router()

	w := doRequest(t, router, http.MethodGet, "/", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	c := sessionCookie(t, w)
	if !c.HttpOnly {
		t.Fatalf("session cookie must be HttpOnly")
	}
	if !strings.Contains(w.Body.String(), "Guest_") {
		t.Fatalf("page does not show guest identity")
	}

	// Second request with the cookie keeps the same identity.
	w2 := doRequest(t, router, http.MethodGet, "/", nil, c)
	if got := len(repo.st); got != 1 {
		t.Fatalf("repeat visit minted another guest: %d records", got)
	}
	if w2.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w2.Code)
	}
}

func TestLoginFailureInline(t *testing.T) {
	repo := &memRepo{st: store.Store{}}
	srv, _ := newTestServer(t, repo, &fakeSender{reply: "ok"})
	router := srv.Router()

	w := doRequest(t, router, http.MethodGet, "/", nil, nil)
	c := sessionCookie(t, w)

	form := url.Values{"email": {"nobody@x.com"}, "password": {"x"}}
	w = doRequest(t, router, http.MethodPost, "/login", form, c)
	if w.Code != http.StatusOK {
		t.Fatalf("auth failures must render inline, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "user not found") {
		t.Fatalf("missing inline failure message: %s", w.Body.String())
	}
}

func TestRegisterThenLogin(t *testing.T) {
	repo := &memRepo{st: store.Store{}}
	srv, _ := newTestServer(t, repo, &fakeSender{reply: "ok"})
	router := srv.Router()

	w := doRequest(t, router, http.MethodGet, "/", nil, nil)
	c := sessionCookie(t, w)

	form := url.Values{
		"email":            {"a@x.com"},
		"password":         {"secret1"},
		"password_confirm": {"secret1"},
	}
	w = doRequest(t, router, http.MethodPost, "/register", form, c)
	if !strings.Contains(w.Body.String(), "Registration successful!") {
		t.Fatalf("registration did not succeed: %s", w.Body.String())
	}

	login := url.Values{"email": {"a@x.com"}, "password": {"secret1"}}
	w = doRequest(t, router, http.MethodPost, "/login", login, c)
	if !strings.Contains(w.Body.String(), "Login successful!") {
		t.Fatalf("login did not succeed: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "a@x.com") {
		t.Fatalf("page does not show the signed-in identity")
	}
}

func TestChatFailureRendersInline(t *testing.T) {
	repo := &memRepo{st: store.Store{}}
	srv, mgr := newTestServer(t, repo, &fakeSender{err: errors.New("model call failed: 503")})
	router := srv.Router()

	w := doRequest(t, router, http.MethodGet, "/", nil, nil)
	c := sessionCookie(t, w)

	form := url.Values{"prompt": {"hello"}, "model": {"llama3-8b-8192"}}
	w = doRequest(t, router, http.MethodPost, "/chat", form, c)
	if w.Code != http.StatusOK {
		t.Fatalf("external failures must render inline, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "model call failed") {
		t.Fatalf("missing inline error: %s", w.Body.String())
	}

	// The submitted user turn stays in the working buffer for retry.
	sess, err := mgr.Ensure(c.Value)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if len(sess.Buffer) != 1 || sess.Buffer[0].Content != "hello" {
		t.Fatalf("buffer not preserved: %+v", sess.Buffer)
	}
}

func TestCorruptStoreIsFatal(t *testing.T) {
	repo := &memRepo{loadErr: &store.ParseError{Path: "users.json", Err: errors.New("bad json")}}
	srv, _ := newTestServer(t, repo, &fakeSender{reply: "ok"})

	w := doRequest(t, srv.Router(), http.MethodGet, "/", nil, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("corrupt store must fail the request, got %d", w.Code)
	}
}

func TestStatusEndpoint(t *testing.T) {
	repo := &memRepo{st: store.Store{}}
	srv, _ := newTestServer(t, repo, &fakeSender{reply: "ok"})

	w := doRequest(t, srv.Router(), http.MethodGet, "/api/status", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "API Connected") {
		t.Fatalf("unexpected status body: %s", w.Body.String())
	}
}
