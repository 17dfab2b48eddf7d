package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"journal/internal/config"
	"journal/internal/store"
	"journal/internal/things"
)

type testServer struct {
	srv     *Server
	store   *store.Store
	handler http.Handler
	cookies []*http.Cookie
}

func newTestServer(t *testing.T, cfg config.Config) *testServer {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	st, err := store.Open(ctx, store.Options{
		DSN:         filepath.Join(t.TempDir(), "journal.sqlite"),
		BusyTimeout: 2 * time.Second,
		LockTimeout: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	if cfg.PerPage == 0 {
		cfg.PerPage = 2
	}
	srv, err := NewServer(cfg, st)
	require.NoError(t, err)
	srv.now = func() time.Time { return time.Date(2020, time.March, 15, 12, 0, 0, 0, time.UTC) }
	return &testServer{srv: srv, store: st, handler: srv.Handler()}
}

// do sends the request with the cookies collected so far and keeps any new ones.
func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range ts.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		ts.setCookie(c)
	}
	return rec
}

func (ts *testServer) setCookie(c *http.Cookie) {
	for i, existing := range ts.cookies {
		if existing.Name == c.Name {
			if c.MaxAge < 0 {
				ts.cookies = append(ts.cookies[:i], ts.cookies[i+1:]...)
			} else {
				ts.cookies[i] = c
			}
			return
		}
	}
	if c.MaxAge >= 0 {
		ts.cookies = append(ts.cookies, c)
	}
}

func (ts *testServer) get(path string) *httptest.ResponseRecorder {
	return ts.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (ts *testServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return ts.do(req)
}

func (ts *testServer) create(t *testing.T, form things.Form) things.Thing {
	t.Helper()
	thing, err := form.Thing()
	require.NoError(t, err)
	created, err := ts.store.Create(context.Background(), thing)
	require.NoError(t, err)
	return created
}
