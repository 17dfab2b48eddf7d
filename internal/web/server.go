package web

import (
	"context"
	"net/http"
	"time"

	"journal/internal/config"
	"journal/internal/store"
	"journal/internal/things"
)

// Repository is the persistence surface the handlers need.
type Repository interface {
	Create(ctx context.Context, t things.Thing) (things.Thing, error)
	Get(ctx context.Context, id int64) (things.Thing, error)
	Update(ctx context.Context, t things.Thing) error
	Delete(ctx context.Context, id int64) error
	Page(ctx context.Context, page, perPage int) (store.PageResult, error)
	Search(ctx context.Context, q things.Search) ([]things.Thing, error)
	Dates(ctx context.Context, from, to things.Date) ([]things.Date, error)
	Tags(ctx context.Context) ([]store.TagCount, error)
}

type Server struct {
	cfg    config.Config
	repo   Repository
	mux    *http.ServeMux
	views  *Templates
	auth   *Auth
	toasts *toastStore
	now    func() time.Time
}

func NewServer(cfg config.Config, repo Repository) (*Server, error) {
	auth, err := newAuth(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = 10
	}
	s := &Server{
		cfg:    cfg,
		repo:   repo,
		mux:    http.NewServeMux(),
		views:  MustParseTemplates(),
		auth:   auth,
		toasts: newToastStore(),
		now:    time.Now,
	}
	s.routes()
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return logRequests(s.recoverPanics(withVisitor(s.requireLogin(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /pages/{page}", s.handlePage)
	s.mux.HandleFunc("GET /pages/search", s.handleSearch)
	s.mux.HandleFunc("GET /tags", s.handleTags)
	s.mux.HandleFunc("GET /confirm", s.handleConfirm)
	s.mux.HandleFunc("GET /add", s.handleAddForm)
	s.mux.HandleFunc("POST /add", s.handleAdd)
	s.mux.HandleFunc("GET /edit/{id}", s.handleEditForm)
	s.mux.HandleFunc("POST /edit/{id}", s.handleEdit)
	s.mux.HandleFunc("GET /delete/{id}", s.handleDeleteForm)
	s.mux.HandleFunc("POST /delete/{id}", s.handleDelete)
	s.mux.HandleFunc("GET /login", s.handleLoginForm)
	s.mux.HandleFunc("POST /login", s.handleLogin)
	s.mux.HandleFunc("POST /logout", s.handleLogout)
	s.mux.HandleFunc("GET /{id}", s.handleShow)
	s.mux.HandleFunc("/", s.handleNotFound)
}
