package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"journal/internal/things"
)

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, data ViewData) {
	if user, ok := CurrentUser(r.Context()); ok {
		data.User = user.Name
	}
	data.AuthEnabled = s.auth != nil
	data.Toasts = s.toasts.Take(toastKey(r))
	data.Status = status
	s.views.RenderPageStatus(w, status, data)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.render(w, r, status, ViewData{
		Title:           http.StatusText(status),
		ContentTemplate: "error",
		Error:           message,
	})
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	s.renderError(w, r, http.StatusInternalServerError, "Something went wrong.")
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusNotFound, "Page not found.")
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// loadThing writes the response itself when ok is false.
func (s *Server) loadThing(w http.ResponseWriter, r *http.Request) (things.Thing, bool) {
	id, ok := pathID(r)
	if !ok {
		s.handleNotFound(w, r)
		return things.Thing{}, false
	}
	t, err := s.repo.Get(r.Context(), id)
	if errors.Is(err, things.ErrNotFound) {
		s.handleNotFound(w, r)
		return things.Thing{}, false
	}
	if err != nil {
		s.serverError(w, r, err)
		return things.Thing{}, false
	}
	return t, true
}

func (s *Server) cards(list []things.Thing) ([]ThingCard, error) {
	cards := make([]ThingCard, 0, len(list))
	for _, t := range list {
		html, err := renderMarkdown(t.Text)
		if err != nil {
			return nil, fmt.Errorf("render thing %d: %w", t.ID, err)
		}
		cards = append(cards, ThingCard{Thing: t, RenderedHTML: html})
	}
	return cards, nil
}

func (s *Server) calendar(r *http.Request) (CalendarMonth, error) {
	now := s.now()
	month := parseMonth(r.URL.Query().Get("month"), now)
	from, to := monthGrid(month)
	dates, err := s.repo.Dates(r.Context(), from, to)
	if err != nil {
		return CalendarMonth{}, err
	}
	return buildCalendarMonth(now, month, dates, r.URL.Path), nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/pages/1", http.StatusSeeOther)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.PathValue("page"))
	if err != nil || page < 1 {
		s.handleNotFound(w, r)
		return
	}
	result, err := s.repo.Page(r.Context(), page, s.cfg.PerPage)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if page > result.Pages() || (page > 1 && len(result.Items) == 0) {
		s.handleNotFound(w, r)
		return
	}
	cards, err := s.cards(result.Items)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	cal, err := s.calendar(r)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, ViewData{
		Title:           fmt.Sprintf("Page %d", page),
		ContentTemplate: "list",
		Cards:           cards,
		Page:            result,
		Calendar:        cal,
		SearchForm:      searchFormFrom(url.Values{}),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	search, err := things.ParseSearch(query)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	results, err := s.repo.Search(r.Context(), search)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	cards, err := s.cards(results)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	slog.Debug("search", "filter", search.Describe(), "results", len(results))
	s.render(w, r, http.StatusOK, ViewData{
		Title:           "Search",
		ContentTemplate: "results",
		Cards:           cards,
		SearchForm:      searchFormFrom(query),
		SearchSummary:   search.Describe(),
		Searched:        !search.IsEmpty(),
	})
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	t, ok := s.loadThing(w, r)
	if !ok {
		return
	}
	html, err := renderMarkdown(t.Text)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, ViewData{
		Title:           t.Label(),
		ContentTemplate: "show",
		Thing:           t,
		RenderedHTML:    html,
	})
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, title, action string, form things.Form, message string) {
	s.render(w, r, status, ViewData{
		Title:           title,
		ContentTemplate: "form",
		Form:            form,
		FormAction:      action,
		Error:           message,
	})
}

// formError maps validation and constraint failures to a re-rendered form.
func formError(err error) (int, string, bool) {
	switch {
	case errors.Is(err, things.ErrInvalidDate):
		return http.StatusBadRequest, "Date must look like 2006-01-02.", true
	case errors.Is(err, things.ErrDateTaken):
		return http.StatusConflict, "Another entry already uses that date.", true
	}
	return 0, "", false
}

func (s *Server) handleAddForm(w http.ResponseWriter, r *http.Request) {
	s.renderForm(w, r, http.StatusOK, "Add", "/add", things.Form{}, "")
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	form := things.FormFromValues(r.PostForm)
	t, err := form.Thing()
	if err == nil {
		t, err = s.repo.Create(r.Context(), t)
	}
	if err != nil {
		if status, message, ok := formError(err); ok {
			s.renderForm(w, r, status, "Add", "/add", form, message)
			return
		}
		s.serverError(w, r, err)
		return
	}
	slog.Info("thing created", "id", t.ID, "tags", len(t.Tags))
	s.addToast(r, "success", fmt.Sprintf("Added %q.", t.Label()))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	t, ok := s.loadThing(w, r)
	if !ok {
		return
	}
	s.renderForm(w, r, http.StatusOK, "Edit", fmt.Sprintf("/edit/%d", t.ID), things.FormFromThing(t), "")
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	t, ok := s.loadThing(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	form := things.FormFromValues(r.PostForm)
	action := fmt.Sprintf("/edit/%d", t.ID)
	err := form.Apply(&t)
	if err == nil {
		err = s.repo.Update(r.Context(), t)
	}
	if errors.Is(err, things.ErrNotFound) {
		s.handleNotFound(w, r)
		return
	}
	if err != nil {
		if status, message, ok := formError(err); ok {
			s.renderForm(w, r, status, "Edit", action, form, message)
			return
		}
		s.serverError(w, r, err)
		return
	}
	slog.Info("thing updated", "id", t.ID, "tags", len(t.Tags))
	s.addToast(r, "success", fmt.Sprintf("Saved %q.", t.Label()))
	http.Redirect(w, r, fmt.Sprintf("/%d", t.ID), http.StatusSeeOther)
}

func (s *Server) handleDeleteForm(w http.ResponseWriter, r *http.Request) {
	t, ok := s.loadThing(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, ViewData{
		Title:           "Delete",
		ContentTemplate: "delete",
		Thing:           t,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	t, ok := s.loadThing(w, r)
	if !ok {
		return
	}
	err := s.repo.Delete(r.Context(), t.ID)
	if errors.Is(err, things.ErrNotFound) {
		s.handleNotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	slog.Info("thing deleted", "id", t.ID)
	http.Redirect(w, r, "/confirm?"+url.Values{"title": {t.Label()}}.Encode(), http.StatusSeeOther)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, ViewData{
		Title:           "Deleted",
		ContentTemplate: "confirm",
		DeletedTitle:    r.URL.Query().Get("title"),
	})
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.repo.Tags(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, ViewData{
		Title:           "Tags",
		ContentTemplate: "tags",
		Tags:            tags,
	})
}
