package web

import (
	"errors"
	"net/http"

	"github.com/Joseda-hg/mindtask/internal/model"
	"github.com/Joseda-hg/mindtask/internal/query"
)

var errUnknownScope = errors.New("scope must be notes or tasks")

type viewRequest struct {
	Name  string     `json:"name"  validate:"required,max=100"`
	Scope string     `json:"scope" validate:"oneof=notes tasks"`
	Spec  query.Spec `json:"spec"`
}

func (s *Server) listViewsHandler(w http.ResponseWriter, r *http.Request) {
	scope := model.Scope(queryValues(r.URL.Query(), "scope"))
	views, err := s.store.ListViews(r.Context(), scope)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, views)
}

func (s *Server) saveViewHandler(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	view, err := s.store.SaveView(r.Context(), model.View{Name: req.Name, Scope: model.Scope(req.Scope), Spec: req.Spec})
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, view)
}

func (s *Server) deleteViewHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err := s.store.DeleteView(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// searchScope defaults to notes, where the search bar originally lived.
func searchScope(r *http.Request) (model.Scope, bool) {
	switch scope := model.Scope(queryValues(r.URL.Query(), "scope")); scope {
	case "", model.ScopeNotes:
		return model.ScopeNotes, true
	case model.ScopeTasks:
		return model.ScopeTasks, true
	default:
		return "", false
	}
}

func (s *Server) recentSearchesHandler(w http.ResponseWriter, r *http.Request) {
	scope, ok := searchScope(r)
	if !ok {
		writeError(w, http.StatusBadRequest, errUnknownScope)
		return
	}
	searches, err := s.store.RecentSearches(r.Context(), scope)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, searches)
}

func (s *Server) clearSearchesHandler(w http.ResponseWriter, r *http.Request) {
	scope, ok := searchScope(r)
	if !ok {
		writeError(w, http.StatusBadRequest, errUnknownScope)
		return
	}
	if err := s.store.ClearRecentSearches(r.Context(), scope); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
