package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bellavista/menu-api/pkg/menu"
)

// Admin write handlers. Each decodes the entity, validates the little that
// matters, and hands it to the repository; the menu version bump happens
// inside the repository, invisibly to these handlers.

func decodeBody[T any](w http.ResponseWriter, r *http.Request, s *Server) (T, bool) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return v, false
	}
	return v, true
}

func (s *Server) handleSaveItem(w http.ResponseWriter, r *http.Request) {
	item, ok := decodeBody[menu.Item](w, r, s)
	if !ok {
		return
	}
	if id := chi.URLParam(r, "id"); id != "" {
		item.ID = id
	}
	if item.Name == "" {
		s.writeError(w, http.StatusBadRequest, "item name is required")
		return
	}
	if item.Price < 0 {
		s.writeError(w, http.StatusBadRequest, "item price must not be negative")
		return
	}

	saved, err := s.repo.SaveItem(r.Context(), item)
	if err != nil {
		s.logger.Error().Err(err).Msg("Item write failed")
		s.writeError(w, http.StatusInternalServerError, "item write failed")
		return
	}
	s.writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	s.deleteEntity(w, r, s.repo.DeleteItem)
}

func (s *Server) handleSaveCategory(w http.ResponseWriter, r *http.Request) {
	c, ok := decodeBody[menu.Category](w, r, s)
	if !ok {
		return
	}
	if id := chi.URLParam(r, "id"); id != "" {
		c.ID = id
	}
	if c.Name == "" {
		s.writeError(w, http.StatusBadRequest, "category name is required")
		return
	}

	saved, err := s.repo.SaveCategory(r.Context(), c)
	if err != nil {
		s.logger.Error().Err(err).Msg("Category write failed")
		s.writeError(w, http.StatusInternalServerError, "category write failed")
		return
	}
	s.writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	s.deleteEntity(w, r, s.repo.DeleteCategory)
}

func (s *Server) handleSaveModifierGroup(w http.ResponseWriter, r *http.Request) {
	g, ok := decodeBody[menu.ModifierGroup](w, r, s)
	if !ok {
		return
	}
	if id := chi.URLParam(r, "id"); id != "" {
		g.ID = id
	}
	if g.Name == "" {
		s.writeError(w, http.StatusBadRequest, "modifier group name is required")
		return
	}
	if g.MaxSelect > 0 && g.MinSelect > g.MaxSelect {
		s.writeError(w, http.StatusBadRequest, "min_select exceeds max_select")
		return
	}

	saved, err := s.repo.SaveModifierGroup(r.Context(), g)
	if err != nil {
		s.logger.Error().Err(err).Msg("Modifier group write failed")
		s.writeError(w, http.StatusInternalServerError, "modifier group write failed")
		return
	}
	s.writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteModifierGroup(w http.ResponseWriter, r *http.Request) {
	s.deleteEntity(w, r, s.repo.DeleteModifierGroup)
}

func (s *Server) handleSaveModifier(w http.ResponseWriter, r *http.Request) {
	m, ok := decodeBody[menu.Modifier](w, r, s)
	if !ok {
		return
	}
	if id := chi.URLParam(r, "id"); id != "" {
		m.ID = id
	}
	if m.Name == "" {
		s.writeError(w, http.StatusBadRequest, "modifier name is required")
		return
	}
	if m.GroupID == "" {
		s.writeError(w, http.StatusBadRequest, "modifier group_id is required")
		return
	}

	saved, err := s.repo.SaveModifier(r.Context(), m)
	if err != nil {
		s.logger.Error().Err(err).Msg("Modifier write failed")
		s.writeError(w, http.StatusInternalServerError, "modifier write failed")
		return
	}
	s.writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteModifier(w http.ResponseWriter, r *http.Request) {
	s.deleteEntity(w, r, s.repo.DeleteModifier)
}

func (s *Server) handleSaveAnnouncement(w http.ResponseWriter, r *http.Request) {
	a, ok := decodeBody[menu.Announcement](w, r, s)
	if !ok {
		return
	}
	if id := chi.URLParam(r, "id"); id != "" {
		a.ID = id
	}
	if a.Title == "" {
		s.writeError(w, http.StatusBadRequest, "announcement title is required")
		return
	}

	saved, err := s.repo.SaveAnnouncement(r.Context(), a)
	if err != nil {
		s.logger.Error().Err(err).Msg("Announcement write failed")
		s.writeError(w, http.StatusInternalServerError, "announcement write failed")
		return
	}
	s.writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	s.deleteEntity(w, r, s.repo.DeleteAnnouncement)
}

// deleteEntity runs the shared delete flow for an entity kind.
func (s *Server) deleteEntity(w http.ResponseWriter, r *http.Request, del func(context.Context, string) error) {
	id := chi.URLParam(r, "id")
	if id == "" {
		s.writeError(w, http.StatusBadRequest, "missing id")
		return
	}
	if err := del(r.Context(), id); err != nil {
		s.logger.Error().Err(err).Str("id", id).Msg("Delete failed")
		s.writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
