package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"taskd/internal/models"
	"taskd/internal/store"
)

type itemListResponse struct {
	Items  []*models.Item `json:"items"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// itemsHandler routes requests without ID: GET for list, POST for create.
func (s *Server) itemsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListItems(w, r)
	case http.MethodPost:
		s.handleCreateItem(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	}
}

// itemHandler routes requests with ID: GET, PUT, DELETE.
func (s *Server) itemHandler(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.Path, "/api/items/")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	switch r.Method {
	case http.MethodGet:
		s.handleGetItem(w, r, id)
	case http.MethodPut:
		s.handleUpdateItem(w, r, id)
	case http.MethodDelete:
		s.handleDeleteItem(w, r, id)
	default:
		w.Header().Set("Allow", "GET, PUT, DELETE")
		writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	}
}

// handleCreateItem processes POST /api/items.
func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req models.CreateItemRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request payload: %v", err))
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	item := &models.Item{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
	}
	if err := s.items.Create(r.Context(), item); err != nil {
		s.logger.WithError(err).Error("error saving item")
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/items/%d", item.ID))
	writeJSON(w, http.StatusCreated, item)
}

// handleGetItem processes GET /api/items/{id}.
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request, id int) {
	item, err := s.items.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
		} else {
			s.logger.WithError(err).Error("error getting item")
			writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleUpdateItem processes PUT /api/items/{id}.
func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request, id int) {
	var req models.UpdateItemRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request payload: %v", err))
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	item := &models.Item{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
	}
	if err := s.items.Update(r.Context(), item); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
		} else {
			s.logger.WithError(err).Error("error updating item")
			writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleDeleteItem processes DELETE /api/items/{id}.
func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request, id int) {
	if err := s.items.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
		} else {
			s.logger.WithError(err).Error("error deleting item")
			writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListItems processes GET /api/items.
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parseListParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := s.items.List(r.Context(), limit, offset)
	if err != nil {
		s.logger.WithError(err).Error("error listing items")
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	total, err := s.items.Count(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("error counting items")
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	writeJSON(w, http.StatusOK, itemListResponse{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}
