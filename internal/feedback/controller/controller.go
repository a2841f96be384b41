package controller

import (
	"errors"
	"net/http"

	"github.com/hashmap-kz/slackrep/internal/feedback/service"
	"github.com/hashmap-kz/slackrep/internal/feedback/store"
	"github.com/hashmap-kz/slackrep/internal/shared/x/httpx"
)

type FeedbackController struct {
	Service service.FeedbackService
}

func NewController(s service.FeedbackService) *FeedbackController {
	return &FeedbackController{
		Service: s,
	}
}

func (c *FeedbackController) ListHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := c.Service.List(r.Context())
	if err != nil {
		httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, entries)
}

func (c *FeedbackController) AddHandler(w http.ResponseWriter, r *http.Request) {
	var req service.AddRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed json body"})
		return
	}

	entry, err := c.Service.Add(r.Context(), &req)
	if err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, entry)
}

func (c *FeedbackController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathValueString(r, "id")
	if err != nil {
		http.Error(w, "expect id path-param", http.StatusBadRequest)
		return
	}

	if err := c.Service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
