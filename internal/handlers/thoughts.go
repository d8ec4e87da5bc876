package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/thoughtstream/thoughtstream-backend/internal/models"
	"github.com/thoughtstream/thoughtstream-backend/internal/services"
)

// ThoughtHandler adapts HTTP requests to the thought repository.
type ThoughtHandler struct {
	thoughts *services.ThoughtService
}

func NewThoughtHandler(thoughts *services.ThoughtService) *ThoughtHandler {
	return &ThoughtHandler{thoughts: thoughts}
}

type thoughtRequest struct {
	ThoughtText string `json:"thoughtText"`
	Author      string `json:"author"`
}

type reactionRequest struct {
	ReactionBody string `json:"reactionBody"`
	Author       string `json:"author"`
}

type deleteThoughtResponse struct {
	Message string          `json:"message"`
	Thought *models.Thought `json:"thought"`
}

// List handles GET /api/thoughts.
func (h *ThoughtHandler) List(w http.ResponseWriter, r *http.Request) {
	thoughts, err := h.thoughts.ListThoughts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, thoughts)
}

// Get handles GET /api/thoughts/{id}.
func (h *ThoughtHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.thoughts.GetThought(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Create handles POST /api/thoughts.
func (h *ThoughtHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req thoughtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Code:    "validation_error",
			Message: "invalid request body",
		})
		return
	}

	thought, err := h.thoughts.CreateThought(r.Context(), req.ThoughtText, req.Author)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, thought)
}

// Update handles PUT /api/thoughts/{id}.
func (h *ThoughtHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req thoughtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Code:    "validation_error",
			Message: "invalid request body",
		})
		return
	}

	view, err := h.thoughts.UpdateThought(r.Context(), chi.URLParam(r, "id"), req.ThoughtText)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Delete handles DELETE /api/thoughts/{id}.
func (h *ThoughtHandler) Delete(w http.ResponseWriter, r *http.Request) {
	thought, err := h.thoughts.DeleteThought(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteThoughtResponse{
		Message: "This thought was successfully deleted",
		Thought: thought,
	})
}

// AddReaction handles PUT /api/thoughts/{id}/reactions.
func (h *ThoughtHandler) AddReaction(w http.ResponseWriter, r *http.Request) {
	var req reactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Code:    "validation_error",
			Message: "invalid request body",
		})
		return
	}

	view, err := h.thoughts.AddReaction(r.Context(),
		chi.URLParam(r, "id"), req.ReactionBody, req.Author)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// RemoveReaction handles PUT /api/thoughts/{id}/reactions/{reactionId}.
func (h *ThoughtHandler) RemoveReaction(w http.ResponseWriter, r *http.Request) {
	view, err := h.thoughts.RemoveReaction(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "reactionId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
