package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/thoughtstream/thoughtstream-backend/internal/models"
	"github.com/thoughtstream/thoughtstream-backend/internal/services"
)

// UserHandler adapts HTTP requests to the user repository. It only parses,
// dispatches and maps errors; all rules live in the services.
type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type userRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type deleteUserResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

type friendResponse struct {
	Message string              `json:"message"`
	Friend  *models.UserSummary `json:"friend"`
	User    *models.User        `json:"user"`
}

// List handles GET /api/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Get handles GET /api/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.users.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Create handles POST /api/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Code:    "validation_error",
			Message: "invalid request body",
		})
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.Username, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Update handles PUT /api/users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Code:    "validation_error",
			Message: "invalid request body",
		})
		return
	}

	user, err := h.users.UpdateUser(r.Context(), chi.URLParam(r, "id"), req.Username, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /api/users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.DeleteUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteUserResponse{
		Message: "User successfully deleted",
		User:    user,
	})
}

// AddFriend handles PUT /api/users/{id}/add-friend/{friendId}.
func (h *UserHandler) AddFriend(w http.ResponseWriter, r *http.Request) {
	user, friend, err := h.users.AddFriend(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "friendId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friendResponse{
		Message: "Friend successfully added to user's friends list",
		Friend:  friend,
		User:    user,
	})
}

// RemoveFriend handles PUT /api/users/{id}/remove-friend/{friendId}.
func (h *UserHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	user, friend, err := h.users.RemoveFriend(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "friendId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friendResponse{
		Message: "Friend successfully removed from user's friends list",
		Friend:  friend,
		User:    user,
	})
}
