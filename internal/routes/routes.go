package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/thoughtstream/thoughtstream-backend/internal/handlers"
)

// SetupRoutes wires the API route table. One entry point per logical action;
// the handlers only dispatch to the repositories.
func SetupRoutes(r *chi.Mux, users *handlers.UserHandler, thoughts *handlers.ThoughtHandler) {
	// User routes
	r.Get("/api/users", users.List)
	r.Post("/api/users", users.Create)
	r.Get("/api/users/{id}", users.Get)
	r.Put("/api/users/{id}", users.Update)
	r.Delete("/api/users/{id}", users.Delete)

	// Friend routes (one-directional membership on the acting user)
	r.Put("/api/users/{id}/add-friend/{friendId}", users.AddFriend)
	r.Put("/api/users/{id}/remove-friend/{friendId}", users.RemoveFriend)

	// Thought routes
	r.Get("/api/thoughts", thoughts.List)
	r.Post("/api/thoughts", thoughts.Create)
	r.Get("/api/thoughts/{id}", thoughts.Get)
	r.Put("/api/thoughts/{id}", thoughts.Update)
	r.Delete("/api/thoughts/{id}", thoughts.Delete)

	// Reaction routes (embedded in thoughts)
	r.Put("/api/thoughts/{id}/reactions", thoughts.AddReaction)
	r.Put("/api/thoughts/{id}/reactions/{reactionId}", thoughts.RemoveReaction)
}
