package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thoughtstream/thoughtstream-backend/internal/services"
	"github.com/thoughtstream/thoughtstream-backend/internal/store"
)

func setupTestRouter() *chi.Mux {
	st := store.NewMemoryStore()
	cache := services.NewCacheService(nil)
	rel := services.NewRelationshipService(st, cache)
	users := NewUserHandler(services.NewUserService(st, cache, rel))
	thoughts := NewThoughtHandler(services.NewThoughtService(st, cache, rel))

	r := chi.NewRouter()
	r.Get("/api/users", users.List)
	r.Post("/api/users", users.Create)
	r.Get("/api/users/{id}", users.Get)
	r.Put("/api/users/{id}", users.Update)
	r.Delete("/api/users/{id}", users.Delete)
	r.Put("/api/users/{id}/add-friend/{friendId}", users.AddFriend)
	r.Put("/api/users/{id}/remove-friend/{friendId}", users.RemoveFriend)
	r.Get("/api/thoughts", thoughts.List)
	r.Post("/api/thoughts", thoughts.Create)
	r.Get("/api/thoughts/{id}", thoughts.Get)
	r.Put("/api/thoughts/{id}", thoughts.Update)
	r.Delete("/api/thoughts/{id}", thoughts.Delete)
	r.Put("/api/thoughts/{id}/reactions", thoughts.AddReaction)
	r.Put("/api/thoughts/{id}/reactions/{reactionId}", thoughts.RemoveReaction)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	return rec, decoded
}

func TestCreateUserEndpoint(t *testing.T) {
	r := setupTestRouter()

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
	}{
		{
			name:           "valid user",
			body:           map[string]string{"username": "alice", "email": "a@example.com"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "duplicate username",
			body:           map[string]string{"username": "alice", "email": "other@example.com"},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "missing email",
			body:           map[string]string{"username": "bob"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed email",
			body:           map[string]string{"username": "bob", "email": "nope"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := doJSON(t, r, http.MethodPost, "/api/users", tt.body)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusCreated {
				assert.Equal(t, tt.body["username"], body["username"])
				assert.Equal(t, float64(0), body["friendCount"])
			} else {
				assert.Equal(t, false, body["success"])
				assert.NotEmpty(t, body["code"])
			}
		})
	}
}

func TestGetUserEndpointNotFound(t *testing.T) {
	r := setupTestRouter()

	rec, body := doJSON(t, r, http.MethodGet, "/api/users/ffffffffffffffffffffffff", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["code"])
	assert.Equal(t, "user", body["resource"])
}

func TestThoughtAndReactionFlow(t *testing.T) {
	r := setupTestRouter()

	_, alice := doJSON(t, r, http.MethodPost, "/api/users",
		map[string]string{"username": "alice", "email": "a@example.com"})
	_, bob := doJSON(t, r, http.MethodPost, "/api/users",
		map[string]string{"username": "bob", "email": "b@example.com"})

	rec, thought := doJSON(t, r, http.MethodPost, "/api/thoughts",
		map[string]string{"thoughtText": "hello", "author": alice["id"].(string)})
	require.Equal(t, http.StatusCreated, rec.Code)
	thoughtID := thought["id"].(string)

	rec, view := doJSON(t, r, http.MethodPut, "/api/thoughts/"+thoughtID+"/reactions",
		map[string]string{"reactionBody": "nice!", "author": bob["id"].(string)})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), view["reactionCount"])

	rec, view = doJSON(t, r, http.MethodGet, "/api/thoughts/"+thoughtID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	reactions := view["reactions"].([]interface{})
	require.Len(t, reactions, 1)
	reaction := reactions[0].(map[string]interface{})
	assert.Equal(t, "nice!", reaction["reactionBody"])

	// Removing an unknown reaction id is 404, not a silent success.
	rec, body := doJSON(t, r, http.MethodPut,
		fmt.Sprintf("/api/thoughts/%s/reactions/%s", thoughtID, "ffffffffffffffffffffffff"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "reaction", body["resource"])

	// Removing the real one succeeds.
	rec, view = doJSON(t, r, http.MethodPut,
		fmt.Sprintf("/api/thoughts/%s/reactions/%s", thoughtID, reaction["id"].(string)), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), view["reactionCount"])
}

func TestFriendEndpoints(t *testing.T) {
	r := setupTestRouter()

	_, alice := doJSON(t, r, http.MethodPost, "/api/users",
		map[string]string{"username": "alice", "email": "a@example.com"})
	_, bob := doJSON(t, r, http.MethodPost, "/api/users",
		map[string]string{"username": "bob", "email": "b@example.com"})
	aliceID := alice["id"].(string)
	bobID := bob["id"].(string)

	rec, body := doJSON(t, r, http.MethodPut,
		fmt.Sprintf("/api/users/%s/add-friend/%s", aliceID, bobID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	friend := body["friend"].(map[string]interface{})
	assert.Equal(t, "bob", friend["username"])

	rec, body = doJSON(t, r, http.MethodPut,
		fmt.Sprintf("/api/users/%s/add-friend/%s", aliceID, bobID), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", body["code"])

	rec, body = doJSON(t, r, http.MethodPut,
		fmt.Sprintf("/api/users/%s/remove-friend/%s", aliceID, bobID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	removed := body["friend"].(map[string]interface{})
	assert.Equal(t, bobID, removed["id"])
	assert.Equal(t, "bob", removed["username"])

	rec, body = doJSON(t, r, http.MethodPut,
		fmt.Sprintf("/api/users/%s/remove-friend/%s", aliceID, bobID), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", body["code"])
}

func TestDeleteUserEndpointCascades(t *testing.T) {
	r := setupTestRouter()

	_, alice := doJSON(t, r, http.MethodPost, "/api/users",
		map[string]string{"username": "alice", "email": "a@example.com"})
	aliceID := alice["id"].(string)

	rec, thought := doJSON(t, r, http.MethodPost, "/api/thoughts",
		map[string]string{"thoughtText": "doomed", "author": aliceID})
	require.Equal(t, http.StatusCreated, rec.Code)
	thoughtID := thought["id"].(string)

	rec, body := doJSON(t, r, http.MethodDelete, "/api/users/"+aliceID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User successfully deleted", body["message"])

	rec, _ = doJSON(t, r, http.MethodGet, "/api/thoughts/"+thoughtID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
