package apperrors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "validation", err: Validation("email", "invalid"), status: http.StatusBadRequest, code: "validation_error"},
		{name: "not found", err: NotFound("user"), status: http.StatusNotFound, code: "not_found"},
		{name: "conflict", err: Conflict("username", "alice", "taken"), status: http.StatusConflict, code: "conflict"},
		{name: "store", err: Store(errors.New("io")), status: http.StatusInternalServerError, code: "internal_error"},
		{name: "partial", err: &PartialError{Op: "delete user"}, status: http.StatusInternalServerError, code: "partial_failure"},
		{name: "unclassified", err: errors.New("plain"), status: http.StatusInternalServerError, code: "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
			assert.Equal(t, tt.code, Code(tt.err))
		})
	}
}

func TestPartialErrorMessage(t *testing.T) {
	err := &PartialError{
		Op: "delete user",
		Steps: []StepFailure{{
			Step:   "delete authored thought",
			Detail: "thought abc still exists",
			Err:    errors.New("io"),
		}},
	}
	assert.Contains(t, err.Error(), "delete user partially failed")
	assert.Contains(t, err.Error(), "delete authored thought")
	assert.True(t, IsPartial(err))
	assert.False(t, IsPartial(NotFound("user")))
}

func TestIsKindUnwraps(t *testing.T) {
	wrapped := Store(errors.New("io"))
	assert.True(t, IsKind(wrapped, KindStore))
	assert.False(t, IsKind(wrapped, KindNotFound))
	assert.Equal(t, "no user was found with this id", NotFound("user").Error())
}
