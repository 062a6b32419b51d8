package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHTTPError_Type(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusBadRequest, "BadRequestError"},
		{http.StatusUnauthorized, "UnauthorizedError"},
		{http.StatusForbidden, "ForbiddenError"},
		{http.StatusNotFound, "NotFoundError"},
		{http.StatusInternalServerError, "InternalServerError"},
		{599, "Error"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, NewHTTPError(tt.status, "x").Type)
		})
	}
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))
	assert.Equal(t, http.StatusBadRequest, StatusOf(BadRequest("bad")))

	wrapped := fmt.Errorf("register: %w", Unauthorized("nope"))
	assert.Equal(t, http.StatusUnauthorized, StatusOf(wrapped))
}

func TestHTTPError_WrapAndFields(t *testing.T) {
	cause := errors.New("decode failed")
	err := BadRequest("validation.failed").
		WithField("email", "required", "").
		WithField("password", "min", "8").
		Wrap(cause)

	assert.ErrorIs(t, err, cause)
	assert.Len(t, err.Fields, 2)
	assert.Equal(t, FieldError{Field: "password", Tag: "min", Param: "8"}, err.Fields[1])
	assert.Equal(t, "400 validation.failed [email:required] [password:min]: decode failed", err.Error())
}
