package apierrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Is(t *testing.T) {
	err := New(CodeDuplicateEntry, "email already registered")
	assert.True(t, Is(err, CodeDuplicateEntry))
	assert.False(t, Is(err, CodeValidation))
	assert.False(t, Is(errors.New("plain"), CodeDuplicateEntry))

	wrapped := fmt.Errorf("submit: %w", err)
	assert.True(t, Is(wrapped, CodeDuplicateEntry))
}

func Test_CodeOf_UnknownErrorDefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	assert.Equal(t, CodeAuthInvalid, CodeOf(New(CodeAuthInvalid, "bad token")))
}

func Test_MessageOf_NeverLeaksInternals(t *testing.T) {
	assert.Equal(t, "internal server error", MessageOf(errors.New("pq: connection refused")))
	assert.Equal(t, "bad token", MessageOf(New(CodeAuthInvalid, "bad token")))
}

func Test_ToHTTPStatus(t *testing.T) {
	tests := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeDuplicateEntry, http.StatusBadRequest},
		{CodeAuthInvalid, http.StatusUnauthorized},
		{CodeNotFound, http.StatusNotFound},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeStorageUnavailable, http.StatusServiceUnavailable},
		{CodeInternal, http.StatusInternalServerError},
		{Code("mystery"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.status, ToHTTPStatus(tt.code))
		})
	}
}
