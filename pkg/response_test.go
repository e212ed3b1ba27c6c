package pkg

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type takenError struct{ holder string }

func (e *takenError) Error() string { return "taken by " + e.holder }
func (e *takenError) Unwrap() error { return ErrAlreadyExists }
func (e *takenError) Payload() any { return map[string]string{"holder": e.holder} }

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("session: %w", ErrNotFound), http.StatusNotFound},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrAlreadyExists, http.StatusConflict},
		{ErrBadRequest, http.StatusBadRequest},
		{fmt.Errorf("merge: %w", ErrMalformedInput), http.StatusBadRequest},
		{fmt.Errorf("disk"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		Error(rec, tt.err)
		assert.Equal(t, tt.want, rec.Code, tt.err.Error())

		body := decode(t, rec)
		assert.Equal(t, false, body["success"])
		assert.NotContains(t, body, "data")
	}
}

func TestErrorCarriesPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, fmt.Errorf("register: %w", &takenError{holder: "ann"}))

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, map[string]any{"holder": "ann"}, body["data"])
	assert.Equal(t, "register: taken by ann", body["error"])
}
