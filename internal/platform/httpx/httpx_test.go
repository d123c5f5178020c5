package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codedError struct{ status int }

func (e codedError) Error() string   { return "upstream failed" }
func (e codedError) HTTPStatus() int { return e.status }

func TestRespondErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", fmt.Errorf("role: %w", ErrNotFound), http.StatusNotFound},
		{"validation", fmt.Errorf("%w: bad", ErrValidation), http.StatusBadRequest},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"conflict", ErrConflict, http.StatusConflict},
		{"status coder", fmt.Errorf("wrap: %w", codedError{status: http.StatusBadGateway}), http.StatusBadGateway},
		{"status coder below 400", codedError{status: http.StatusOK}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(rec, tc.err)
			require.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

			var problem ProblemDetail
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			assert.Equal(t, tc.status, problem.Status)
		})
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, errors.New("redis: connection refused"))
	assert.NotContains(t, rec.Body.String(), "redis")
}

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func TestDecodeValid(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.test","password":"x"}`))
	var body loginBody
	require.NoError(t, DecodeValid(req, &body))
	assert.Equal(t, "a@b.test", body.Email)

	for _, raw := range []string{
		`{"email":"nope","password":"x"}`,
		`{"email":"a@b.test"}`,
		`{"email":"a@b.test","password":"x","extra":true}`,
		`not json`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(raw))
		err := DecodeValid(req, &loginBody{})
		assert.ErrorIs(t, err, ErrValidation, raw)
	}
}
