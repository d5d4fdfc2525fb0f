package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/medibook-api/internal/types"
)

func TestDecodeJSONBody(t *testing.T) {
	type payload struct {
		Email string `json:"email"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"Valid", `{"email":"a@x.com"}`, ""},
		{"Empty", ``, "body must not be empty"},
		{"UnknownField", `{"email":"a@x.com","admin":true}`, `body contains unknown key "admin"`},
		{"Trailing", `{"email":"a"}{"email":"b"}`, "body must only contain a single JSON value"},
		{"WrongType", `{"email":5}`, `body contains incorrect JSON type for field "email"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			var dst payload
			err := DecodeJSONBody(w, r, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "a@x.com", dst.Email)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("register: %w", types.ErrDuplicateIdentity), http.StatusConflict},
		{types.ErrInvalidCredentials, http.StatusUnauthorized},
		{types.ErrPendingVerification, http.StatusForbidden},
		{fmt.Errorf("lookup: %w", types.ErrNotFound), http.StatusNotFound},
		{types.ErrInvalidTransition, http.StatusConflict},
		{fmt.Errorf("%w: connection reset", types.ErrPersistence), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		status, msg := StatusForError(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.NotContains(t, msg, "connection reset")
	}
}

func TestValidationErrorResponse(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	w := httptest.NewRecorder()

	ValidationErrorResponse(w, r, validation.Errors{"email": errors.New("must be a valid email address")})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	fields, ok := body["fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "must be a valid email address", fields["email"])
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
		wantErr    bool
	}{
		{"", DefaultPageSize, 0, false},
		{"limit=5&offset=10", 5, 10, false},
		{"limit=1000", MaxPageSize, 0, false},
		{"limit=0", 0, 0, true},
		{"limit=abc", 0, 0, true},
		{"offset=-1", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/x?"+tt.query, nil)
			limit, offset, err := ParsePagination(r)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrValidation)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}
