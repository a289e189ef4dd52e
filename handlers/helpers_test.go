package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Sarsen13/event-management/services"
	"github.com/Sarsen13/event-management/validation"
)

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	decode := func(body string) error {
		r := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(body))
		var dst payload
		return readJSON(httptest.NewRecorder(), r, &dst)
	}

	tests := []struct {
		name    string
		body    string
		wantErr string // пустая строка — без ошибки
	}{
		{"valid", `{"name":"City Marathon"}`, ""},
		{"empty body", ``, "body must not be empty"},
		{"syntax error", `{"name":`, "body contains badly-formed JSON"},
		{"wrong type", `{"name":42}`, `body contains incorrect JSON type for field "name"`},
		{"unknown field", `{"nmae":"x"}`, `body contains unknown key "nmae"`},
		{"trailing value", `{"name":"a"}{"name":"b"}`, "body must only contain a single JSON value"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := decode(tc.body)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("got %v, want message containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &validation.Error{Fields: map[string]string{"name": "required"}}, http.StatusUnprocessableEntity},
		{"not authenticated", services.ErrNotAuthenticated, http.StatusUnauthorized},
		{"bad credentials", services.ErrAuthInvalidCredentials, http.StatusUnauthorized},
		{"not owner", services.ErrNotEventOwner, http.StatusForbidden},
		{"seeding disabled", services.ErrSeedingDisabled, http.StatusForbidden},
		{"event missing", services.ErrEventNotFound, http.StatusNotFound},
		{"user missing", services.ErrUserNotFound, http.StatusNotFound},
		{"email taken", services.ErrAuthEmailTaken, http.StatusConflict},
		{"bad confirm token", services.ErrInvalidConfirmToken, http.StatusBadRequest},
		{"bad banner type", services.ErrBannerInvalidType, http.StatusBadRequest},
		{"wrapped sentinel", errors.Join(errors.New("context"), services.ErrEventNotFound), http.StatusNotFound},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := statusForError(tc.err); got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
}
