package actions

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/Sarsen13/event-management/validation"
)

func TestExecute(t *testing.T) {
	t.Run("success wraps data", func(t *testing.T) {
		resp := Execute(context.Background(), nil, func(ctx context.Context) (string, error) {
			return "payload", nil
		})
		if !resp.Success {
			t.Fatal("expected success")
		}
		if resp.Data != "payload" {
			t.Errorf("got %q, want payload", resp.Data)
		}
		if resp.Cause() != nil {
			t.Errorf("unexpected cause: %v", resp.Cause())
		}
	})

	t.Run("failure keeps cause", func(t *testing.T) {
		wantErr := errors.New("Event not found")
		resp := Execute(context.Background(), nil, func(ctx context.Context) (string, error) {
			return "", wantErr
		})
		if resp.Success {
			t.Fatal("expected failure")
		}
		if resp.Error != "Event not found" {
			t.Errorf("got %q", resp.Error)
		}
		if !errors.Is(resp.Cause(), wantErr) {
			t.Errorf("cause not preserved: %v", resp.Cause())
		}
	})
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, ""},
		{"plain message passes through", errors.New("Event not found"), "Event not found"},
		{"database mention is replaced", errors.New("database connection refused"), GenericErrorMessage},
		{"case insensitive match", errors.New("Database timeout"), GenericErrorMessage},
		{"mention inside message", errors.New("failed to query database: broken pipe"), GenericErrorMessage},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Sanitize(tc.err); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFailureAttachesValidationFields(t *testing.T) {
	vErr := &validation.Error{Fields: map[string]string{"confirmPassword": "Passwords do not match"}}
	resp := Failure[struct{}](vErr)

	if resp.Success {
		t.Fatal("expected failure")
	}
	if resp.Fields["confirmPassword"] != "Passwords do not match" {
		t.Errorf("fields not attached: %v", resp.Fields)
	}
}

func TestResponseMarshalJSON(t *testing.T) {
	t.Run("success carries only data", func(t *testing.T) {
		js, err := json.Marshal(Success(map[string]string{"id": "abc"}))
		if err != nil {
			t.Fatal(err)
		}
		body := string(js)
		if !strings.Contains(body, `"success":true`) || !strings.Contains(body, `"data"`) {
			t.Errorf("unexpected body: %s", body)
		}
		if strings.Contains(body, `"error"`) {
			t.Errorf("success body must not contain error: %s", body)
		}
	})

	t.Run("failure carries only error", func(t *testing.T) {
		js, err := json.Marshal(Failure[map[string]string](errors.New("Event not found")))
		if err != nil {
			t.Fatal(err)
		}
		body := string(js)
		if !strings.Contains(body, `"success":false`) || !strings.Contains(body, `"error":"Event not found"`) {
			t.Errorf("unexpected body: %s", body)
		}
		if strings.Contains(body, `"data"`) {
			t.Errorf("failure body must not contain data: %s", body)
		}
	})

	t.Run("validation failure carries fields", func(t *testing.T) {
		vErr := &validation.Error{Fields: map[string]string{"email": "Invalid email address"}}
		js, err := json.Marshal(Failure[struct{}](vErr))
		if err != nil {
			t.Fatal(err)
		}
		var decoded struct {
			Success bool              `json:"success"`
			Fields  map[string]string `json:"fields"`
		}
		if err := json.Unmarshal(js, &decoded); err != nil {
			t.Fatal(err)
		}
		if decoded.Fields["email"] != "Invalid email address" {
			t.Errorf("fields missing from body: %s", js)
		}
	})
}
