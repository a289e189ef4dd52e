package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func issueTestToken(t *testing.T, a *Authenticator, userID string, now time.Time) string {
	t.Helper()
	token, err := a.IssueToken(userID, now)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestTokenRoundtrip(t *testing.T) {
	a := NewAuthenticator("test-secret")
	token := issueTestToken(t, a, "user-1", time.Now())

	userID, err := a.ParseToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if userID != "user-1" {
		t.Errorf("got %q, want user-1", userID)
	}

	t.Run("wrong secret fails", func(t *testing.T) {
		other := NewAuthenticator("other-secret")
		if _, err := other.ParseToken(token); err == nil {
			t.Fatal("expected signature error")
		}
	})

	t.Run("expired token fails", func(t *testing.T) {
		expired := issueTestToken(t, a, "user-1", time.Now().Add(-2*SessionTTL))
		if _, err := a.ParseToken(expired); err == nil {
			t.Fatal("expected expiry error")
		}
	})
}

func serveAuthenticated(t *testing.T, a *Authenticator, prepare func(r *http.Request)) (*httptest.ResponseRecorder, string) {
	t.Helper()
	var gotUserID string
	handler := a.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/events", nil)
	prepare(r)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w, gotUserID
}

func TestAuthenticate(t *testing.T) {
	a := NewAuthenticator("test-secret")

	t.Run("bearer token sets user", func(t *testing.T) {
		token := issueTestToken(t, a, "user-1", time.Now())
		_, userID := serveAuthenticated(t, a, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+token)
		})
		if userID != "user-1" {
			t.Errorf("got %q, want user-1", userID)
		}
	})

	t.Run("session cookie sets user", func(t *testing.T) {
		token := issueTestToken(t, a, "user-2", time.Now())
		_, userID := serveAuthenticated(t, a, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
		})
		if userID != "user-2" {
			t.Errorf("got %q, want user-2", userID)
		}
	})

	t.Run("no token means anonymous", func(t *testing.T) {
		_, userID := serveAuthenticated(t, a, func(r *http.Request) {})
		if userID != "" {
			t.Errorf("expected anonymous, got %q", userID)
		}
	})

	t.Run("expired cookie clears session and stays anonymous", func(t *testing.T) {
		expired := issueTestToken(t, a, "user-1", time.Now().Add(-2*SessionTTL))
		w, userID := serveAuthenticated(t, a, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: expired})
		})
		if userID != "" {
			t.Errorf("expected anonymous, got %q", userID)
		}
		cleared := false
		for _, c := range w.Result().Cookies() {
			if c.Name == SessionCookieName && c.MaxAge < 0 {
				cleared = true
			}
		}
		if !cleared {
			t.Error("expired session cookie was not cleared")
		}
	})

	t.Run("tampered bearer token stays anonymous", func(t *testing.T) {
		token := issueTestToken(t, a, "user-1", time.Now())
		_, userID := serveAuthenticated(t, a, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+token+"x")
		})
		if userID != "" {
			t.Errorf("expected anonymous, got %q", userID)
		}
	})
}

func TestSlidingRefresh(t *testing.T) {
	a := NewAuthenticator("test-secret")

	refreshCookie := func(w *httptest.ResponseRecorder) *http.Cookie {
		for _, c := range w.Result().Cookies() {
			if c.Name == SessionCookieName && c.MaxAge > 0 {
				return c
			}
		}
		return nil
	}

	t.Run("old cookie session is reissued", func(t *testing.T) {
		// Выпущен 13 часов назад: осталось меньше половины TTL.
		aging := issueTestToken(t, a, "user-1", time.Now().Add(-13*time.Hour))
		w, _ := serveAuthenticated(t, a, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: aging})
		})

		refreshed := refreshCookie(w)
		if refreshed == nil {
			t.Fatal("expected a refreshed session cookie")
		}
		userID, err := a.ParseToken(refreshed.Value)
		if err != nil || userID != "user-1" {
			t.Errorf("refreshed cookie is not a valid session: %v", err)
		}
	})

	t.Run("fresh cookie is left alone", func(t *testing.T) {
		fresh := issueTestToken(t, a, "user-1", time.Now())
		w, _ := serveAuthenticated(t, a, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: fresh})
		})
		if refreshCookie(w) != nil {
			t.Error("fresh session must not be reissued")
		}
	})

	t.Run("bearer token is never reissued", func(t *testing.T) {
		aging := issueTestToken(t, a, "user-1", time.Now().Add(-13*time.Hour))
		w, _ := serveAuthenticated(t, a, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+aging)
		})
		if refreshCookie(w) != nil {
			t.Error("header-based session must not set cookies")
		}
	})
}

func TestRequireUser(t *testing.T) {
	nextCalled := false
	handler := RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	}))

	t.Run("anonymous gets 401 envelope", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/events", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("got status %d, want 401", w.Code)
		}
		if body := strings.TrimSpace(w.Body.String()); body != `{"success":false,"error":"User not authenticated"}` {
			t.Errorf("unexpected body: %s", body)
		}
		if nextCalled {
			t.Error("next handler must not run")
		}
	})

	t.Run("authenticated passes through", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/events", nil)
		r = r.WithContext(WithUserID(r.Context(), "user-1"))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		if !nextCalled {
			t.Error("next handler did not run")
		}
	})
}
