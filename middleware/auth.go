package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	// SessionCookieName — cookie с JWT-сессией.
	SessionCookieName = "session"
	// SessionTTL — срок жизни сессии.
	SessionTTL = 24 * time.Hour

	jwtClaimUserID = "user_id"
)

type contextKey string

const userContextKey contextKey = "user"

// Authenticator проверяет и выпускает сессионные JWT.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(jwtSecret string) *Authenticator {
	return &Authenticator{secret: []byte(jwtSecret)}
}

// IssueToken подписывает сессионный токен для пользователя.
func (a *Authenticator) IssueToken(userID string, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		jwtClaimUserID: userID,
		"iat":          now.Unix(),
		"exp":          now.Add(SessionTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ParseToken возвращает userID из валидного токена.
func (a *Authenticator) ParseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	userID, ok := claims[jwtClaimUserID].(string)
	if !ok || userID == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return userID, nil
}

// Authenticate достаёт токен из заголовка Authorization или сессионной
// cookie. Валидный токен кладёт userID в контекст; cookie-сессия
// продлевается, когда осталось меньше половины TTL. Запросы без токена
// проходят дальше анонимно — обязательность сессии решают маршруты.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, fromCookie := extractToken(r)
		if tokenString == "" {
			next.ServeHTTP(w, r)
			return
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			// Битый или истёкший токен приравнивается к его отсутствию.
			if fromCookie {
				ClearSessionCookie(w)
			}
			next.ServeHTTP(w, r)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		userID, ok := claims[jwtClaimUserID].(string)
		if !ok || userID == "" {
			next.ServeHTTP(w, r)
			return
		}

		if fromCookie && shouldRefresh(claims, time.Now()) {
			if refreshed, err := a.IssueToken(userID, time.Now()); err == nil {
				SetSessionCookie(w, refreshed)
			}
		}

		ctx := context.WithValue(r.Context(), userContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// shouldRefresh — скользящее продление: перевыпускаем cookie, только
// когда до истечения осталось меньше половины TTL.
func shouldRefresh(claims jwt.MapClaims, now time.Time) bool {
	expFloat, ok := claims["exp"].(float64)
	if !ok {
		return false
	}
	exp := time.Unix(int64(expFloat), 0)
	return exp.Sub(now) < SessionTTL/2
}

func extractToken(r *http.Request) (token string, fromCookie bool) {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer "), false
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return "", false
}

func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// UserIDFromContext возвращает идентификатор аутентифицированного
// пользователя; пустая строка — аноним.
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userContextKey).(string)
	return userID
}

// WithUserID используется в тестах и внутренних вызовах.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userContextKey, userID)
}
