package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Sarsen13/event-management/actions"
	"github.com/Sarsen13/event-management/middleware"
	"github.com/Sarsen13/event-management/models"
	"github.com/Sarsen13/event-management/services"
)

const oauthStateCookie = "oauth_state"

type AuthHandler struct {
	authService   services.AuthService
	emailService  *services.EmailService
	authenticator *middleware.Authenticator
	logger        *slog.Logger
}

func NewAuthHandler(
	authService services.AuthService,
	emailService *services.EmailService,
	authenticator *middleware.Authenticator,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		emailService:  emailService,
		authenticator: authenticator,
		logger:        logger,
	}
}

type messageData struct {
	Message string `json:"message"`
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var input services.SignUpInput
	if err := readJSON(w, r, &input); err != nil {
		badRequest[messageData](w, h.logger, err)
		return
	}

	resp := actions.Execute(r.Context(), h.logger, func(ctx context.Context) (messageData, error) {
		user, confirmationToken, err := h.authService.Register(ctx, input)
		if err != nil {
			return messageData{}, err
		}
		if h.emailService != nil {
			if err := h.emailService.SendConfirmationEmail(user.Email, confirmationToken); err != nil {
				// Письмо не критично для регистрации.
				h.logger.Error("failed to send confirmation email", slog.Any("error", err))
			}
		}
		return messageData{Message: "Account created successfully. Please check your email to confirm."}, nil
	})
	writeActionResponse(w, h.logger, resp, http.StatusCreated)
}

type sessionData struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := readJSON(w, r, &input); err != nil {
		badRequest[sessionData](w, h.logger, err)
		return
	}

	resp := actions.Execute(r.Context(), h.logger, func(ctx context.Context) (sessionData, error) {
		user, err := h.authService.Login(ctx, input)
		if err != nil {
			return sessionData{}, err
		}
		token, err := h.authenticator.IssueToken(user.ID, time.Now())
		if err != nil {
			return sessionData{}, errors.New("Failed to sign in")
		}
		middleware.SetSessionCookie(w, token)
		return sessionData{Message: "Signed in successfully", Token: token, User: user}, nil
	})
	writeActionResponse(w, h.logger, resp, http.StatusOK)
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	middleware.ClearSessionCookie(w)
	resp := actions.Success(messageData{Message: "Signed out successfully"})
	writeActionResponse(w, h.logger, resp, http.StatusOK)
}

type currentUserData struct {
	User *models.User `json:"user"`
}

// CurrentUser отдаёт текущего пользователя; для анонима user равен null,
// это не ошибка.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeActionResponse(w, h.logger, actions.Success(currentUserData{User: nil}), http.StatusOK)
		return
	}

	resp := actions.Execute(r.Context(), h.logger, func(ctx context.Context) (currentUserData, error) {
		user, err := h.authService.CurrentUser(ctx, userID)
		if err != nil {
			return currentUserData{}, err
		}
		return currentUserData{User: user}, nil
	})
	writeActionResponse(w, h.logger, resp, http.StatusOK)
}

func (h *AuthHandler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		badRequest[messageData](w, h.logger, errors.New("confirmation token is required"))
		return
	}

	resp := actions.Execute(r.Context(), h.logger, func(ctx context.Context) (messageData, error) {
		if err := h.authService.ConfirmEmail(ctx, token); err != nil {
			return messageData{}, err
		}
		return messageData{Message: "Email confirmed successfully"}, nil
	})
	writeActionResponse(w, h.logger, resp, http.StatusOK)
}

type oauthURLData struct {
	URL string `json:"url"`
}

// GoogleSignIn возвращает URL для редиректа на Google OAuth.
func (h *AuthHandler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	state := randomState()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	resp := actions.Execute(r.Context(), h.logger, func(ctx context.Context) (oauthURLData, error) {
		url, err := h.authService.GoogleAuthURL(state)
		if err != nil {
			return oauthURLData{}, err
		}
		return oauthURLData{URL: url}, nil
	})
	writeActionResponse(w, h.logger, resp, http.StatusOK)
}

// GoogleCallback завершает OAuth-поток: проверяет state, обменивает код,
// ставит сессионную cookie и уводит пользователя на дашборд.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err == nil {
		// state одноразовый: cookie гасится сразу после прочтения.
		http.SetCookie(w, &http.Cookie{
			Name:     oauthStateCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		http.Redirect(w, r, "/login?error=oauth_state_mismatch", http.StatusFound)
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/login?error=oauth_failed", http.StatusFound)
		return
	}

	user, err := h.authService.LoginWithGoogle(r.Context(), code)
	if err != nil {
		h.logger.Error("Google sign in failed", slog.Any("error", err))
		http.Redirect(w, r, "/login?error=oauth_failed", http.StatusFound)
		return
	}

	token, err := h.authenticator.IssueToken(user.ID, time.Now())
	if err != nil {
		h.logger.Error("failed to issue session token", slog.Any("error", err))
		http.Redirect(w, r, "/login?error=oauth_failed", http.StatusFound)
		return
	}
	middleware.SetSessionCookie(w, token)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func randomState() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
