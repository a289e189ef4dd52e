package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Sarsen13/event-management/models"
	"github.com/Sarsen13/event-management/repositories"
	"github.com/Sarsen13/event-management/validation"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type AuthService interface {
	Register(ctx context.Context, input SignUpInput) (*models.User, string, error)
	Login(ctx context.Context, input LoginInput) (*models.User, error)
	CurrentUser(ctx context.Context, userID string) (*models.User, error)
	ConfirmEmail(ctx context.Context, token string) error
	GoogleAuthURL(state string) (string, error)
	LoginWithGoogle(ctx context.Context, code string) (*models.User, error)
}

type SignUpInput struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authService struct {
	userRepo    repositories.UserRepository
	googleOAuth *oauth2.Config
}

func NewAuthService(userRepo repositories.UserRepository, googleOAuth *oauth2.Config) AuthService {
	return &authService{
		userRepo:    userRepo,
		googleOAuth: googleOAuth,
	}
}

func (s *authService) Register(ctx context.Context, input SignUpInput) (*models.User, string, error) {
	input.Email = validation.NormalizeEmail(input.Email)

	v := validation.New()
	v.Check(validation.ValidEmail(input.Email), "email", "Invalid email address")
	validation.CheckPasswordStrength(v, "password", input.Password)
	// Сравнение строгое и регистрозависимое.
	v.Check(input.Password == input.ConfirmPassword, "confirmPassword", "Passwords do not match")
	if err := v.Err(); err != nil {
		return nil, "", err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	hash := string(hashedPassword)
	confirmationToken := generateRandomToken(32)

	user := &models.User{
		ID:                     uuid.NewString(),
		Email:                  input.Email,
		PasswordHash:           &hash,
		EmailConfirmed:         false,
		EmailConfirmationToken: &confirmationToken,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, "", ErrAuthEmailTaken
		}
		return nil, "", fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return user, confirmationToken, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	input.Email = validation.NormalizeEmail(input.Email)

	v := validation.New()
	v.Check(validation.ValidEmail(input.Email), "email", "Invalid email address")
	// На входе достаточно непустого пароля: существующий слабый пароль
	// всё ещё должен пройти аутентификацию.
	v.Check(input.Password != "", "password", "Password is required")
	if err := v.Err(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if user.PasswordHash == nil {
		// Пользователь создан через OAuth, пароля нет.
		return nil, ErrAuthInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(input.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	user.PasswordHash = nil
	return user, nil
}

func (s *authService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = nil
	return user, nil
}

func (s *authService) ConfirmEmail(ctx context.Context, token string) error {
	user, err := s.userRepo.GetByConfirmationToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrInvalidConfirmToken
		}
		return err
	}
	if user.EmailConfirmed {
		return ErrEmailAlreadyConfirmed
	}
	if err := s.userRepo.ConfirmEmail(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to confirm email: %w", err)
	}
	return nil
}

func (s *authService) GoogleAuthURL(state string) (string, error) {
	if s.googleOAuth == nil || s.googleOAuth.ClientID == "" {
		return "", errors.New("Google sign in is not configured")
	}
	return s.googleOAuth.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// LoginWithGoogle обменивает authorization code на токен, получает email
// пользователя и заводит учётную запись, если её ещё нет.
func (s *authService) LoginWithGoogle(ctx context.Context, code string) (*models.User, error) {
	if s.googleOAuth == nil || s.googleOAuth.ClientID == "" {
		return nil, errors.New("Google sign in is not configured")
	}

	token, err := s.googleOAuth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange Google authorization code: %w", err)
	}

	info, err := fetchGoogleUserInfo(ctx, s.googleOAuth.Client(ctx, token))
	if err != nil {
		return nil, err
	}
	email := validation.NormalizeEmail(info.Email)
	if !validation.ValidEmail(email) {
		return nil, errors.New("Google account did not return a valid email")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		user.PasswordHash = nil
		return user, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, err
	}

	user = &models.User{
		ID:             uuid.NewString(),
		Email:          email,
		EmailConfirmed: info.VerifiedEmail,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return user, nil
}

type googleUserInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
}

func fetchGoogleUserInfo(ctx context.Context, client *http.Client) (*googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Google user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from Google user info endpoint", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode Google user info: %w", err)
	}
	return &info, nil
}

func generateRandomToken(length int) string {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand недоступен только при сломанной системе
	}
	return hex.EncodeToString(buf)[:length]
}
