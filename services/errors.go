package services

import "errors"

// Общие ошибки сервисного слоя. Тексты уходят в конверт ответа как есть,
// поэтому они должны быть безопасны для показа пользователю.
var (
	// Аутентификация и авторизация. Тексты зафиксированы контрактом
	// конверта и проверяются тестами дословно.
	ErrNotAuthenticated = errors.New("User not authenticated")
	ErrNotEventOwner    = errors.New("Unauthorized: You do not own this event")

	ErrEventNotFound = errors.New("Event not found")

	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrUserNotFound           = errors.New("user not found")

	ErrEmailAlreadyConfirmed = errors.New("email already confirmed")
	ErrInvalidConfirmToken   = errors.New("invalid or expired confirmation token")

	ErrSeedingDisabled = errors.New("test data seeding is disabled")

	ErrBannerInvalidType = errors.New("banner must be a JPEG, PNG or WebP image")
)
