package actions

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/Sarsen13/event-management/validation"
)

// GenericErrorMessage подставляется вместо сообщений, упоминающих внутреннее хранилище.
const GenericErrorMessage = "Unable to process your request. Please try again."

// Response — единый конверт ответа для всех операций: либо success+data,
// либо success=false и безопасное для пользователя сообщение об ошибке.
// Ошибки валидации дополнительно несут карту поле→сообщение.
type Response[T any] struct {
	Success bool              `json:"success"`
	Data    T                 `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`

	cause error
}

// Cause возвращает исходную ошибку (для маппинга HTTP-статусов).
// Наружу она не сериализуется.
func (r Response[T]) Cause() error {
	return r.cause
}

// MarshalJSON гарантирует форму конверта: успех несёт только data,
// ошибка — только error (и fields для валидации).
func (r Response[T]) MarshalJSON() ([]byte, error) {
	if r.Success {
		return json.Marshal(struct {
			Success bool `json:"success"`
			Data    T    `json:"data"`
		}{true, r.Data})
	}
	return json.Marshal(struct {
		Success bool              `json:"success"`
		Error   string            `json:"error"`
		Fields  map[string]string `json:"fields,omitempty"`
	}{false, r.Error, r.Fields})
}

func Success[T any](data T) Response[T] {
	return Response[T]{Success: true, Data: data}
}

func Failure[T any](err error) Response[T] {
	resp := Response[T]{Success: false, Error: Sanitize(err), cause: err}
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		resp.Fields = vErr.Fields
	}
	return resp
}

// Execute выполняет операцию и сворачивает результат в Response.
// Исходная ошибка логируется на сервере; стектрейсы и детали бэкенда
// до клиента не доходят.
func Execute[T any](ctx context.Context, logger *slog.Logger, fn func(ctx context.Context) (T, error)) Response[T] {
	data, err := fn(ctx)
	if err != nil {
		if logger != nil {
			logger.Error("action failed", slog.Any("error", err))
		}
		return Failure[T](err)
	}
	return Success(data)
}

// Sanitize возвращает сообщение ошибки, пригодное для показа пользователю.
// Сообщения, упоминающие "database", заменяются на общее: вызывающий код
// обязан кидать уже безопасные тексты, остальные проходят как есть.
func Sanitize(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if strings.Contains(strings.ToLower(msg), "database") {
		return GenericErrorMessage
	}
	return msg
}
