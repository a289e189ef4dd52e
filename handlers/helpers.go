package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Sarsen13/event-management/actions"
	"github.com/Sarsen13/event-management/services"
	"github.com/Sarsen13/event-management/validation"
)

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // Ошибка программиста: в Decode передан не указатель.
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

// writeActionResponse сериализует конверт действия. Успех уходит с
// successStatus, ошибка — со статусом, выведенным из её типа; для
// непредвиденных ошибок текст подменяется общим сообщением (оригинал
// уже залогирован внутри actions.Execute).
func writeActionResponse[T any](w http.ResponseWriter, logger *slog.Logger, resp actions.Response[T], successStatus int) {
	status := successStatus
	if !resp.Success {
		status = statusForError(resp.Cause())
		if status == http.StatusInternalServerError {
			resp.Error = actions.GenericErrorMessage
		}
	}
	if err := writeJSON(w, status, resp); err != nil && logger != nil {
		logger.Error("failed to write JSON response", slog.Any("error", err))
	}
}

func badRequest[T any](w http.ResponseWriter, logger *slog.Logger, err error) {
	resp := actions.Failure[T](err)
	if err := writeJSON(w, http.StatusBadRequest, resp); err != nil && logger != nil {
		logger.Error("failed to write JSON response", slog.Any("error", err))
	}
}

// statusForError — маппинг ошибок сервисного слоя в HTTP-статусы.
func statusForError(err error) int {
	var vErr *validation.Error
	switch {
	case errors.As(err, &vErr):
		return http.StatusUnprocessableEntity

	case errors.Is(err, services.ErrNotAuthenticated),
		errors.Is(err, services.ErrAuthInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, services.ErrNotEventOwner),
		errors.Is(err, services.ErrSeedingDisabled):
		return http.StatusForbidden

	case errors.Is(err, services.ErrEventNotFound),
		errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, services.ErrAuthEmailTaken):
		return http.StatusConflict

	case errors.Is(err, services.ErrInvalidConfirmToken),
		errors.Is(err, services.ErrEmailAlreadyConfirmed),
		errors.Is(err, services.ErrBannerInvalidType):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
