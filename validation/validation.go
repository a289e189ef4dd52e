package validation

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

var (
	// EmailRX достаточно строгая проверка формата email.
	EmailRX = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	// TimeRX: строго HH:MM, 24-часовой формат.
	TimeRX = regexp.MustCompile(`^\d{2}:\d{2}$`)

	upperRX = regexp.MustCompile(`[A-Z]`)
	lowerRX = regexp.MustCompile(`[a-z]`)
	digitRX = regexp.MustCompile(`[0-9]`)
)

// Error несёт ошибки валидации, привязанные к конкретным полям.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator накапливает ошибки по полям.
type Validator struct {
	Fields map[string]string
}

func New() *Validator {
	return &Validator{Fields: make(map[string]string)}
}

func (v *Validator) Valid() bool {
	return len(v.Fields) == 0
}

// AddError записывает первую ошибку для поля, последующие игнорируются.
func (v *Validator) AddError(field, message string) {
	if _, exists := v.Fields[field]; !exists {
		v.Fields[field] = message
	}
}

func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.AddError(field, message)
	}
}

// Err возвращает *Error, если накоплены ошибки, иначе nil.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	return &Error{Fields: v.Fields}
}

// NormalizeEmail обрезает пробелы и приводит email к нижнему регистру.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidEmail(email string) bool {
	return email != "" && len(email) <= 255 && EmailRX.MatchString(email)
}

// CheckPasswordStrength применяет требования к паролю при регистрации.
// На входе (login) пароль специально не перепроверяется: существующий
// слабый пароль всё ещё должен проходить аутентификацию.
func CheckPasswordStrength(v *Validator, field, password string) {
	v.Check(len(password) >= 8, field, "Password must be at least 8 characters")
	v.Check(upperRX.MatchString(password), field, "Password must contain at least one uppercase letter")
	v.Check(lowerRX.MatchString(password), field, "Password must contain at least one lowercase letter")
	v.Check(digitRX.MatchString(password), field, "Password must contain at least one number")
}

// ValidDate принимает только YYYY-MM-DD и отклоняет несуществующие даты.
func ValidDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

func ValidTime(t string) bool {
	return TimeRX.MatchString(t)
}
