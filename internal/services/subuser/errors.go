package services

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrSubuserNotFound: выдача доступа не найдена.
	ErrSubuserNotFound = errors.New("subuser not found")
	// ErrSubuserExists: у пользователя уже есть доступ к этому серверу.
	ErrSubuserExists = errors.New("subuser already exists for this server")
	// ErrServerOwner: владелец сервера не может быть его субаккаунтом.
	ErrServerOwner = errors.New("server owner cannot be added as a subuser")
	// ErrServerNotFound: сервер не найден.
	ErrServerNotFound = errors.New("server not found")
	// ErrForbidden: учётная запись не может управлять субаккаунтами сервера.
	ErrForbidden = errors.New("not allowed to manage subusers of this server")
)

// Правила, нарушение которых описывает ValidationError.
const (
	RuleRequired   = "required"
	RuleNumeric    = "numeric"
	RulePositive   = "positive"
	RuleExists     = "exists"
	RulePermission = "permission"
)

// ValidationError описывает поле запроса, не прошедшее проверку.
// Возвращается вызывающему без попытки восстановления.
type ValidationError struct {
	Field string
	Rule  string
	Value string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("validation failed: field %s (%q) violates rule %s", e.Field, e.Value, e.Rule)
	}
	return fmt.Sprintf("validation failed: field %s violates rule %s", e.Field, e.Rule)
}

// IsValidationError сообщает, является ли err (или обёрнутая в неё ошибка) ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ParseID разбирает идентификатор из строки (например, из URL).
// Нечисловые и неположительные значения дают ValidationError.
func ParseID(field, raw string) (int, error) {
	if raw == "" {
		return 0, &ValidationError{Field: field, Rule: RuleRequired}
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{Field: field, Rule: RuleNumeric, Value: raw}
	}
	if id <= 0 {
		return 0, &ValidationError{Field: field, Rule: RulePositive, Value: raw}
	}
	return id, nil
}
