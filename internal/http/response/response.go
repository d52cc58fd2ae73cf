// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Пакет упрощает возврат
// успешных ответов, ошибок и сообщений валидации в едином формате.
package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status: статус запроса ("OK" или "Error").
// Поле Error: текст ошибки (опционально, при неуспехе).
// Поле Data: данные ответа (опционально, при успехе).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse: структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK: значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError: значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// OKWithData возвращает успешный Response с переданными данными.
func OKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	errsMsgs := make([]string, 0, len(errs))
	for _, err := range errs {
		errsMsgs = append(errsMsgs, ruleMessage(err.Field(), err.ActualTag()))
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}

// FieldError формирует Response для одного поля, нарушившего правило rule.
func FieldError(field, rule string) Response {
	return Response{
		Status: StatusError,
		Error:  ruleMessage(field, rule),
	}
}

func ruleMessage(field, rule string) string {
	switch rule {
	case "required":
		return fmt.Sprintf("field %s is a required field", field)
	case "numeric":
		return fmt.Sprintf("field %s can contain only numbers", field)
	case "gt", "positive":
		return fmt.Sprintf("field %s must be a positive number", field)
	case "exists":
		return fmt.Sprintf("field %s refers to a record that does not exist", field)
	case "permission":
		return fmt.Sprintf("field %s contains an unknown permission", field)
	default:
		return fmt.Sprintf("field %s is not a valid", field)
	}
}
