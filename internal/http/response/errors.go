package response

import (
	"errors"
	"net/http"

	services "github.com/magabrotheeeer/panel-subusers/internal/services/subuser"
)

// ServiceError подбирает HTTP статус и тело ответа для ошибки сервиса субаккаунтов.
// Ошибки, не известные сервису, считаются внутренними, их текст клиенту не отдаётся.
func ServiceError(err error) (int, any) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity, FieldError(ve.Field, ve.Rule)
	case errors.Is(err, services.ErrServerOwner):
		return http.StatusUnprocessableEntity, Error(services.ErrServerOwner.Error())
	case errors.Is(err, services.ErrSubuserExists):
		return http.StatusConflict, Error(services.ErrSubuserExists.Error())
	case errors.Is(err, services.ErrSubuserNotFound):
		return http.StatusNotFound, Error(services.ErrSubuserNotFound.Error())
	case errors.Is(err, services.ErrServerNotFound):
		return http.StatusNotFound, Error(services.ErrServerNotFound.Error())
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, Error(services.ErrForbidden.Error())
	default:
		return http.StatusInternalServerError, Error("internal service error")
	}
}
