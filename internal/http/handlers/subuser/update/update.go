// Package update реализует HTTP-обработчик замены набора прав субаккаунта.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/panel-subusers/internal/http/handlers/subuser/present"
	"github.com/magabrotheeeer/panel-subusers/internal/http/middlewarectx"
	"github.com/magabrotheeeer/panel-subusers/internal/http/response"
	"github.com/magabrotheeeer/panel-subusers/internal/lib/sl"
	"github.com/magabrotheeeer/panel-subusers/internal/models"
)

// Handler обрабатывает запросы на изменение прав субаккаунта.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики изменения прав.
type Service interface {
	present.Presenter
	UpdatePermissions(ctx context.Context, id int, permissions []string) ([]string, error)
	Read(ctx context.Context, id int) (*models.Subuser, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Изменить права субаккаунта
// @Description Заменяет набор прав целиком. Пустой список снимает все права.
// @Tags Subusers
// @Accept  json
// @Produce  json
// @Param server path int true "ID сервера"
// @Param subuser path string true "Публичный идентификатор субаккаунта"
// @Param request body models.DummyPermissions true "Новый набор прав"
// @Success 200 {object} response.Response "Обновлённый ресурс server_subuser"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Субаккаунт не найден"
// @Failure 422 {object} response.ErrorResponse "Неизвестное право"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /servers/{server}/users/{subuser} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subuser.update"
	log := h.log.With(
		sl.Op(op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sub, ok := middlewarectx.SubuserFromContext(r.Context())
	if !ok {
		log.Error("subuser not found in context")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	var req models.DummyPermissions
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			log.Error("validator failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal service error"))
			return
		}
		log.Warn("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(verrs))
		return
	}

	if _, err := h.service.UpdatePermissions(r.Context(), sub.ID, req.Permissions); err != nil {
		log.Warn("failed to update permissions", slog.Int("id", sub.ID), sl.Err(err))
		status, body := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	// updated_at изменился, перечитываем запись
	fresh, err := h.service.Read(r.Context(), sub.ID)
	if err != nil {
		log.Warn("failed to reread subuser", slog.Int("id", sub.ID), sl.Err(err))
		status, body := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	obj, err := present.Subuser(r.Context(), h.service, fresh)
	if err != nil {
		log.Error("failed to present subuser", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	log.Info("subuser permissions updated", slog.Int("id", sub.ID))
	render.JSON(w, r, response.OKWithData(obj))
}
