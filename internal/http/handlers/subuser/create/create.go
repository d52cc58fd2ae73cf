// Package create реализует HTTP-обработчик выдачи учётной записи доступа к серверу.
//
// Handler принимает JSON с user_id и набором прав, проверяет его,
// вызывает сервис и возвращает созданный ресурс server_subuser.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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
	services "github.com/magabrotheeeer/panel-subusers/internal/services/subuser"
)

// Handler управляет HTTP-запросами на создание субаккаунтов.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики субаккаунтов
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики создания субаккаунта.
type Service interface {
	present.Presenter
	Create(ctx context.Context, userID, serverID int, permissions []string) (*models.Subuser, error)
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
// @Summary Добавить субаккаунт
// @Description Выдает учётной записи доступ к серверу с указанным набором прав.
// @Tags Subusers
// @Accept  json
// @Produce  json
// @Param server path int true "ID сервера"
// @Param request body models.DummySubuser true "Учётная запись и права"
// @Success 201 {object} response.Response "Созданный ресурс server_subuser"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 409 {object} response.ErrorResponse "Доступ уже выдан"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /servers/{server}/users [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subuser.create"
	log := h.log.With(
		sl.Op(op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	serverID, ok := middlewarectx.ServerIDFromContext(r.Context())
	if !ok {
		log.Error("server id not found in context")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	var req models.DummySubuser
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&req); err != nil {
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

	userID, err := services.ParseID("user_id", rawID(req.UserID))
	if err != nil {
		log.Warn("invalid user_id", sl.Err(err))
		status, body := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	sub, err := h.service.Create(r.Context(), userID, serverID, req.Permissions)
	if err != nil {
		log.Warn("failed to create subuser", sl.Err(err))
		status, body := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	obj, err := present.Subuser(r.Context(), h.service, sub)
	if err != nil {
		log.Error("failed to present subuser", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	log.Info("subuser created", slog.Int("id", sub.ID), slog.Int("user_id", sub.UserID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(obj))
}

// rawID приводит user_id из JSON к строке для ParseID: число и строка берутся как есть,
// отсутствующее значение даёт пустую строку.
func rawID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case json.Number:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}
