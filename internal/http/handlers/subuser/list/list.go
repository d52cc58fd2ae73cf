// Package list реализует HTTP-обработчик списка субаккаунтов сервера.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/panel-subusers/internal/http/handlers/subuser/present"
	"github.com/magabrotheeeer/panel-subusers/internal/http/middlewarectx"
	"github.com/magabrotheeeer/panel-subusers/internal/http/response"
	"github.com/magabrotheeeer/panel-subusers/internal/lib/sl"
	"github.com/magabrotheeeer/panel-subusers/internal/models"
)

// Handler обрабатывает запросы на получение списка субаккаунтов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка субаккаунтов.
type Service interface {
	present.Presenter
	List(ctx context.Context, serverID int) ([]*models.Subuser, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список субаккаунтов
// @Description Возвращает все выдачи доступа к серверу в порядке создания.
// @Tags Subusers
// @Produce  json
// @Param server path int true "ID сервера"
// @Success 200 {object} response.Response "Коллекция ресурсов server_subuser"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Сервер не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /servers/{server}/users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subuser.list"
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

	subs, err := h.service.List(r.Context(), serverID)
	if err != nil {
		log.Warn("failed to list subusers", sl.Err(err))
		status, body := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	items := make([]response.Object, 0, len(subs))
	for _, sub := range subs {
		obj, err := present.Subuser(r.Context(), h.service, sub)
		if err != nil {
			log.Error("failed to present subuser", slog.Int("id", sub.ID), sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal service error"))
			return
		}
		items = append(items, obj)
	}

	log.Debug("subusers listed", slog.Int("server_id", serverID), slog.Int("count", len(items)))
	render.JSON(w, r, response.OKWithData(response.SubuserList(items)))
}
