// Package remove реализует HTTP-обработчик отзыва доступа субаккаунта.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/panel-subusers/internal/http/middlewarectx"
	"github.com/magabrotheeeer/panel-subusers/internal/http/response"
	"github.com/magabrotheeeer/panel-subusers/internal/lib/sl"
)

// Handler обрабатывает запросы на отзыв доступа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики отзыва доступа.
type Service interface {
	Revoke(ctx context.Context, id int) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отозвать доступ субаккаунта
// @Description Удаляет выдачу доступа, её права и ключ демона учётной записи на сервере.
// @Tags Subusers
// @Param server path int true "ID сервера"
// @Param subuser path string true "Публичный идентификатор субаккаунта"
// @Success 204 "Доступ отозван"
// @Failure 404 {object} response.ErrorResponse "Субаккаунт не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /servers/{server}/users/{subuser} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subuser.remove"
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

	if err := h.service.Revoke(r.Context(), sub.ID); err != nil {
		log.Warn("failed to revoke subuser", slog.Int("id", sub.ID), sl.Err(err))
		status, body := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	log.Info("subuser revoked", slog.Int("id", sub.ID))
	w.WriteHeader(http.StatusNoContent)
}
