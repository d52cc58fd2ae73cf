// Package key реализует HTTP-обработчик получения ключа демона субаккаунта.
package key

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/panel-subusers/internal/http/middlewarectx"
	"github.com/magabrotheeeer/panel-subusers/internal/http/response"
	"github.com/magabrotheeeer/panel-subusers/internal/lib/sl"
	"github.com/magabrotheeeer/panel-subusers/internal/models"
)

// Handler обрабатывает запросы на получение ключа демона.
type Handler struct {
	log     *slog.Logger
	service Service
	now     func() time.Time
}

// Service описывает интерфейс поиска ключа демона.
type Service interface {
	ResolveCredential(ctx context.Context, sub *models.Subuser) (*models.DaemonKey, bool, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		now:     time.Now,
	}
}

// ServeHTTP godoc
// @Summary Ключ демона субаккаунта
// @Description Возвращает ключ учётной записи для демона сервера с замаскированным секретом.
// @Tags Subusers
// @Produce  json
// @Param server path int true "ID сервера"
// @Param subuser path string true "Публичный идентификатор субаккаунта"
// @Success 200 {object} response.Response "Ресурс daemon_key"
// @Failure 404 {object} response.ErrorResponse "Ключ не выдан"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /servers/{server}/users/{subuser}/key [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subuser.key"
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

	dk, found, err := h.service.ResolveCredential(r.Context(), sub)
	if err != nil {
		log.Error("failed to resolve daemon key", slog.Int("id", sub.ID), sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}
	if !found {
		log.Info("daemon key not issued", slog.Int("id", sub.ID))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("daemon key not issued"))
		return
	}

	render.JSON(w, r, response.OKWithData(response.DaemonKey(dk, h.now())))
}
