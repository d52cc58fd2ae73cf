// Package read реализует HTTP-обработчик получения субаккаунта по публичному идентификатору.
package read

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/panel-subusers/internal/http/handlers/subuser/present"
	"github.com/magabrotheeeer/panel-subusers/internal/http/middlewarectx"
	"github.com/magabrotheeeer/panel-subusers/internal/http/response"
	"github.com/magabrotheeeer/panel-subusers/internal/lib/sl"
)

// Handler обрабатывает запросы на получение одного субаккаунта.
// Саму запись находит middlewarectx.SubuserAccess.
type Handler struct {
	log     *slog.Logger
	service present.Presenter
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service present.Presenter) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить субаккаунт
// @Tags Subusers
// @Produce  json
// @Param server path int true "ID сервера"
// @Param subuser path string true "Публичный идентификатор субаккаунта"
// @Success 200 {object} response.Response "Ресурс server_subuser"
// @Failure 404 {object} response.ErrorResponse "Субаккаунт не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /servers/{server}/users/{subuser} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subuser.read"
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

	obj, err := present.Subuser(r.Context(), h.service, sub)
	if err != nil {
		log.Error("failed to present subuser", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	render.JSON(w, r, response.OKWithData(obj))
}
