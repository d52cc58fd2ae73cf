package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/panel-subusers/internal/http/response"
	"github.com/magabrotheeeer/panel-subusers/internal/lib/sl"
	"github.com/magabrotheeeer/panel-subusers/internal/models"
	services "github.com/magabrotheeeer/panel-subusers/internal/services/subuser"
)

const (
	// ServerID: ключ ID сервера из URL, к которому проверен доступ
	ServerID Key = "server_id"
	// Subuser: ключ выдачи доступа, найденной по публичному ID из URL
	Subuser Key = "subuser"
)

// Authorizer проверяет право учётной записи управлять субаккаунтами сервера.
type Authorizer interface {
	Authorize(ctx context.Context, serverID, actorID int, admin bool) error
}

// SubuserFinder ищет выдачу доступа по публичному идентификатору.
type SubuserFinder interface {
	ReadByPublicID(ctx context.Context, publicID string) (*models.Subuser, error)
}

// ServerAccess разбирает {server} из URL и пропускает запрос, только если автор
// токена владеет сервером или является администратором.
func ServerAccess(authorizer Authorizer, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.ServerAccess"
			log := log.With(
				sl.Op(op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				log.Error("claims not found in context")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}

			serverID, err := services.ParseID("server_id", chi.URLParam(r, "server"))
			if err != nil {
				log.Warn("invalid server id in url", sl.Err(err))
				writeServiceError(w, r, err)
				return
			}

			if err := authorizer.Authorize(r.Context(), serverID, claims.UserID, claims.IsAdmin()); err != nil {
				log.Warn("server access denied", slog.Int("server_id", serverID), slog.Int("actor_id", claims.UserID), sl.Err(err))
				writeServiceError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ServerID, serverID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SubuserAccess находит выдачу доступа по {subuser} из URL. Выдача другого сервера
// не раскрывается и отвечает 404. Должен стоять после ServerAccess.
func SubuserAccess(finder SubuserFinder, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.SubuserAccess"
			log := log.With(
				sl.Op(op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			serverID, ok := ServerIDFromContext(r.Context())
			if !ok {
				log.Error("server id not found in context")
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}

			sub, err := finder.ReadByPublicID(r.Context(), chi.URLParam(r, "subuser"))
			if err != nil {
				log.Warn("failed to find subuser", sl.Err(err))
				writeServiceError(w, r, err)
				return
			}
			if sub.ServerID != serverID {
				log.Warn("subuser belongs to another server", slog.Int("id", sub.ID), slog.Int("server_id", serverID))
				writeServiceError(w, r, services.ErrSubuserNotFound)
				return
			}

			ctx := context.WithValue(r.Context(), Subuser, sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ServerIDFromContext возвращает ID сервера, положенный ServerAccess.
func ServerIDFromContext(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(ServerID).(int)
	return id, ok
}

// SubuserFromContext возвращает выдачу доступа, положенную SubuserAccess.
func SubuserFromContext(ctx context.Context) (*models.Subuser, bool) {
	sub, ok := ctx.Value(Subuser).(*models.Subuser)
	return sub, ok && sub != nil
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := response.ServiceError(err)
	render.Status(r, status)
	render.JSON(w, r, body)
}
