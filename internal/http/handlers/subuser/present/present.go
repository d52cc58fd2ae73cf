// Package present собирает ресурс server_subuser из выдачи доступа:
// публичный идентификатор и текущий набор прав берутся у сервиса.
package present

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/panel-subusers/internal/http/response"
	"github.com/magabrotheeeer/panel-subusers/internal/models"
)

// Presenter: часть сервиса, нужная для представления субаккаунта.
type Presenter interface {
	PublicID(sub *models.Subuser) (string, error)
	GrantedPermissions(ctx context.Context, sub *models.Subuser) ([]string, error)
}

// Subuser возвращает ресурс server_subuser.
func Subuser(ctx context.Context, p Presenter, sub *models.Subuser) (response.Object, error) {
	const op = "present.Subuser"
	hashid, err := p.PublicID(sub)
	if err != nil {
		return response.Object{}, fmt.Errorf("%s: %w", op, err)
	}
	perms, err := p.GrantedPermissions(ctx, sub)
	if err != nil {
		return response.Object{}, fmt.Errorf("%s: %w", op, err)
	}
	return response.Subuser(sub, hashid, perms), nil
}
