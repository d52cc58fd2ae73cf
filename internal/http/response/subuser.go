package response

import (
	"time"

	"github.com/magabrotheeeer/panel-subusers/internal/models"
)

// Object: ресурс API в виде {"object": ..., "attributes": ...}.
type Object struct {
	Object     string `json:"object"`
	Attributes any    `json:"attributes"`
}

// List: коллекция ресурсов API.
type List struct {
	Object string   `json:"object"`
	Data   []Object `json:"data"`
}

// SubuserAttributes: атрибуты ресурса server_subuser.
type SubuserAttributes struct {
	ID          int       `json:"id"`
	Hashid      string    `json:"hashid"`
	UserID      int       `json:"user_id"`
	ServerID    int       `json:"server_id"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Subuser переводит выдачу доступа в ресурс server_subuser.
func Subuser(sub *models.Subuser, hashid string, permissions []string) Object {
	if permissions == nil {
		permissions = []string{}
	}
	return Object{
		Object: models.ResourceSubuser,
		Attributes: SubuserAttributes{
			ID:          sub.ID,
			Hashid:      hashid,
			UserID:      sub.UserID,
			ServerID:    sub.ServerID,
			Permissions: permissions,
			CreatedAt:   sub.CreatedAt,
			UpdatedAt:   sub.UpdatedAt,
		},
	}
}

// SubuserList собирает коллекцию ресурсов server_subuser.
func SubuserList(items []Object) List {
	if items == nil {
		items = []Object{}
	}
	return List{Object: "list", Data: items}
}

// DaemonKeyAttributes: атрибуты ресурса daemon_key. Секрет не отдаётся целиком.
type DaemonKeyAttributes struct {
	ServerID  int       `json:"server_id"`
	UserID    int       `json:"user_id"`
	Secret    string    `json:"secret"`
	ExpiresAt time.Time `json:"expires_at"`
	Expired   bool      `json:"expired"`
}

// DaemonKey переводит ключ демона в ресурс API с замаскированным секретом.
func DaemonKey(key *models.DaemonKey, now time.Time) Object {
	return Object{
		Object: "daemon_key",
		Attributes: DaemonKeyAttributes{
			ServerID:  key.ServerID,
			UserID:    key.UserID,
			Secret:    maskSecret(key.Secret),
			ExpiresAt: key.ExpiresAt,
			Expired:   key.Expired(now),
		},
	}
}

func maskSecret(secret string) string {
	const visible = 6
	if len(secret) <= visible {
		return "******"
	}
	return secret[:visible] + "******"
}
