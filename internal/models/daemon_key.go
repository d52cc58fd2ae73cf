package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DaemonKeyPrefix отличает ключи, выданные панелью, от ключей самого демона.
const DaemonKeyPrefix = "i_"

// DaemonKey: ключ доступа учётной записи к демону конкретного сервера.
// Субаккаунт не ссылается на ключ напрямую: ключ ищется по паре (ServerID, UserID).
type DaemonKey struct {
	ID        int
	ServerID  int
	UserID    int
	Secret    string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired сообщает, истёк ли срок действия ключа на момент now.
func (k *DaemonKey) Expired(now time.Time) bool {
	return !k.ExpiresAt.After(now)
}

// NewDaemonKeySecret генерирует секрет ключа: префикс и 32 шестнадцатеричных символа.
func NewDaemonKeySecret() string {
	return DaemonKeyPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}
