// Package models содержит доменные структуры субаккаунтов сервера: саму выдачу доступа,
// её права и связанный ключ демона, а также вспомогательные типы для разбора JSON-запросов.
package models

import "time"

// ResourceSubuser: имя ресурса субаккаунта в представлении API.
const ResourceSubuser = "server_subuser"

// Subuser связывает учётную запись с сервером, к которому ей выдан ограниченный доступ.
// Пара (UserID, ServerID) уникальна: одна выдача на пользователя и сервер.
type Subuser struct {
	ID        int       // Идентификатор записи, не меняется после создания
	UserID    int       // Учётная запись, получившая доступ
	ServerID  int       // Сервер, к которому выдан доступ
	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время последнего изменения набора прав
}

// DummySubuser используется для приёма данных из JSON-запроса на создание субаккаунта.
// Сервер берётся из URL, поэтому в теле его нет. user_id принимается и числом,
// и числовой строкой, проверка идёт через services.ParseID.
type DummySubuser struct {
	UserID      any      `json:"user_id" swaggertype:"integer"`
	Permissions []string `json:"permissions" validate:"dive,required"`
}

// DummyPermissions используется для приёма нового набора прав субаккаунта.
type DummyPermissions struct {
	Permissions []string `json:"permissions" validate:"dive,required"`
}

// SubuserEvent: сообщение об изменении доступа, публикуемое в брокер
// для уведомления владельца учётной записи.
type SubuserEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	SubuserID  int       `json:"subuser_id"`
	UserID     int       `json:"user_id"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	ServerID   int       `json:"server_id"`
	ServerName string    `json:"server_name"`
	OccurredAt time.Time `json:"occurred_at"`
}

const (
	// EventSubuserAdded: учётной записи выдан доступ к серверу.
	EventSubuserAdded = "subuser.added"
	// EventSubuserRemoved: доступ учётной записи к серверу отозван.
	EventSubuserRemoved = "subuser.removed"
)
