package rabbitmq

import "github.com/magabrotheeeer/panel-subusers/internal/models"

// QueueConfig описывает привязку очереди к обменнику по ключу маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// SubuserQueues возвращает привязки очереди queue ко всем событиям субаккаунтов.
func SubuserQueues(queue string) []QueueConfig {
	return []QueueConfig{
		{QueueName: queue, RoutingKey: models.EventSubuserAdded},
		{QueueName: queue, RoutingKey: models.EventSubuserRemoved},
	}
}
