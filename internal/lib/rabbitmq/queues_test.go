package rabbitmq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/panel-subusers/internal/models"
)

func TestSubuserQueues(t *testing.T) {
	queues := SubuserQueues("notifications.subusers")

	require.Len(t, queues, 2)

	keys := make([]string, 0, len(queues))
	for _, q := range queues {
		assert.Equal(t, "notifications.subusers", q.QueueName)
		keys = append(keys, q.RoutingKey)
	}
	assert.ElementsMatch(t, []string{models.EventSubuserAdded, models.EventSubuserRemoved}, keys)
}
