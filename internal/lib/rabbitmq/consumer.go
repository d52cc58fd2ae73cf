package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/panel-subusers/internal/lib/sl"
)

// ConsumerMessage запускает потребителя очереди queueName. Сообщение подтверждается,
// если handler вернул nil, иначе возвращается в очередь.
func ConsumerMessage(ctx context.Context, log *slog.Logger, ch *amqp.Channel, queueName string, handler func([]byte) error) error {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	go dispatch(ctx, log, delivery, maxInFlight, handler)
	return nil
}

// maxInFlight ограничивает число одновременно обрабатываемых сообщений.
const maxInFlight = 10

// dispatch раздаёт сообщения обработчикам, пока не закрыт канал или не отменён ctx.
// Ожидание свободного слота тоже прерывается отменой ctx, сообщение при этом возвращается в очередь.
func dispatch(ctx context.Context, log *slog.Logger, delivery <-chan amqp.Delivery, limit int, handler func([]byte) error) {
	sem := make(chan struct{}, limit)
	for {
		select {
		case d, ok := <-delivery:
			if !ok {
				return
			}
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				if nackErr := d.Nack(false, true); nackErr != nil {
					log.Error("failed to nack message", sl.Err(nackErr))
				}
				return
			}
			go func(delivery amqp.Delivery) {
				defer func() { <-sem }()
				if err := handler(delivery.Body); err != nil {
					log.Warn("message handling failed, requeue", slog.String("routing_key", delivery.RoutingKey), sl.Err(err))
					if nackErr := delivery.Nack(false, true); nackErr != nil {
						log.Error("failed to nack message", sl.Err(nackErr))
					}
					return
				}
				if ackErr := delivery.Ack(false); ackErr != nil {
					log.Error("failed to ack message", sl.Err(ackErr))
				}
			}(d)
		case <-ctx.Done():
			return
		}
	}
}
