package mq

import (
	"fmt"

	"github.com/rabbitmq/amqp091-go"

	"github.com/ObservantAbc123/OpenFarm3-D/contracts/events"
)

// DeclareDLQQueue declares the dead letter queue for one event kind.
func DeclareDLQQueue(ch *amqp091.Channel, kind events.Kind) (amqp091.Queue, error) {
	queueName := fmt.Sprintf("%s.dlq", kind)

	q, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return amqp091.Queue{}, fmt.Errorf("failed to declare DLQ queue: %w", err)
	}

	err = ch.QueueBind(
		q.Name,
		string(kind),
		DLQExchangeName,
		false,
		nil,
	)
	if err != nil {
		return amqp091.Queue{}, fmt.Errorf("failed to bind DLQ queue: %w", err)
	}

	return q, nil
}

// PublishToDLQ parks a message that exhausted its retries.
func (p *Publisher) PublishToDLQ(kind events.Kind, payload []byte, originalError string) error {
	headers := amqp091.Table{
		"x-original-error": originalError,
		"x-failed-at":      "mail-service",
	}

	return p.channel.Publish(
		DLQExchangeName,
		string(kind),
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp091.Persistent,
			Headers:      headers,
		},
	)
}
