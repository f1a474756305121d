package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

const (
	ExchangeWorkers Exchange = "nebula.workers"

	QueueWorkersFinished Queue = "workers.finished"

	RoutingKeyFinished RoutingKey = "finished"
)

// SetupTopology объявляет exchange и очередь сводок.
// Объявления идемпотентны — вызывается при каждом старте.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(ExchangeWorkers), // name
			"direct",                // type
			true,                    // durable
			false,                   // auto-deleted
			false,                   // internal
			false,                   // no-wait
			nil,                     // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeWorkers, err)
		}

		_, err = ch.QueueDeclare(
			string(QueueWorkersFinished), // name
			true,                         // durable
			false,                        // delete when unused
			false,                        // exclusive
			false,                        // no-wait
			nil,                          // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", QueueWorkersFinished, err)
		}

		err = ch.QueueBind(
			string(QueueWorkersFinished), // queue name
			string(RoutingKeyFinished),   // routing key
			string(ExchangeWorkers),      // exchange
			false,                        // no-wait
			nil,                          // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", QueueWorkersFinished, ExchangeWorkers, err)
		}

		return nil
	})
}
