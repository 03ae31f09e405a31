package mq

import (
	"fmt"
	"log"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"tutor-track/internal/shared/models"
)

const (
	// TrackingExchange carries journey lifecycle notifications
	// (tracking.started / tracking.arrived / tracking.ended) for the
	// marketplace's notification service and any other interested consumer.
	TrackingExchange = "tracking_events"

	// LocationExchange fans accepted location pings out to live subscribers.
	LocationExchange = "location_updates"

	// LocationQueue is this service's own binding on LocationExchange,
	// feeding the student websocket hub.
	LocationQueue = "location_updates_tracking"
)

func ConnectToRMQ(cfg *models.RabbitMQConfig) (*amqp091.Connection, *amqp091.Channel, error) {
	dsn := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.User, cfg.Password, cfg.Host, cfg.Port)

	var conn *amqp091.Connection
	var ch *amqp091.Channel
	var err error

	for i := 0; i < 10; i++ {
		conn, err = amqp091.Dial(dsn)
		if err == nil {
			ch, err = conn.Channel()
			if err == nil {
				return conn, ch, nil
			}
		}
		log.Printf("RabbitMQ not ready, retrying... (%d/10)", i+1)
		time.Sleep(3 * time.Second)
	}

	return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
}

// MonitorConnection exposes abnormal broker closures. Publishers and
// consumers hold the original channel, so an in-place redial cannot reach
// them; the caller should treat a closure as fatal and shut down, letting
// the startup restore path rebuild state on the next boot.
func MonitorConnection(conn *amqp091.Connection) <-chan *amqp091.Error {
	return conn.NotifyClose(make(chan *amqp091.Error, 1))
}

// DeclareTopology sets up the exchanges and the service's consumer queue.
// Idempotent; runs once at startup.
func DeclareTopology(ch *amqp091.Channel) error {
	if err := ch.ExchangeDeclare(
		TrackingExchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare %s: %w", TrackingExchange, err)
	}

	if err := ch.ExchangeDeclare(
		LocationExchange,
		"fanout",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("declare %s: %w", LocationExchange, err)
	}

	if _, err := ch.QueueDeclare(
		LocationQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare %s: %w", LocationQueue, err)
	}

	if err := ch.QueueBind(LocationQueue, "", LocationExchange, false, nil); err != nil {
		return fmt.Errorf("bind %s: %w", LocationQueue, err)
	}

	return nil
}
