package rmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"tutor-track/internal/shared/mq"
	"tutor-track/internal/tracking/domain"
)

// Publisher pushes tracking lifecycle events to the topic exchange (routing
// key = event kind, so consumers can bind to tracking.started, tracking.#,
// ...) and accepted pings to the location fanout.
type Publisher struct {
	ch *amqp091.Channel
}

func NewPublisher(ch *amqp091.Channel) *Publisher {
	return &Publisher{ch: ch}
}

func (p *Publisher) PublishTracking(ctx context.Context, evt domain.TrackingEvent) error {
	return p.publish(ctx, mq.TrackingExchange, evt.Kind, evt)
}

func (p *Publisher) PublishLocation(ctx context.Context, evt domain.LocationEvent) error {
	return p.publish(ctx, mq.LocationExchange, "", evt)
}

func (p *Publisher) publish(ctx context.Context, exchange, routingKey string, data interface{}) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return p.ch.PublishWithContext(ctx,
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		})
}
