package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	amqp "github.com/rabbitmq/amqp091-go"

	"tutor-track/internal/shared/geo"
	"tutor-track/internal/shared/mq"
	"tutor-track/internal/shared/util"
	"tutor-track/internal/tracking/domain"
)

// floorSpeedKmh is the minimum speed assumed for ETA math, so a trainer
// stuck at a red light or walking does not produce an absurd ETA.
const floorSpeedKmh = 20.0

// StudentNotifier pushes one frame to a connected student.
type StudentNotifier interface {
	SendToStudent(studentID string, message interface{}) error
}

// LocationConsumer drains the location fanout queue and forwards each
// accepted ping to the session's student over websocket, enriched with the
// distance to the session home and a rough ETA.
type LocationConsumer struct {
	channel  *amqp.Channel
	queue    string
	sessions domain.SessionDirectory
	notifier StudentNotifier
	logger   *util.Logger
}

func NewLocationConsumer(ch *amqp.Channel, sessions domain.SessionDirectory, notifier StudentNotifier, logger *util.Logger) *LocationConsumer {
	return &LocationConsumer{
		channel:  ch,
		queue:    mq.LocationQueue,
		sessions: sessions,
		notifier: notifier,
		logger:   logger,
	}
}

func (c *LocationConsumer) Start(ctx context.Context) error {
	instance := "LocationConsumer.Start"

	msgs, err := c.channel.Consume(
		c.queue,
		"",
		false, // manual acknowledgment
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume %s failed: %w", c.queue, err)
	}

	go func() {
		for msg := range msgs {
			c.handleDelivery(ctx, msg)
		}
	}()
	c.logger.OK(instance, c.queue+" consumer started")
	return nil
}

func (c *LocationConsumer) handleDelivery(ctx context.Context, msg amqp.Delivery) {
	instance := "LocationConsumer.handleDelivery"

	var evt domain.LocationEvent
	if err := json.Unmarshal(msg.Body, &evt); err != nil {
		c.logger.Warn(instance, fmt.Sprintf("dropping malformed payload: %v", err))
		msg.Nack(false, false)
		return
	}

	session, err := c.sessions.Lookup(ctx, evt.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			// The session is gone; this frame can never be delivered.
			msg.Ack(false)
			return
		}
		c.logger.Warn(instance, fmt.Sprintf("session lookup failed for %s, requeueing: %v", evt.SessionID, err))
		msg.Nack(false, true)
		return
	}

	if err := c.notifier.SendToStudent(session.StudentID, buildLocationFrame(evt, session)); err != nil {
		// Best effort: the student reconnects and catches up over REST.
		c.logger.Warn(instance, fmt.Sprintf("push to student %s failed: %v", session.StudentID, err))
	}
	msg.Ack(false)
}

func buildLocationFrame(evt domain.LocationEvent, session *domain.SessionInfo) map[string]interface{} {
	distance := geo.Distance(evt.Latitude, evt.Longitude, session.HomeLat, session.HomeLng)

	frame := map[string]interface{}{
		"type":       "trainer_location",
		"journey_id": evt.JourneyID,
		"session_id": evt.SessionID,
		"position": map[string]interface{}{
			"latitude":    evt.Latitude,
			"longitude":   evt.Longitude,
			"sequence":    evt.Sequence,
			"recorded_at": evt.RecordedAt,
		},
		"distance_to_home_m": math.Round(distance),
		"eta_minutes":        etaMinutes(distance, evt.SpeedKmh),
	}
	if evt.SpeedKmh != nil {
		frame["speed_kmh"] = *evt.SpeedKmh
	}
	if evt.HeadingDeg != nil {
		frame["heading_deg"] = *evt.HeadingDeg
	}
	return frame
}

// etaMinutes estimates time to the session home from the straight-line
// distance at max(reported speed, floor), rounded up so the display never
// reads zero while still away.
func etaMinutes(distanceM float64, speedKmh *float64) int {
	speed := floorSpeedKmh
	if speedKmh != nil && *speedKmh > floorSpeedKmh {
		speed = *speedKmh
	}
	metersPerMinute := speed * 1000 / 60
	return int(math.Ceil(distanceM / metersPerMinute))
}
