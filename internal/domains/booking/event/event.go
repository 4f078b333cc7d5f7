package event

//go:generate go run go.uber.org/mock/mockgen -source=./event.go -destination=../mocks/event_mock.go -package=mocks

import (
	"context"

	"busline/config"
	"busline/infras/kafka"
	"busline/internal/domains/booking/model"
	"busline/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	TypeCreated   = "booking.created"
	TypeUpdated   = "booking.updated"
	TypeCancelled = "booking.cancelled"
	TypeDeleted   = "booking.deleted"

	headerEventType = "event-type"
	defaultTopic    = "bookings"
)

type Event struct {
	Type          string              `json:"type"`
	BookingID     string              `json:"bookingId"`
	BookingNumber string              `json:"bookingNumber"`
	PassengerID   string              `json:"passengerId"`
	ScheduleID    string              `json:"scheduleId"`
	NumberOfSeats int                 `json:"numberOfSeats"`
	TotalAmount   float64             `json:"totalAmount"`
	BookingStatus model.Status        `json:"bookingStatus"`
	PaymentStatus model.PaymentStatus `json:"paymentStatus"`
	OccurredAt    int64               `json:"occurredAt"`
}

// Publisher announces committed booking changes. Delivery failures are logged and never undo the change.
type Publisher interface {
	Publish(ctx context.Context, eventType string, booking model.Booking)
}

type publisherImpl struct {
	client kafka.Client
	topic  string
}

func New(cfg *config.Config, client kafka.Client) Publisher {
	topic := cfg.Kafka.BookingTopic
	if topic == "" {
		topic = defaultTopic
	}

	return &publisherImpl{
		client: client,
		topic:  topic,
	}
}

func (p *publisherImpl) Publish(ctx context.Context, eventType string, booking model.Booking) {
	message := kafka.Message{
		Key: booking.ID,
		Value: Event{
			Type:          eventType,
			BookingID:     booking.ID,
			BookingNumber: booking.BookingNumber,
			PassengerID:   booking.PassengerID,
			ScheduleID:    booking.ScheduleID,
			NumberOfSeats: booking.NumberOfSeats,
			TotalAmount:   booking.TotalAmount,
			BookingStatus: booking.BookingStatus,
			PaymentStatus: booking.PaymentStatus,
			OccurredAt:    timezone.Now().UnixMilli(),
		},
		Headers: map[string]string{headerEventType: eventType},
	}

	if err := p.client.SendMessages(context.WithoutCancel(ctx), p.topic, message); err != nil {
		log.Error().Err(err).Str("event", eventType).Str("bookingId", booking.ID).Msg("failed to publish booking event")
	}
}
