package event

//go:generate go run go.uber.org/mock/mockgen -source=./event.go -destination=../mocks/event_mock.go -package=mocks

import (
	"context"
	"errors"
	"strconv"
	"time"

	"lodge/config"
	"lodge/infras/kafka"
	"lodge/infras/otel"
	"lodge/internal/domains/reservation/model"
	"lodge/shared/constant"
	"lodge/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	TypeBooked    = "reservation.booked"
	TypeCancelled = "reservation.cancelled"
)

const publishTimeout = 5 * time.Second

// Event is the payload written to the reservations topic, keyed by room number so one
// room's history stays ordered on a single partition.
type Event struct {
	Type          string    `json:"type"`
	ReservationID string    `json:"reservation_id"`
	RoomNumber    int       `json:"room_number"`
	PartySize     int       `json:"party_size"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	Actor         string    `json:"actor,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func New(eventType string, reservation model.Reservation) Event {
	return Event{
		Type:          eventType,
		ReservationID: reservation.ID,
		RoomNumber:    reservation.RoomNumber,
		PartySize:     reservation.PartySize,
		StartDate:     timezone.FormatDate(reservation.StartDate),
		EndDate:       timezone.FormatDate(reservation.EndDate),
		Actor:         reservation.ModifiedBy,
		OccurredAt:    timezone.Now(),
	}
}

// Publisher announces committed reservation changes. Publishing never affects the
// outcome of the change itself.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
	// PublishAsync sends in the background, logging failures.
	PublishAsync(ctx context.Context, events ...Event)
}

type publisherImpl struct {
	client kafka.Client
	topic  string
	otel   otel.Otel
}

func NewPublisher(client kafka.Client, cfg *config.Config, otel otel.Otel) Publisher {
	return &publisherImpl{
		client: client,
		topic:  cfg.Kafka.Topic,
		otel:   otel,
	}
}

func (p *publisherImpl) Publish(ctx context.Context, events ...Event) (err error) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".Publish")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	messages := make([]kafka.Message, len(events))
	for i, evt := range events {
		messages[i] = kafka.Message{Key: strconv.Itoa(evt.RoomNumber), Value: evt}
	}

	return p.client.SendMessages(ctx, p.topic, messages...) //nolint:wrapcheck
}

func (p *publisherImpl) PublishAsync(ctx context.Context, events ...Event) {
	go func() {
		c, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()

		err := p.Publish(c, events...)
		if err == nil || errors.Is(err, kafka.ErrDisabled) {
			return
		}

		for _, evt := range events {
			log.Error().Err(err).Str("type", evt.Type).Str("reservation", evt.ReservationID).Msg("failed to publish reservation event")
		}
	}()
}
