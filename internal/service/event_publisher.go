package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/peakstay/reservation-engine/internal/domain"
	"github.com/peakstay/reservation-engine/pkg/kafka"
	"github.com/peakstay/reservation-engine/pkg/logger"
	"go.uber.org/zap"
)

// Event topics
const (
	EventReservationCreated       = "reservation.created"
	EventReservationStatusChanged = "reservation.status_changed"
)

// EventPublisher broadcasts reservation events to operational dashboards.
// Emission is fire-and-forget; a failure is never surfaced to the caller.
type EventPublisher interface {
	// PublishReservationCreated publishes a reservation created event
	PublishReservationCreated(ctx context.Context, reservation *domain.Reservation) error

	// PublishStatusChanged publishes a status transition event
	PublishStatusChanged(ctx context.Context, reservation *domain.Reservation, prior domain.ReservationStatus, actorID string) error

	// Close closes the event publisher
	Close() error
}

// reservationEvent is the wire payload for the event stream
type reservationEvent struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	ReservationID string    `json:"reservation_id"`
	Number        string    `json:"number"`
	UnitID        string    `json:"unit_id"`
	Status        string    `json:"status"`
	PriorStatus   string    `json:"prior_status,omitempty"`
	ActorID       string    `json:"actor_id,omitempty"`
	CheckIn       string    `json:"check_in"`
	CheckOut      string    `json:"check_out"`
	TotalAmount   float64   `json:"total_amount"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer *kafka.Producer
	topic    string
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "reservation-events"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:  cfg.Brokers,
		ClientID: cfg.ClientID,
	})
	if err != nil {
		return nil, err
	}

	return &KafkaEventPublisher{
		producer: producer,
		topic:    topic,
	}, nil
}

// PublishReservationCreated publishes a reservation created event
func (p *KafkaEventPublisher) PublishReservationCreated(ctx context.Context, reservation *domain.Reservation) error {
	return p.publish(ctx, reservationEvent{
		EventID:       uuid.New().String(),
		EventType:     EventReservationCreated,
		ReservationID: reservation.ID,
		Number:        reservation.Number,
		UnitID:        reservation.UnitID,
		Status:        reservation.Status.String(),
		CheckIn:       reservation.CheckInDate.Format("2006-01-02"),
		CheckOut:      reservation.CheckOutDate.Format("2006-01-02"),
		TotalAmount:   reservation.TotalAmount,
		OccurredAt:    time.Now(),
	})
}

// PublishStatusChanged publishes a status transition event
func (p *KafkaEventPublisher) PublishStatusChanged(ctx context.Context, reservation *domain.Reservation, prior domain.ReservationStatus, actorID string) error {
	return p.publish(ctx, reservationEvent{
		EventID:       uuid.New().String(),
		EventType:     EventReservationStatusChanged,
		ReservationID: reservation.ID,
		Number:        reservation.Number,
		UnitID:        reservation.UnitID,
		Status:        reservation.Status.String(),
		PriorStatus:   prior.String(),
		ActorID:       actorID,
		CheckIn:       reservation.CheckInDate.Format("2006-01-02"),
		CheckOut:      reservation.CheckOutDate.Format("2006-01-02"),
		TotalAmount:   reservation.TotalAmount,
		OccurredAt:    time.Now(),
	})
}

func (p *KafkaEventPublisher) publish(ctx context.Context, event reservationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Keyed by reservation so per-reservation ordering is preserved.
	p.producer.ProduceAsync(ctx, p.topic, []byte(event.ReservationID), payload, func(err error) {
		logger.Get().Warn("event delivery failed",
			zap.String("event_type", event.EventType),
			zap.String("reservation_id", event.ReservationID),
			zap.Error(err),
		)
	})
	return nil
}

// Close closes the event publisher
func (p *KafkaEventPublisher) Close() error {
	p.producer.Close()
	return nil
}

// NoOpEventPublisher discards all events. Used when brokers are
// unreachable so the engine keeps serving reservations.
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a no-op event publisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

func (p *NoOpEventPublisher) PublishReservationCreated(ctx context.Context, reservation *domain.Reservation) error {
	return nil
}

func (p *NoOpEventPublisher) PublishStatusChanged(ctx context.Context, reservation *domain.Reservation, prior domain.ReservationStatus, actorID string) error {
	return nil
}

func (p *NoOpEventPublisher) Close() error {
	return nil
}

// Ensure implementations satisfy EventPublisher
var (
	_ EventPublisher = (*KafkaEventPublisher)(nil)
	_ EventPublisher = (*NoOpEventPublisher)(nil)
)
