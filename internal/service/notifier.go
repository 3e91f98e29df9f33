package service

import (
	"context"

	"github.com/peakstay/reservation-engine/internal/domain"
	"github.com/peakstay/reservation-engine/pkg/logger"
	"go.uber.org/zap"
)

// Notifier delivers guest-facing messages. Delivery is best-effort:
// a reservation is never rolled back because a message did not go out.
type Notifier interface {
	// SendConfirmation sends a booking confirmation to the guest
	SendConfirmation(ctx context.Context, reservation *domain.Reservation) error

	// SendCancellation notifies the guest that the reservation was cancelled
	SendCancellation(ctx context.Context, reservation *domain.Reservation) error
}

// LogNotifier writes notifications to the structured log. It stands in
// for a mail or SMS gateway in environments without one configured.
type LogNotifier struct{}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) SendConfirmation(ctx context.Context, reservation *domain.Reservation) error {
	logger.Get().Info("booking confirmation",
		zap.String("number", reservation.Number),
		zap.String("guest_email", reservation.GuestEmail),
		zap.String("check_in", reservation.CheckInDate.Format("2006-01-02")),
		zap.String("check_out", reservation.CheckOutDate.Format("2006-01-02")),
		zap.Float64("total_amount", reservation.TotalAmount),
		zap.Float64("deposit_amount", reservation.DepositAmount),
	)
	return nil
}

func (n *LogNotifier) SendCancellation(ctx context.Context, reservation *domain.Reservation) error {
	logger.Get().Info("booking cancellation",
		zap.String("number", reservation.Number),
		zap.String("guest_email", reservation.GuestEmail),
		zap.String("reason", reservation.CancellationReason),
	)
	return nil
}

var _ Notifier = (*LogNotifier)(nil)
