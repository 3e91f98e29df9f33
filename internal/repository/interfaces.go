package repository

import (
	"context"
	"time"

	"github.com/peakstay/reservation-engine/internal/domain"
)

// CatalogRepository reads the pricing catalog. The catalog is owned by an
// external collaborator; everything here is read-only.
type CatalogRepository interface {
	// GetUnit retrieves a chalet by ID
	GetUnit(ctx context.Context, id string) (*domain.Unit, error)

	// GetActivePriceRules returns the unit's active price rules in their
	// catalog order. Order is the first-match resolution contract.
	GetActivePriceRules(ctx context.Context, unitID string) ([]domain.PriceRule, error)

	// GetAddOnsByIDs retrieves catalog add-ons by ID; missing IDs are
	// simply absent from the result
	GetAddOnsByIDs(ctx context.Context, ids []string) ([]domain.AddOn, error)

	// GetDepositPolicy returns the globally configured deposit policy
	GetDepositPolicy(ctx context.Context) (*domain.DepositPolicy, error)
}

// StatusPatch is an optimistic read-modify-write of a reservation's
// status. ExpectedStatus is re-verified at write time so a concurrent
// transition is never silently clobbered.
type StatusPatch struct {
	ExpectedStatus     domain.ReservationStatus
	Status             domain.ReservationStatus
	CheckedInAt        *time.Time
	CheckedInBy        string
	CheckedOutAt       *time.Time
	CheckedOutBy       string
	CancelledAt        *time.Time
	CancellationReason string
}

// ReservationRepository persists reservations
type ReservationRepository interface {
	// Insert stores a reservation and its add-on lines atomically. A
	// storage-level date conflict surfaces as domain.ErrAlreadyBooked.
	Insert(ctx context.Context, reservation *domain.Reservation) error

	// GetByID retrieves a reservation with its add-on lines
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)

	// GetByNumber retrieves a reservation by its human booking number
	GetByNumber(ctx context.Context, number string) (*domain.Reservation, error)

	// ListForUnit returns the unit's reservations overlapping the
	// half-open range [from, to). Nil bounds mean unbounded.
	ListForUnit(ctx context.Context, unitID string, from, to *time.Time) ([]*domain.Reservation, error)

	// UpdateStatus applies an optimistic status patch
	UpdateStatus(ctx context.Context, id string, patch StatusPatch) error
}

// ActivityRepository records audit entries for reservation actions
type ActivityRepository interface {
	LogActivity(ctx context.Context, action string, payload map[string]interface{}, actorID string) error
}
