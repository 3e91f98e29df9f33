package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/peakstay/reservation-engine/internal/domain"
	"github.com/peakstay/reservation-engine/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresReservationRepository implements ReservationRepository using
// PostgreSQL with pgxpool
type PostgresReservationRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresReservationRepository creates a new PostgresReservationRepository
func NewPostgresReservationRepository(pool *pgxpool.Pool) *PostgresReservationRepository {
	return &PostgresReservationRepository{pool: pool}
}

const reservationColumns = `
	id, number, unit_id, guest_name, guest_email, guest_phone,
	check_in_date, check_out_date, guests, nights,
	base_amount, add_ons_amount, deposit_amount, total_amount,
	status, payment_status, notes,
	checked_in_at, checked_in_by, checked_out_at, checked_out_by,
	cancelled_at, cancellation_reason, created_at, updated_at
`

// Insert stores a reservation and its add-on lines in one transaction.
// The reservations table carries an exclusion constraint on
// (unit_id, daterange(check_in_date, check_out_date)) for non-cancelled
// rows; a violation means another request won the availability race.
func (r *PostgresReservationRepository) Insert(ctx context.Context, reservation *domain.Reservation) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.insert")
	defer span.End()

	span.SetAttributes(
		attribute.String("reservation_id", reservation.ID),
		attribute.String("unit_id", reservation.UnitID),
		attribute.String("number", reservation.Number),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO reservations (` + reservationColumns + `)
		VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13, $14,
			$15, $16, $17,
			$18, $19, $20, $21,
			$22, $23, $24, $25
		)
	`

	_, err = tx.Exec(ctx, query,
		reservation.ID,
		reservation.Number,
		reservation.UnitID,
		reservation.GuestName,
		nullString(reservation.GuestEmail),
		nullString(reservation.GuestPhone),
		reservation.CheckInDate,
		reservation.CheckOutDate,
		reservation.Guests,
		reservation.Nights,
		reservation.BaseAmount,
		reservation.AddOnsAmount,
		reservation.DepositAmount,
		reservation.TotalAmount,
		reservation.Status.String(),
		string(reservation.PaymentStatus),
		nullString(reservation.Notes),
		reservation.CheckedInAt,
		nullString(reservation.CheckedInBy),
		reservation.CheckedOutAt,
		nullString(reservation.CheckedOutBy),
		reservation.CancelledAt,
		nullString(reservation.CancellationReason),
		reservation.CreatedAt,
		reservation.UpdatedAt,
	)
	if err != nil {
		if isDateConflict(err) {
			span.SetStatus(codes.Error, "date conflict")
			return domain.ErrAlreadyBooked
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to insert reservation: %w", err)
	}

	lineQuery := `
		INSERT INTO reservation_add_ons (
			reservation_id, add_on_id, name, quantity, unit_price, subtotal
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, line := range reservation.AddOns {
		if _, err := tx.Exec(ctx, lineQuery,
			reservation.ID,
			line.AddOnID,
			line.Name,
			line.Quantity,
			line.UnitPrice,
			line.Subtotal,
		); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("failed to insert add-on line: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		if isDateConflict(err) {
			span.SetStatus(codes.Error, "date conflict")
			return domain.ErrAlreadyBooked
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit reservation: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a reservation with its add-on lines
func (r *PostgresReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("reservation_id", id))

	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	reservation, err := r.queryOne(ctx, query, id)
	if err != nil {
		if errors.Is(err, domain.ErrReservationNotFound) {
			span.SetStatus(codes.Error, "not found")
			return nil, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return reservation, nil
}

// GetByNumber retrieves a reservation by its human booking number
func (r *PostgresReservationRepository) GetByNumber(ctx context.Context, number string) (*domain.Reservation, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.get_by_number")
	defer span.End()

	span.SetAttributes(attribute.String("number", number))

	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE number = $1`
	reservation, err := r.queryOne(ctx, query, number)
	if err != nil {
		if errors.Is(err, domain.ErrReservationNotFound) {
			span.SetStatus(codes.Error, "not found")
			return nil, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return reservation, nil
}

// ListForUnit returns the unit's reservations overlapping [from, to)
func (r *PostgresReservationRepository) ListForUnit(ctx context.Context, unitID string, from, to *time.Time) ([]*domain.Reservation, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.list_for_unit")
	defer span.End()

	span.SetAttributes(attribute.String("unit_id", unitID))

	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE unit_id = $1
			AND ($2::timestamptz IS NULL OR check_out_date > $2)
			AND ($3::timestamptz IS NULL OR check_in_date < $3)
		ORDER BY check_in_date
	`

	rows, err := r.pool.Query(ctx, query, unitID, from, to)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*domain.Reservation
	for rows.Next() {
		reservation, err := scanReservationRow(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating reservations: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(reservations)))
	span.SetStatus(codes.Ok, "")
	return reservations, nil
}

// UpdateStatus applies an optimistic status patch. The expected prior
// status is part of the WHERE clause; zero affected rows is disambiguated
// into not-found or a concurrent transition.
func (r *PostgresReservationRepository) UpdateStatus(ctx context.Context, id string, patch StatusPatch) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.update_status")
	defer span.End()

	span.SetAttributes(
		attribute.String("reservation_id", id),
		attribute.String("status", patch.Status.String()),
		attribute.String("expected_status", patch.ExpectedStatus.String()),
	)

	query := `
		UPDATE reservations SET
			status = $3,
			checked_in_at = COALESCE($4, checked_in_at),
			checked_in_by = COALESCE($5, checked_in_by),
			checked_out_at = COALESCE($6, checked_out_at),
			checked_out_by = COALESCE($7, checked_out_by),
			cancelled_at = COALESCE($8, cancelled_at),
			cancellation_reason = COALESCE($9, cancellation_reason),
			updated_at = $10
		WHERE id = $1 AND status = $2
	`

	result, err := r.pool.Exec(ctx, query,
		id,
		patch.ExpectedStatus.String(),
		patch.Status.String(),
		patch.CheckedInAt,
		nullString(patch.CheckedInBy),
		patch.CheckedOutAt,
		nullString(patch.CheckedOutBy),
		patch.CancelledAt,
		nullString(patch.CancellationReason),
		time.Now(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update reservation status: %w", err)
	}

	if result.RowsAffected() == 0 {
		var current string
		err := r.pool.QueryRow(ctx, "SELECT status FROM reservations WHERE id = $1", id).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				span.SetStatus(codes.Error, "not found")
				return domain.ErrReservationNotFound
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("failed to check reservation status: %w", err)
		}
		// Row exists but the expected status no longer holds: a
		// concurrent transition got there first.
		span.SetStatus(codes.Error, "status changed concurrently")
		return domain.ErrInvalidStatus
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *PostgresReservationRepository) queryOne(ctx context.Context, query string, arg interface{}) (*domain.Reservation, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	reservation, err := scanReservationRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	lines, err := r.loadAddOnLines(ctx, reservation.ID)
	if err != nil {
		return nil, err
	}
	reservation.AddOns = lines
	return reservation, nil
}

func (r *PostgresReservationRepository) loadAddOnLines(ctx context.Context, reservationID string) ([]domain.AddOnLine, error) {
	query := `
		SELECT add_on_id, name, quantity, unit_price, subtotal
		FROM reservation_add_ons
		WHERE reservation_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, reservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load add-on lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.AddOnLine
	for rows.Next() {
		var line domain.AddOnLine
		if err := rows.Scan(&line.AddOnID, &line.Name, &line.Quantity, &line.UnitPrice, &line.Subtotal); err != nil {
			return nil, fmt.Errorf("failed to scan add-on line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating add-on lines: %w", err)
	}
	return lines, nil
}

func scanReservationRow(row pgx.Row) (*domain.Reservation, error) {
	reservation := &domain.Reservation{}
	var (
		status             string
		paymentStatus      string
		guestEmail         *string
		guestPhone         *string
		notes              *string
		checkedInBy        *string
		checkedOutBy       *string
		cancellationReason *string
	)

	err := row.Scan(
		&reservation.ID,
		&reservation.Number,
		&reservation.UnitID,
		&reservation.GuestName,
		&guestEmail,
		&guestPhone,
		&reservation.CheckInDate,
		&reservation.CheckOutDate,
		&reservation.Guests,
		&reservation.Nights,
		&reservation.BaseAmount,
		&reservation.AddOnsAmount,
		&reservation.DepositAmount,
		&reservation.TotalAmount,
		&status,
		&paymentStatus,
		&notes,
		&reservation.CheckedInAt,
		&checkedInBy,
		&reservation.CheckedOutAt,
		&checkedOutBy,
		&reservation.CancelledAt,
		&cancellationReason,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	reservation.Status = domain.ReservationStatus(status)
	reservation.PaymentStatus = domain.PaymentStatus(paymentStatus)
	if guestEmail != nil {
		reservation.GuestEmail = *guestEmail
	}
	if guestPhone != nil {
		reservation.GuestPhone = *guestPhone
	}
	if notes != nil {
		reservation.Notes = *notes
	}
	if checkedInBy != nil {
		reservation.CheckedInBy = *checkedInBy
	}
	if checkedOutBy != nil {
		reservation.CheckedOutBy = *checkedOutBy
	}
	if cancellationReason != nil {
		reservation.CancellationReason = *cancellationReason
	}

	return reservation, nil
}

// isDateConflict reports whether the error is a storage-level booking
// conflict: an exclusion-constraint (23P01) or unique-constraint (23505)
// violation raised by the overlapping-dates guard.
func isDateConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23P01" || pgErr.Code == "23505"
}

// nullString converts an empty string to a nil pointer
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Ensure PostgresReservationRepository implements ReservationRepository
var _ ReservationRepository = (*PostgresReservationRepository)(nil)
