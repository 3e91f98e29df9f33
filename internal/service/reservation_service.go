package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/peakstay/reservation-engine/internal/availability"
	"github.com/peakstay/reservation-engine/internal/domain"
	"github.com/peakstay/reservation-engine/internal/dto"
	"github.com/peakstay/reservation-engine/internal/lifecycle"
	"github.com/peakstay/reservation-engine/internal/pricing"
	"github.com/peakstay/reservation-engine/internal/repository"
	"github.com/peakstay/reservation-engine/pkg/logger"
	"github.com/peakstay/reservation-engine/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Activity log actions
const (
	actionCreate   = "reservation.create"
	actionCheckIn  = "reservation.check_in"
	actionCheckOut = "reservation.check_out"
	actionCancel   = "reservation.cancel"
	actionOverride = "reservation.override"
)

// ReservationService defines the interface for reservation business logic
type ReservationService interface {
	// CreateReservation validates, prices, and persists a new stay
	CreateReservation(ctx context.Context, staffID string, req *dto.CreateReservationRequest) (*dto.ReservationResponse, error)

	// QuoteStay prices a stay without persisting anything
	QuoteStay(ctx context.Context, req *dto.QuoteRequest) (*dto.QuoteResponse, error)

	// GetReservation retrieves a reservation by ID
	GetReservation(ctx context.Context, id string) (*dto.ReservationResponse, error)

	// GetReservationByNumber retrieves a reservation by its booking number
	GetReservationByNumber(ctx context.Context, number string) (*dto.ReservationResponse, error)

	// ListUnitReservations lists a unit's reservations overlapping [from, to)
	ListUnitReservations(ctx context.Context, unitID string, from, to *time.Time) ([]*dto.ReservationResponse, error)

	// CheckAvailability reports whether the unit is free for [checkIn, checkOut)
	CheckAvailability(ctx context.Context, unitID, checkIn, checkOut string) (*dto.AvailabilityResponse, error)

	// BlockedDates lists the unit's occupied dates between from and to inclusive
	BlockedDates(ctx context.Context, unitID, from, to string) (*dto.BlockedDatesResponse, error)

	// CheckIn records guest arrival
	CheckIn(ctx context.Context, id, staffID string) (*dto.ReservationResponse, error)

	// CheckOut records guest departure
	CheckOut(ctx context.Context, id, staffID string) (*dto.ReservationResponse, error)

	// Cancel cancels a reservation
	Cancel(ctx context.Context, id, staffID string, req *dto.CancelReservationRequest) (*dto.ReservationResponse, error)

	// SetStatus is the administrative status override
	SetStatus(ctx context.Context, id, staffID string, req *dto.SetStatusRequest) (*dto.ReservationResponse, error)
}

// reservationService implements ReservationService
type reservationService struct {
	catalogRepo     repository.CatalogRepository
	reservationRepo repository.ReservationRepository
	activityRepo    repository.ActivityRepository
	eventPublisher  EventPublisher
	notifier        Notifier
	numberPrefix    string
}

// ReservationServiceConfig contains configuration for the reservation service
type ReservationServiceConfig struct {
	NumberPrefix string
}

// NewReservationService creates a new reservation service
func NewReservationService(
	catalogRepo repository.CatalogRepository,
	reservationRepo repository.ReservationRepository,
	activityRepo repository.ActivityRepository,
	eventPublisher EventPublisher,
	notifier Notifier,
	cfg *ReservationServiceConfig,
) ReservationService {
	prefix := "CHL"
	if cfg != nil && cfg.NumberPrefix != "" {
		prefix = cfg.NumberPrefix
	}
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	if notifier == nil {
		notifier = NewLogNotifier()
	}
	return &reservationService{
		catalogRepo:     catalogRepo,
		reservationRepo: reservationRepo,
		activityRepo:    activityRepo,
		eventPublisher:  eventPublisher,
		notifier:        notifier,
		numberPrefix:    prefix,
	}
}

// CreateReservation validates, prices, and persists a new stay
func (s *reservationService) CreateReservation(ctx context.Context, staffID string, req *dto.CreateReservationRequest) (*dto.ReservationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.create")
	defer span.End()

	if req == nil || req.UnitID == "" {
		span.SetStatus(codes.Error, "invalid unit_id")
		return nil, domain.ErrInvalidUnitID
	}

	checkIn, checkOut, err := parseStayRange(req.CheckIn, req.CheckOut)
	if err != nil {
		span.SetStatus(codes.Error, "invalid date range")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("unit_id", req.UnitID),
		attribute.String("check_in", req.CheckIn),
		attribute.String("check_out", req.CheckOut),
		attribute.Int("guests", req.Guests),
	)

	unit, err := s.catalogRepo.GetUnit(ctx, req.UnitID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !unit.IsActive {
		span.SetStatus(codes.Error, "inactive unit")
		return nil, domain.ErrInactiveUnit
	}

	if domain.NightsBetween(checkIn, checkOut) < 1 {
		span.SetStatus(codes.Error, "invalid date range")
		return nil, domain.ErrInvalidRange
	}
	if req.Guests < 1 {
		span.SetStatus(codes.Error, "invalid guests")
		return nil, domain.ErrInvalidGuests
	}
	if req.Guests > unit.Capacity {
		span.SetStatus(codes.Error, "capacity exceeded")
		return nil, domain.ErrCapacityExceeded
	}

	// Advisory pre-check; the storage constraint is the real arbiter.
	existing, err := s.reservationRepo.ListForUnit(ctx, req.UnitID, &checkIn, &checkOut)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !availability.IsAvailable(existing, checkIn, checkOut) {
		span.SetStatus(codes.Error, "not available")
		return nil, domain.ErrNotAvailable
	}

	quote, err := s.priceStay(ctx, unit, checkIn, checkOut, req.AddOns)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	now := time.Now()
	reservation := &domain.Reservation{
		ID:            uuid.New().String(),
		Number:        s.generateBookingNumber(ctx, now),
		UnitID:        unit.ID,
		GuestName:     req.GuestName,
		GuestEmail:    req.GuestEmail,
		GuestPhone:    req.GuestPhone,
		CheckInDate:   checkIn,
		CheckOutDate:  checkOut,
		Guests:        req.Guests,
		Nights:        quote.Nights,
		BaseAmount:    quote.BaseAmount,
		AddOnsAmount:  quote.AddOnsAmount,
		DepositAmount: quote.DepositAmount,
		TotalAmount:   quote.TotalAmount,
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentUnpaid,
		Notes:         req.Notes,
		AddOns:        quote.Lines,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.reservationRepo.Insert(ctx, reservation); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Side effects are fire-and-forget; the booking is already durable.
	go func(r *domain.Reservation) {
		bg := context.Background()
		if pubErr := s.eventPublisher.PublishReservationCreated(bg, r); pubErr != nil {
			logger.Get().Warn("publish created event failed", zap.String("number", r.Number), zap.Error(pubErr))
		}
		if notifyErr := s.notifier.SendConfirmation(bg, r); notifyErr != nil {
			logger.Get().Warn("confirmation send failed", zap.String("number", r.Number), zap.Error(notifyErr))
		}
		s.logActivity(bg, actionCreate, r, staffID, nil)
	}(reservation)

	span.SetAttributes(attribute.String("number", reservation.Number))
	span.SetStatus(codes.Ok, "")
	return dto.FromDomain(reservation), nil
}

// QuoteStay prices a stay without persisting anything
func (s *reservationService) QuoteStay(ctx context.Context, req *dto.QuoteRequest) (*dto.QuoteResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.quote")
	defer span.End()

	if req == nil || req.UnitID == "" {
		span.SetStatus(codes.Error, "invalid unit_id")
		return nil, domain.ErrInvalidUnitID
	}

	checkIn, checkOut, err := parseStayRange(req.CheckIn, req.CheckOut)
	if err != nil {
		span.SetStatus(codes.Error, "invalid date range")
		return nil, err
	}

	unit, err := s.catalogRepo.GetUnit(ctx, req.UnitID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !unit.IsActive {
		span.SetStatus(codes.Error, "inactive unit")
		return nil, domain.ErrInactiveUnit
	}

	quote, err := s.priceStay(ctx, unit, checkIn, checkOut, req.AddOns)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.QuoteFromLines(quote.Nights, quote.BaseAmount, quote.AddOnsAmount, quote.DepositAmount, quote.TotalAmount, quote.Lines), nil
}

// GetReservation retrieves a reservation by ID
func (s *reservationService) GetReservation(ctx context.Context, id string) (*dto.ReservationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.get")
	defer span.End()

	if id == "" {
		span.SetStatus(codes.Error, "invalid reservation_id")
		return nil, domain.ErrInvalidReservationID
	}
	span.SetAttributes(attribute.String("reservation_id", id))

	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.FromDomain(reservation), nil
}

// GetReservationByNumber retrieves a reservation by its booking number
func (s *reservationService) GetReservationByNumber(ctx context.Context, number string) (*dto.ReservationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.get_by_number")
	defer span.End()

	if number == "" {
		span.SetStatus(codes.Error, "invalid number")
		return nil, domain.ErrInvalidReservationID
	}
	span.SetAttributes(attribute.String("number", number))

	reservation, err := s.reservationRepo.GetByNumber(ctx, number)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.FromDomain(reservation), nil
}

// ListUnitReservations lists a unit's reservations overlapping [from, to)
func (s *reservationService) ListUnitReservations(ctx context.Context, unitID string, from, to *time.Time) ([]*dto.ReservationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.list_for_unit")
	defer span.End()

	if unitID == "" {
		span.SetStatus(codes.Error, "invalid unit_id")
		return nil, domain.ErrInvalidUnitID
	}
	span.SetAttributes(attribute.String("unit_id", unitID))

	reservations, err := s.reservationRepo.ListForUnit(ctx, unitID, from, to)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	responses := make([]*dto.ReservationResponse, 0, len(reservations))
	for _, r := range reservations {
		responses = append(responses, dto.FromDomain(r))
	}

	span.SetAttributes(attribute.Int("count", len(responses)))
	span.SetStatus(codes.Ok, "")
	return responses, nil
}

// CheckAvailability reports whether the unit is free for [checkIn, checkOut)
func (s *reservationService) CheckAvailability(ctx context.Context, unitID, checkIn, checkOut string) (*dto.AvailabilityResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.check_availability")
	defer span.End()

	if unitID == "" {
		span.SetStatus(codes.Error, "invalid unit_id")
		return nil, domain.ErrInvalidUnitID
	}

	in, out, err := parseStayRange(checkIn, checkOut)
	if err != nil {
		span.SetStatus(codes.Error, "invalid date range")
		return nil, err
	}
	if domain.NightsBetween(in, out) < 1 {
		span.SetStatus(codes.Error, "invalid date range")
		return nil, domain.ErrInvalidRange
	}

	span.SetAttributes(
		attribute.String("unit_id", unitID),
		attribute.String("check_in", checkIn),
		attribute.String("check_out", checkOut),
	)

	if _, err := s.catalogRepo.GetUnit(ctx, unitID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	existing, err := s.reservationRepo.ListForUnit(ctx, unitID, &in, &out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	available := availability.IsAvailable(existing, in, out)
	span.SetAttributes(attribute.Bool("available", available))
	span.SetStatus(codes.Ok, "")
	return &dto.AvailabilityResponse{
		UnitID:    unitID,
		CheckIn:   in.Format(dto.DateFormat),
		CheckOut:  out.Format(dto.DateFormat),
		Available: available,
	}, nil
}

// BlockedDates lists the unit's occupied dates between from and to inclusive
func (s *reservationService) BlockedDates(ctx context.Context, unitID, from, to string) (*dto.BlockedDatesResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.blocked_dates")
	defer span.End()

	if unitID == "" {
		span.SetStatus(codes.Error, "invalid unit_id")
		return nil, domain.ErrInvalidUnitID
	}

	start, end, err := parseStayRange(from, to)
	if err != nil {
		span.SetStatus(codes.Error, "invalid date range")
		return nil, err
	}

	span.SetAttributes(attribute.String("unit_id", unitID))

	// The store filter is half-open on check-in date; widen it by one day
	// so a stay starting exactly on the last calendar day is included.
	queryEnd := end.AddDate(0, 0, 1)
	existing, err := s.reservationRepo.ListForUnit(ctx, unitID, &start, &queryEnd)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	dates := availability.BlockedDates(existing, start, end)
	formatted := make([]string, 0, len(dates))
	for _, d := range dates {
		formatted = append(formatted, d.Format(dto.DateFormat))
	}

	span.SetAttributes(attribute.Int("count", len(formatted)))
	span.SetStatus(codes.Ok, "")
	return &dto.BlockedDatesResponse{
		UnitID: unitID,
		From:   start.Format(dto.DateFormat),
		To:     end.Format(dto.DateFormat),
		Dates:  formatted,
	}, nil
}

// CheckIn records guest arrival
func (s *reservationService) CheckIn(ctx context.Context, id, staffID string) (*dto.ReservationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.check_in")
	defer span.End()

	return s.transition(ctx, id, func(r *domain.Reservation, prior domain.ReservationStatus, now time.Time) (repository.StatusPatch, error) {
		if err := lifecycle.CheckIn(r, staffID, now); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return repository.StatusPatch{}, err
		}
		return repository.StatusPatch{
			ExpectedStatus: prior,
			Status:         r.Status,
			CheckedInAt:    r.CheckedInAt,
			CheckedInBy:    r.CheckedInBy,
		}, nil
	}, staffID, actionCheckIn)
}

// CheckOut records guest departure
func (s *reservationService) CheckOut(ctx context.Context, id, staffID string) (*dto.ReservationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.check_out")
	defer span.End()

	return s.transition(ctx, id, func(r *domain.Reservation, prior domain.ReservationStatus, now time.Time) (repository.StatusPatch, error) {
		if err := lifecycle.CheckOut(r, staffID, now); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return repository.StatusPatch{}, err
		}
		return repository.StatusPatch{
			ExpectedStatus: prior,
			Status:         r.Status,
			CheckedOutAt:   r.CheckedOutAt,
			CheckedOutBy:   r.CheckedOutBy,
		}, nil
	}, staffID, actionCheckOut)
}

// Cancel cancels a reservation
func (s *reservationService) Cancel(ctx context.Context, id, staffID string, req *dto.CancelReservationRequest) (*dto.ReservationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.cancel")
	defer span.End()

	reason := ""
	if req != nil {
		reason = req.Reason
	}

	resp, err := s.transition(ctx, id, func(r *domain.Reservation, prior domain.ReservationStatus, now time.Time) (repository.StatusPatch, error) {
		if cancelErr := lifecycle.Cancel(r, reason, now); cancelErr != nil {
			span.SetStatus(codes.Error, cancelErr.Error())
			return repository.StatusPatch{}, cancelErr
		}
		return repository.StatusPatch{
			ExpectedStatus:     prior,
			Status:             r.Status,
			CancelledAt:        r.CancelledAt,
			CancellationReason: r.CancellationReason,
		}, nil
	}, staffID, actionCancel)
	if err != nil {
		return nil, err
	}

	go func() {
		bg := context.Background()
		if r, getErr := s.reservationRepo.GetByID(bg, id); getErr == nil {
			if notifyErr := s.notifier.SendCancellation(bg, r); notifyErr != nil {
				logger.Get().Warn("cancellation send failed", zap.String("number", r.Number), zap.Error(notifyErr))
			}
		}
	}()

	return resp, nil
}

// SetStatus is the administrative status override
func (s *reservationService) SetStatus(ctx context.Context, id, staffID string, req *dto.SetStatusRequest) (*dto.ReservationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.set_status")
	defer span.End()

	if req == nil {
		span.SetStatus(codes.Error, "invalid status")
		return nil, domain.ErrInvalidStatusValue
	}
	target := domain.ReservationStatus(req.Status)

	return s.transition(ctx, id, func(r *domain.Reservation, prior domain.ReservationStatus, now time.Time) (repository.StatusPatch, error) {
		if _, overrideErr := lifecycle.Override(r, target); overrideErr != nil {
			span.SetStatus(codes.Error, overrideErr.Error())
			return repository.StatusPatch{}, overrideErr
		}
		return repository.StatusPatch{
			ExpectedStatus: prior,
			Status:         r.Status,
		}, nil
	}, staffID, actionOverride)
}

// transition loads a reservation, applies a lifecycle mutation, and
// persists it with an optimistic status check. A concurrent transition
// surfaces as domain.ErrInvalidStatus from the repository.
func (s *reservationService) transition(
	ctx context.Context,
	id string,
	mutate func(r *domain.Reservation, prior domain.ReservationStatus, now time.Time) (repository.StatusPatch, error),
	staffID, action string,
) (*dto.ReservationResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidReservationID
	}

	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	prior := reservation.Status

	now := time.Now()
	patch, err := mutate(reservation, prior, now)
	if err != nil {
		return nil, err
	}

	if err := s.reservationRepo.UpdateStatus(ctx, id, patch); err != nil {
		return nil, err
	}
	reservation.UpdatedAt = now

	go func(r *domain.Reservation, prior domain.ReservationStatus) {
		bg := context.Background()
		if pubErr := s.eventPublisher.PublishStatusChanged(bg, r, prior, staffID); pubErr != nil {
			logger.Get().Warn("publish status event failed", zap.String("number", r.Number), zap.Error(pubErr))
		}
		s.logActivity(bg, action, r, staffID, map[string]interface{}{"prior_status": prior.String()})
	}(reservation, prior)

	return dto.FromDomain(reservation), nil
}

// priceStay resolves the catalog inputs and prices the stay
func (s *reservationService) priceStay(ctx context.Context, unit *domain.Unit, checkIn, checkOut time.Time, selections []dto.AddOnSelection) (*pricing.Quote, error) {
	rules, err := s.catalogRepo.GetActivePriceRules(ctx, unit.ID)
	if err != nil {
		return nil, err
	}

	var catalog []domain.AddOn
	picks := make([]pricing.Selection, 0, len(selections))
	if len(selections) > 0 {
		ids := make([]string, 0, len(selections))
		for _, sel := range selections {
			ids = append(ids, sel.AddOnID)
			picks = append(picks, pricing.Selection{AddOnID: sel.AddOnID, Quantity: sel.Quantity})
		}
		catalog, err = s.catalogRepo.GetAddOnsByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	policy, err := s.catalogRepo.GetDepositPolicy(ctx)
	if err != nil {
		return nil, err
	}

	return pricing.ComputeStayCost(unit, rules, checkIn, checkOut, picks, catalog, policy)
}

// generateBookingNumber produces a human-friendly booking number of the
// form PREFIX-YYMMDD-NNN. Uniqueness is advisory: a handful of probe
// reads, then the candidate is used as-is.
func (s *reservationService) generateBookingNumber(ctx context.Context, now time.Time) string {
	var number string
	for attempt := 0; attempt < 5; attempt++ {
		number = fmt.Sprintf("%s-%s-%03d", s.numberPrefix, now.Format("060102"), randomSuffix())
		if _, err := s.reservationRepo.GetByNumber(ctx, number); err != nil {
			break
		}
	}
	return number
}

func randomSuffix() int {
	var b [2]byte
	if _, err := rand.Read(b[:]); err != nil {
		return int(time.Now().UnixNano() % 1000)
	}
	return int(binary.BigEndian.Uint16(b[:])) % 1000
}

func (s *reservationService) logActivity(ctx context.Context, action string, r *domain.Reservation, actorID string, extra map[string]interface{}) {
	if s.activityRepo == nil {
		return
	}
	payload := map[string]interface{}{
		"reservation_id": r.ID,
		"number":         r.Number,
		"unit_id":        r.UnitID,
		"status":         r.Status.String(),
	}
	for k, v := range extra {
		payload[k] = v
	}
	if err := s.activityRepo.LogActivity(ctx, action, payload, actorID); err != nil {
		logger.Get().Warn("activity log failed", zap.String("action", action), zap.Error(err))
	}
}

// parseStayRange parses a pair of wire dates into UTC calendar dates
func parseStayRange(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := time.ParseInLocation(dto.DateFormat, checkIn, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, domain.ErrInvalidRange
	}
	out, err := time.ParseInLocation(dto.DateFormat, checkOut, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, domain.ErrInvalidRange
	}
	return in, out, nil
}
