package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/peakstay/reservation-engine/internal/domain"
	"github.com/peakstay/reservation-engine/internal/dto"
	"github.com/peakstay/reservation-engine/internal/service"
	"github.com/peakstay/reservation-engine/pkg/middleware"
	"github.com/peakstay/reservation-engine/pkg/response"
	"github.com/peakstay/reservation-engine/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ReservationHandler handles reservation HTTP requests
type ReservationHandler struct {
	reservationService service.ReservationService
}

// NewReservationHandler creates a new reservation handler
func NewReservationHandler(reservationService service.ReservationService) *ReservationHandler {
	return &ReservationHandler{
		reservationService: reservationService,
	}
}

// CreateReservation handles POST /reservations
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.reservation.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.Error(c, 400, "INVALID_REQUEST", "invalid request body", err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("unit_id", req.UnitID),
		attribute.String("check_in", req.CheckIn),
		attribute.String("check_out", req.CheckOut),
	)

	result, err := h.reservationService.CreateReservation(ctx, middleware.GetStaffID(c), &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("number", result.Number))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// QuoteStay handles POST /reservations/quote
func (h *ReservationHandler) QuoteStay(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.reservation.quote")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.Error(c, 400, "INVALID_REQUEST", "invalid request body", err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("unit_id", req.UnitID),
		attribute.String("check_in", req.CheckIn),
		attribute.String("check_out", req.CheckOut),
	)

	result, err := h.reservationService.QuoteStay(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// GetReservation handles GET /reservations/:id
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.reservation.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id := c.Param("id")
	if id == "" {
		span.SetStatus(codes.Error, "reservation id required")
		response.BadRequest(c, "INVALID_REQUEST", "reservation id required")
		return
	}
	span.SetAttributes(attribute.String("reservation_id", id))

	result, err := h.reservationService.GetReservation(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// GetReservationByNumber handles GET /reservations/number/:number
func (h *ReservationHandler) GetReservationByNumber(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.reservation.get_by_number")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	number := c.Param("number")
	if number == "" {
		span.SetStatus(codes.Error, "booking number required")
		response.BadRequest(c, "INVALID_REQUEST", "booking number required")
		return
	}
	span.SetAttributes(attribute.String("number", number))

	result, err := h.reservationService.GetReservationByNumber(ctx, number)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// ListUnitReservations handles GET /units/:id/reservations
func (h *ReservationHandler) ListUnitReservations(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.reservation.list_for_unit")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	unitID := c.Param("id")
	if unitID == "" {
		span.SetStatus(codes.Error, "unit id required")
		response.BadRequest(c, "INVALID_REQUEST", "unit id required")
		return
	}
	span.SetAttributes(attribute.String("unit_id", unitID))

	var from, to *time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.ParseInLocation(dto.DateFormat, v, time.UTC)
		if err != nil {
			span.SetStatus(codes.Error, "invalid from date")
			response.BadRequest(c, "INVALID_REQUEST", "invalid from date")
			return
		}
		from = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.ParseInLocation(dto.DateFormat, v, time.UTC)
		if err != nil {
			span.SetStatus(codes.Error, "invalid to date")
			response.BadRequest(c, "INVALID_REQUEST", "invalid to date")
			return
		}
		to = &t
	}

	result, err := h.reservationService.ListUnitReservations(ctx, unitID, from, to)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", len(result)))
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// CheckAvailability handles GET /units/:id/availability
func (h *ReservationHandler) CheckAvailability(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.reservation.check_availability")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	unitID := c.Param("id")
	checkIn := c.Query("check_in")
	checkOut := c.Query("check_out")
	if checkIn == "" || checkOut == "" {
		span.SetStatus(codes.Error, "check_in and check_out required")
		response.BadRequest(c, "INVALID_REQUEST", "check_in and check_out query parameters are required")
		return
	}

	span.SetAttributes(
		attribute.String("unit_id", unitID),
		attribute.String("check_in", checkIn),
		attribute.String("check_out", checkOut),
	)

	result, err := h.reservationService.CheckAvailability(ctx, unitID, checkIn, checkOut)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// BlockedDates handles GET /units/:id/blocked-dates
func (h *ReservationHandler) BlockedDates(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.reservation.blocked_dates")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	unitID := c.Param("id")
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		span.SetStatus(codes.Error, "from and to required")
		response.BadRequest(c, "INVALID_REQUEST", "from and to query parameters are required")
		return
	}

	span.SetAttributes(attribute.String("unit_id", unitID))

	result, err := h.reservationService.BlockedDates(ctx, unitID, from, to)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// CheckIn handles POST /reservations/:id/check-in
func (h *ReservationHandler) CheckIn(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.reservation.check_in")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id := c.Param("id")
	span.SetAttributes(attribute.String("reservation_id", id))

	result, err := h.reservationService.CheckIn(ctx, id, middleware.GetStaffID(c))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// CheckOut handles POST /reservations/:id/check-out
func (h *ReservationHandler) CheckOut(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.reservation.check_out")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id := c.Param("id")
	span.SetAttributes(attribute.String("reservation_id", id))

	result, err := h.reservationService.CheckOut(ctx, id, middleware.GetStaffID(c))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// Cancel handles POST /reservations/:id/cancel
func (h *ReservationHandler) Cancel(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.reservation.cancel")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id := c.Param("id")
	span.SetAttributes(attribute.String("reservation_id", id))

	var req dto.CancelReservationRequest
	// Reason is optional, an empty body is fine
	_ = c.ShouldBindJSON(&req)

	result, err := h.reservationService.Cancel(ctx, id, middleware.GetStaffID(c), &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// SetStatus handles PUT /reservations/:id/status
func (h *ReservationHandler) SetStatus(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.reservation.set_status")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id := c.Param("id")
	span.SetAttributes(attribute.String("reservation_id", id))

	var req dto.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.Error(c, 400, "INVALID_REQUEST", "invalid request body", err.Error())
		return
	}
	span.SetAttributes(attribute.String("status", req.Status))

	result, err := h.reservationService.SetStatus(ctx, id, middleware.GetStaffID(c), &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// handleError converts domain errors to HTTP responses
func (h *ReservationHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnitNotFound):
		response.NotFound(c, "UNIT_NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrReservationNotFound):
		response.NotFound(c, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrInactiveUnit):
		response.BadRequest(c, "INACTIVE_UNIT", err.Error())
	case errors.Is(err, domain.ErrInvalidRange):
		response.BadRequest(c, "INVALID_RANGE", err.Error())
	case errors.Is(err, domain.ErrInvalidGuests):
		response.BadRequest(c, "INVALID_GUESTS", err.Error())
	case errors.Is(err, domain.ErrCapacityExceeded):
		response.BadRequest(c, "CAPACITY_EXCEEDED", err.Error())
	case errors.Is(err, domain.ErrInvalidUnitID),
		errors.Is(err, domain.ErrInvalidReservationID):
		response.BadRequest(c, "INVALID_REQUEST", err.Error())
	case errors.Is(err, domain.ErrInvalidStatusValue):
		response.BadRequest(c, "INVALID_STATUS_VALUE", err.Error())
	case errors.Is(err, domain.ErrInvalidStatus):
		response.BadRequest(c, "INVALID_STATUS", err.Error())
	case errors.Is(err, domain.ErrAlreadyCancelled):
		response.BadRequest(c, "ALREADY_CANCELLED", err.Error())
	case errors.Is(err, domain.ErrCannotCancel):
		response.BadRequest(c, "CANNOT_CANCEL", err.Error())
	case errors.Is(err, domain.ErrNotAvailable):
		response.BadRequest(c, "NOT_AVAILABLE", err.Error())
	case errors.Is(err, domain.ErrAlreadyBooked):
		response.Conflict(c, "ALREADY_BOOKED", err.Error())
	default:
		response.InternalError(c, err)
	}
}
