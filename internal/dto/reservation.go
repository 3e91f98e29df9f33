package dto

import (
	"time"

	"github.com/peakstay/reservation-engine/internal/domain"
)

// DateFormat is the wire format for calendar dates
const DateFormat = "2006-01-02"

// AddOnSelection is a requested add-on with its quantity
type AddOnSelection struct {
	AddOnID  string `json:"add_on_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

// CreateReservationRequest represents a request to book a stay
type CreateReservationRequest struct {
	UnitID     string           `json:"unit_id" binding:"required"`
	GuestName  string           `json:"guest_name" binding:"required"`
	GuestEmail string           `json:"guest_email,omitempty"`
	GuestPhone string           `json:"guest_phone,omitempty"`
	CheckIn    string           `json:"check_in" binding:"required"`
	CheckOut   string           `json:"check_out" binding:"required"`
	Guests     int              `json:"guests" binding:"required,min=1"`
	Notes      string           `json:"notes,omitempty"`
	AddOns     []AddOnSelection `json:"add_ons,omitempty"`
}

// QuoteRequest represents a side-effect-free pricing preview request
type QuoteRequest struct {
	UnitID   string           `json:"unit_id" binding:"required"`
	CheckIn  string           `json:"check_in" binding:"required"`
	CheckOut string           `json:"check_out" binding:"required"`
	AddOns   []AddOnSelection `json:"add_ons,omitempty"`
}

// CancelReservationRequest carries the cancellation reason
type CancelReservationRequest struct {
	Reason string `json:"reason,omitempty"`
}

// SetStatusRequest is the administrative status override
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AddOnLineResponse is one captured add-on line
type AddOnLineResponse struct {
	AddOnID   string  `json:"add_on_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

// QuoteResponse is the priced breakdown of a stay
type QuoteResponse struct {
	Nights        int                 `json:"nights"`
	BaseAmount    float64             `json:"base_amount"`
	AddOnsAmount  float64             `json:"add_ons_amount"`
	DepositAmount float64             `json:"deposit_amount"`
	TotalAmount   float64             `json:"total_amount"`
	AddOns        []AddOnLineResponse `json:"add_ons,omitempty"`
}

// ReservationResponse represents a reservation in API responses
type ReservationResponse struct {
	ID                 string              `json:"id"`
	Number             string              `json:"number"`
	UnitID             string              `json:"unit_id"`
	GuestName          string              `json:"guest_name"`
	GuestEmail         string              `json:"guest_email,omitempty"`
	GuestPhone         string              `json:"guest_phone,omitempty"`
	CheckIn            string              `json:"check_in"`
	CheckOut           string              `json:"check_out"`
	Guests             int                 `json:"guests"`
	Nights             int                 `json:"nights"`
	BaseAmount         float64             `json:"base_amount"`
	AddOnsAmount       float64             `json:"add_ons_amount"`
	DepositAmount      float64             `json:"deposit_amount"`
	TotalAmount        float64             `json:"total_amount"`
	Status             string              `json:"status"`
	PaymentStatus      string              `json:"payment_status"`
	Notes              string              `json:"notes,omitempty"`
	AddOns             []AddOnLineResponse `json:"add_ons,omitempty"`
	CheckedInAt        *time.Time          `json:"checked_in_at,omitempty"`
	CheckedInBy        string              `json:"checked_in_by,omitempty"`
	CheckedOutAt       *time.Time          `json:"checked_out_at,omitempty"`
	CheckedOutBy       string              `json:"checked_out_by,omitempty"`
	CancelledAt        *time.Time          `json:"cancelled_at,omitempty"`
	CancellationReason string              `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
}

// AvailabilityResponse answers an availability query
type AvailabilityResponse struct {
	UnitID    string `json:"unit_id"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Available bool   `json:"available"`
}

// BlockedDatesResponse lists occupied dates for calendar rendering
type BlockedDatesResponse struct {
	UnitID string   `json:"unit_id"`
	From   string   `json:"from"`
	To     string   `json:"to"`
	Dates  []string `json:"dates"`
}

// FromDomain converts a domain Reservation to a ReservationResponse
func FromDomain(r *domain.Reservation) *ReservationResponse {
	resp := &ReservationResponse{
		ID:                 r.ID,
		Number:             r.Number,
		UnitID:             r.UnitID,
		GuestName:          r.GuestName,
		GuestEmail:         r.GuestEmail,
		GuestPhone:         r.GuestPhone,
		CheckIn:            r.CheckInDate.Format(DateFormat),
		CheckOut:           r.CheckOutDate.Format(DateFormat),
		Guests:             r.Guests,
		Nights:             r.Nights,
		BaseAmount:         r.BaseAmount,
		AddOnsAmount:       r.AddOnsAmount,
		DepositAmount:      r.DepositAmount,
		TotalAmount:        r.TotalAmount,
		Status:             r.Status.String(),
		PaymentStatus:      string(r.PaymentStatus),
		Notes:              r.Notes,
		CheckedInAt:        r.CheckedInAt,
		CheckedInBy:        r.CheckedInBy,
		CheckedOutAt:       r.CheckedOutAt,
		CheckedOutBy:       r.CheckedOutBy,
		CancelledAt:        r.CancelledAt,
		CancellationReason: r.CancellationReason,
		CreatedAt:          r.CreatedAt,
	}
	for _, line := range r.AddOns {
		resp.AddOns = append(resp.AddOns, AddOnLineResponse{
			AddOnID:   line.AddOnID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal,
		})
	}
	return resp
}

// QuoteFromLines converts a pricing quote breakdown into a QuoteResponse
func QuoteFromLines(nights int, base, addOns, deposit, total float64, lines []domain.AddOnLine) *QuoteResponse {
	resp := &QuoteResponse{
		Nights:        nights,
		BaseAmount:    base,
		AddOnsAmount:  addOns,
		DepositAmount: deposit,
		TotalAmount:   total,
	}
	for _, line := range lines {
		resp.AddOns = append(resp.AddOns, AddOnLineResponse{
			AddOnID:   line.AddOnID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal,
		})
	}
	return resp
}
