package pricing

import (
	"time"

	"github.com/peakstay/reservation-engine/internal/domain"
)

// Selection is a requested add-on with its quantity
type Selection struct {
	AddOnID  string
	Quantity int
}

// Quote is the fully priced breakdown of a stay. All amounts are rounded
// to cents; TotalAmount is derived from the rounded components so the
// total == base + addons invariant holds exactly.
type Quote struct {
	Nights        int
	BaseAmount    float64
	AddOnsAmount  float64
	DepositAmount float64
	TotalAmount   float64
	Lines         []domain.AddOnLine
}

// ComputeStayCost prices the half-open range [checkIn, checkOut).
//
// Selections referencing unknown or inactive catalog entries are skipped
// silently. The deposit is computed against the base amount only, never
// against add-ons.
func ComputeStayCost(
	unit *domain.Unit,
	rules []domain.PriceRule,
	checkIn, checkOut time.Time,
	selections []Selection,
	catalog []domain.AddOn,
	policy *domain.DepositPolicy,
) (*Quote, error) {
	nights := domain.NightsBetween(checkIn, checkOut)
	if nights < 1 {
		return nil, domain.ErrInvalidRange
	}

	// Sum nightly prices unrounded; round once below.
	var base float64
	night := domain.DateOnly(checkIn)
	for i := 0; i < nights; i++ {
		base += PriceForNight(unit, rules, night)
		night = night.AddDate(0, 0, 1)
	}

	byID := make(map[string]domain.AddOn, len(catalog))
	for _, entry := range catalog {
		byID[entry.ID] = entry
	}

	var addOns float64
	var lines []domain.AddOnLine
	for _, sel := range selections {
		if sel.Quantity <= 0 {
			continue
		}
		entry, ok := byID[sel.AddOnID]
		if !ok || !entry.IsActive {
			continue
		}
		subtotal := entry.Price * float64(sel.Quantity)
		if entry.PriceType == domain.PerNight {
			subtotal *= float64(nights)
		}
		subtotal = domain.RoundCents(subtotal)
		addOns += subtotal
		lines = append(lines, domain.AddOnLine{
			AddOnID:   entry.ID,
			Name:      entry.Name,
			Quantity:  sel.Quantity,
			UnitPrice: entry.Price,
			Subtotal:  subtotal,
		})
	}

	if policy == nil {
		policy = domain.DefaultDepositPolicy()
	}

	baseAmount := domain.RoundCents(base)
	addOnsAmount := domain.RoundCents(addOns)

	var deposit float64
	switch policy.Type {
	case domain.DepositPercentage:
		deposit = domain.RoundCents(baseAmount * policy.Percentage / 100)
	default:
		deposit = domain.RoundCents(policy.FixedAmount)
	}

	return &Quote{
		Nights:        nights,
		BaseAmount:    baseAmount,
		AddOnsAmount:  addOnsAmount,
		DepositAmount: deposit,
		TotalAmount:   domain.RoundCents(baseAmount + addOnsAmount),
		Lines:         lines,
	}, nil
}
