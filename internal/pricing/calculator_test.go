package pricing

import (
	"errors"
	"testing"
	"time"

	"github.com/peakstay/reservation-engine/internal/domain"
)

func TestComputeStayCost_BaseAmount(t *testing.T) {
	// 2026-01-05 is a Monday, 2026-01-09 a Friday
	tests := []struct {
		name     string
		rules    []domain.PriceRule
		checkIn  time.Time
		checkOut time.Time
		wantBase float64
	}{
		{
			name:     "two weekday nights at base price",
			checkIn:  date(2026, 1, 5),
			checkOut: date(2026, 1, 7),
			wantBase: 200,
		},
		{
			name:     "friday and saturday at weekend price",
			checkIn:  date(2026, 1, 9),
			checkOut: date(2026, 1, 11),
			wantBase: 300,
		},
		{
			name: "absolute rule overrides weekend pricing for the whole stay",
			rules: []domain.PriceRule{
				{ID: "r1", StartDate: date(2026, 1, 1), EndDate: date(2026, 1, 31), Price: floatPtr(80), IsActive: true},
			},
			checkIn:  date(2026, 1, 9),
			checkOut: date(2026, 1, 12),
			wantBase: 240,
		},
		{
			name: "rule covering only part of the stay",
			rules: []domain.PriceRule{
				{ID: "r1", StartDate: date(2026, 1, 5), EndDate: date(2026, 1, 5), Price: floatPtr(80), IsActive: true},
			},
			checkIn:  date(2026, 1, 5),
			checkOut: date(2026, 1, 7),
			wantBase: 180,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := ComputeStayCost(testUnit(), tt.rules, tt.checkIn, tt.checkOut, nil, nil, nil)
			if err != nil {
				t.Fatalf("ComputeStayCost() unexpected error = %v", err)
			}
			if quote.BaseAmount != tt.wantBase {
				t.Errorf("BaseAmount = %v, want %v", quote.BaseAmount, tt.wantBase)
			}
			if quote.TotalAmount != quote.BaseAmount+quote.AddOnsAmount {
				t.Errorf("TotalAmount = %v, want base+addons = %v", quote.TotalAmount, quote.BaseAmount+quote.AddOnsAmount)
			}
		})
	}
}

func TestComputeStayCost_InvalidRange(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
	}{
		{"same day", date(2026, 1, 5), date(2026, 1, 5)},
		{"reversed range", date(2026, 1, 7), date(2026, 1, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeStayCost(testUnit(), nil, tt.checkIn, tt.checkOut, nil, nil, nil)
			if !errors.Is(err, domain.ErrInvalidRange) {
				t.Errorf("ComputeStayCost() error = %v, want %v", err, domain.ErrInvalidRange)
			}
		})
	}
}

func TestComputeStayCost_AddOns(t *testing.T) {
	catalog := []domain.AddOn{
		{ID: "a1", Name: "Breakfast", Price: 20, PriceType: domain.PerNight, IsActive: true},
		{ID: "a2", Name: "Late checkout", Price: 50, PriceType: domain.PerStay, IsActive: true},
		{ID: "a3", Name: "Retired extra", Price: 10, PriceType: domain.PerStay, IsActive: false},
	}
	checkIn := date(2026, 1, 5)
	checkOut := date(2026, 1, 8) // 3 nights

	tests := []struct {
		name       string
		selections []Selection
		wantAddOns float64
		wantLines  int
	}{
		{
			name:       "per-night add-on multiplies by nights",
			selections: []Selection{{AddOnID: "a1", Quantity: 1}},
			wantAddOns: 60,
			wantLines:  1,
		},
		{
			name:       "per-stay add-on charged once",
			selections: []Selection{{AddOnID: "a2", Quantity: 2}},
			wantAddOns: 100,
			wantLines:  1,
		},
		{
			name:       "unknown add-on is skipped",
			selections: []Selection{{AddOnID: "missing", Quantity: 1}},
			wantAddOns: 0,
			wantLines:  0,
		},
		{
			name:       "inactive add-on is skipped",
			selections: []Selection{{AddOnID: "a3", Quantity: 1}},
			wantAddOns: 0,
			wantLines:  0,
		},
		{
			name:       "zero quantity is skipped",
			selections: []Selection{{AddOnID: "a1", Quantity: 0}},
			wantAddOns: 0,
			wantLines:  0,
		},
		{
			name:       "mixed selections",
			selections: []Selection{{AddOnID: "a1", Quantity: 1}, {AddOnID: "a2", Quantity: 1}},
			wantAddOns: 110,
			wantLines:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := ComputeStayCost(testUnit(), nil, checkIn, checkOut, tt.selections, catalog, nil)
			if err != nil {
				t.Fatalf("ComputeStayCost() unexpected error = %v", err)
			}
			if quote.AddOnsAmount != tt.wantAddOns {
				t.Errorf("AddOnsAmount = %v, want %v", quote.AddOnsAmount, tt.wantAddOns)
			}
			if len(quote.Lines) != tt.wantLines {
				t.Errorf("len(Lines) = %d, want %d", len(quote.Lines), tt.wantLines)
			}
			if quote.TotalAmount != quote.BaseAmount+quote.AddOnsAmount {
				t.Errorf("TotalAmount = %v, want base+addons = %v", quote.TotalAmount, quote.BaseAmount+quote.AddOnsAmount)
			}
		})
	}
}

func TestComputeStayCost_AddOnLineSnapshot(t *testing.T) {
	catalog := []domain.AddOn{
		{ID: "a1", Name: "Breakfast", Price: 20, PriceType: domain.PerNight, IsActive: true},
	}
	quote, err := ComputeStayCost(testUnit(), nil, date(2026, 1, 5), date(2026, 1, 8), []Selection{{AddOnID: "a1", Quantity: 2}}, catalog, nil)
	if err != nil {
		t.Fatalf("ComputeStayCost() unexpected error = %v", err)
	}
	if len(quote.Lines) != 1 {
		t.Fatalf("len(Lines) = %d, want 1", len(quote.Lines))
	}
	line := quote.Lines[0]
	if line.AddOnID != "a1" || line.Name != "Breakfast" || line.Quantity != 2 || line.UnitPrice != 20 {
		t.Errorf("unexpected line snapshot: %+v", line)
	}
	if line.Subtotal != 120 { // 20 * 2 * 3 nights
		t.Errorf("Subtotal = %v, want 120", line.Subtotal)
	}
}

func TestComputeStayCost_Deposit(t *testing.T) {
	checkIn := date(2026, 1, 5)
	checkOut := date(2026, 1, 7) // base 200

	tests := []struct {
		name        string
		policy      *domain.DepositPolicy
		wantDeposit float64
	}{
		{
			name:        "nil policy uses default fixed deposit",
			policy:      nil,
			wantDeposit: 100,
		},
		{
			name:        "fixed deposit ignores base amount",
			policy:      &domain.DepositPolicy{Type: domain.DepositFixed, FixedAmount: 75},
			wantDeposit: 75,
		},
		{
			name:        "percentage deposit scales with base amount",
			policy:      &domain.DepositPolicy{Type: domain.DepositPercentage, Percentage: 30},
			wantDeposit: 60,
		},
		{
			name:        "percentage deposit rounds to cents",
			policy:      &domain.DepositPolicy{Type: domain.DepositPercentage, Percentage: 33.333},
			wantDeposit: 66.67,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := ComputeStayCost(testUnit(), nil, checkIn, checkOut, nil, nil, tt.policy)
			if err != nil {
				t.Fatalf("ComputeStayCost() unexpected error = %v", err)
			}
			if quote.DepositAmount != tt.wantDeposit {
				t.Errorf("DepositAmount = %v, want %v", quote.DepositAmount, tt.wantDeposit)
			}
		})
	}
}

func TestComputeStayCost_RoundingDrift(t *testing.T) {
	// A per-night price with a repeating fraction must not accumulate
	// drift: rounding happens once on the summed amount.
	unit := &domain.Unit{ID: "u", BasePrice: 33.335, WeekendPrice: 33.335, IsActive: true, Capacity: 2}
	quote, err := ComputeStayCost(unit, nil, date(2026, 1, 5), date(2026, 1, 8), nil, nil, nil)
	if err != nil {
		t.Fatalf("ComputeStayCost() unexpected error = %v", err)
	}
	if quote.BaseAmount != 100.01 { // 33.335 * 3 = 100.005 → 100.01 once rounded
		t.Errorf("BaseAmount = %v, want 100.01", quote.BaseAmount)
	}
	if quote.TotalAmount != quote.BaseAmount+quote.AddOnsAmount {
		t.Errorf("TotalAmount = %v, want exact sum %v", quote.TotalAmount, quote.BaseAmount+quote.AddOnsAmount)
	}
}
