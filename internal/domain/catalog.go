package domain

import "time"

// Unit is a bookable chalet. Pricing fields are owned by the catalog
// collaborator; the engine only reads them.
type Unit struct {
	ID           string
	Name         string
	Capacity     int
	BasePrice    float64
	WeekendPrice float64
	IsActive     bool
}

// PriceRule is a date-bounded pricing override for a unit. Exactly one
// pricing mode applies: an absolute Price, a PriceMultiplier on the
// weekday/weekend base, or neither (falls through to default pricing).
type PriceRule struct {
	ID              string
	UnitID          string
	StartDate       time.Time
	EndDate         time.Time
	Price           *float64
	PriceMultiplier *float64
	IsActive        bool
	SortOrder       int
}

// Covers reports whether the rule's inclusive [StartDate, EndDate] range
// contains the given night. Comparison is at date level.
func (p PriceRule) Covers(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(p.StartDate)) && !d.After(DateOnly(p.EndDate))
}

// AddOnPriceType determines whether an add-on is charged once per stay
// or once per night
type AddOnPriceType string

const (
	PerStay  AddOnPriceType = "per_stay"
	PerNight AddOnPriceType = "per_night"
)

// AddOn is a catalog entry for an optional paid extra
type AddOn struct {
	ID        string
	Name      string
	Price     float64
	PriceType AddOnPriceType
	IsActive  bool
}

// DepositType selects how the required deposit is computed
type DepositType string

const (
	DepositFixed      DepositType = "fixed"
	DepositPercentage DepositType = "percentage"
)

// DepositPolicy is global configuration read from the settings store
type DepositPolicy struct {
	Type        DepositType
	FixedAmount float64
	Percentage  float64
}

// DefaultDepositPolicy returns the policy used when no settings exist
func DefaultDepositPolicy() *DepositPolicy {
	return &DepositPolicy{
		Type:        DepositFixed,
		FixedAmount: 100,
		Percentage:  30,
	}
}
