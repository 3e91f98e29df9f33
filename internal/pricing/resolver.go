// Package pricing computes the cost of a stay night by night, applying
// seasonal price rules, add-on charges and the deposit policy.
package pricing

import (
	"time"

	"github.com/peakstay/reservation-engine/internal/domain"
)

// PriceForNight resolves the price of a single night for a unit.
//
// Rules are scanned in the order given and the first active rule covering
// the night wins. Rule order is the catalog's contract: the repository
// returns rules ordered by sort_order, so overlapping rules resolve
// deterministically. A matched rule with an absolute price returns it
// directly; a multiplier scales the weekday or weekend base; a rule with
// neither falls through to default pricing.
func PriceForNight(unit *domain.Unit, rules []domain.PriceRule, night time.Time) float64 {
	weekend := domain.IsWeekendNight(night)

	for _, rule := range rules {
		if !rule.IsActive || !rule.Covers(night) {
			continue
		}
		if rule.Price != nil {
			return *rule.Price
		}
		if rule.PriceMultiplier != nil {
			if weekend {
				return unit.WeekendPrice * *rule.PriceMultiplier
			}
			return unit.BasePrice * *rule.PriceMultiplier
		}
		// Rule matched but carries neither mode: default pricing.
		break
	}

	if weekend {
		return unit.WeekendPrice
	}
	return unit.BasePrice
}
