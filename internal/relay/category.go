package relay

import (
	"fmt"

	"github.com/abrezinsky/clubdash/internal/models"
)

// Classify returns the label of the first band in ruleset containing ageSum.
// Unmatched sums get a "Suma N" placeholder.
func Classify(ruleset string, ageSum int, rules []models.CategoryRule) string {
	for _, r := range rules {
		if r.Ruleset != ruleset {
			continue
		}
		if ageSum >= r.MinAgeSum && ageSum <= r.MaxAgeSum {
			return r.Label
		}
	}
	return fmt.Sprintf("Suma %d", ageSum)
}
