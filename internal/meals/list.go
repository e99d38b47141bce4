package meals

import (
	"strings"

	"github.com/dibba-app/dibba-backend/pkg/db/models"
)

func (f ListFilter) matches(meal models.Meal) bool {
	if f.HomemakerID != "" && meal.HomemakerID != f.HomemakerID {
		return false
	}
	if f.Category != "" && !strings.EqualFold(meal.Category, f.Category) {
		return false
	}
	if f.Dietary != nil && meal.Dietary != *f.Dietary {
		return false
	}
	if f.IsAvailable != nil && meal.IsAvailable != *f.IsAvailable {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(meal.Name), q) &&
			!strings.Contains(strings.ToLower(meal.Description), q) {
			return false
		}
	}
	return true
}
