// Package ids mints sequential, prefixed identifiers per collection.
package ids

import (
	"strconv"
	"strings"

	"github.com/dibba-app/dibba-backend/pkg/db/models"
	"github.com/dibba-app/dibba-backend/pkg/enums"
)

const (
	PrefixMeal     = "m"
	PrefixOrder    = "o"
	PrefixReview   = "r"
	PrefixPayout   = "p"
	PrefixCategory = "cat"
)

// Next returns prefix followed by one more than the largest numeric suffix
// among existing ids carrying that prefix. Ids with another prefix or a
// non-numeric suffix are ignored.
func Next(prefix string, existing []string) string {
	var max uint64
	for _, id := range existing {
		suffix, ok := strings.CutPrefix(id, prefix)
		if !ok || suffix == "" {
			continue
		}
		n, err := strconv.ParseUint(suffix, 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return prefix + strconv.FormatUint(max+1, 10)
}

// NextUser mints a user id using the role letter. User ids share one
// namespace, so every user id is considered regardless of role.
func NextUser(doc *models.Document, role enums.Role) string {
	existing := make([]string, 0, len(doc.Users))
	for _, u := range doc.Users {
		existing = append(existing, u.ID)
	}
	return Next(role.IDPrefix(), existing)
}

func NextMeal(doc *models.Document) string {
	existing := make([]string, 0, len(doc.Meals))
	for _, m := range doc.Meals {
		existing = append(existing, m.ID)
	}
	return Next(PrefixMeal, existing)
}

func NextOrder(doc *models.Document) string {
	existing := make([]string, 0, len(doc.Orders))
	for _, o := range doc.Orders {
		existing = append(existing, o.ID)
	}
	return Next(PrefixOrder, existing)
}

func NextReview(doc *models.Document) string {
	existing := make([]string, 0, len(doc.Reviews))
	for _, r := range doc.Reviews {
		existing = append(existing, r.ID)
	}
	return Next(PrefixReview, existing)
}

func NextPayout(doc *models.Document) string {
	existing := make([]string, 0, len(doc.Payouts))
	for _, p := range doc.Payouts {
		existing = append(existing, p.ID)
	}
	return Next(PrefixPayout, existing)
}
