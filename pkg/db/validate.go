package db

import (
	"fmt"
	"strings"

	"github.com/dibba-app/dibba-backend/pkg/db/models"
	"go.uber.org/multierr"
)

// Validate checks the document-level invariants: unique user emails and
// unique ids within each collection. Every violation is reported.
func Validate(doc *models.Document) error {
	var err error

	emails := make(map[string]string, len(doc.Users))
	userIDs := make(map[string]struct{}, len(doc.Users))
	for _, u := range doc.Users {
		err = multierr.Append(err, checkID(models.CollectionUsers, u.ID, userIDs))
		email := strings.ToLower(strings.TrimSpace(u.Email))
		if email == "" {
			continue
		}
		if other, ok := emails[email]; ok {
			err = multierr.Append(err, fmt.Errorf("users: email %q shared by %s and %s", email, other, u.ID))
			continue
		}
		emails[email] = u.ID
	}

	seen := make(map[string]struct{}, len(doc.Meals))
	for _, m := range doc.Meals {
		err = multierr.Append(err, checkID(models.CollectionMeals, m.ID, seen))
	}
	seen = make(map[string]struct{}, len(doc.Orders))
	for _, o := range doc.Orders {
		err = multierr.Append(err, checkID(models.CollectionOrders, o.ID, seen))
	}
	seen = make(map[string]struct{}, len(doc.Carts))
	for _, c := range doc.Carts {
		err = multierr.Append(err, checkID(models.CollectionCarts, c.UserID, seen))
	}
	seen = make(map[string]struct{}, len(doc.Payouts))
	for _, p := range doc.Payouts {
		err = multierr.Append(err, checkID(models.CollectionPayouts, p.ID, seen))
	}
	seen = make(map[string]struct{}, len(doc.Reviews))
	for _, r := range doc.Reviews {
		err = multierr.Append(err, checkID(models.CollectionReviews, r.ID, seen))
	}
	seen = make(map[string]struct{}, len(doc.Categories))
	for _, c := range doc.Categories {
		err = multierr.Append(err, checkID(models.CollectionCategories, c.ID, seen))
	}
	return err
}

func checkID(collection, id string, seen map[string]struct{}) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s: entry without id", collection)
	}
	if _, ok := seen[id]; ok {
		return fmt.Errorf("%s: duplicate id %q", collection, id)
	}
	seen[id] = struct{}{}
	return nil
}
