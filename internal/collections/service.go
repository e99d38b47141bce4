// Package collections serves the persisted collections read-only, filtered by
// json-server style equality parameters and the caller's row visibility.
package collections

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/dibba-app/dibba-backend/pkg/db/models"
	pkgerrors "github.com/dibba-app/dibba-backend/pkg/errors"
	"github.com/dibba-app/dibba-backend/pkg/pagination"
	"github.com/dibba-app/dibba-backend/pkg/visibility"
)

type documentStore interface {
	Read(ctx context.Context, fn func(doc *models.Document) error) error
}

// Record is one row as the client sees it.
type Record = map[string]any

type Service interface {
	List(ctx context.Context, caller visibility.Caller, resource string, query url.Values) ([]Record, error)
	Get(ctx context.Context, caller visibility.Caller, resource, id string) (Record, error)
}

type service struct {
	store documentStore
}

func NewService(store documentStore) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("document store required")
	}
	return &service{store: store}, nil
}

type row struct {
	id    string
	value any
}

// Known reports whether resource names a persisted collection.
func Known(resource string) bool {
	for _, name := range models.Collections {
		if name == resource {
			return true
		}
	}
	return false
}

func (s *service) List(ctx context.Context, caller visibility.Caller, resource string, query url.Values) ([]Record, error) {
	if !Known(resource) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "resource not found")
	}
	filters := cloneQuery(query)
	page, err := pagination.FromQuery(filters)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	var rows []row
	if err := s.store.Read(ctx, func(doc *models.Document) error {
		rows = visibleRows(doc, resource, caller)
		return nil
	}); err != nil {
		return nil, err
	}

	out := []Record{}
	for _, r := range rows {
		rec, err := toRecord(r.value)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode record")
		}
		if matches(rec, filters) {
			out = append(out, rec)
		}
	}
	return pagination.Apply(out, page), nil
}

func (s *service) Get(ctx context.Context, caller visibility.Caller, resource, id string) (Record, error) {
	if !Known(resource) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "resource not found")
	}
	var found *row
	if err := s.store.Read(ctx, func(doc *models.Document) error {
		for _, r := range visibleRows(doc, resource, caller) {
			if r.id == id {
				r := r
				found = &r
				break
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if found == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
	}
	rec, err := toRecord(found.value)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode record")
	}
	return rec, nil
}

// visibleRows applies the per-collection read rules for the caller.
func visibleRows(doc *models.Document, resource string, caller visibility.Caller) []row {
	var rows []row
	switch resource {
	case models.CollectionUsers:
		for _, u := range doc.Users {
			rows = append(rows, row{id: u.ID, value: visibility.UserView(u, caller)})
		}
	case models.CollectionMeals:
		for _, m := range doc.Meals {
			rows = append(rows, row{id: m.ID, value: m})
		}
	case models.CollectionOrders:
		for _, o := range doc.Orders {
			if visibility.OrderVisible(o, caller) {
				rows = append(rows, row{id: o.ID, value: o})
			}
		}
	case models.CollectionCarts:
		for _, c := range doc.Carts {
			if visibility.OwnedBy(c.UserID, caller) {
				rows = append(rows, row{id: c.UserID, value: c})
			}
		}
	case models.CollectionPayouts:
		for _, p := range doc.Payouts {
			if visibility.OwnedBy(p.UserID, caller) {
				rows = append(rows, row{id: p.ID, value: p})
			}
		}
	case models.CollectionReviews:
		for _, r := range doc.Reviews {
			rows = append(rows, row{id: r.ID, value: r})
		}
	case models.CollectionCategories:
		for _, c := range doc.Categories {
			rows = append(rows, row{id: c.ID, value: c})
		}
	}
	return rows
}

func toRecord(v any) (Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// matches applies equality filters. Parameters starting with "_" are
// reserved for paging and ignored here; repeated values are OR-ed.
func matches(rec Record, filters url.Values) bool {
	for key, wanted := range filters {
		if strings.HasPrefix(key, "_") || len(wanted) == 0 {
			continue
		}
		got, ok := rec[key]
		if !ok {
			return false
		}
		text := scalarString(got)
		hit := false
		for _, w := range wanted {
			if text == w {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return "null"
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	}
}

func cloneQuery(query url.Values) url.Values {
	out := url.Values{}
	for k, v := range query {
		out[k] = append([]string(nil), v...)
	}
	return out
}
