package meals

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dibba-app/dibba-backend/internal/ids"
	"github.com/dibba-app/dibba-backend/pkg/db/models"
	"github.com/dibba-app/dibba-backend/pkg/enums"
	pkgerrors "github.com/dibba-app/dibba-backend/pkg/errors"
	"github.com/dibba-app/dibba-backend/pkg/pagination"
	"github.com/dibba-app/dibba-backend/pkg/visibility"
)

type documentStore interface {
	Read(ctx context.Context, fn func(doc *models.Document) error) error
	WithTx(ctx context.Context, fn func(doc *models.Document) error) error
}

// Service exposes the public meal catalogue and homemaker meal management.
type Service interface {
	List(ctx context.Context, filter ListFilter) ([]View, error)
	Get(ctx context.Context, id string) (View, error)
	Create(ctx context.Context, caller visibility.Caller, input CreateInput) (View, error)
	Update(ctx context.Context, caller visibility.Caller, id string, input UpdateInput) (View, error)
	Delete(ctx context.Context, caller visibility.Caller, id string) error
}

type service struct {
	store documentStore
	now   func() time.Time
}

// NewService builds the meals service. A nil clock defaults to time.Now.
func NewService(store documentStore, now func() time.Time) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("document store required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{store: store, now: now}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]View, error) {
	out := []View{}
	err := s.store.Read(ctx, func(doc *models.Document) error {
		for _, meal := range doc.Meals {
			if filter.matches(meal) {
				out = append(out, viewOf(doc, meal))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pagination.Apply(out, filter.Pagination), nil
}

func (s *service) Get(ctx context.Context, id string) (View, error) {
	var out View
	err := s.store.Read(ctx, func(doc *models.Document) error {
		meal, ok := doc.MealByID(id)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "meal not found")
		}
		out = viewOf(doc, *meal)
		return nil
	})
	return out, err
}

func (s *service) Create(ctx context.Context, caller visibility.Caller, input CreateInput) (View, error) {
	if caller.Role != enums.RoleHomemaker {
		return View{}, pkgerrors.New(pkgerrors.CodeForbidden, "only homemakers can publish meals")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price == nil {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "price is required")
	}
	if *input.Price < 0 {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	dietary, err := parseDietary(input.Dietary)
	if err != nil {
		return View{}, err
	}

	var out View
	err = s.store.WithTx(ctx, func(doc *models.Document) error {
		if _, ok := doc.UserByID(caller.UserID); !ok {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "user no longer exists")
		}
		available := true
		if input.IsAvailable != nil {
			available = *input.IsAvailable
		}
		meal := models.Meal{
			ID:              ids.NextMeal(doc),
			Name:            name,
			Description:     strings.TrimSpace(input.Description),
			Price:           *input.Price,
			Category:        strings.TrimSpace(input.Category),
			Dietary:         dietary,
			Image:           strings.TrimSpace(input.Image),
			IsAvailable:     available,
			HomemakerID:     caller.UserID,
			PreparationTime: input.PreparationTime,
			ServingSize:     input.ServingSize,
			Allergens:       input.Allergens,
			CreatedAt:       s.now(),
		}
		doc.Meals = append(doc.Meals, meal)
		out = viewOf(doc, meal)
		return nil
	})
	return out, err
}

func (s *service) Update(ctx context.Context, caller visibility.Caller, id string, input UpdateInput) (View, error) {
	var out View
	err := s.store.WithTx(ctx, func(doc *models.Document) error {
		meal, err := ownedMeal(doc, caller, id)
		if err != nil {
			return err
		}
		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
			}
			meal.Name = name
		}
		if input.Description != nil {
			meal.Description = strings.TrimSpace(*input.Description)
		}
		if input.Price != nil {
			if *input.Price < 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
			}
			meal.Price = *input.Price
		}
		if input.Category != nil {
			meal.Category = strings.TrimSpace(*input.Category)
		}
		if input.Dietary != nil {
			dietary, err := parseDietary(*input.Dietary)
			if err != nil {
				return err
			}
			meal.Dietary = dietary
		}
		if input.Image != nil {
			meal.Image = strings.TrimSpace(*input.Image)
		}
		if input.IsAvailable != nil {
			meal.IsAvailable = *input.IsAvailable
		}
		if input.PreparationTime != nil {
			meal.PreparationTime = input.PreparationTime
		}
		if input.ServingSize != nil {
			meal.ServingSize = input.ServingSize
		}
		if input.Allergens != nil {
			meal.Allergens = *input.Allergens
		}
		now := s.now()
		meal.UpdatedAt = &now
		out = viewOf(doc, *meal)
		return nil
	})
	return out, err
}

func (s *service) Delete(ctx context.Context, caller visibility.Caller, id string) error {
	return s.store.WithTx(ctx, func(doc *models.Document) error {
		if _, err := ownedMeal(doc, caller, id); err != nil {
			return err
		}
		kept := doc.Meals[:0]
		for _, meal := range doc.Meals {
			if meal.ID != id {
				kept = append(kept, meal)
			}
		}
		doc.Meals = kept
		return nil
	})
}

func ownedMeal(doc *models.Document, caller visibility.Caller, id string) (*models.Meal, error) {
	meal, ok := doc.MealByID(id)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "meal not found")
	}
	if caller.Role != enums.RoleHomemaker {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only homemakers can manage meals")
	}
	if err := visibility.EnsureOwner(meal.HomemakerID, caller, "meal"); err != nil {
		return nil, err
	}
	return meal, nil
}

func parseDietary(raw string) (enums.Dietary, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	dietary, err := enums.ParseDietary(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "dietary must be one of Veg, Non-Veg, Vegan")
	}
	return dietary, nil
}
