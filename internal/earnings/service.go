package earnings

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dibba-app/dibba-backend/internal/ids"
	"github.com/dibba-app/dibba-backend/pkg/db/models"
	"github.com/dibba-app/dibba-backend/pkg/enums"
	pkgerrors "github.com/dibba-app/dibba-backend/pkg/errors"
	"github.com/dibba-app/dibba-backend/pkg/money"
	"github.com/dibba-app/dibba-backend/pkg/visibility"
	"github.com/shopspring/decimal"
)

type documentStore interface {
	Read(ctx context.Context, fn func(doc *models.Document) error) error
	WithTx(ctx context.Context, fn func(doc *models.Document) error) error
}

// RequestPayoutInput is the body of POST /api/payouts. A missing amount
// requests the whole pending balance; missing bank details fall back to the
// profile.
type RequestPayoutInput struct {
	Amount      *float64            `json:"amount" validate:"omitempty,gt=0"`
	BankDetails *models.BankDetails `json:"bankDetails" validate:"omitempty"`
}

// Service exposes the earnings projections and payout requests.
type Service interface {
	Summary(ctx context.Context, caller visibility.Caller) (Summary, error)
	History(ctx context.Context, caller visibility.Caller) ([]HistoryEntry, error)
	Chart(ctx context.Context, caller visibility.Caller) ([]ChartPoint, error)
	ListPayouts(ctx context.Context, caller visibility.Caller) ([]models.Payout, error)
	RequestPayout(ctx context.Context, caller visibility.Caller, input RequestPayoutInput) (models.Payout, error)
}

type service struct {
	store documentStore
	now   func() time.Time
}

// NewService builds the earnings service. A nil clock defaults to time.Now.
func NewService(store documentStore, now func() time.Time) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("document store required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{store: store, now: now}, nil
}

func (s *service) input(doc *models.Document, caller visibility.Caller) Input {
	return Input{
		Orders:  doc.Orders,
		Payouts: doc.Payouts,
		UserID:  caller.UserID,
		Role:    caller.Role,
		Now:     s.now(),
	}
}

func ensureEarner(caller visibility.Caller) error {
	if !caller.Role.EarnsPayouts() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only homemakers and delivery partners have earnings")
	}
	return nil
}

func (s *service) Summary(ctx context.Context, caller visibility.Caller) (Summary, error) {
	if err := ensureEarner(caller); err != nil {
		return Summary{}, err
	}
	var out Summary
	err := s.store.Read(ctx, func(doc *models.Document) error {
		out = Summarize(s.input(doc, caller))
		return nil
	})
	return out, err
}

func (s *service) History(ctx context.Context, caller visibility.Caller) ([]HistoryEntry, error) {
	if err := ensureEarner(caller); err != nil {
		return nil, err
	}
	var out []HistoryEntry
	err := s.store.Read(ctx, func(doc *models.Document) error {
		out = History(s.input(doc, caller))
		return nil
	})
	return out, err
}

func (s *service) Chart(ctx context.Context, caller visibility.Caller) ([]ChartPoint, error) {
	if err := ensureEarner(caller); err != nil {
		return nil, err
	}
	var out []ChartPoint
	err := s.store.Read(ctx, func(doc *models.Document) error {
		out = Chart(s.input(doc, caller))
		return nil
	})
	return out, err
}

func (s *service) ListPayouts(ctx context.Context, caller visibility.Caller) ([]models.Payout, error) {
	if err := ensureEarner(caller); err != nil {
		return nil, err
	}
	out := []models.Payout{}
	err := s.store.Read(ctx, func(doc *models.Document) error {
		for _, p := range doc.Payouts {
			if visibility.OwnedBy(p.UserID, caller) {
				out = append(out, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *service) RequestPayout(ctx context.Context, caller visibility.Caller, input RequestPayoutInput) (models.Payout, error) {
	if err := ensureEarner(caller); err != nil {
		return models.Payout{}, err
	}

	var requested *decimal.Decimal
	if input.Amount != nil {
		amount := money.FromFloat(*input.Amount)
		requested = &amount
	}

	var payout models.Payout
	err := s.store.WithTx(ctx, func(doc *models.Document) error {
		user, ok := doc.UserByID(caller.UserID)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "user no longer exists")
		}

		in := s.input(doc, caller)
		amount, err := CheckPayout(in, requested)
		if err != nil {
			return err
		}

		bank := input.BankDetails
		if bank == nil {
			bank = user.BankDetails
		}
		if bank == nil {
			return pkgerrors.New(pkgerrors.CodePrecondition, "bank details are required for payouts")
		}

		payout = models.Payout{
			ID:          ids.NextPayout(doc),
			UserID:      caller.UserID,
			Role:        caller.Role,
			Amount:      money.Float(amount),
			Status:      enums.PayoutStatusProcessing,
			Date:        in.Now,
			BankDetails: *bank,
		}
		doc.Payouts = append(doc.Payouts, payout)
		return nil
	})
	if err != nil {
		return models.Payout{}, err
	}
	return payout, nil
}
