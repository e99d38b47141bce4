package controllers

import (
	"net/http"

	"github.com/dibba-app/dibba-backend/api/responses"
	"github.com/dibba-app/dibba-backend/api/validators"
	"github.com/dibba-app/dibba-backend/internal/earnings"
	"github.com/dibba-app/dibba-backend/pkg/logger"
	"github.com/dibba-app/dibba-backend/pkg/visibility"
)

// EarningsSummary returns lifetime totals, today's stats and the pending balance.
func EarningsSummary(svc earnings.Service, logg *logger.Logger) http.HandlerFunc {
	return earningsView(svc, logg, func(r *http.Request, caller visibility.Caller) (any, error) {
		return svc.Summary(r.Context(), caller)
	})
}

// EarningsHistory returns per-day totals for recent days with deliveries.
func EarningsHistory(svc earnings.Service, logg *logger.Logger) http.HandlerFunc {
	return earningsView(svc, logg, func(r *http.Request, caller visibility.Caller) (any, error) {
		return svc.History(r.Context(), caller)
	})
}

// EarningsChart returns the zero-filled last seven days.
func EarningsChart(svc earnings.Service, logg *logger.Logger) http.HandlerFunc {
	return earningsView(svc, logg, func(r *http.Request, caller visibility.Caller) (any, error) {
		return svc.Chart(r.Context(), caller)
	})
}

// PayoutList returns the caller's payouts, newest first.
func PayoutList(svc earnings.Service, logg *logger.Logger) http.HandlerFunc {
	return earningsView(svc, logg, func(r *http.Request, caller visibility.Caller) (any, error) {
		return svc.ListPayouts(r.Context(), caller)
	})
}

func earningsView(svc earnings.Service, logg *logger.Logger, load func(*http.Request, visibility.Caller) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("earnings"))
			return
		}

		caller, err := callerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		data, err := load(r, caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, data)
	}
}

// PayoutRequest records a withdrawal of the pending balance.
func PayoutRequest(svc earnings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("earnings"))
			return
		}

		caller, err := callerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input earnings.RequestPayoutInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payout, err := svc.RequestPayout(r.Context(), caller, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"payout_id": payout.ID,
				"amount":    payout.Amount,
			})
			logg.Info(ctx, "payout.requested")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, payout)
	}
}
