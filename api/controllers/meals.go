package controllers

import (
	"net/http"

	"github.com/dibba-app/dibba-backend/api/responses"
	"github.com/dibba-app/dibba-backend/api/validators"
	"github.com/dibba-app/dibba-backend/internal/meals"
	"github.com/dibba-app/dibba-backend/pkg/enums"
	pkgerrors "github.com/dibba-app/dibba-backend/pkg/errors"
	"github.com/dibba-app/dibba-backend/pkg/logger"
	"github.com/dibba-app/dibba-backend/pkg/pagination"
)

// MealList serves the public meal catalogue with optional filters.
func MealList(svc meals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("meal"))
			return
		}

		filter, err := mealFilterFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func mealFilterFromRequest(r *http.Request) (meals.ListFilter, error) {
	filter := meals.ListFilter{
		HomemakerID: validators.QueryString(r, "homemakerId", maxQueryLen),
		Category:    validators.QueryString(r, "category", maxQueryLen),
		Query:       validators.QueryString(r, "q", maxQueryLen),
	}

	if raw := validators.QueryString(r, "dietary", maxQueryLen); raw != "" {
		dietary, err := enums.ParseDietary(raw)
		if err != nil {
			return meals.ListFilter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "dietary must be one of Veg, Non-Veg, Vegan")
		}
		filter.Dietary = &dietary
	}

	available, err := validators.ParseQueryBool(r, "isAvailable")
	if err != nil {
		return meals.ListFilter{}, err
	}
	filter.IsAvailable = available

	page, err := pagination.FromQuery(r.URL.Query())
	if err != nil {
		return meals.ListFilter{}, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	filter.Pagination = page
	return filter, nil
}

// MealGet returns one meal with its homemaker's name.
func MealGet(svc meals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("meal"))
			return
		}

		id, err := pathParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		meal, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, meal)
	}
}

// MealCreate publishes a meal owned by the calling homemaker.
func MealCreate(svc meals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("meal"))
			return
		}

		caller, err := callerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input meals.CreateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		meal, err := svc.Create(r.Context(), caller, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, meal)
	}
}

// MealUpdate patches a meal the caller owns.
func MealUpdate(svc meals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("meal"))
			return
		}

		caller, err := callerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input meals.UpdateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		meal, err := svc.Update(r.Context(), caller, id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, meal)
	}
}

// MealDelete removes a meal the caller owns.
func MealDelete(svc meals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("meal"))
			return
		}

		caller, err := callerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), caller, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
