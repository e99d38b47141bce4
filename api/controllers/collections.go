package controllers

import (
	"net/http"

	"github.com/dibba-app/dibba-backend/api/responses"
	"github.com/dibba-app/dibba-backend/internal/collections"
	"github.com/dibba-app/dibba-backend/pkg/db/models"
	pkgerrors "github.com/dibba-app/dibba-backend/pkg/errors"
	"github.com/dibba-app/dibba-backend/pkg/logger"
	"github.com/dibba-app/dibba-backend/pkg/visibility"
)

// Categories lists the category collection. It is public.
func Categories(svc collections.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("collection"))
			return
		}

		records, err := svc.List(r.Context(), visibility.Caller{}, models.CollectionCategories, r.URL.Query())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}

// CollectionList serves GET /api/{resource} for resources without a dedicated route.
func CollectionList(svc collections.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("collection"))
			return
		}

		caller, err := callerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resource, err := pathParam(r, "resource")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.List(r.Context(), caller, resource, r.URL.Query())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}

// CollectionGet serves GET /api/{resource}/{id}.
func CollectionGet(svc collections.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("collection"))
			return
		}

		caller, err := callerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resource, err := pathParam(r, "resource")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Get(r.Context(), caller, resource, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// CollectionReadOnly rejects writes to the generic collection routes with
// 405. Paths naming neither a collection nor a routed resource answer 404.
func CollectionReadOnly(logg *logger.Logger, routed ...string) http.HandlerFunc {
	known := make(map[string]struct{}, len(routed))
	for _, name := range routed {
		known[name] = struct{}{}
	}
	return func(w http.ResponseWriter, r *http.Request) {
		resource, err := pathParam(r, "resource")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "resource not found"))
			return
		}
		if _, ok := known[resource]; !ok && !collections.Known(resource) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "resource not found"))
			return
		}
		MethodNotAllowed(logg)(w, r)
	}
}

// NotFound answers unmatched routes with the standard error body.
func NotFound(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	}
}

// MethodNotAllowed answers known paths called with an unsupported method.
func MethodNotAllowed(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeMethodNotAllowed, "method not allowed"))
	}
}
