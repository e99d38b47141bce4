package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dibba-app/dibba-backend/api/middleware"
	pkgerrors "github.com/dibba-app/dibba-backend/pkg/errors"
	"github.com/dibba-app/dibba-backend/pkg/visibility"
)

const maxQueryLen = 200

// callerFrom returns the authenticated caller or an Unauthorized error when
// the auth middleware did not run.
func callerFrom(r *http.Request) (visibility.Caller, error) {
	caller := middleware.CallerFromContext(r.Context())
	if caller.UserID == "" {
		return visibility.Caller{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return caller, nil
}

func pathParam(r *http.Request, name string) (string, error) {
	value := strings.TrimSpace(chi.URLParam(r, name))
	if value == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, name+" is required")
	}
	return value, nil
}

func unavailable(name string) error {
	return pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable")
}
