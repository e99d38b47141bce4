package controllers

import (
	"net/http"

	"github.com/dibba-app/dibba-backend/api/responses"
	"github.com/dibba-app/dibba-backend/api/validators"
	"github.com/dibba-app/dibba-backend/internal/auth"
	"github.com/dibba-app/dibba-backend/pkg/logger"
)

// AuthLogin checks credentials for the given role and returns the public
// user plus a bearer token.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("auth"))
			return
		}

		var req auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		logAuthEvent(r, logg, "auth.login", result)
		responses.WriteSuccess(w, result)
	}
}

// AuthRegister creates an account and logs it in.
func AuthRegister(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("auth"))
			return
		}

		var req auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Register(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		logAuthEvent(r, logg, "auth.register", result)
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func logAuthEvent(r *http.Request, logg *logger.Logger, event string, result auth.Result) {
	if logg == nil {
		return
	}
	ctx := logg.WithFields(r.Context(), map[string]any{
		"user_id":    result.User.ID,
		"actor_role": string(result.User.Role),
	})
	logg.Info(ctx, event)
}
