package middleware

import (
	"context"
	"net/http"

	"github.com/dibba-app/dibba-backend/api/responses"
	"github.com/dibba-app/dibba-backend/api/validators"
	pkgAuth "github.com/dibba-app/dibba-backend/pkg/auth"
	"github.com/dibba-app/dibba-backend/pkg/config"
	"github.com/dibba-app/dibba-backend/pkg/enums"
	pkgerrors "github.com/dibba-app/dibba-backend/pkg/errors"
	"github.com/dibba-app/dibba-backend/pkg/logger"
)

// UserVerifier confirms that a token subject still exists with the claimed role.
type UserVerifier interface {
	VerifyUser(ctx context.Context, userID string, role enums.Role) (bool, error)
}

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, verifier UserVerifier, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := validators.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if verifier != nil {
				ok, err := verifier.VerifyUser(r.Context(), claims.UserID, claims.Role)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify user"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user no longer exists"))
					return
				}
			}

			ctx := WithCaller(r.Context(), claims.UserID, claims.Role)
			ctx = logg.WithCaller(ctx, claims.UserID, string(claims.Role))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
