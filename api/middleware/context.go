package middleware

import (
	"context"

	"github.com/dibba-app/dibba-backend/pkg/enums"
	"github.com/dibba-app/dibba-backend/pkg/visibility"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) enums.Role {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.Role); ok {
		return v
	}
	return ""
}

// CallerFromContext returns the authenticated identity seeded by Auth.
func CallerFromContext(ctx context.Context) visibility.Caller {
	return visibility.Caller{UserID: UserIDFromContext(ctx), Role: RoleFromContext(ctx)}
}

// WithCaller injects the authenticated identity into the context.
func WithCaller(ctx context.Context, userID string, role enums.Role) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, userID)
	return context.WithValue(ctx, ctxRole, role)
}
