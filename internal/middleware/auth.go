package middleware

import (
	"context"

	"github.com/solotto-lab/backend/pkg/errorx"
	"github.com/solotto-lab/backend/pkg/router"
	"github.com/solotto-lab/backend/pkg/xcontext"
)

const userIDHeader = "X-User-Id"

// Authenticate binds the caller identity to the context. Identity resolution
// happens upstream at the gateway, which forwards the verified user id in a
// trusted header.
func Authenticate() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		req := router.HTTPRequest(ctx)
		if req == nil {
			return nil, errorx.New(errorx.Unauthenticated, "Not authenticated")
		}

		userID := req.Header.Get(userIDHeader)
		if userID == "" {
			return nil, errorx.New(errorx.Unauthenticated, "Not authenticated")
		}

		return xcontext.WithRequestUserID(ctx, userID), nil
	}
}

// OptionalAuthenticate binds the caller identity when present but lets
// anonymous requests through. Read-only endpoints use it.
func OptionalAuthenticate() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		req := router.HTTPRequest(ctx)
		if req == nil {
			return ctx, nil
		}

		if userID := req.Header.Get(userIDHeader); userID != "" {
			ctx = xcontext.WithRequestUserID(ctx, userID)
		}

		return ctx, nil
	}
}
