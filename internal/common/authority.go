package common

import (
	"context"

	"github.com/solotto-lab/backend/pkg/errorx"
	"github.com/solotto-lab/backend/pkg/xcontext"
)

// VerifyAuthority ensures the requesting user is the authority recorded on a
// lottery or pool. Every mutating admin operation goes through this check.
func VerifyAuthority(ctx context.Context, authority string) error {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return errorx.New(errorx.Unauthenticated, "Not authenticated")
	}

	if userID != authority {
		xcontext.Logger(ctx).Debugf("Permission denied: got %s, want %s", userID, authority)
		return errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	return nil
}
