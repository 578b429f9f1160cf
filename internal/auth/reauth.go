package auth

import (
	"context"
	"errors"

	"github.com/soniq/soniq/internal/api"
)

// WithReauth performs an authorized operation with the session's current
// access token. If the operation fails with an unauthorized error, the access
// token is refreshed once and the operation retried once with the new token.
// Any other failure, or a second failure after the refresh, propagates to the
// caller unmodified. There is never more than one refresh-and-retry cycle per
// call.
func WithReauth[T any](ctx context.Context, session *Manager, op func(ctx context.Context, access string) (T, error)) (T, error) {
	out, err := op(ctx, session.AccessToken())
	if err == nil || !errors.Is(err, api.ErrUnauthorized) {
		return out, err
	}
	if refreshErr := session.Refresh(ctx); refreshErr != nil {
		var zero T
		return zero, refreshErr
	}
	return op(ctx, session.AccessToken())
}
