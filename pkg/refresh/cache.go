package refresh

import (
	"context"
	"errors"
	"fmt"

	"github.com/fivetwenty-io/partnercenter/internal/constants"
	"github.com/fivetwenty-io/partnercenter/pkg/partner"
)

// TokenStore keeps token snapshots shared between processes.
type TokenStore interface {
	// Load returns the token stored under key, or constants.ErrTokenNotFound.
	Load(ctx context.Context, key string) (*Token, error)
	// Save stores token under key until the token expires.
	Save(ctx context.Context, key string, token *Token) error
	// Delete removes the token stored under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Cached returns a refresh handler that first looks for a valid token in store and only runs
// next when there is none. A token obtained from next is written back to store so that other
// processes sharing the store can reuse it.
//
// Store failures never fail the refresh: they are logged and next is used instead.
func Cached(store TokenStore, key string, next partner.RefreshFunc, opts ...Option) partner.RefreshFunc {
	o := newOptions(opts)

	return func(ctx context.Context, creds *partner.Credentials, requestContext partner.RequestContext) error {
		shared, err := store.Load(ctx, key)

		switch {
		case err == nil && shared.Valid(creds.ExpiryBuffer()):
			o.logger.Debug("Using shared access token", map[string]interface{}{
				"key":        key,
				"expires_at": shared.ExpiresAt,
			})

			return install(creds, shared)
		case err != nil && !errors.Is(err, constants.ErrTokenNotFound):
			o.logger.Warn("Failed to load shared access token", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}

		if next == nil {
			return fmt.Errorf("%w: %s", constants.ErrTokenNotFound, key)
		}

		err = next(ctx, creds, requestContext)
		if err != nil {
			return err
		}

		if creds.IsExpired() {
			return nil
		}

		err = store.Save(ctx, key, snapshot(creds))
		if err != nil {
			o.logger.Warn("Failed to share access token", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}

		return nil
	}
}
