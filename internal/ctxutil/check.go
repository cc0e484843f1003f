// Package ctxutil holds context helpers shared by the session stages.
package ctxutil

import (
	"context"
	"errors"
	"fmt"
)

// Canceled returns nil while ctx is live. Once ctx is done it returns
// ctx.Err(), joined with the cancellation cause when one was set, so both
// errors.Is(err, context.Canceled) and a check for the cause match.
func Canceled(ctx context.Context) error {
	err := ctx.Err()
	if err == nil {
		return nil
	}
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, err) {
		return fmt.Errorf("%w: %w", err, cause)
	}
	return err
}
