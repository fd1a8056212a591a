package cli

import (
	"context"
	"fmt"
	"time"

	"partyplnr/internal/common/logger"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err,
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("%s cancelled: %w", operationName, ctx.Err())
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
