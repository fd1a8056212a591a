// Package fallback asks an external language model for a reply when the
// catalog has no local match. Every failure degrades to an empty answer so
// the caller can render its fixed apology.
package fallback

import (
	"context"
	"errors"
	"time"

	apperrors "partyplnr/internal/common/errors"
	"partyplnr/internal/common/logger"
	"partyplnr/internal/common/metrics"
)

// DefaultTimeout bounds one completion call.
const DefaultTimeout = 8 * time.Second

// Request is what the model sees: the user's words and the closest real
// catalog entries, already rendered.
type Request struct {
	UserMessage     string
	CandidateBlocks string
}

// Completer produces reply text for a request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Guard bounds a Completer by a timeout and swallows its failures.
type Guard struct {
	completer Completer
	timeout   time.Duration
	logger    logger.Logger
}

// NewGuard wraps c. A nil c disables the fallback.
func NewGuard(c Completer, timeout time.Duration, log logger.Logger) *Guard {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Guard{
		completer: c,
		timeout:   timeout,
		logger:    log.WithFields(map[string]interface{}{"component": "fallback"}),
	}
}

// Enabled reports whether a completer is configured.
func (g *Guard) Enabled() bool {
	return g != nil && g.completer != nil
}

// Text returns the completion, or "" when the fallback is disabled or fails.
// degraded is set when a configured completer failed, so the empty text is
// a transient result rather than the steady answer.
func (g *Guard) Text(ctx context.Context, req Request) (text string, degraded bool) {
	if !g.Enabled() {
		metrics.FallbackCalls.WithLabelValues("disabled").Inc()
		return "", false
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	text, err := g.completer.Complete(callCtx, req)
	if err != nil {
		stdErr := classify(callCtx, err)
		metrics.FallbackCalls.WithLabelValues(statusOf(stdErr.Code)).Inc()
		g.logger.Warn("AI fallback failed, using apology", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
			"elapsedMs": time.Since(start).Milliseconds(),
		})
		return "", true
	}

	metrics.FallbackCalls.WithLabelValues("ok").Inc()
	g.logger.Debug("AI fallback answered", map[string]interface{}{
		"elapsedMs": time.Since(start).Milliseconds(),
	})
	return text, false
}

func classify(ctx context.Context, err error) *apperrors.StandardError {
	if stdErr, ok := apperrors.AsStandardError(err); ok {
		return stdErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.NewTimeoutError("ai-fallback", err)
	}
	return apperrors.NewExternalServiceError("ai-fallback", err)
}

func statusOf(code apperrors.ErrorCode) string {
	switch code {
	case apperrors.ErrCodeTimeout:
		return "timeout"
	case apperrors.ErrCodeAuthenticationError:
		return "auth"
	default:
		return "error"
	}
}
