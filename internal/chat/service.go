// Package chat answers one user message: it extracts signals, consults
// session memory, ranks the catalog and composes the reply.
package chat

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"partyplnr/internal/common/config"
	apperrors "partyplnr/internal/common/errors"
	"partyplnr/internal/common/logger"
	"partyplnr/internal/common/metrics"
	"partyplnr/internal/common/observability"
	"partyplnr/internal/compose"
	"partyplnr/internal/fallback"
	"partyplnr/internal/intent"
	"partyplnr/internal/lexicon"
	"partyplnr/internal/models"
	"partyplnr/internal/ranking"
	"partyplnr/internal/responsecache"
	"partyplnr/internal/session"
)

// Request is one inbound chat message.
type Request struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// Response is the reply text and whether it asks for more detail.
type Response struct {
	Text       string `json:"text"`
	IsFollowUp bool   `json:"isFollowUp"`
	Outcome    string `json:"outcome"`
}

const outcomeEmpty = "empty"

// Policy selects the behavior of each conversational branch.
type Policy struct {
	TopK                   int
	UseSessionLocation     bool
	RememberSearchLocation bool
	RequireLocation        bool
	NoMatch                string
}

// PolicyFromConfig maps engine configuration onto a Policy.
func PolicyFromConfig(cfg config.EngineConfig) Policy {
	return Policy{
		TopK:                   cfg.TopK,
		UseSessionLocation:     cfg.UseSessionLocation,
		RememberSearchLocation: cfg.RememberSearchLocation,
		RequireLocation:        cfg.RequireLocation,
		NoMatch:                cfg.NoMatchPolicy,
	}
}

// Service is safe for concurrent use.
type Service struct {
	extractor *intent.Extractor
	engine    *ranking.Engine
	sessions  session.Store
	cache     responsecache.Cache
	composer  *compose.Composer
	fallback  *fallback.Guard
	obs       *observability.Observability
	policy    Policy
	logger    logger.Logger
}

// Option customizes a Service.
type Option func(*Service)

func WithFallback(g *fallback.Guard) Option {
	return func(s *Service) { s.fallback = g }
}

func WithObservability(o *observability.Observability) Option {
	return func(s *Service) { s.obs = o }
}

func NewService(
	extractor *intent.Extractor,
	engine *ranking.Engine,
	sessions session.Store,
	cache responsecache.Cache,
	composer *compose.Composer,
	policy Policy,
	log logger.Logger,
	opts ...Option,
) *Service {
	if policy.NoMatch == "" {
		policy.NoMatch = config.NoMatchApology
	}
	s := &Service{
		extractor: extractor,
		engine:    engine,
		sessions:  sessions,
		cache:     cache,
		composer:  composer,
		policy:    policy,
		logger:    log.WithFields(map[string]interface{}{"component": "chat"}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Respond never fails for conversational reasons: every branch ends in
// reply text. The error return is reserved for a cancelled context.
func (s *Service) Respond(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	ctx, span := s.obs.StartSpan(ctx, "chat.Respond",
		attribute.String("session.id", req.SessionID))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return s.finish(ctx, span, start, &Response{
			Text:       compose.EmptyMessage,
			IsFollowUp: true,
			Outcome:    outcomeEmpty,
		}), nil
	}

	remembered := s.recall(ctx, req.SessionID)
	sig := s.extractor.Extract(message, remembered)
	span.SetAttributes(
		attribute.String("signal.category", sig.Category),
		attribute.String("signal.location", sig.Location),
		attribute.String("signal.occasion", sig.Occasion),
	)

	if sig.IsPureAssertion() {
		s.remember(ctx, req.SessionID, sig.Location)
		out := compose.LocationAcknowledged(sig.Location)
		return s.finish(ctx, span, start, &Response{
			Text:       s.composer.Compose(out),
			IsFollowUp: out.IsFollowUp(),
			Outcome:    out.Kind.String(),
		}), nil
	}

	if sig.LocationKnown && (sig.LocationAssertion || s.policy.RememberSearchLocation) {
		s.remember(ctx, req.SessionID, sig.Location)
	}

	build := func(ctx context.Context) (responsecache.Value, error) {
		out, degraded := s.decide(ctx, message, sig)
		return responsecache.Value{
			Text:     s.composer.Compose(out),
			FollowUp: out.IsFollowUp(),
			Outcome:  out.Kind.String(),
			Degraded: degraded,
		}, nil
	}

	val, err := s.cache.GetOrCompute(ctx, cacheKey(req.SessionID, sig, message), build)
	if err != nil {
		s.logger.Warn("response cache failed, computing uncached", map[string]interface{}{"error": err})
		val, _ = build(ctx)
	}

	return s.finish(ctx, span, start, &Response{
		Text:       val.Text,
		IsFollowUp: val.FollowUp,
		Outcome:    val.Outcome,
	}), nil
}

// decide picks the reply outcome for a message that is not a pure
// location statement. degraded reports a reply shaped by a failing
// fallback, which must not be cached.
func (s *Service) decide(ctx context.Context, message string, sig models.Signals) (out compose.Outcome, degraded bool) {
	if !sig.HasCategory() && len(sig.Bundle) == 0 {
		s.logger.Debug("no category in message", map[string]interface{}{
			"errorCode": string(apperrors.ErrCodeMissingSignal),
		})
		return compose.NeedCategory(), false
	}

	if s.policy.RequireLocation && sig.EffectiveLocation(true) == "" {
		return compose.NeedLocation(), false
	}

	opts := ranking.Options{TopK: s.policy.TopK, UseSessionLocation: s.policy.UseSessionLocation}

	var matches []ranking.Match
	if len(sig.Bundle) > 0 {
		matches = s.engine.RankDiverse(sig, sig.Bundle, opts)
	} else {
		matches = s.engine.Rank(sig, opts)
	}
	if len(matches) > 0 {
		return compose.Matches(matches, ""), false
	}

	return s.noMatch(ctx, message, sig, opts)
}

func (s *Service) noMatch(ctx context.Context, message string, sig models.Signals, opts ranking.Options) (compose.Outcome, bool) {
	stdErr := apperrors.NewNoLocalMatchError(sig.Category, sig.EffectiveLocation(opts.UseSessionLocation))
	s.logger.Info("no local match", map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
		"policy":    s.policy.NoMatch,
	})

	relaxed := opts
	relaxed.Relax = true

	switch s.policy.NoMatch {
	case config.NoMatchClosest:
		return compose.Matches(s.engine.Rank(sig, relaxed), ""), false
	case config.NoMatchAI:
		closest := s.engine.Rank(sig, relaxed)
		text, degraded := s.fallback.Text(ctx, fallback.Request{
			UserMessage:     message,
			CandidateBlocks: compose.Blocks(closest),
		})
		return compose.Matches(nil, text), degraded
	default:
		return compose.Matches(nil, ""), false
	}
}

func (s *Service) recall(ctx context.Context, sessionID string) string {
	if sessionID == "" {
		return ""
	}
	loc, _, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		metrics.SessionErrors.WithLabelValues("get").Inc()
		s.logger.Warn("session lookup failed, continuing without memory", map[string]interface{}{
			"sessionId": sessionID,
			"errorCode": string(apperrors.CodeOf(err)),
			"error":     err,
		})
		return ""
	}
	return loc
}

func (s *Service) remember(ctx context.Context, sessionID, location string) {
	if sessionID == "" || location == "" {
		return
	}
	if err := s.sessions.Set(ctx, sessionID, location); err != nil {
		metrics.SessionErrors.WithLabelValues("set").Inc()
		s.logger.Warn("session update failed", map[string]interface{}{
			"sessionId": sessionID,
			"location":  location,
			"errorCode": string(apperrors.CodeOf(err)),
			"error":     err,
		})
	}
}

func (s *Service) finish(ctx context.Context, span trace.Span, start time.Time, resp *Response) *Response {
	elapsed := time.Since(start)
	metrics.ChatRequests.WithLabelValues(resp.Outcome).Inc()
	metrics.ChatDuration.WithLabelValues(resp.Outcome).Observe(elapsed.Seconds())
	s.obs.RecordReply(ctx, resp.Outcome, elapsed)
	span.SetAttributes(attribute.String("chat.outcome", resp.Outcome))

	s.logger.Debug("chat reply composed", map[string]interface{}{
		"outcome":    resp.Outcome,
		"isFollowUp": resp.IsFollowUp,
		"elapsedMs":  elapsed.Milliseconds(),
	})
	return resp
}

// cacheKey scopes a normalized message by session and the location the
// reply depends on.
func cacheKey(sessionID string, sig models.Signals, message string) string {
	return sessionID + "|" + sig.ScopeLocation() + "|" + lexicon.Normalize(message)
}
