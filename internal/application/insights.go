package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bnema/growth-dashboard/internal/domain"
	"github.com/bnema/growth-dashboard/internal/ports"
)

var ErrUnknownInsightKind = errors.New("unknown insight kind")

// InsightResult is delivered on the channel returned by InsightService.Request.
type InsightResult struct {
	Kind    ports.InsightKind
	Insight string
	Err     error
}

// InsightService picks the data summarised for each tab and forwards it to
// the AI collaborator. It never reads or writes history.
type InsightService struct {
	gen     ports.InsightGenerator
	notices *NoticeBoard
	logger  *slog.Logger
}

// NewInsightService accepts a nil generator; calls then fail with
// domain.ErrInsightNotConfigured.
func NewInsightService(gen ports.InsightGenerator, notices *NoticeBoard, logger *slog.Logger) *InsightService {
	if logger == nil {
		logger = slog.Default()
	}

	return &InsightService{
		gen:     gen,
		notices: notices,
		logger:  logger.With("component", "insights"),
	}
}

// ParseInsightKind maps insight kinds, collection kinds and tab names onto an
// insight kind. An empty value and the dashboard tab mean overview.
func ParseInsightKind(raw string) (ports.InsightKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "overview", "dash", "dashboard", "all":
		return ports.InsightOverview, nil
	}

	kind, err := domain.ParseKind(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownInsightKind, raw)
	}

	switch kind {
	case domain.KindReading:
		return ports.InsightBooks, nil
	case domain.KindJob:
		return ports.InsightCareer, nil
	default:
		return ports.InsightVocabulary, nil
	}
}

// RequestFor builds the request for kind: one collection for the per-tab
// kinds, the whole snapshot for the overview.
func RequestFor(kind ports.InsightKind, snap domain.Snapshot) ports.InsightRequest {
	var payload any
	switch kind {
	case ports.InsightBooks:
		payload = snap.Books
	case ports.InsightCareer:
		payload = snap.Jobs
	case ports.InsightVocabulary:
		payload = snap.Vocab
	default:
		kind = ports.InsightOverview
		payload = snap
	}

	return ports.InsightRequest{Kind: kind, Payload: payload}
}

// Generate blocks until the collaborator answers. Errors are the classified
// domain insight errors and are meant to be shown as-is.
func (s *InsightService) Generate(ctx context.Context, req ports.InsightRequest) (string, error) {
	if s.gen == nil {
		insightRequestsTotal.WithLabelValues(string(req.Kind), "not_configured").Inc()
		return "", domain.ErrInsightNotConfigured
	}

	insight, err := s.gen.Generate(ctx, req)
	if err != nil {
		outcome := insightOutcome(err)
		insightRequestsTotal.WithLabelValues(string(req.Kind), outcome).Inc()
		s.logger.Warn("insight request failed", "kind", req.Kind, "outcome", outcome, "err", err)
		return "", err
	}

	insightRequestsTotal.WithLabelValues(string(req.Kind), "ok").Inc()
	s.logger.Info("insight generated", "kind", req.Kind, "chars", len(insight))

	return insight, nil
}

// Request runs Generate on its own goroutine. The channel receives exactly
// one result and is then closed. Failures are also posted as notices.
func (s *InsightService) Request(ctx context.Context, req ports.InsightRequest) <-chan InsightResult {
	out := make(chan InsightResult, 1)

	go func() {
		defer close(out)

		insight, err := s.Generate(ctx, req)
		if err != nil && s.notices != nil {
			s.notices.Notify(NoticeError, err.Error())
		}
		out <- InsightResult{Kind: req.Kind, Insight: insight, Err: err}
	}()

	return out
}

func insightOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsightRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrInsightQuotaExhausted):
		return "quota_exhausted"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "unavailable"
	}
}
