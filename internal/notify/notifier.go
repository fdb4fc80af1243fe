// Package notify delivers bulletins to chat webhooks, best effort.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-bulletin-notifier/internal/observability"
)

// Poster performs the raw webhook POST. The real implementation lives in
// internal/adapter/webhook; tests substitute a recorder.
type Poster interface {
	Post(ctx context.Context, hookURL, content string) error
}

// Notifier resolves mentions, appends failure traces, and delivers a message
// to each webhook in order. Delivery is best effort: a failed POST is logged
// and counted, and the remaining webhooks are still attempted. There is no
// retry and no queue.
type Notifier struct {
	poster  Poster
	users   map[string]string
	mock    bool
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Notifier. users maps mention usernames to provider IDs and
// may be nil. With mock enabled, messages are logged but never sent.
func New(poster Poster, users map[string]string, mock bool, logger *slog.Logger, metrics *observability.Metrics) *Notifier {
	return &Notifier{
		poster:  poster,
		users:   users,
		mock:    mock,
		logger:  logger,
		metrics: metrics,
	}
}

// Send delivers content to each webhook sequentially. Duplicate webhooks are
// collapsed so one endpoint never receives the same bulletin twice.
func (n *Notifier) Send(ctx context.Context, webhooks []string, content string) {
	n.send(ctx, webhooks, content, nil)
}

// SendError delivers content with a fenced trace block describing cause.
func (n *Notifier) SendError(ctx context.Context, webhooks []string, content string, cause error) {
	n.send(ctx, webhooks, content, cause)
}

func (n *Notifier) send(ctx context.Context, webhooks []string, content string, cause error) {
	if len(webhooks) == 0 {
		return
	}

	message := resolveMentions(content, n.users)
	if cause != nil {
		message += "\n```\n" + errorTrace(cause) + "\n```"
	}

	for _, hook := range dedupe(webhooks) {
		n.logger.Info("webhook message", "hook", hook, "message", message)

		if n.mock {
			n.logger.Info("mock enabled, message not sent", "hook", hook)
			continue
		}

		start := time.Now()
		err := n.poster.Post(ctx, hook, message)
		n.metrics.Deliveries.Inc()
		n.metrics.DeliveryDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			// Keep going: one dead webhook must not starve the rest.
			n.metrics.DeliveryErrors.Inc()
			n.logger.Error("webhook delivery failed", "hook", hook, "error", err)
		}
	}
}

// dedupe collapses duplicate webhook URLs preserving first-seen order.
func dedupe(webhooks []string) []string {
	seen := make(map[string]bool, len(webhooks))
	out := make([]string, 0, len(webhooks))
	for _, h := range webhooks {
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}
