// Package relay connects the watcher socket to the notification side: the
// Manager owns the connection lifecycle and the Router dispatches each
// decoded message to the watcher rules that subscribe to it.
package relay

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/couchcryptid/storm-bulletin-notifier/internal/config"
	"github.com/couchcryptid/storm-bulletin-notifier/internal/domain"
	"github.com/couchcryptid/storm-bulletin-notifier/internal/format"
	"github.com/couchcryptid/storm-bulletin-notifier/internal/observability"
)

// Lifecycle notices broadcast to every configured webhook.
const (
	noticeConnected        = "-# NOAA File Watcher Connected"
	noticeConnectionLost   = "-# NOAA File Watcher connection lost"
	noticeWatcherShutdown  = "-# NOAA File Watcher Shutdown"
	noticeNotifierShutdown = "-# Notifier Shutdown"
)

// Sender delivers rendered content to a set of webhooks.
type Sender interface {
	Send(ctx context.Context, webhooks []string, content string)
}

// Router matches incoming messages against the configured watcher rules and
// forwards rendered bulletins to each matching rule's webhooks.
type Router struct {
	watchers   []config.Watcher
	allHooks   []string
	formatters map[string]format.Formatter
	sender     Sender
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewRouter builds a Router over the configured rules. Formatter names are
// validated at config load, so every rule resolves.
func NewRouter(cfg *config.Config, formatters map[string]format.Formatter, sender Sender, logger *slog.Logger, metrics *observability.Metrics) *Router {
	return &Router{
		watchers:   cfg.Watchers,
		allHooks:   cfg.AllWebhooks(),
		formatters: formatters,
		sender:     sender,
		logger:     logger,
		metrics:    metrics,
	}
}

// Handle dispatches one decoded watcher message. Unknown commands are logged
// and dropped; the connection stays up.
func (r *Router) Handle(ctx context.Context, msg domain.Message) {
	r.metrics.EventsReceived.Inc()

	switch msg.Cmd {
	case domain.CmdNew:
		if msg.Data == nil {
			r.metrics.UnknownCommands.Inc()
			r.logger.Error("new command without payload")
			return
		}
		r.route(ctx, *msg.Data)
	case domain.CmdShutdown:
		r.logger.Info("watcher announced shutdown")
		r.sender.Send(ctx, r.allHooks, noticeWatcherShutdown)
	default:
		r.metrics.UnknownCommands.Inc()
		r.logger.Error("unknown watcher command", "cmd", msg.Cmd)
	}
}

// route evaluates every rule independently: a rule matches when its parser
// filter passes and any of its file patterns matches the file URL.
func (r *Router) route(ctx context.Context, update domain.FileUpdate) {
	for i := range r.watchers {
		w := &r.watchers[i]
		if w.Parser != "" && w.Parser != update.Parser {
			continue
		}
		if !matchesAny(w.FilePatterns, update.File.URL) {
			continue
		}

		r.metrics.RulesMatched.Inc()

		bulletin, err := r.formatters[w.Formatter].Format(update)
		if err != nil {
			r.metrics.DecodeErrors.Inc()
			r.logger.Error("bulletin render failed",
				"formatter", w.Formatter,
				"url", update.File.URL,
				"error", err,
			)
			continue
		}
		if bulletin == "" {
			r.metrics.BulletinsSuppressed.WithLabelValues(w.Formatter).Inc()
			r.logger.Debug("bulletin suppressed", "formatter", w.Formatter, "url", update.File.URL)
			continue
		}

		r.metrics.BulletinsSent.WithLabelValues(w.Formatter).Inc()
		r.sender.Send(ctx, w.Webhooks, bulletin)
	}
}

func matchesAny(patterns []*regexp.Regexp, url string) bool {
	for _, re := range patterns {
		if re.MatchString(url) {
			return true
		}
	}
	return false
}
