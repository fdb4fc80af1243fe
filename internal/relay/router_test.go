package relay_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"regexp"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-bulletin-notifier/internal/config"
	"github.com/couchcryptid/storm-bulletin-notifier/internal/domain"
	"github.com/couchcryptid/storm-bulletin-notifier/internal/format"
	"github.com/couchcryptid/storm-bulletin-notifier/internal/observability"
	"github.com/couchcryptid/storm-bulletin-notifier/internal/relay"
)

// --- mocks ---

type recordedSend struct {
	Webhooks []string
	Content  string
}

type mockSender struct {
	mu    sync.Mutex
	sends []recordedSend
}

func (m *mockSender) Send(_ context.Context, webhooks []string, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends = append(m.sends, recordedSend{Webhooks: webhooks, Content: content})
}

func (m *mockSender) all() []recordedSend {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recordedSend(nil), m.sends...)
}

// echoFormatter renders the file URL so tests can tell which update arrived.
type echoFormatter struct{}

func (echoFormatter) Format(update domain.FileUpdate) (string, error) {
	return "rendered " + update.File.URL, nil
}

type stubFormatter struct {
	out string
	err error
}

func (f stubFormatter) Format(domain.FileUpdate) (string, error) {
	return f.out, f.err
}

func mustPattern(t *testing.T, expr string) *regexp.Regexp {
	t.Helper()
	re, err := regexp.Compile(expr)
	require.NoError(t, err)
	return re
}

func newUpdate(parser, url string) domain.Message {
	return domain.Message{
		Cmd: domain.CmdNew,
		Data: &domain.FileUpdate{
			Parser: parser,
			File:   domain.FileInfo{URL: url},
			JSON:   json.RawMessage(`{}`),
		},
	}
}

// --- tests ---

func TestRouter_Handle_RoutesToMatchingRule(t *testing.T) {
	cfg := &config.Config{
		Watchers: []config.Watcher{
			{
				Webhooks:     []string{"https://hooks.example/atcf"},
				Formatter:    "echo",
				Parser:       "atcf",
				FilePatterns: []*regexp.Regexp{mustPattern(t, `aal\d{6}\.dat$`)},
			},
			{
				Webhooks:     []string{"https://hooks.example/two"},
				Formatter:    "echo",
				Parser:       "two",
				FilePatterns: []*regexp.Regexp{mustPattern(t, `two\.xml$`)},
			},
		},
	}
	sender := &mockSender{}
	router := relay.NewRouter(cfg, map[string]format.Formatter{"echo": echoFormatter{}}, sender, slog.Default(), observability.NewMetricsForTesting())

	router.Handle(context.Background(), newUpdate("atcf", "https://ftp.nhc.noaa.gov/atcf/gen/aal952024.dat"))

	want := []recordedSend{{
		Webhooks: []string{"https://hooks.example/atcf"},
		Content:  "rendered https://ftp.nhc.noaa.gov/atcf/gen/aal952024.dat",
	}}
	if diff := cmp.Diff(want, sender.all()); diff != "" {
		t.Fatalf("sends mismatch (-want +got):\n%s", diff)
	}
}

func TestRouter_Handle_AllMatchingRulesFire(t *testing.T) {
	cfg := &config.Config{
		Watchers: []config.Watcher{
			{
				Webhooks:     []string{"https://hooks.example/a"},
				Formatter:    "echo",
				FilePatterns: []*regexp.Regexp{mustPattern(t, `\.dat$`)},
			},
			{
				Webhooks:     []string{"https://hooks.example/b"},
				Formatter:    "echo",
				FilePatterns: []*regexp.Regexp{mustPattern(t, `aal`)},
			},
		},
	}
	sender := &mockSender{}
	router := relay.NewRouter(cfg, map[string]format.Formatter{"echo": echoFormatter{}}, sender, slog.Default(), observability.NewMetricsForTesting())

	router.Handle(context.Background(), newUpdate("atcf", "https://example.test/aal012026.dat"))

	sends := sender.all()
	require.Len(t, sends, 2, "both rules match independently")
	assert.Equal(t, []string{"https://hooks.example/a"}, sends[0].Webhooks)
	assert.Equal(t, []string{"https://hooks.example/b"}, sends[1].Webhooks)
}

func TestRouter_Handle_OneSendPerRuleEvenWithMultiplePatternHits(t *testing.T) {
	cfg := &config.Config{
		Watchers: []config.Watcher{{
			Webhooks:  []string{"https://hooks.example/a"},
			Formatter: "echo",
			FilePatterns: []*regexp.Regexp{
				mustPattern(t, `aal`),
				mustPattern(t, `\.dat$`),
			},
		}},
	}
	sender := &mockSender{}
	router := relay.NewRouter(cfg, map[string]format.Formatter{"echo": echoFormatter{}}, sender, slog.Default(), observability.NewMetricsForTesting())

	router.Handle(context.Background(), newUpdate("atcf", "https://example.test/aal012026.dat"))

	assert.Len(t, sender.all(), 1)
}

func TestRouter_Handle_ParserFilterSkipsRule(t *testing.T) {
	cfg := &config.Config{
		Watchers: []config.Watcher{{
			Webhooks:     []string{"https://hooks.example/a"},
			Formatter:    "echo",
			Parser:       "atcf",
			FilePatterns: []*regexp.Regexp{mustPattern(t, `.*`)},
		}},
	}
	sender := &mockSender{}
	router := relay.NewRouter(cfg, map[string]format.Formatter{"echo": echoFormatter{}}, sender, slog.Default(), observability.NewMetricsForTesting())

	router.Handle(context.Background(), newUpdate("two", "https://example.test/two.xml"))

	assert.Empty(t, sender.all())
}

func TestRouter_Handle_SuppressedBulletinNotSent(t *testing.T) {
	cfg := &config.Config{
		Watchers: []config.Watcher{{
			Webhooks:     []string{"https://hooks.example/a"},
			Formatter:    "quiet",
			FilePatterns: []*regexp.Regexp{mustPattern(t, `.*`)},
		}},
	}
	sender := &mockSender{}
	router := relay.NewRouter(cfg, map[string]format.Formatter{"quiet": stubFormatter{}}, sender, slog.Default(), observability.NewMetricsForTesting())

	router.Handle(context.Background(), newUpdate("atcf", "https://example.test/file"))

	assert.Empty(t, sender.all())
}

func TestRouter_Handle_FormatErrorSkipsRuleOnly(t *testing.T) {
	cfg := &config.Config{
		Watchers: []config.Watcher{
			{
				Webhooks:     []string{"https://hooks.example/broken"},
				Formatter:    "broken",
				FilePatterns: []*regexp.Regexp{mustPattern(t, `.*`)},
			},
			{
				Webhooks:     []string{"https://hooks.example/ok"},
				Formatter:    "echo",
				FilePatterns: []*regexp.Regexp{mustPattern(t, `.*`)},
			},
		},
	}
	sender := &mockSender{}
	formatters := map[string]format.Formatter{
		"broken": stubFormatter{err: errors.New("bad payload")},
		"echo":   echoFormatter{},
	}
	router := relay.NewRouter(cfg, formatters, sender, slog.Default(), observability.NewMetricsForTesting())

	router.Handle(context.Background(), newUpdate("atcf", "https://example.test/file"))

	sends := sender.all()
	require.Len(t, sends, 1)
	assert.Equal(t, []string{"https://hooks.example/ok"}, sends[0].Webhooks)
}

func TestRouter_Handle_WatcherShutdownBroadcastsToEveryone(t *testing.T) {
	cfg := &config.Config{
		Watchers: []config.Watcher{
			{
				Webhooks:     []string{"https://hooks.example/a", "https://hooks.example/b"},
				Formatter:    "echo",
				FilePatterns: []*regexp.Regexp{mustPattern(t, `.*`)},
			},
			{
				Webhooks:     []string{"https://hooks.example/b"},
				Formatter:    "echo",
				FilePatterns: []*regexp.Regexp{mustPattern(t, `.*`)},
			},
		},
	}
	sender := &mockSender{}
	router := relay.NewRouter(cfg, map[string]format.Formatter{"echo": echoFormatter{}}, sender, slog.Default(), observability.NewMetricsForTesting())

	router.Handle(context.Background(), domain.Message{Cmd: domain.CmdShutdown})

	sends := sender.all()
	require.Len(t, sends, 1)
	assert.Equal(t, []string{"https://hooks.example/a", "https://hooks.example/b"}, sends[0].Webhooks)
	assert.Equal(t, "-# NOAA File Watcher Shutdown", sends[0].Content)
}

func TestRouter_Handle_UnknownCommandDropped(t *testing.T) {
	cfg := &config.Config{
		Watchers: []config.Watcher{{
			Webhooks:     []string{"https://hooks.example/a"},
			Formatter:    "echo",
			FilePatterns: []*regexp.Regexp{mustPattern(t, `.*`)},
		}},
	}
	sender := &mockSender{}
	router := relay.NewRouter(cfg, map[string]format.Formatter{"echo": echoFormatter{}}, sender, slog.Default(), observability.NewMetricsForTesting())

	router.Handle(context.Background(), domain.Message{Cmd: "restart"})
	router.Handle(context.Background(), domain.Message{Cmd: domain.CmdNew}) // missing payload

	assert.Empty(t, sender.all())
}
