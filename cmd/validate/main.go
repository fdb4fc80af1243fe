// Command validate checks a notifier rules file without starting the
// service: it loads the config with full validation, summarizes the rules,
// and optionally dry-runs an update against them to show which rules would
// fire.
//
// Usage:
//
//	go run ./cmd/validate -config config.yaml
//	go run ./cmd/validate -config config.yaml \
//	  -url https://ftp.nhc.noaa.gov/atcf/gen/aal952024.dat -parser atcf
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/storm-bulletin-notifier/internal/config"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to the rules file")
	url := flag.String("url", "", "dry-run: file URL to match against the rules")
	parser := flag.String("parser", "", "dry-run: parser name of the update")
	flag.Parse()

	if code := run(*cfgPath, *url, *parser); code != 0 {
		os.Exit(code)
	}
}

func run(cfgPath, url, parser string) int {
	cfg, err := config.LoadFile(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		return 1
	}

	fmt.Printf("config OK: %s\n", cfgPath)
	fmt.Printf("  ipc_addr: %s\n", cfg.IPCAddr)
	fmt.Printf("  mock: %v\n", cfg.Mock)
	fmt.Printf("  users: %d\n", len(cfg.Users))
	fmt.Printf("  watchers: %d (%d distinct webhooks)\n", len(cfg.Watchers), len(cfg.AllWebhooks()))

	for i, w := range cfg.Watchers {
		fmt.Printf("\n  watcher %d: formatter=%s", i, w.Formatter)
		if w.Parser != "" {
			fmt.Printf(" parser=%s", w.Parser)
		}
		fmt.Println()
		for _, f := range w.Files {
			fmt.Printf("    file: %s\n", f)
		}
		for _, h := range w.Webhooks {
			fmt.Printf("    webhook: %s\n", h)
		}
	}

	if url == "" {
		return 0
	}

	fmt.Printf("\ndry run: url=%s parser=%s\n", url, parser)
	matched := 0
	for i, w := range cfg.Watchers {
		if w.Parser != "" && w.Parser != parser {
			continue
		}
		for _, re := range w.FilePatterns {
			if re.MatchString(url) {
				fmt.Printf("  watcher %d matches via %q, would notify %d webhook(s)\n", i, re.String(), len(w.Webhooks))
				matched++
				break
			}
		}
	}
	if matched == 0 {
		fmt.Println("  no rules match; the update would be dropped")
	}
	return 0
}
