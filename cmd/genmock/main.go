// Command genmock plays back recorded NOAA file-watcher traffic so the
// notifier can be exercised without a live watcher. It listens on a socket
// and streams a JSON-lines fixture to every client that connects, one
// message per line with a fixed delay between them.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -listen /tmp/noaa-watcher.sock \
//	  -fixture data/mock/watcher_messages.jsonl \
//	  -interval 2s
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/storm-bulletin-notifier/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	listen := flag.String("listen", "/tmp/noaa-watcher.sock", "socket address to listen on (path for unix, host:port for tcp)")
	fixture := flag.String("fixture", "data/mock/watcher_messages.jsonl", "JSON-lines fixture of watcher messages")
	interval := flag.Duration("interval", 2*time.Second, "delay between replayed messages")
	loop := flag.Bool("loop", false, "replay the fixture forever instead of once per connection")
	flag.Parse()

	lines, err := loadFixture(*fixture)
	if err != nil {
		return err
	}
	log.Printf("loaded %d messages from %s", len(lines), *fixture)

	network := "tcp"
	if strings.ContainsRune(*listen, '/') {
		network = "unix"
		// A stale socket file from a previous run blocks the listener.
		os.Remove(*listen)
	}

	ln, err := net.Listen(network, *listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", *listen, err)
	}
	defer ln.Close()
	log.Printf("mock watcher listening on %s (%s)", *listen, network)

	for {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("accept: %w", err)
		}
		go serve(conn, lines, *interval, *loop)
	}
}

// loadFixture reads the fixture and validates every line decodes as a
// watcher message, so a broken fixture fails at startup rather than
// mid-replay.
func loadFixture(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	var lines [][]byte
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for n := 1; scanner.Scan(); n++ {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var msg domain.Message
		if err := json.Unmarshal(line, &msg); err != nil {
			return nil, fmt.Errorf("fixture line %d: %w", n, err)
		}
		if msg.Cmd == "" {
			return nil, fmt.Errorf("fixture line %d: missing cmd", n)
		}
		lines = append(lines, append([]byte(nil), line...))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("fixture %s has no messages", path)
	}
	return lines, nil
}

func serve(conn net.Conn, lines [][]byte, interval time.Duration, loop bool) {
	defer conn.Close()
	log.Printf("client connected: %s", conn.RemoteAddr())

	for {
		for i, line := range lines {
			if i > 0 {
				time.Sleep(interval)
			}
			if _, err := conn.Write(append(line, '\n')); err != nil {
				log.Printf("client gone: %v", err)
				return
			}
		}
		if !loop {
			break
		}
		time.Sleep(interval)
	}

	log.Printf("replay finished: %s", conn.RemoteAddr())
}
