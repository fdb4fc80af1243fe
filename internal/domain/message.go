package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrMalformedMessage marks a socket frame that could not be decoded. The
// connection survives it: the reader logs, drops the frame, and continues.
var ErrMalformedMessage = errors.New("malformed watcher message")

// Commands understood on the watcher socket. Anything else is logged and dropped.
const (
	CmdNew      = "new"
	CmdShutdown = "shutdown"
)

// Message is one framed event from the file-watcher socket.
type Message struct {
	Cmd  string      `json:"cmd"`
	Data *FileUpdate `json:"data,omitempty"`
}

// FileUpdate describes a changed file: which parser handled it, where it
// lives, and the parser's output as raw JSON. The payload shape depends on
// the parser, so decoding is deferred to the formatter that consumes it.
type FileUpdate struct {
	Parser string          `json:"parser"`
	File   FileInfo        `json:"file"`
	JSON   json.RawMessage `json:"json,omitempty"`
}

// FileInfo identifies the watched file.
type FileInfo struct {
	URL          string    `json:"url"`
	LastModified Timestamp `json:"lastModified"`
}

// Timestamp wraps time.Time with JSON decoding that accepts both RFC 3339
// strings and epoch values (milliseconds or seconds).
type Timestamp struct {
	time.Time
}

// epochMillisCutoff separates epoch seconds from epoch milliseconds: any
// value above it is too far in the future to be seconds.
const epochMillisCutoff = 1e11

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			t.Time = time.Time{}
			return nil
		}
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("parse timestamp %q: %w", s, err)
		}
		t.Time = parsed
		return nil
	}

	n, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("parse timestamp %s: %w", b, err)
	}
	if n > epochMillisCutoff {
		t.Time = time.UnixMilli(int64(n)).UTC()
	} else {
		t.Time = time.Unix(int64(n), 0).UTC()
	}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}
