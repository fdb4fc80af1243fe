// Package format renders parsed NOAA product payloads into chat bulletins.
//
// Each formatter owns the decoding of its payload shape and decides whether
// the update is worth announcing at all: a quiet advisory produces no
// bulletin rather than an empty one.
package format

import (
	"fmt"
	"time"

	"github.com/couchcryptid/storm-bulletin-notifier/internal/domain"
)

// Formatter renders one file update into bulletin text. An empty string with
// a nil error means nothing notable happened and no bulletin should be sent.
// An error means the payload could not be decoded; the caller logs and drops.
type Formatter interface {
	Format(update domain.FileUpdate) (string, error)
}

// Registry returns the closed set of named formatters. Configuration rejects
// any watcher referencing a name outside this set at load time.
func Registry() map[string]Formatter {
	return map[string]Formatter{
		"atcf": &AtcfFormatter{},
		"two":  &TwoFormatter{},
	}
}

// issueDate renders a bulletin timestamp as "YYYY-MM-DD HHz" in UTC.
func issueDate(t time.Time) string {
	u := t.UTC()
	return fmt.Sprintf("%s %02dz", u.Format("2006-01-02"), u.Hour())
}

// pInt renders pre+value+post when the value is present and non-negative,
// and nothing otherwise.
func pInt(pre string, v *int, post string) string {
	if v == nil || *v < 0 {
		return ""
	}
	return fmt.Sprintf("%s%d%s", pre, *v, post)
}

// pStr renders pre+value+post when the string is non-empty.
func pStr(pre, v, post string) string {
	if v == "" {
		return ""
	}
	return pre + v + post
}

// orZero dereferences an optional radius for fixed-width diagram fields,
// treating an absent quadrant as zero.
func orZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
