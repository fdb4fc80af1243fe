package notify

import (
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// stackTracer is satisfied by errors created with github.com/pkg/errors.
type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// errorTrace renders a failure as a readable block: the message, a labeled
// stack section when the error carries one, and a labeled cause section for
// the unwrapped error (one level deep), closed with a separator line.
func errorTrace(err error) string {
	if err == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(err.Error())

	if stack := stackOf(err); stack != "" {
		b.WriteString("\n-- Stack " + strings.Repeat("-", 41) + "\n")
		b.WriteString(stack)
	}

	if cause := errors.Unwrap(err); cause != nil {
		b.WriteString("\n-- Cause " + strings.Repeat("-", 41) + "\n")
		if stack := stackOf(cause); stack != "" {
			b.WriteString(cause.Error())
			b.WriteString(stack)
		} else {
			b.WriteString(cause.Error())
		}
	}

	b.WriteString("\n" + strings.Repeat("=", 50))
	return b.String()
}

// stackOf extracts a formatted stack trace if the error recorded one.
func stackOf(err error) string {
	st, ok := err.(stackTracer)
	if !ok {
		return ""
	}
	return strings.TrimRight(fmt.Sprintf("%+v", st.StackTrace()), "\n")
}
