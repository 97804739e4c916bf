package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// Logger records verification attempts. A storage failure is reported to
// the process log but never propagated: the decision returned to the caller
// has already been made and an audit hiccup must not overturn it.
type Logger struct {
	writer Writer
}

// NewLogger creates a logger over the given attempt writer.
func NewLogger(writer Writer) *Logger {
	return &Logger{writer: writer}
}

// Record appends one attempt record, assigning an ID and timestamp when the
// caller left them empty.
func (l *Logger) Record(ctx context.Context, attempt Attempt) {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.OccurredAt.IsZero() {
		attempt.OccurredAt = time.Now()
	}

	if err := l.writer.Insert(ctx, attempt); err != nil {
		log.Printf("warning: failed to record audit attempt %s (outcome %s): %v", attempt.ID, attempt.Outcome, err)
	}
}
