package mail

import (
	"context"
	"time"
)

type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// EmailSender delivers transactional mail. Callers treat failures as
// best-effort: log and move on.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) (SendResult, error)
}

// NoopSender is used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendEmail(ctx context.Context, to, subject, body string) (SendResult, error) {
	return SendResult{MessageID: "noop", SentAt: time.Now()}, nil
}
