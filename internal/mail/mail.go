// Package mail defines the outbound-mail seam. The engine treats delivery
// as a side effect that may fail: no caller's correctness depends on a
// message going out.
package mail

import (
	"context"
	"log/slog"
)

// Sender delivers a single message to one recipient.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender logs messages instead of delivering them. It is the default
// sender for deployments without an SMTP relay configured.
type LogSender struct{}

// Send logs the message and always succeeds.
func (LogSender) Send(ctx context.Context, to, subject, body string) error {
	slog.Info("outbound mail (log-only sender)", "to", to, "subject", subject)
	return nil
}
