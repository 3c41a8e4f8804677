package notifications

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/resend/resend-go/v2"

	"github.com/you/classauth/domain"
)

// ResendNotifier delivers login codes over email, implementing domain.Notifier
type ResendNotifier struct {
	client    *resend.Client
	fromEmail string
}

// NewResendNotifier creates a new Resend email notifier
func NewResendNotifier(apiKey, fromEmail string) *ResendNotifier {
	var client *resend.Client
	if apiKey != "" {
		client = resend.NewClient(apiKey)
	}
	return &ResendNotifier{
		client:    client,
		fromEmail: fromEmail,
	}
}

// SendLoginCode implements domain.Notifier
func (r *ResendNotifier) SendLoginCode(ctx context.Context, to, code string, ttl time.Duration) error {
	// If credentials are not configured, log instead of sending
	if r.client == nil || r.fromEmail == "" {
		log.Printf("[MOCK EMAIL] To: %s, Code: %s", to, code)
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    r.fromEmail,
		To:      []string{to},
		Subject: "Your classroom login code",
		Html: fmt.Sprintf("<p>Your login code is <strong>%s</strong>. It is valid for %d minutes.</p>",
			code, int(ttl.Minutes())),
	}

	if _, err := r.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// Compile-time interface compliance verification
var _ domain.Notifier = (*ResendNotifier)(nil)
