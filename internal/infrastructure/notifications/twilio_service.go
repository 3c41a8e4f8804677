package notifications

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/you/classauth/domain"
)

// TwilioNotifier delivers login codes over SMS, implementing domain.Notifier
type TwilioNotifier struct {
	client     *twilio.RestClient
	fromNumber string
}

// NewTwilioNotifier creates a new Twilio SMS notifier
func NewTwilioNotifier(accountSID, authToken, fromNumber string) *TwilioNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioNotifier{
		client:     client,
		fromNumber: fromNumber,
	}
}

// SendLoginCode implements domain.Notifier
func (t *TwilioNotifier) SendLoginCode(ctx context.Context, to, code string, ttl time.Duration) error {
	message := fmt.Sprintf("Your classroom login code is: %s. Valid for %d minutes.", code, int(ttl.Minutes()))

	// If credentials are not configured, log instead of sending
	if t.fromNumber == "" {
		log.Printf("[MOCK SMS] To: %s, Message: %s", to, message)
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.fromNumber)
	params.SetBody(message)

	if _, err := t.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}

	return nil
}

// Compile-time interface compliance verification
var _ domain.Notifier = (*TwilioNotifier)(nil)
