package delivery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

// SmsConfig holds Twilio credentials and the sender number.
type SmsConfig struct {
	AccountSID string
	AuthToken  string
	From       string
}

// Sms sends codes over SMS through the Twilio Messaging API.
type Sms struct {
	client *twilio.RestClient
	from   string
}

// NewSms constructs an SMS channel from explicit credentials.
func NewSms(cfg SmsConfig) (*Sms, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, errors.New("twilio credentials required")
	}
	if cfg.From == "" {
		return nil, errors.New("twilio sender number required")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &Sms{client: client, from: cfg.From}, nil
}

// NewSmsFromEnv reads TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN, and
// TWILIO_FROM_NUMBER from the environment.
func NewSmsFromEnv() (*Sms, error) {
	return NewSms(SmsConfig{
		AccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		AuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		From:       os.Getenv("TWILIO_FROM_NUMBER"),
	})
}

// Deliver sends the code to an E.164 recipient. The Twilio client has no
// context plumbing, so cancellation is only honored up front.
func (s *Sms) Deliver(ctx context.Context, subject, code string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &api.CreateMessageParams{}
	params.SetTo(subject)
	params.SetFrom(s.from)
	params.SetBody(codeMessage(code, ttl))

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send: %w", err)
	}
	return nil
}

// Name identifies the channel in audit metadata.
func (*Sms) Name() string {
	return "twilio-sms"
}

func codeMessage(code string, ttl time.Duration) string {
	minutes := int(ttl.Round(time.Minute) / time.Minute)
	if minutes < 1 {
		return fmt.Sprintf("Your verification code is %s. It expires in %d seconds.", code, int(ttl.Seconds()))
	}
	return fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, minutes)
}
