package delivery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/gomail.v2"
)

// EmailConfig holds SMTP settings for the email channel.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Subject  string
}

// Email sends codes over SMTP. Most deployments keep the email channel
// decoupled and deliver from the caller instead; this channel exists for
// coupled configurations.
type Email struct {
	cfg EmailConfig
}

// NewEmail constructs an SMTP channel.
func NewEmail(cfg EmailConfig) (*Email, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, errors.New("smtp host and port required")
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.From == "" {
		return nil, errors.New("smtp sender address required")
	}
	if cfg.Subject == "" {
		cfg.Subject = "Your verification code"
	}
	return &Email{cfg: cfg}, nil
}

// NewEmailFromEnv reads SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD,
// and SMTP_FROM from the environment.
func NewEmailFromEnv() (*Email, error) {
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	return NewEmail(EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	})
}

// Deliver sends the code to the recipient address. gomail dials per send;
// cancellation is only honored up front.
func (e *Email) Deliver(ctx context.Context, subject, code string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", e.cfg.From)
	m.SetHeader("To", subject)
	m.SetHeader("Subject", e.cfg.Subject)
	m.SetBody("text/plain", codeMessage(code, ttl))

	d := gomail.NewDialer(e.cfg.Host, e.cfg.Port, e.cfg.Username, e.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// Name identifies the channel in audit metadata.
func (*Email) Name() string {
	return "smtp-email"
}
