package mailer

import (
	"context"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// Message is a rendered e-mail ready for delivery.
type Message struct {
	To          []mail.Address
	Subject     string
	TextContent string
	HTMLContent string
}

// HasRecipients reports whether the message targets anyone.
func (m Message) HasRecipients() bool {
	return len(m.To) > 0
}

// HasContent reports whether the message carries a body.
func (m Message) HasContent() bool {
	return m.TextContent != "" || m.HTMLContent != ""
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SendgridMailer delivers through the SendGrid v3 API.
type SendgridMailer struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
	logger     *zap.Logger
}

// NewSendgrid builds a SendGrid-backed mailer.
func NewSendgrid(key, appName, fromEmail string, logger *zap.Logger) *SendgridMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SendgridMailer{
		key:        key,
		from:       sgmail.NewEmail(appName, fromEmail),
		subjPrefix: "[" + appName + "] ",
		logger:     logger,
	}
}

// Send posts the message synchronously so the caller can retry on failure.
func (s *SendgridMailer) Send(ctx context.Context, msg Message) error {
	if !msg.HasRecipients() || !msg.HasContent() {
		return nil
	}
	req := sendgrid.GetRequest(s.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sending email: status %d: %s", res.StatusCode, res.Body)
	}
	s.logger.Debug("email sent", zap.String("subject", msg.Subject), zap.Int("recipients", len(msg.To)))
	return nil
}

func (s *SendgridMailer) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = s.subjPrefix + msg.Subject
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail(to.Name, to.Address))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)

	if msg.TextContent != "" {
		m.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	}
	if msg.HTMLContent != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLContent))
	}
	return m
}

// LogMailer writes messages to the logger instead of delivering them. Used
// when no SendGrid key is configured.
type LogMailer struct {
	logger *zap.Logger
}

// NewLog builds a logging mailer.
func NewLog(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

// Send logs the envelope of the message.
func (l *LogMailer) Send(_ context.Context, msg Message) error {
	if !msg.HasRecipients() || !msg.HasContent() {
		return nil
	}
	to := make([]string, 0, len(msg.To))
	for _, addr := range msg.To {
		to = append(to, addr.String())
	}
	l.logger.Info("email (not delivered)",
		zap.Strings("to", to),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.TextContent),
	)
	return nil
}
