package mailer

import (
	"context"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Sender delivers rendered email jobs through Mailgun.
type Sender struct {
	client *mg.MailgunImpl
	from   string
}

func NewSender(domain, apiKey, from string) *Sender {
	return &Sender{client: mg.NewMailgun(domain, apiKey), from: from}
}

// Send delivers one message. html is optional.
func (s *Sender) Send(ctx context.Context, to, subject, text, html string) error {
	msg := s.client.NewMessage(s.from, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	_, _, err := s.client.Send(ctx, msg)
	return err
}
