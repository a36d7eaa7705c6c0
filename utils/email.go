package utils

import (
	"context"

	"gopkg.in/gomail.v2"
)

// Notifier delivers a message to a single recipient.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPNotifier sends HTML mail through an SMTP relay.
type SMTPNotifier struct {
	Host     string
	Port     int
	User     string
	Password string
}

func (n *SMTPNotifier) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.User)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(n.Host, n.Port, n.User, n.Password)
	return d.DialAndSend(m)
}
