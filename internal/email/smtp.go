package email

import (
	"context"
	"fmt"
	"mime"
	"net"
	"net/smtp"
)

// SMTPTransport sends mail through a plain SMTP relay such as a local MailHog.
type SMTPTransport struct {
	addr     string
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPTransport(host, port string) *SMTPTransport {
	return &SMTPTransport{
		addr:     net.JoinHostPort(host, port),
		sendMail: smtp.SendMail,
	}
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		msg.From, msg.To, mime.QEncoding.Encode("utf-8", msg.Subject), msg.HTML)
	return t.sendMail(t.addr, nil, msg.From, []string{msg.To}, []byte(raw))
}
