package mailer

import (
	"context"
	"fmt"
	"mime"
	"net/mail"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"github.com/ObservantAbc123/OpenFarm3-D/internal/config"
)

// SMTPMailer sends through the shop's outbound SMTP account. Port 465
// means implicit TLS, everything else goes through STARTTLS.
type SMTPMailer struct {
	host       string
	port       int
	account    string
	password   string
	senderName string
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		host:       cfg.Host,
		port:       cfg.Port,
		account:    cfg.Account,
		password:   cfg.Password,
		senderName: cfg.SenderName,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth sasl.Client
	if m.password != "" {
		auth = sasl.NewPlainClient("", m.account, m.password)
	}

	msg := m.buildMessage(to, subject, body)
	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	var err error
	if m.port == 465 {
		err = smtp.SendMailTLS(addr, auth, m.account, []string{to}, strings.NewReader(msg))
	} else {
		err = smtp.SendMail(addr, auth, m.account, []string{to}, strings.NewReader(msg))
	}
	if err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

func (m *SMTPMailer) buildMessage(to, subject, body string) string {
	from := mail.Address{Name: m.senderName, Address: m.account}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from.String())
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")

	normalized := strings.ReplaceAll(strings.ReplaceAll(body, "\r\n", "\n"), "\n", "\r\n")
	b.WriteString(normalized)
	b.WriteString("\r\n")
	return b.String()
}
