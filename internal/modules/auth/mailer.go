package auth

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"time"
)

// Mailer dispatches reset codes out-of-band. Implementations must
// return an error on delivery failure: the reset-request flow treats a
// failed send as a hard failure, never a silent success.
type Mailer interface {
	SendResetCode(ctx context.Context, email, code string) error
}

// DevConsoleMailer logs codes instead of sending them. Local
// development only.
type DevConsoleMailer struct {
	enabled bool
}

func NewDevConsoleMailer(enabled bool) *DevConsoleMailer {
	return &DevConsoleMailer{enabled: enabled}
}

func (m *DevConsoleMailer) SendResetCode(_ context.Context, email, code string) error {
	if m.enabled {
		log.Printf("[DEV-EMAIL] password reset code email=%s code=%s", email, code)
	}
	return nil
}

// SMTPMailer sends the code over plain SMTP with a bounded dial
// timeout; a timeout counts as a delivery failure.
type SMTPMailer struct {
	host    string
	port    string
	user    string
	pass    string
	from    string
	timeout time.Duration
}

func NewSMTPMailer(host, port, user, pass, from string, timeout time.Duration) *SMTPMailer {
	return &SMTPMailer{
		host:    host,
		port:    port,
		user:    user,
		pass:    pass,
		from:    from,
		timeout: timeout,
	}
}

func (m *SMTPMailer) SendResetCode(ctx context.Context, email, code string) error {
	addr := net.JoinHostPort(m.host, m.port)

	deadline := m.timeout
	if d, ok := ctx.Deadline(); ok {
		if until := time.Until(d); until < deadline {
			deadline = until
		}
	}

	conn, err := net.DialTimeout("tcp", addr, deadline)
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w", addr, err)
	}
	_ = conn.SetDeadline(time.Now().Add(deadline))

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}

	if m.user != "" {
		authn := smtp.PlainAuth("", m.user, m.pass, m.host)
		if err := client.Auth(authn); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(m.from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(email); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Password recovery\r\n\r\nYour recovery code is: %s\r\n",
		m.from, email, code,
	)
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}

	return client.Quit()
}
