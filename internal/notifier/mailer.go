package notifier

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strconv"

	"go.uber.org/zap"

	"github.com/siyabongaprospersithole/support-ticket-system/internal/config"
)

// Mailer delivers a rendered message to a single recipient address.
type Mailer interface {
	Send(ctx context.Context, to string, msg Message) error
}

// SMTPMailer sends plain-text mail over SMTP.
type SMTPMailer struct {
	cfg  config.SMTPConfig
	from string
}

// NewSMTPMailer builds a mailer from transport config.
func NewSMTPMailer(cfg config.SMTPConfig, from string) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, from: from}
}

func (s *SMTPMailer) Send(ctx context.Context, to string, msg Message) error {
	if to == "" {
		return fmt.Errorf("no recipient specified")
	}

	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.from, to, msg.Subject, msg.Body())

	var auth smtp.Auth
	if s.cfg.User != "" && s.cfg.Password != "" {
		switch s.cfg.AuthType {
		case "login":
			auth = &loginAuth{username: s.cfg.User, password: s.cfg.Password}
		default:
			auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
		}
	}

	addr := s.cfg.Host + ":" + strconv.Itoa(s.cfg.Port)
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("connect to SMTP server: %w", err)
	}
	defer client.Close()

	if s.cfg.TLS {
		tlsConfig := &tls.Config{
			ServerName:         s.cfg.Host,
			InsecureSkipVerify: s.cfg.SkipVerify,
		}
		if err = client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("start TLS: %w", err)
		}
	}

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication: %w", err)
		}
	}

	if err = client.Mail(s.from); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err = client.Rcpt(to); err != nil {
		return fmt.Errorf("set recipient %s: %w", to, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("initiate data transfer: %w", err)
	}
	if _, err = w.Write([]byte(body)); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("close data transfer: %w", err)
	}

	if err = client.Quit(); err != nil {
		return fmt.Errorf("quit SMTP session: %w", err)
	}
	return nil
}

// loginAuth implements SMTP LOGIN authentication.
type loginAuth struct {
	username, password string
}

func (a *loginAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	return "LOGIN", []byte{}, nil
}

func (a *loginAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if more {
		switch string(fromServer) {
		case "Username:":
			return []byte(a.username), nil
		case "Password:":
			return []byte(a.password), nil
		default:
			return nil, fmt.Errorf("unexpected server challenge: %s", fromServer)
		}
	}
	return nil, nil
}

// LogMailer records outbound mail without sending it. Used when no SMTP
// host is configured, so the pipeline stays observable in development.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer builds the no-op mailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (l *LogMailer) Send(_ context.Context, to string, msg Message) error {
	l.logger.Info("mail (not sent, SMTP disabled)",
		zap.String("to", to),
		zap.String("subject", msg.Subject))
	return nil
}
