package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"ecobazaar/internal/config"
)

var ErrSendFailed = errors.New("send reset link failed")

const resetSubject = "EcoBazaar - Password Reset"

// ResetLinkSender delivers a password reset link out of band.
type ResetLinkSender interface {
	SendResetLink(ctx context.Context, email string, token string) error
}

type mailClient interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type SMTPSender struct {
	client   mailClient
	from     string
	linkBase string
	log      zerolog.Logger
}

func NewSMTPSender(cfg config.MailConfig, log zerolog.Logger) (*SMTPSender, error) {
	opts := []mail.Option{mail.WithPort(cfg.Port)}
	if cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("init smtp client: %w", err)
	}

	return &SMTPSender{
		client:   client,
		from:     cfg.From,
		linkBase: cfg.ResetLinkBase,
		log:      log,
	}, nil
}

func (s *SMTPSender) SendResetLink(ctx context.Context, email string, token string) error {
	link, err := ResetLink(s.linkBase, token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	msg, err := buildResetMessage(s.from, email, link)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		s.log.Error().Err(err).Str("to", email).Msg("reset email delivery failed")
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	s.log.Info().Str("to", email).Msg("reset email sent")
	return nil
}

// LogSender stands in for SMTP when no mail host is configured.
type LogSender struct {
	linkBase string
	log      zerolog.Logger
}

func NewLogSender(linkBase string, log zerolog.Logger) *LogSender {
	return &LogSender{linkBase: linkBase, log: log}
}

func (s *LogSender) SendResetLink(_ context.Context, email string, token string) error {
	link, err := ResetLink(s.linkBase, token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	s.log.Warn().Str("to", email).Msg("smtp not configured, reset email not delivered")
	s.log.Debug().Str("to", email).Str("link", link).Msg("reset link")
	return nil
}

// New picks SMTP delivery when a host is configured.
func New(cfg config.MailConfig, log zerolog.Logger) (ResetLinkSender, error) {
	if cfg.Host == "" {
		return NewLogSender(cfg.ResetLinkBase, log), nil
	}
	return NewSMTPSender(cfg, log)
}

func ResetLink(base string, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse reset link base: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func buildResetMessage(from, to, link string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	msg.Subject(resetSubject)
	msg.SetBodyString(mail.TypeTextPlain, "Click here to reset your password:\n"+link)
	return msg, nil
}
