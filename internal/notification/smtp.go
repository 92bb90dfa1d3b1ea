package notification

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPRelay delivers messages via SMTP using the go-mail library.
// Every Send opens its own connection and closes it afterwards.
type SMTPRelay struct {
	config SMTPConfig
}

// NewSMTPRelay creates a new SMTPRelay with the given configuration.
// A zero port falls back to DefaultSMTPPort.
func NewSMTPRelay(config SMTPConfig) *SMTPRelay {
	if config.Port == 0 {
		config.Port = DefaultSMTPPort
	}
	return &SMTPRelay{config: config}
}

// Name returns the relay identifier.
func (r *SMTPRelay) Name() string { return "smtp" }

// Send delivers msg as a plain-text mail to its single recipient.
func (r *SMTPRelay) Send(ctx context.Context, msg Message) error {
	m, err := compose(msg)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(r.config.Port),
		mail.WithTLSPolicy(tlsPolicyFromEncryption(r.config.Encryption)),
	}
	if r.config.Encryption == "ssl_tls" {
		opts = append(opts, mail.WithSSL())
	}
	if r.config.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(r.config.Timeout))
	}
	if r.config.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(r.config.Username),
			mail.WithPassword(r.config.Password),
		)
	}

	c, err := mail.NewClient(r.config.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("sending to %s via %s:%d: %w", msg.To, r.config.Host, r.config.Port, err)
	}
	return nil
}

// compose builds the plain-text mail for msg.
func compose(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	return m, nil
}

// tlsPolicyFromEncryption converts the encryption string to a go-mail TLSPolicy.
// "starttls" requires the upgrade: a relay that does not offer STARTTLS is
// refused rather than used in plaintext.
func tlsPolicyFromEncryption(enc string) mail.TLSPolicy {
	switch enc {
	case "ssl_tls", "starttls":
		return mail.TLSMandatory
	default:
		return mail.NoTLS
	}
}
