package notification

import "time"

// DefaultSMTPPort is used when no relay port is configured.
const DefaultSMTPPort = 25

// SMTPConfig holds connection parameters for the SMTP relay.
type SMTPConfig struct {
	Host       string        `json:"host"`
	Port       int           `json:"port"`
	FromAddr   string        `json:"from_address"`
	Username   string        `json:"username"`
	Password   string        `json:"password"`
	Encryption string        `json:"encryption"` // "none", "starttls", "ssl_tls"
	Timeout    time.Duration `json:"timeout"`
}

// Relay kinds accepted by the worker.
const (
	RelaySMTP  = "smtp"
	RelayGmail = "gmail"
)

// GmailConfig holds the OAuth client and stored token used by the Gmail relay.
type GmailConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	// TokenFile is a JSON-encoded oauth2.Token with a refresh token.
	TokenFile string `json:"token_file"`
}
