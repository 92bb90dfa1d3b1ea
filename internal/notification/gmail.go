package notification

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailRelay delivers messages through the Gmail API as the authorized user.
type GmailRelay struct {
	svc *gmail.Service
}

// NewGmailRelay builds a Gmail relay from an OAuth client and a stored token.
// Extra client options are applied after the authorized HTTP client.
func NewGmailRelay(ctx context.Context, cfg GmailConfig, opts ...option.ClientOption) (*GmailRelay, error) {
	data, err := os.ReadFile(cfg.TokenFile) //nolint:gosec // path is admin-configured
	if err != nil {
		return nil, fmt.Errorf("reading gmail token: %w", err)
	}
	tok, err := TokenFromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parsing gmail token %q: %w", cfg.TokenFile, err)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}

	clientOpts := append([]option.ClientOption{option.WithHTTPClient(oauthCfg.Client(ctx, tok))}, opts...)
	svc, err := gmail.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating gmail service: %w", err)
	}
	return &GmailRelay{svc: svc}, nil
}

// TokenFromJSON parses a raw JSON oauth2 token.
func TokenFromJSON(data []byte) (*oauth2.Token, error) {
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Name returns the relay identifier.
func (r *GmailRelay) Name() string { return RelayGmail }

// Send uploads msg as a raw RFC 5322 message to users.messages.send.
func (r *GmailRelay) Send(ctx context.Context, msg Message) error {
	m, err := compose(msg)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}

	raw := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(buf.Bytes())}
	if _, err := r.svc.Users.Messages.Send("me", raw).Context(ctx).Do(); err != nil {
		return fmt.Errorf("sending to %s via gmail: %w", msg.To, err)
	}
	return nil
}
