package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wneessen/go-mail"
)

func TestTLSPolicyFromEncryption(t *testing.T) {
	tests := []struct {
		enc  string
		want mail.TLSPolicy
	}{
		{"ssl_tls", mail.TLSMandatory},
		{"starttls", mail.TLSMandatory},
		{"none", mail.NoTLS},
		{"", mail.NoTLS},
	}
	for _, tt := range tests {
		t.Run(tt.enc, func(t *testing.T) {
			assert.Equal(t, tt.want, tlsPolicyFromEncryption(tt.enc))
		})
	}
}
