package notification_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/shaharia-lab/emailnotify/internal/notification"
)

type fakeGmail struct {
	mu    sync.Mutex
	auth  []string
	paths []string
	raw   []string
	fail  bool
}

func (f *fakeGmail) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	f.paths = append(f.paths, r.URL.Path)

	if f.fail {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"insufficient scope"}}`))
		return
	}

	var body struct {
		Raw string `json:"raw"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	f.raw = append(f.raw, body.Raw)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"id":"msg-1"}`))
}

func newGmailRelay(t *testing.T, f *fakeGmail) *notification.GmailRelay {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	tokenFile := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(tokenFile, []byte(`{"access_token":"test-token","token_type":"Bearer"}`), 0o600))

	relay, err := notification.NewGmailRelay(context.Background(), notification.GmailConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		TokenFile:    tokenFile,
	}, option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return relay
}

func TestGmailRelay_Send(t *testing.T) {
	f := &fakeGmail{}
	relay := newGmailRelay(t, f)

	err := relay.Send(context.Background(), notification.Message{
		From:    "noreply@example.com",
		To:      "ops@example.com",
		Subject: "deploy",
		Body:    "v1.2 is live",
	})
	require.NoError(t, err)

	require.Len(t, f.raw, 1)
	assert.Equal(t, "Bearer test-token", f.auth[0])
	assert.True(t, strings.HasSuffix(f.paths[0], "/users/me/messages/send"), f.paths[0])

	decoded, err := base64.URLEncoding.DecodeString(f.raw[0])
	require.NoError(t, err)
	mime := string(decoded)
	assert.Contains(t, mime, "ops@example.com")
	assert.Contains(t, mime, "Subject: deploy")
	assert.Contains(t, mime, "v1.2 is live")
}

func TestGmailRelay_APIError(t *testing.T) {
	relay := newGmailRelay(t, &fakeGmail{fail: true})

	err := relay.Send(context.Background(), notification.Message{
		From: "noreply@example.com", To: "ops@example.com", Subject: "s", Body: "b",
	})
	assert.ErrorContains(t, err, "sending to ops@example.com via gmail")
}

func TestNewGmailRelay_MissingToken(t *testing.T) {
	_, err := notification.NewGmailRelay(context.Background(), notification.GmailConfig{
		TokenFile: filepath.Join(t.TempDir(), "absent.json"),
	})
	assert.ErrorContains(t, err, "reading gmail token")
}

func TestGmailRelay_Name(t *testing.T) {
	assert.Equal(t, "gmail", newGmailRelay(t, &fakeGmail{}).Name())
}
