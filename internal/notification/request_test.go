package notification_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/emailnotify/internal/notification"
)

func TestParseRequest_Valid(t *testing.T) {
	req, err := notification.ParseRequest(map[string]any{
		"slug":    "short",
		"message": "test message",
		"phase":   "started",
		"target":  []any{"a@example.com", "b@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, &notification.NotificationRequest{
		Slug:    "short",
		Message: "test message",
		Phase:   "started",
		Target:  []string{"a@example.com", "b@example.com"},
	}, req)
}

func TestParseRequest_AcceptsStringSlice(t *testing.T) {
	req, err := notification.ParseRequest(map[string]any{
		"slug": "s", "message": "m", "phase": "p", "target": []string{"a@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com"}, req.Target)
}

func TestParseRequest_FirstFailureWins(t *testing.T) {
	// slug is checked before target, so the missing slug is reported even
	// though target is malformed too.
	_, err := notification.ParseRequest(map[string]any{
		"message": "m", "phase": "p", "target": 5,
	})
	require.Error(t, err)

	var ne *notification.Error
	require.True(t, errors.As(err, &ne))
	assert.Equal(t, notification.MissingParameter, ne.Kind)
	assert.Equal(t, "slug", ne.Field)
	assert.True(t, errors.Is(err, notification.MissingParameter))
	assert.False(t, errors.Is(err, notification.InvalidType))
}

func TestParseRequest_AddressErrorNamesIndex(t *testing.T) {
	_, err := notification.ParseRequest(map[string]any{
		"slug": "s", "message": "m", "phase": "p",
		"target": []any{"a@example.com", "nobody"},
	})
	require.Error(t, err)
	assert.Equal(t, notification.InvalidType, notification.KindOf(err))
	assert.Contains(t, err.Error(), "all inputs must be valid addresses")
	assert.Contains(t, err.Error(), `target[1] is "nobody"`)
}

func TestDecodeRequest(t *testing.T) {
	tests := []struct {
		name string
		data string
		kind notification.ErrorKind
	}{
		{"valid", `{"slug":"s","message":"m","phase":"p","target":["a@example.com"]}`, 0},
		{"numeric slug", `{"slug":1,"message":"m","phase":"p","target":["a@example.com"]}`, notification.InvalidType},
		{"array top level", `["a@example.com"]`, notification.InvalidType},
		{"null", `null`, notification.InvalidType},
		{"garbage", `not json`, notification.InvalidType},
		{"missing target", `{"slug":"s","message":"m","phase":"p"}`, notification.MissingParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := notification.DecodeRequest([]byte(tt.data))
			if tt.kind == 0 {
				require.NoError(t, err)
				assert.Equal(t, "s", req.Slug)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.kind, notification.KindOf(err))
		})
	}
}

func TestParseRequest_RawMessage(t *testing.T) {
	req, err := notification.ParseRequest(json.RawMessage(`{"slug":"s","message":"m","phase":"p","target":[]}`))
	require.NoError(t, err)
	assert.Empty(t, req.Target)
}

func TestParseRequest_NonObject(t *testing.T) {
	_, err := notification.ParseRequest("slug")
	require.Error(t, err)
	assert.Equal(t, notification.InvalidType, notification.KindOf(err))
	assert.Contains(t, err.Error(), "got string")
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "MissingParameter", notification.MissingParameter.String())
	assert.Equal(t, "InvalidType", notification.InvalidType.String())
	assert.Equal(t, "DeliveryFailure", notification.DeliveryFailure.String())
	assert.Equal(t, "ErrorKind(9)", notification.ErrorKind(9).String())
	assert.Equal(t, notification.ErrorKind(0), notification.KindOf(errors.New("plain")))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &notification.Error{Kind: notification.DeliveryFailure, Message: "failed to deliver", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, notification.DeliveryFailure)
	assert.Equal(t, "failed to deliver: connection refused", err.Error())
}
