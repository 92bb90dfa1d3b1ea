package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// requiredKeys lists the request fields in the order they are checked.
var requiredKeys = []string{"slug", "message", "phase", "target"}

// NotificationRequest is a validated work request.
// The name is intentional: it provides clarity when referenced as notification.NotificationRequest.
//
//nolint:revive
type NotificationRequest struct {
	// Slug is used as the mail subject.
	Slug    string   `json:"slug"`
	Message string   `json:"message"`
	Phase   string   `json:"phase"`
	Target  []string `json:"target"`
}

// ParseRequest checks an untyped payload and converts it into a
// NotificationRequest. The payload may be a decoded JSON object
// (map[string]any) or its raw encoding ([]byte / json.RawMessage).
//
// Checks run in a fixed order and the first failure is returned: slug,
// message and phase must be strings, target must be a list whose every
// element is a string containing "@".
func ParseRequest(payload any) (*NotificationRequest, error) {
	var body map[string]any
	switch p := payload.(type) {
	case map[string]any:
		body = p
	case json.RawMessage:
		return DecodeRequest(p)
	case []byte:
		return DecodeRequest(p)
	default:
		return nil, &Error{
			Kind:    InvalidType,
			Message: fmt.Sprintf("request must be an object, got %s", typeName(payload)),
		}
	}

	req := &NotificationRequest{}
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"slug", &req.Slug},
		{"message", &req.Message},
		{"phase", &req.Phase},
	} {
		v, ok := body[f.key]
		if !ok {
			return nil, missingParam(f.key)
		}
		s, ok := v.(string)
		if !ok {
			return nil, &Error{
				Kind:    InvalidType,
				Field:   f.key,
				Message: fmt.Sprintf("parameter %q must be a string, got %s", f.key, typeName(v)),
			}
		}
		*f.dst = s
	}

	raw, ok := body["target"]
	if !ok {
		return nil, missingParam("target")
	}
	list, ok := raw.([]any)
	if !ok {
		if ss, isStrings := raw.([]string); isStrings {
			list = make([]any, len(ss))
			for i, s := range ss {
				list[i] = s
			}
		} else {
			return nil, &Error{
				Kind:    InvalidType,
				Field:   "target",
				Message: fmt.Sprintf("parameter \"target\" must be a list, got %s", typeName(raw)),
			}
		}
	}

	req.Target = make([]string, 0, len(list))
	for i, v := range list {
		addr, isString := v.(string)
		if !isString || !strings.Contains(addr, "@") {
			return nil, &Error{
				Kind:    InvalidType,
				Field:   fmt.Sprintf("target[%d]", i),
				Message: fmt.Sprintf("all inputs must be valid addresses: target[%d] is %s", i, describe(v)),
			}
		}
		req.Target = append(req.Target, addr)
	}
	return req, nil
}

// DecodeRequest decodes a JSON document and validates it with ParseRequest.
func DecodeRequest(data []byte) (*NotificationRequest, error) {
	var body map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, &Error{Kind: InvalidType, Message: "request is not a JSON object", Err: err}
	}
	if body == nil {
		return nil, &Error{Kind: InvalidType, Message: "request must be an object, got null"}
	}
	return ParseRequest(body)
}

func missingParam(key string) *Error {
	return &Error{
		Kind:  MissingParameter,
		Field: key,
		Message: fmt.Sprintf("missing required parameter %q; requires: %s",
			key, strings.Join(requiredKeys, ", ")),
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, float32, int, int64, int32:
		return "number"
	case []any, []string:
		return "list"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

func describe(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return "a " + typeName(v)
}
