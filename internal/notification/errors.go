package notification

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a notification request failed.
type ErrorKind int

// Failure kinds. All of them end in a single "failed" status event.
const (
	// MissingParameter means a required field was absent from the request.
	MissingParameter ErrorKind = iota + 1
	// InvalidType means a field was present but had the wrong shape,
	// including target entries that are not plausible addresses.
	InvalidType
	// DeliveryFailure means the mail relay could not accept a message.
	DeliveryFailure
)

// String returns the kind's name.
func (k ErrorKind) String() string {
	switch k {
	case MissingParameter:
		return "MissingParameter"
	case InvalidType:
		return "InvalidType"
	case DeliveryFailure:
		return "DeliveryFailure"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error lets a kind be used as an errors.Is target.
func (k ErrorKind) Error() string { return k.String() }

// Error is returned for every request that cannot be completed.
type Error struct {
	Kind    ErrorKind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the ErrorKind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}

// KindOf returns the ErrorKind carried by err, or 0 when err is not an *Error.
func KindOf(err error) ErrorKind {
	var ne *Error
	if errors.As(err, &ne) {
		return ne.Kind
	}
	return 0
}
