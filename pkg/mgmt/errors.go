package mgmt

import "errors"

var (
	ErrUnreachable       = errors.New("endpoint unreachable")
	ErrSessionClosed     = errors.New("session is closed")
	ErrSessionBasic      = errors.New("session is in basic mode, attribute reads unavailable")
	ErrAttributeRead     = errors.New("attribute read failed")
	ErrAttributeStatus   = errors.New("attribute read returned non-OK status")
	ErrUnexpectedPayload = errors.New("unexpected attribute payload shape")
	ErrInvalidEndpoint   = errors.New("invalid endpoint")
)
