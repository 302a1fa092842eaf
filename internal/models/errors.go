package models

import (
	"errors"
	"fmt"
)

// Kind classifies the recoverable domain failures. Callers branch on the kind;
// the message is presentation only.
type Kind string

const (
	KindAlreadyExists     Kind = "already_exists"
	KindNotFound          Kind = "not_found"
	KindInvalidCredential Kind = "invalid_credential"
	KindNotMember         Kind = "not_member"
	KindNotAdmin          Kind = "not_admin"
	KindDuplicateRequest  Kind = "duplicate_request"
	KindAlreadyMember     Kind = "already_member"
	KindAlreadyLogged     Kind = "already_logged"
	KindInvalidHours      Kind = "invalid_hours"
)

// Error is the single tagged error type for all domain conditions.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func Errorf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}
