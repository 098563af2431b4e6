package backend

import (
	"errors"
	"fmt"
)

// ErrorKind tells where a call failed.
type ErrorKind string

const (
	// KindConfig: the endpoint is unset; nothing was sent.
	KindConfig ErrorKind = "config"
	// KindInvalid: the request failed validation; nothing was sent.
	KindInvalid ErrorKind = "invalid"
	// KindTransport: network fault, non-2xx status or unreadable body.
	KindTransport ErrorKind = "transport"
	// KindDomain: the backend answered success=false.
	KindDomain ErrorKind = "domain"
)

const (
	msgNotConfigured = "A URL do backend não está configurada."
	msgUnknown       = "Erro desconhecido"
)

type Error struct {
	Kind    ErrorKind
	Action  Action
	Status  int
	Message string
	// Unexplained is set when the backend failed without saying why; Message
	// then holds a generic text callers may replace with their own.
	Unexplained bool
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on kind so callers can test errors.Is(err, ErrNotConfigured).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Action == "" && t.Message == ""
}

// ErrNotConfigured matches every configuration error.
var ErrNotConfigured = &Error{Kind: KindConfig}

// KindOf returns the kind of a backend error, or "" for anything else.
func KindOf(err error) ErrorKind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}

func notConfigured(action Action) *Error {
	return &Error{Kind: KindConfig, Action: action, Message: msgNotConfigured}
}

func httpStatusError(action Action, status int, body string) *Error {
	return &Error{
		Kind:    KindTransport,
		Action:  action,
		Status:  status,
		Message: fmt.Sprintf("Erro na comunicação com o servidor: %d. Detalhes: %s", status, body),
	}
}

func transportError(action Action, err error) *Error {
	return &Error{Kind: KindTransport, Action: action, Message: err.Error()}
}

func domainError(action Action, resp Response) *Error {
	msg := resp.Error
	if msg == "" {
		msg = resp.Message
	}
	if msg == "" {
		return &Error{Kind: KindDomain, Action: action, Message: msgUnknown, Unexplained: true}
	}
	return &Error{Kind: KindDomain, Action: action, Message: msg}
}

// missingData is returned by list actions whose success reply carries no data.
func missingData(action Action) *Error {
	return &Error{Kind: KindDomain, Action: action, Message: msgUnknown, Unexplained: true}
}

// Explained reports whether err carries a message from the backend or from
// the transport. It is false for backend failures that came without one.
func Explained(err error) bool {
	var be *Error
	if errors.As(err, &be) {
		return !be.Unexplained
	}
	return err != nil
}
