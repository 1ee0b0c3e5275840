package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindStorage    Kind = "storage"
	KindAsset      Kind = "asset"
)

// Error is the structured error every service operation returns.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

func NotFound(op, msg string) *Error {
	return New(KindNotFound, op, msg, nil)
}

func Validation(op, msg string, err error) *Error {
	return New(KindValidation, op, msg, err)
}

func Conflict(op, msg string, err error) *Error {
	return New(KindConflict, op, msg, err)
}

func Storage(op string, err error) *Error {
	return New(KindStorage, op, "storage failure", err)
}

func Asset(op, msg string, err error) *Error {
	return New(KindAsset, op, msg, err)
}

// KindOf reports the kind of the first *Error in err's chain, or KindStorage for
// foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Message is the caller-facing text: the message without the op prefix.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Msg != "" {
			return e.Msg
		}
		if e.Err != nil {
			return e.Err.Error()
		}
		return string(e.Kind)
	}
	return err.Error()
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindAsset:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
