package programaccess

import "errors"

// Kind classifies a failure of the access-gated fetch.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindBadRequest
	KindNotFound
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindBadRequest:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Client-visible messages. Internal causes never reach the response body.
const (
	MsgMissingToken      = "Missing token"
	MsgInvalidSession    = "Invalid session"
	MsgInvalidBody       = "Invalid request body"
	MsgMissingSlug       = "Missing organizationSlug"
	MsgOrgNotFound       = "Organization not found"
	MsgInsufficientPerms = "Insufficient permissions"
	MsgInternalError     = "Internal server error"
)

// Error is a classified failure. Message is safe to return to the caller; Err is the cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// KindOf returns the Kind of err, or KindInternal if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
