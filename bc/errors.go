package bc

import "errors"

// ErrorCode identifies the kind of failure from a settings or profile
// constructor, or from Encode given an unrecognized Format. The per-format
// encoders (EncodeBC1 through EncodeBC7) cannot fail and return no error.
type ErrorCode uint32

const (
	// ErrBadFormat is returned for an unrecognized Format value.
	ErrBadFormat ErrorCode = iota + 1

	// ErrBadProfile is returned for an unrecognized profile name.
	ErrBadProfile

	// ErrBadQuality is what ErrorCodeOf reports for an error that is not a
	// *Error. No constructor in this package returns it; settings fields are
	// not range-checked.
	ErrBadQuality
)

// errorString returns a short machine-stable name for code, or "" if unknown.
func errorString(code ErrorCode) string {
	switch code {
	case ErrBadFormat:
		return "ErrBadFormat"
	case ErrBadProfile:
		return "ErrBadProfile"
	case ErrBadQuality:
		return "ErrBadQuality"
	default:
		return ""
	}
}

// Error is a typed error carrying an ErrorCode.
type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg != "" {
		return e.Msg
	}
	if s := errorString(e.Code); s != "" {
		return "bc: " + s
	}
	return "bc: error"
}

// ErrorCodeOf returns the bc-equivalent error code for err, or 0 for nil.
// Non-*Error errors return ErrBadQuality as a conservative fallback.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrBadQuality
}

func newError(code ErrorCode, msg string) error {
	return &Error{Code: code, Msg: msg}
}
