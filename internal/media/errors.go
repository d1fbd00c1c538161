package media

import (
	"errors"
	"fmt"
)

// Kind classifies why a media reference could not be resolved.
type Kind int

const (
	KindUnknown Kind = iota
	// KindUnsupportedFormat means the extension or content type is not allowed.
	KindUnsupportedFormat
	// KindTooLarge means a byte size or pixel dimension exceeds its ceiling.
	KindTooLarge
	// KindInvalidMedia means required metadata (e.g. dimensions) is missing.
	KindInvalidMedia
	// KindUpstream means a remote fetch failed or returned a non-success status.
	KindUpstream
	// KindParse means an expected marker was not found in a scraped page.
	KindParse
	// KindNoImageFound means no candidate existed anywhere in the fallback chain.
	KindNoImageFound
)

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrTooLarge          = errors.New("too large")
	ErrInvalidMedia      = errors.New("invalid media")
	ErrUpstream          = errors.New("upstream error")
	ErrParse             = errors.New("parse error")
	ErrNoImageFound      = errors.New("no image found")
)

// ErrAssetTooLarge indicates a streamed payload exceeded the configured max size.
var ErrAssetTooLarge = errors.New("media asset too large")

func (k Kind) String() string {
	switch k {
	case KindUnsupportedFormat:
		return "unsupported_format"
	case KindTooLarge:
		return "too_large"
	case KindInvalidMedia:
		return "invalid_media"
	case KindUpstream:
		return "upstream_error"
	case KindParse:
		return "parse_error"
	case KindNoImageFound:
		return "no_image_found"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindUnsupportedFormat:
		return ErrUnsupportedFormat
	case KindTooLarge:
		return ErrTooLarge
	case KindInvalidMedia:
		return ErrInvalidMedia
	case KindUpstream:
		return ErrUpstream
	case KindParse:
		return ErrParse
	case KindNoImageFound:
		return ErrNoImageFound
	default:
		return nil
	}
}

// Error is a typed resolution failure. Message is human readable and safe to
// show to chat users; Err carries the underlying cause when there is one.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		if s := e.Kind.sentinel(); s != nil {
			msg = s.Error()
		} else {
			msg = "media resolution failed"
		}
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// Errorf builds an *Error of the given kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind around cause.
func Wrap(kind Kind, cause error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf returns the kind of err, or KindUnknown when err is not a resolution failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, ErrAssetTooLarge) {
		return KindTooLarge
	}
	return KindUnknown
}

// Message returns the user-facing message of err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
