package wire

import (
	"errors"
	"fmt"
)

// Sentinel errors for the protocol error kinds named by the conformance
// suite. Wrap with fmt.Errorf("...: %w", ErrX) at call sites that need more
// context; callers should match with errors.Is.
var (
	ErrTruncated           = errors.New("truncated bridge payload")
	ErrUnsupportedVersion  = errors.New("unsupported bridge protocol version")
	ErrUnexpectedFrameType = errors.New("unexpected bridge frame type")
	ErrInvalidHeaderToken  = errors.New("invalid bridge header name token")
	ErrFieldTooLarge       = errors.New("bridge field length does not fit u32")
	ErrFrameTooLarge       = errors.New("bridge frame too large")
	ErrBodyTooLarge        = errors.New("bridge body exceeds maximum size")
)

func errTrailingBytes(n int) error {
	return fmt.Errorf("unexpected trailing bridge payload bytes: %d", n)
}

func errFrameTooLarge(n int) error {
	return fmt.Errorf("%w: %d", ErrFrameTooLarge, n)
}

func errInvalidHeaderToken(tok uint16) error {
	return fmt.Errorf("%w: %d", ErrInvalidHeaderToken, tok)
}
