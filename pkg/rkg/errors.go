package rkg

import "errors"

// Errors returned by the codec. They are wrapped with context, so compare
// with errors.Is.
var (
	// ErrOutOfRange reports a semantic value outside its declared domain.
	ErrOutOfRange = errors.New("value out of range")
	// ErrInvalidSymbolValue reports a packed value that does not fit its byte field.
	ErrInvalidSymbolValue = errors.New("symbol value overflows its field")
	// ErrCapacityExceeded reports input data that does not fit the fixed container.
	ErrCapacityExceeded = errors.New("input data exceeds file capacity")
	// ErrTruncatedStream reports a decode that recovered fewer frames than expected.
	ErrTruncatedStream = errors.New("input stream truncated")

	ErrNoFrames         = errors.New("frame sequence is empty")
	ErrFileSize         = errors.New("unexpected ghost file size")
	ErrBadMagic         = errors.New("not a ghost file")
	ErrChecksumMismatch = errors.New("ghost file checksum mismatch")
)
