package lzma

import (
	"errors"
	"fmt"
	"io"
)

// Package errors. ErrConfig and ErrCorrupt classify the typed errors
// ConfigError and CorruptError for errors.Is.
var (
	// ErrConfig indicates parameters that violate the format constraints.
	ErrConfig = errors.New("lzma: invalid configuration")
	// ErrCorrupt indicates a structurally invalid stream.
	ErrCorrupt = errors.New("lzma: corrupt data")
	// ErrClosed is returned by operations on closed readers and writers.
	ErrClosed = errors.New("lzma: already closed")
)

// ConfigError reports an invalid configuration value. It is returned before
// any data is processed.
type ConfigError struct {
	Field string
	Msg   string
}

// Error returns the error message.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("lzma: invalid configuration: %s %s", e.Field, e.Msg)
}

// Is supports errors.Is for ErrConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// configErrorf creates a ConfigError for the given field.
func configErrorf(field string, format string, a ...interface{}) error {
	return &ConfigError{Field: field, Msg: fmt.Sprintf(format, a...)}
}

// CorruptError reports corrupt input data. Step names the decoding step that
// failed and Pos is the uncompressed position at which the failure has been
// detected. Err may hold the underlying cause.
type CorruptError struct {
	Step string
	Pos  int64
	Msg  string
	Err  error
}

// Error returns the error message.
func (e *CorruptError) Error() string {
	s := fmt.Sprintf("lzma: corrupt data in %s at position %d", e.Step, e.Pos)
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Is supports errors.Is for ErrCorrupt.
func (e *CorruptError) Is(target error) bool {
	return target == ErrCorrupt
}

// Unwrap returns the underlying cause.
func (e *CorruptError) Unwrap() error {
	return e.Err
}

// corrupt creates a CorruptError without cause.
func corrupt(step string, pos int64, format string, a ...interface{}) error {
	return &CorruptError{Step: step, Pos: pos, Msg: fmt.Sprintf(format, a...)}
}

// atPos sets the position of a CorruptError. It is used for errors that
// have been created without knowing the position in the stream.
func atPos(err error, pos int64) error {
	var e *CorruptError
	if errors.As(err, &e) {
		e.Pos = pos
	}
	return err
}

// wrapDecodeErr converts errors of the compressed byte source into the error
// that is reported to the caller. A premature end of input is a CorruptError
// unwrapping to io.ErrUnexpectedEOF; errors of the source itself are
// returned unchanged.
func wrapDecodeErr(step string, pos int64, err error) error {
	switch err {
	case nil:
		return nil
	case io.EOF, io.ErrUnexpectedEOF:
		return &CorruptError{Step: step, Pos: pos,
			Msg: "truncated input", Err: io.ErrUnexpectedEOF}
	case errFirstByte, errCodeRange:
		return &CorruptError{Step: step, Pos: pos, Msg: err.Error()}
	}
	return err
}
