package clickhouse

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned when a format name is unknown, or known but
	// not usable for the requested operation.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrUnsupportedCompression is returned for an unknown compression codec.
	ErrUnsupportedCompression = errors.New("unsupported compression")
)

// RequestError is returned when the server answers with a status other than 200.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("status code is %d: %s", e.StatusCode, e.Body)
}

// FormatError is returned when a payload cannot be converted from or to a Table.
type FormatError struct {
	Format Format
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format %s: %v", e.Format, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func formatError(format Format, err error) error {
	var fe *FormatError
	if errors.As(err, &fe) {
		return err
	}
	return &FormatError{Format: format, Err: err}
}
