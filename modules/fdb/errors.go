package fdb

import "fmt"

// FormatError is returned by Deserialize when the text does not encode a
// valid record. The record is rejected as a whole; no field is ever
// silently defaulted.
type FormatError struct {
	// Field is the field that failed to parse, empty when the record
	// shape itself is malformed.
	Field string
	// Text is the offending input fragment.
	Text string

	cause error
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("malformed fdb record %q", e.Text)
	if e.Field != "" {
		msg = fmt.Sprintf("malformed fdb field %s in %q", e.Field, e.Text)
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.cause
}

// RangeError is returned when a caller supplies a field value outside its
// declared range, such as a hardware address that is not EUI-48.
type RangeError struct {
	Field string
	Value string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("fdb field %s out of range: %q", e.Field, e.Value)
}
