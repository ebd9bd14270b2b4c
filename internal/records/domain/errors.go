package domain

import "errors"

// ErrUnknownRecordType is returned when a token does not match any
// registered record variant.
var ErrUnknownRecordType = errors.New("unknown record type")
