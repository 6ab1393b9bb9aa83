package domain

import (
	"errors"
	"fmt"
)

// ErrNothingToBill is returned when an invoice is requested for a room
// that has neither a staged reading nor an explicit reading override.
var ErrNothingToBill = errors.New("nothing to bill: no staged or supplied meter reading")

// ErrRoomNotFound is returned by stores when a room id does not exist.
var ErrRoomNotFound = errors.New("room not found")

// ErrNotStaged is returned when a staged-only transition is applied to
// a room without a staged reading.
var ErrNotStaged = errors.New("room has no staged reading")

// Meter kinds used in validation errors.
const (
	MeterElectricity = "electricity"
	MeterWater       = "water"
)

// InvalidMeterReadingError reports a proposed reading below the
// current one. Meters never run backward.
type InvalidMeterReadingError struct {
	Room     string
	Meter    string
	Current  int64
	Proposed int64
}

func (e *InvalidMeterReadingError) Error() string {
	return fmt.Sprintf("invalid %s meter reading for room %s: proposed %d is below current %d",
		e.Meter, e.Room, e.Proposed, e.Current)
}

// BulkInvoiceError wraps the failure of an all-or-nothing bulk billing
// run. Zero rooms were committed.
type BulkInvoiceError struct {
	Attempted int
	Err       error
}

func (e *BulkInvoiceError) Error() string {
	return fmt.Sprintf("bulk invoice run failed: %d rooms attempted, 0 committed: %v", e.Attempted, e.Err)
}

func (e *BulkInvoiceError) Unwrap() error {
	return e.Err
}
