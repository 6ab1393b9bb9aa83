package domain

import (
	"github.com/google/uuid"
)

// Room status values.
const (
	RoomStatusAvailable = "available"
	RoomStatusOccupied  = "occupied"
)

// MeterReading is a pair of cumulative utility meter values.
type MeterReading struct {
	Electricity int64
	Water       int64
}

// Room is a rentable unit with its meter state. A room is either live
// (only the current reading exists) or staged (a captured-but-unbilled
// reading sits alongside it); the staged pair is set or cleared as a
// whole.
type Room struct {
	ID     uuid.UUID
	Name   string
	Status string
	Rent   int64
	Meter  MeterReading

	staged *MeterReading
}

// RestoreStaged rehydrates the staged reading from storage without
// re-validating. Store implementations only.
func (r *Room) RestoreStaged(m MeterReading) {
	staged := m
	r.staged = &staged
}

// IsStaged reports whether a staged reading is present.
func (r *Room) IsStaged() bool {
	return r.staged != nil
}

// StagedReading returns the staged reading if present.
func (r *Room) StagedReading() (MeterReading, bool) {
	if r.staged == nil {
		return MeterReading{}, false
	}
	return *r.staged, true
}

// Stage records a captured reading pending billing. The proposed pair
// is validated against the current reading; on failure the room is
// unchanged.
func (r *Room) Stage(m MeterReading) error {
	if err := r.ValidateProposed(m); err != nil {
		return err
	}
	staged := m
	r.staged = &staged
	return nil
}

// ValidateProposed checks the non-decreasing meter invariant against
// the current reading.
func (r *Room) ValidateProposed(m MeterReading) error {
	if m.Electricity < r.Meter.Electricity {
		return &InvalidMeterReadingError{
			Room:     r.Name,
			Meter:    MeterElectricity,
			Current:  r.Meter.Electricity,
			Proposed: m.Electricity,
		}
	}
	if m.Water < r.Meter.Water {
		return &InvalidMeterReadingError{
			Room:     r.Name,
			Meter:    MeterWater,
			Current:  r.Meter.Water,
			Proposed: m.Water,
		}
	}
	return nil
}

// CommitStaged advances the current reading to the staged one and
// clears it. Only a successful invoice commit drives this transition.
func (r *Room) CommitStaged() (MeterReading, error) {
	if r.staged == nil {
		return MeterReading{}, ErrNotStaged
	}
	committed := *r.staged
	r.Meter = committed
	r.staged = nil
	return committed, nil
}

// DiscardStaged drops the staged reading, leaving current untouched.
func (r *Room) DiscardStaged() {
	r.staged = nil
}

// BillingReading resolves the reading to bill: staged if present, else
// the live reading (zero usage).
func (r *Room) BillingReading() MeterReading {
	if r.staged != nil {
		return *r.staged
	}
	return r.Meter
}

// AdvanceMeter sets the current reading to the billed values and
// clears any staged pair. Applied alongside an invoice commit.
func (r *Room) AdvanceMeter(m MeterReading) {
	r.Meter = m
	r.staged = nil
}

// Clone returns a detached copy of the room.
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	clone := *r
	if r.staged != nil {
		staged := *r.staged
		clone.staged = &staged
	}
	return &clone
}
