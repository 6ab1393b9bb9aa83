package domain_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/septivank/rental-billing-worker/internal/domain"
)

func newTestRoom() *domain.Room {
	return &domain.Room{
		ID:     uuid.New(),
		Name:   "P101",
		Status: domain.RoomStatusOccupied,
		Rent:   3000000,
		Meter:  domain.MeterReading{Electricity: 100, Water: 50},
	}
}

func TestRoom_StageValidReading(t *testing.T) {
	room := newTestRoom()

	err := room.Stage(domain.MeterReading{Electricity: 150, Water: 60})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !room.IsStaged() {
		t.Fatal("expected room to be staged")
	}
	staged, ok := room.StagedReading()
	if !ok || staged.Electricity != 150 || staged.Water != 60 {
		t.Errorf("unexpected staged reading: %+v", staged)
	}
	if room.Meter.Electricity != 100 || room.Meter.Water != 50 {
		t.Errorf("current reading must not move on stage: %+v", room.Meter)
	}
}

func TestRoom_StageEqualReadingAllowed(t *testing.T) {
	room := newTestRoom()
	if err := room.Stage(domain.MeterReading{Electricity: 100, Water: 50}); err != nil {
		t.Fatalf("equal readings are a valid zero-usage capture: %v", err)
	}
}

func TestRoom_StageBelowCurrentRejected(t *testing.T) {
	room := newTestRoom()

	err := room.Stage(domain.MeterReading{Electricity: 90, Water: 60})
	var invalid *domain.InvalidMeterReadingError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidMeterReadingError, got %v", err)
	}
	if invalid.Meter != domain.MeterElectricity {
		t.Errorf("expected electricity meter in error, got %q", invalid.Meter)
	}
	if invalid.Current != 100 || invalid.Proposed != 90 {
		t.Errorf("unexpected error values: %+v", invalid)
	}
	if room.IsStaged() {
		t.Error("failed stage must leave the room unstaged")
	}

	err = room.Stage(domain.MeterReading{Electricity: 150, Water: 40})
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidMeterReadingError, got %v", err)
	}
	if invalid.Meter != domain.MeterWater {
		t.Errorf("expected water meter in error, got %q", invalid.Meter)
	}
}

func TestRoom_CommitStaged(t *testing.T) {
	room := newTestRoom()
	if err := room.Stage(domain.MeterReading{Electricity: 150, Water: 60}); err != nil {
		t.Fatalf("stage: %v", err)
	}

	committed, err := room.CommitStaged()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if committed.Electricity != 150 || committed.Water != 60 {
		t.Errorf("unexpected committed reading: %+v", committed)
	}
	if room.Meter != committed {
		t.Errorf("current reading must advance to committed values: %+v", room.Meter)
	}
	if room.IsStaged() {
		t.Error("commit must clear the staged reading")
	}

	if _, err := room.CommitStaged(); !errors.Is(err, domain.ErrNotStaged) {
		t.Errorf("expected ErrNotStaged on second commit, got %v", err)
	}
}

func TestRoom_DiscardStaged(t *testing.T) {
	room := newTestRoom()
	if err := room.Stage(domain.MeterReading{Electricity: 150, Water: 60}); err != nil {
		t.Fatalf("stage: %v", err)
	}

	room.DiscardStaged()
	if room.IsStaged() {
		t.Error("discard must clear the staged reading")
	}
	if room.Meter.Electricity != 100 || room.Meter.Water != 50 {
		t.Errorf("discard must leave current untouched: %+v", room.Meter)
	}
}

func TestRoom_BillingReading(t *testing.T) {
	room := newTestRoom()
	if got := room.BillingReading(); got != room.Meter {
		t.Errorf("unstaged room bills its live reading, got %+v", got)
	}

	if err := room.Stage(domain.MeterReading{Electricity: 150, Water: 60}); err != nil {
		t.Fatalf("stage: %v", err)
	}
	got := room.BillingReading()
	if got.Electricity != 150 || got.Water != 60 {
		t.Errorf("staged room bills the staged reading, got %+v", got)
	}
}

func TestRoom_CloneDetachesStaged(t *testing.T) {
	room := newTestRoom()
	if err := room.Stage(domain.MeterReading{Electricity: 150, Water: 60}); err != nil {
		t.Fatalf("stage: %v", err)
	}

	clone := room.Clone()
	clone.DiscardStaged()
	if !room.IsStaged() {
		t.Error("mutating a clone must not touch the original")
	}
}
