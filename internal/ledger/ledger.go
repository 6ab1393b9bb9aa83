package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/septivank/rental-billing-worker/internal/domain"
	"go.uber.org/zap"
)

// Store is the persistence surface the ledger needs. Staging writes
// touch only the room's staged pair; the current reading is advanced
// exclusively by an invoice commit.
type Store interface {
	GetRoom(ctx context.Context, id uuid.UUID) (*domain.Room, error)
	StageReading(ctx context.Context, roomID uuid.UUID, reading domain.MeterReading) error
	DiscardStaged(ctx context.Context, roomID uuid.UUID) error
}

// Ledger runs the two-phase reading workflow: capture meter values for
// a room now, bill them as a separate auditable step later.
type Ledger struct {
	store  Store
	logger *zap.Logger
}

// NewLedger creates a new meter ledger.
func NewLedger(store Store, logger *zap.Logger) *Ledger {
	return &Ledger{store: store, logger: logger}
}

// StageReading validates a captured reading against the room's current
// meters and persists it as pending. A reading below the current one
// fails with InvalidMeterReadingError and leaves the room unchanged.
func (l *Ledger) StageReading(ctx context.Context, roomID uuid.UUID, reading domain.MeterReading) error {
	room, err := l.store.GetRoom(ctx, roomID)
	if err != nil {
		return fmt.Errorf("failed to load room: %w", err)
	}

	if err := room.Stage(reading); err != nil {
		return err
	}

	if err := l.store.StageReading(ctx, roomID, reading); err != nil {
		return fmt.Errorf("failed to persist staged reading: %w", err)
	}

	l.logger.Info("meter reading staged",
		zap.String("room", room.Name),
		zap.Int64("electricity", reading.Electricity),
		zap.Int64("water", reading.Water),
	)
	return nil
}

// DiscardStaged drops a room's staged reading without billing it.
func (l *Ledger) DiscardStaged(ctx context.Context, roomID uuid.UUID) error {
	room, err := l.store.GetRoom(ctx, roomID)
	if err != nil {
		return fmt.Errorf("failed to load room: %w", err)
	}
	if !room.IsStaged() {
		return nil
	}

	if err := l.store.DiscardStaged(ctx, roomID); err != nil {
		return fmt.Errorf("failed to discard staged reading: %w", err)
	}

	l.logger.Info("staged reading discarded", zap.String("room", room.Name))
	return nil
}
