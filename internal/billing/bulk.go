package billing

import (
	"context"
	"fmt"

	"github.com/septivank/rental-billing-worker/internal/domain"
	"go.uber.org/zap"
)

// BulkResult reports a completed bulk billing run.
type BulkResult struct {
	Count    int
	Rooms    []string
	Invoices []domain.Invoice
}

// Coordinator bills every occupied room in one all-or-nothing run.
type Coordinator struct {
	store     RoomStore
	settings  SettingsStore
	generator *Generator
	logger    *zap.Logger
}

// NewCoordinator creates a new bulk invoice coordinator.
func NewCoordinator(store RoomStore, settings SettingsStore, generator *Generator, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		store:     store,
		settings:  settings,
		generator: generator,
		logger:    logger,
	}
}

// BillAllOccupied creates one invoice per occupied room for the
// period. Rooms with a staged reading are billed on it; the rest are
// billed on their live reading (zero usage). The entire set of
// invoices and meter advances is one atomic mutation: every occupied
// room is billed or none are. On failure callers retry the whole
// batch.
func (c *Coordinator) BillAllOccupied(ctx context.Context, period domain.Period) (BulkResult, error) {
	rooms, err := c.store.ListRooms(ctx)
	if err != nil {
		return BulkResult{}, fmt.Errorf("failed to list rooms: %w", err)
	}

	rates, err := c.settings.GetSettings(ctx)
	if err != nil {
		return BulkResult{}, fmt.Errorf("failed to load tariff settings: %w", err)
	}

	var items []BulkItem
	var billed []string
	for _, room := range rooms {
		if room.Status != domain.RoomStatusOccupied {
			continue
		}

		reading := room.BillingReading()
		invoice, err := c.generator.buildInvoice(room, period, reading, rates)
		if err != nil {
			return BulkResult{}, &domain.BulkInvoiceError{Attempted: len(items) + 1, Err: err}
		}

		items = append(items, BulkItem{RoomID: room.ID, Invoice: invoice, Meter: reading})
		billed = append(billed, room.Name)
	}

	if len(items) == 0 {
		c.logger.Info("bulk billing skipped: no occupied rooms", zap.String("period", period.String()))
		return BulkResult{}, nil
	}

	if err := c.store.CommitBulk(ctx, items); err != nil {
		return BulkResult{}, &domain.BulkInvoiceError{Attempted: len(items), Err: err}
	}

	c.logger.Info("bulk billing committed",
		zap.String("period", period.String()),
		zap.Int("rooms", len(items)),
	)

	invoices := make([]domain.Invoice, len(items))
	for i, item := range items {
		invoices[i] = item.Invoice
	}
	return BulkResult{Count: len(items), Rooms: billed, Invoices: invoices}, nil
}
