package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/septivank/rental-billing-worker/internal/domain"
	"github.com/septivank/rental-billing-worker/internal/tariff"
	"go.uber.org/zap"
)

// BulkItem pairs one invoice with the meter advance it implies.
type BulkItem struct {
	RoomID  uuid.UUID
	Invoice domain.Invoice
	Meter   domain.MeterReading
}

// RoomStore is the persistence surface for billing. CommitInvoice and
// CommitBulk must apply invoice insert, meter advance and staged-clear
// as a single atomic unit; on failure nothing is changed.
type RoomStore interface {
	ListRooms(ctx context.Context) ([]*domain.Room, error)
	GetRoom(ctx context.Context, id uuid.UUID) (*domain.Room, error)
	CommitInvoice(ctx context.Context, roomID uuid.UUID, invoice domain.Invoice, meter domain.MeterReading) error
	CommitBulk(ctx context.Context, items []BulkItem) error
}

// SettingsStore provides the current tariff settings.
type SettingsStore interface {
	GetSettings(ctx context.Context) (domain.TariffSettings, error)
}

// Generator builds and commits single-room invoices.
type Generator struct {
	store    RoomStore
	settings SettingsStore
	calc     *tariff.Calculator
	logger   *zap.Logger
}

// NewGenerator creates a new invoice generator.
func NewGenerator(store RoomStore, settings SettingsStore, calc *tariff.Calculator, logger *zap.Logger) *Generator {
	return &Generator{
		store:    store,
		settings: settings,
		calc:     calc,
		logger:   logger,
	}
}

// CreateInvoice bills one room for a period. The reading billed is the
// override if supplied, else the room's staged reading; with neither,
// the call fails with ErrNothingToBill. The invoice insert and the
// meter advance are committed as one atomic mutation.
//
// Two calls with identical inputs produce two distinct invoices;
// duplicate-period prevention is a workflow concern.
func (g *Generator) CreateInvoice(ctx context.Context, roomID uuid.UUID, period domain.Period, override *domain.MeterReading) (domain.Invoice, error) {
	room, err := g.store.GetRoom(ctx, roomID)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("failed to load room: %w", err)
	}

	var reading domain.MeterReading
	switch {
	case override != nil:
		reading = *override
	default:
		staged, ok := room.StagedReading()
		if !ok {
			return domain.Invoice{}, domain.ErrNothingToBill
		}
		reading = staged
	}

	rates, err := g.settings.GetSettings(ctx)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("failed to load tariff settings: %w", err)
	}

	invoice, err := g.buildInvoice(room, period, reading, rates)
	if err != nil {
		return domain.Invoice{}, err
	}

	if err := g.store.CommitInvoice(ctx, roomID, invoice, reading); err != nil {
		return domain.Invoice{}, fmt.Errorf("failed to commit invoice: %w", err)
	}

	g.logger.Info("invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("room", room.Name),
		zap.String("period", period.String()),
		zap.Int64("total", invoice.Total),
	)
	return invoice, nil
}

func (g *Generator) buildInvoice(room *domain.Room, period domain.Period, reading domain.MeterReading, rates domain.TariffSettings) (domain.Invoice, error) {
	charges, err := g.calc.Calculate(room, reading, rates)
	if err != nil {
		return domain.Invoice{}, err
	}

	return domain.Invoice{
		ID:       uuid.New(),
		RoomID:   room.ID,
		RoomName: room.Name,
		Period:   period,

		RentAmount: room.Rent,

		OldElectricity:  room.Meter.Electricity,
		NewElectricity:  reading.Electricity,
		ElectricityRate: rates.ElectricityRate,
		OldWater:        room.Meter.Water,
		NewWater:        reading.Water,
		WaterRate:       rates.WaterRate,

		ElectricityUsage: charges.ElectricityUsage,
		ElectricityCost:  charges.ElectricityCost,
		WaterUsage:       charges.WaterUsage,
		WaterCost:        charges.WaterCost,

		InternetFee: rates.InternetFee,
		TrashFee:    rates.TrashFee,
		OtherFees:   rates.OtherFees,
		Total:       charges.Total,

		Paid:      false,
		CreatedAt: time.Now().UTC(),
	}, nil
}
