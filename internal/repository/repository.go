package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/septivank/rental-billing-worker/internal/billing"
	"github.com/septivank/rental-billing-worker/internal/domain"
)

// Tx is an alias for pgx.Tx
type Tx = pgx.Tx

// Repository handles database operations for rooms, invoices,
// expenses and tariff settings.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const roomColumns = `
		id, name, status, rent,
		electricity_meter, water_meter,
		pending_electricity_meter, pending_water_meter
`

func scanRoom(row pgx.Row) (*domain.Room, error) {
	var room domain.Room
	var pendingElec, pendingWater *int64
	if err := row.Scan(
		&room.ID,
		&room.Name,
		&room.Status,
		&room.Rent,
		&room.Meter.Electricity,
		&room.Meter.Water,
		&pendingElec,
		&pendingWater,
	); err != nil {
		return nil, err
	}
	// The staged pair is written and cleared as a whole; a half-set
	// pair is treated as unstaged.
	if pendingElec != nil && pendingWater != nil {
		room.RestoreStaged(domain.MeterReading{Electricity: *pendingElec, Water: *pendingWater})
	}
	return &room, nil
}

// GetRoom loads one room with its meter state.
func (r *Repository) GetRoom(ctx context.Context, id uuid.UUID) (*domain.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`

	room, err := scanRoom(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to query room: %w", err)
	}
	return room, nil
}

// ListRooms loads every room.
func (r *Repository) ListRooms(ctx context.Context) ([]*domain.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*domain.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return rooms, nil
}

// StageReading persists a captured reading as the room's pending pair.
func (r *Repository) StageReading(ctx context.Context, roomID uuid.UUID, reading domain.MeterReading) error {
	query := `
		UPDATE rooms
		SET pending_electricity_meter = $1, pending_water_meter = $2
		WHERE id = $3
	`

	tag, err := r.pool.Exec(ctx, query, reading.Electricity, reading.Water, roomID)
	if err != nil {
		return fmt.Errorf("failed to stage reading: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

// DiscardStaged clears the room's pending pair without billing it.
func (r *Repository) DiscardStaged(ctx context.Context, roomID uuid.UUID) error {
	query := `
		UPDATE rooms
		SET pending_electricity_meter = NULL, pending_water_meter = NULL
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, roomID)
	if err != nil {
		return fmt.Errorf("failed to discard staged reading: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

// CommitInvoice inserts the invoice and advances the room's meter in
// one transaction. A crash between the two writes would double-bill
// the same usage, so partial application is never visible.
func (r *Repository) CommitInvoice(ctx context.Context, roomID uuid.UUID, invoice domain.Invoice, meter domain.MeterReading) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertInvoiceTx(ctx, tx, invoice); err != nil {
		return err
	}
	if err := advanceMeterTx(ctx, tx, roomID, meter); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CommitBulk applies every invoice insert and meter advance of a bulk
// run in one transaction: all rooms are billed or none are.
func (r *Repository) CommitBulk(ctx context.Context, items []billing.BulkItem) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, item := range items {
		if err := insertInvoiceTx(ctx, tx, item.Invoice); err != nil {
			return err
		}
		if err := advanceMeterTx(ctx, tx, item.RoomID, item.Meter); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertInvoiceTx(ctx context.Context, tx pgx.Tx, invoice domain.Invoice) error {
	query := `
		INSERT INTO invoices (
			id, room_id, room_name, month, year, rent_amount,
			old_electricity, new_electricity, electricity_rate,
			old_water, new_water, water_rate,
			electricity_usage, electricity_cost, water_usage, water_cost,
			internet_fee, trash_fee, other_fees, total,
			paid, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`

	_, err := tx.Exec(ctx, query,
		invoice.ID,
		invoice.RoomID,
		invoice.RoomName,
		invoice.Period.Month,
		invoice.Period.Year,
		invoice.RentAmount,
		invoice.OldElectricity,
		invoice.NewElectricity,
		invoice.ElectricityRate,
		invoice.OldWater,
		invoice.NewWater,
		invoice.WaterRate,
		invoice.ElectricityUsage,
		invoice.ElectricityCost,
		invoice.WaterUsage,
		invoice.WaterCost,
		invoice.InternetFee,
		invoice.TrashFee,
		invoice.OtherFees,
		invoice.Total,
		invoice.Paid,
		invoice.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}
	return nil
}

func advanceMeterTx(ctx context.Context, tx pgx.Tx, roomID uuid.UUID, meter domain.MeterReading) error {
	query := `
		UPDATE rooms
		SET electricity_meter = $1, water_meter = $2,
			pending_electricity_meter = NULL, pending_water_meter = NULL
		WHERE id = $3
	`

	tag, err := tx.Exec(ctx, query, meter.Electricity, meter.Water, roomID)
	if err != nil {
		return fmt.Errorf("failed to advance room meter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

// ListInvoices loads invoices, optionally restricted to one period.
func (r *Repository) ListInvoices(ctx context.Context, period *domain.Period) ([]domain.Invoice, error) {
	query := `
		SELECT id, room_id, room_name, month, year, rent_amount,
			old_electricity, new_electricity, electricity_rate,
			old_water, new_water, water_rate,
			electricity_usage, electricity_cost, water_usage, water_cost,
			internet_fee, trash_fee, other_fees, total,
			paid, created_at
		FROM invoices
	`
	args := []interface{}{}
	if period != nil {
		query += ` WHERE month = $1 AND year = $2`
		args = append(args, period.Month, period.Year)
	}
	query += ` ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []domain.Invoice
	for rows.Next() {
		var inv domain.Invoice
		if err := rows.Scan(
			&inv.ID,
			&inv.RoomID,
			&inv.RoomName,
			&inv.Period.Month,
			&inv.Period.Year,
			&inv.RentAmount,
			&inv.OldElectricity,
			&inv.NewElectricity,
			&inv.ElectricityRate,
			&inv.OldWater,
			&inv.NewWater,
			&inv.WaterRate,
			&inv.ElectricityUsage,
			&inv.ElectricityCost,
			&inv.WaterUsage,
			&inv.WaterCost,
			&inv.InternetFee,
			&inv.TrashFee,
			&inv.OtherFees,
			&inv.Total,
			&inv.Paid,
			&inv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return invoices, nil
}

// ListExpenses loads expenses, optionally restricted to one period.
// Legacy rows may have NULL month/year; their period is resolved from
// the date downstream, so the filter cannot be pushed into SQL.
func (r *Repository) ListExpenses(ctx context.Context, period *domain.Period) ([]domain.Expense, error) {
	query := `
		SELECT id, title, amount, category, date, month, year
		FROM expenses
		ORDER BY date
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []domain.Expense
	for rows.Next() {
		var exp domain.Expense
		var month, year *int
		if err := rows.Scan(
			&exp.ID,
			&exp.Title,
			&exp.Amount,
			&exp.Category,
			&exp.Date,
			&month,
			&year,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		if month != nil && year != nil {
			exp.Period = domain.Period{Month: *month, Year: *year}
		}
		if period != nil {
			resolved, ok := exp.ResolvePeriod()
			if !ok || !resolved.Equal(*period) {
				continue
			}
		}
		expenses = append(expenses, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return expenses, nil
}

// GetSettings loads the single tariff settings row.
func (r *Repository) GetSettings(ctx context.Context) (domain.TariffSettings, error) {
	query := `
		SELECT electricity_rate, water_rate, internet_fee, trash_fee, other_fees
		FROM tariff_settings
		LIMIT 1
	`

	var settings domain.TariffSettings
	err := r.pool.QueryRow(ctx, query).Scan(
		&settings.ElectricityRate,
		&settings.WaterRate,
		&settings.InternetFee,
		&settings.TrashFee,
		&settings.OtherFees,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TariffSettings{}, nil
		}
		return domain.TariffSettings{}, fmt.Errorf("failed to query tariff settings: %w", err)
	}
	return settings, nil
}
