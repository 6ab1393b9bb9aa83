package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/septivank/rental-billing-worker/internal/billing"
	"github.com/septivank/rental-billing-worker/internal/domain"
)

// MemoryStore is an in-memory implementation of the room, ledger and
// settings stores. It backs unit tests and local runs without
// PostgreSQL and honors the same atomicity contract: a bulk commit
// either applies every item or none.
type MemoryStore struct {
	mu       sync.RWMutex
	rooms    map[uuid.UUID]*domain.Room
	invoices []domain.Invoice
	expenses []domain.Expense
	settings domain.TariffSettings
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[uuid.UUID]*domain.Room)}
}

// PutRoom inserts or replaces a room.
func (s *MemoryStore) PutRoom(room *domain.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = room.Clone()
}

// PutExpense appends an expense record.
func (s *MemoryStore) PutExpense(exp domain.Expense) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, exp)
}

// PutSettings replaces the tariff settings.
func (s *MemoryStore) PutSettings(settings domain.TariffSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

// GetRoom loads one room.
func (s *MemoryStore) GetRoom(ctx context.Context, id uuid.UUID) (*domain.Room, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return room.Clone(), nil
}

// ListRooms loads every room.
func (s *MemoryStore) ListRooms(ctx context.Context) ([]*domain.Room, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]*domain.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room.Clone())
	}
	return rooms, nil
}

// StageReading persists a staged pair on the room.
func (s *MemoryStore) StageReading(ctx context.Context, roomID uuid.UUID, reading domain.MeterReading) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	room.RestoreStaged(reading)
	return nil
}

// DiscardStaged clears the room's staged pair.
func (s *MemoryStore) DiscardStaged(ctx context.Context, roomID uuid.UUID) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	room.DiscardStaged()
	return nil
}

// CommitInvoice applies the invoice insert and meter advance together.
func (s *MemoryStore) CommitInvoice(ctx context.Context, roomID uuid.UUID, invoice domain.Invoice, meter domain.MeterReading) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	s.invoices = append(s.invoices, invoice)
	room.AdvanceMeter(meter)
	return nil
}

// CommitBulk applies all items or none.
func (s *MemoryStore) CommitBulk(ctx context.Context, items []billing.BulkItem) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		if _, ok := s.rooms[item.RoomID]; !ok {
			return domain.ErrRoomNotFound
		}
	}
	for _, item := range items {
		s.invoices = append(s.invoices, item.Invoice)
		s.rooms[item.RoomID].AdvanceMeter(item.Meter)
	}
	return nil
}

// ListInvoices loads invoices, optionally restricted to one period.
func (s *MemoryStore) ListInvoices(ctx context.Context, period *domain.Period) ([]domain.Invoice, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	var invoices []domain.Invoice
	for _, inv := range s.invoices {
		if period != nil && !inv.Period.Equal(*period) {
			continue
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

// ListExpenses loads expenses, optionally restricted to one period.
func (s *MemoryStore) ListExpenses(ctx context.Context, period *domain.Period) ([]domain.Expense, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	var expenses []domain.Expense
	for _, exp := range s.expenses {
		if period != nil {
			resolved, ok := exp.ResolvePeriod()
			if !ok || !resolved.Equal(*period) {
				continue
			}
		}
		expenses = append(expenses, exp)
	}
	return expenses, nil
}

// GetSettings returns the tariff settings.
func (s *MemoryStore) GetSettings(ctx context.Context) (domain.TariffSettings, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}
