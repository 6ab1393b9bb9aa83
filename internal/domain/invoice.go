package domain

import (
	"time"

	"github.com/google/uuid"
)

// TariffSettings are the rates applied when an invoice is created.
// Owned by a settings collaborator; read-only to this service.
type TariffSettings struct {
	ElectricityRate int64
	WaterRate       int64
	InternetFee     int64
	TrashFee        int64
	OtherFees       int64
}

// Invoice is an immutable billing snapshot for one room and period.
// Totals are computed once at creation and never re-derived, so later
// tariff changes do not alter past invoices. The paid flag is mutated
// by an external collaborator.
type Invoice struct {
	ID       uuid.UUID
	RoomID   uuid.UUID
	RoomName string
	Period   Period

	RentAmount int64

	OldElectricity  int64
	NewElectricity  int64
	ElectricityRate int64
	OldWater        int64
	NewWater        int64
	WaterRate       int64

	ElectricityUsage int64
	ElectricityCost  int64
	WaterUsage       int64
	WaterCost        int64

	InternetFee int64
	TrashFee    int64
	OtherFees   int64
	Total       int64

	Paid      bool
	CreatedAt time.Time
}

// Expense is an operating cost record. Legacy records may lack the
// explicit accounting period and carry only a date.
type Expense struct {
	ID       uuid.UUID
	Title    string
	Amount   int64
	Category string
	Date     time.Time
	Period   Period // zero when the record predates period attribution
}

// ResolvePeriod returns the expense's accounting period: the explicit
// month/year when present, else the calendar period of its date.
func (e Expense) ResolvePeriod() (Period, bool) {
	if !e.Period.IsZero() {
		return e.Period, true
	}
	if e.Date.IsZero() {
		return Period{}, false
	}
	return PeriodFromTime(e.Date), true
}
