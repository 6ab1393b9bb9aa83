package tariff

import (
	"github.com/septivank/rental-billing-worker/internal/domain"
)

// Charges holds the itemized outcome of a meter-delta calculation.
type Charges struct {
	ElectricityUsage int64
	ElectricityCost  int64
	WaterUsage       int64
	WaterCost        int64
	Total            int64
}

// Calculator turns meter deltas and tariff rates into itemized costs.
// It is stateless and safe to call repeatedly.
type Calculator struct{}

// NewCalculator creates a new tariff calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Calculate validates a reading pair for a room and computes the
// itemized charges. It fails with InvalidMeterReadingError if either
// proposed value is below the current one; meters never run backward.
func (c *Calculator) Calculate(room *domain.Room, proposed domain.MeterReading, rates domain.TariffSettings) (Charges, error) {
	if err := room.ValidateProposed(proposed); err != nil {
		return Charges{}, err
	}

	elecUsage := proposed.Electricity - room.Meter.Electricity
	waterUsage := proposed.Water - room.Meter.Water

	charges := Charges{
		ElectricityUsage: elecUsage,
		ElectricityCost:  elecUsage * rates.ElectricityRate,
		WaterUsage:       waterUsage,
		WaterCost:        waterUsage * rates.WaterRate,
	}
	charges.Total = room.Rent +
		charges.ElectricityCost +
		charges.WaterCost +
		rates.InternetFee +
		rates.TrashFee +
		rates.OtherFees

	return charges, nil
}
