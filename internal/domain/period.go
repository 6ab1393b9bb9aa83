package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is a monthly billing bucket.
type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// NewPeriod builds a validated period.
func NewPeriod(month, year int) (Period, error) {
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("invalid period month %d: must be 1..12", month)
	}
	if year < 1 {
		return Period{}, fmt.Errorf("invalid period year %d", year)
	}
	return Period{Month: month, Year: year}, nil
}

// ParsePeriod normalizes legacy period fields that may arrive as
// numbers or strings and always yields integer components.
func ParsePeriod(rawMonth, rawYear interface{}) (Period, error) {
	month, err := toInt(rawMonth)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period month: %w", err)
	}
	year, err := toInt(rawYear)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period year: %w", err)
	}
	return NewPeriod(month, year)
}

// PeriodFromTime derives the calendar period of a timestamp.
func PeriodFromTime(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}

// CurrentPeriod returns the period of the system clock.
func CurrentPeriod() Period {
	return PeriodFromTime(time.Now())
}

// Previous returns the preceding month.
func (p Period) Previous() Period {
	if p.Month == 1 {
		return Period{Month: 12, Year: p.Year - 1}
	}
	return Period{Month: p.Month - 1, Year: p.Year}
}

// Equal compares both components as integers.
func (p Period) Equal(other Period) bool {
	return p.Month == other.Month && p.Year == other.Year
}

// IsZero reports whether the period is unset.
func (p Period) IsZero() bool {
	return p.Month == 0 && p.Year == 0
}

// String formats the period for logs and messages, e.g. "2025-07".
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

func toInt(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("non-integer value %v", v)
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("non-integer value %q", v.String())
		}
		return int(n), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, fmt.Errorf("empty value")
		}
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, fmt.Errorf("non-integer value %q", v)
		}
		return n, nil
	case nil:
		return 0, fmt.Errorf("missing value")
	default:
		return 0, fmt.Errorf("unsupported type %T", raw)
	}
}
