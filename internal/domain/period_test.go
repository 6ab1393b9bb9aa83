package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/septivank/rental-billing-worker/internal/domain"
)

func TestParsePeriod_NumberAndStringDrift(t *testing.T) {
	cases := []struct {
		name     string
		rawMonth interface{}
		rawYear  interface{}
	}{
		{"integers", 7, 2025},
		{"floats from json", float64(7), float64(2025)},
		{"strings", "7", "2025"},
		{"json numbers", json.Number("7"), json.Number("2025")},
		{"mixed", "7", 2025},
		{"padded string", " 7 ", "2025"},
	}

	want := domain.Period{Month: 7, Year: 2025}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := domain.ParsePeriod(tc.rawMonth, tc.rawYear)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(want) {
				t.Errorf("expected %v, got %v", want, got)
			}
		})
	}
}

func TestParsePeriod_Invalid(t *testing.T) {
	cases := []struct {
		name     string
		rawMonth interface{}
		rawYear  interface{}
	}{
		{"month zero", 0, 2025},
		{"month thirteen", 13, 2025},
		{"year zero", 7, 0},
		{"non-numeric month", "July", 2025},
		{"fractional month", 7.5, 2025},
		{"missing month", nil, 2025},
		{"empty string", "", "2025"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := domain.ParsePeriod(tc.rawMonth, tc.rawYear); err == nil {
				t.Errorf("expected error for month=%v year=%v", tc.rawMonth, tc.rawYear)
			}
		})
	}
}

func TestPeriod_PreviousAcrossYearBoundary(t *testing.T) {
	p := domain.Period{Month: 1, Year: 2025}
	prev := p.Previous()
	if prev.Month != 12 || prev.Year != 2024 {
		t.Errorf("expected 2024-12, got %v", prev)
	}

	p = domain.Period{Month: 6, Year: 2025}
	prev = p.Previous()
	if prev.Month != 5 || prev.Year != 2025 {
		t.Errorf("expected 2025-05, got %v", prev)
	}
}

func TestPeriodFromTime(t *testing.T) {
	at := time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)
	p := domain.PeriodFromTime(at)
	if p.Month != 3 || p.Year != 2025 {
		t.Errorf("expected 2025-03, got %v", p)
	}
}

func TestExpense_ResolvePeriod(t *testing.T) {
	explicit := domain.Expense{
		Period: domain.Period{Month: 2, Year: 2025},
		Date:   time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
	p, ok := explicit.ResolvePeriod()
	if !ok || p.Month != 2 {
		t.Errorf("expected explicit period to win, got %v ok=%v", p, ok)
	}

	legacy := domain.Expense{
		Date: time.Date(2024, time.November, 20, 0, 0, 0, 0, time.UTC),
	}
	p, ok = legacy.ResolvePeriod()
	if !ok || p.Month != 11 || p.Year != 2024 {
		t.Errorf("expected period derived from date, got %v ok=%v", p, ok)
	}

	malformed := domain.Expense{}
	if _, ok := malformed.ResolvePeriod(); ok {
		t.Error("expected no period for record without period or date")
	}
}
