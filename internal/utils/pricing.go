package utils

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"srm-agent-portal/internal/domain"
)

// RentalBreakdown itemises how a rental amount was reached.
type RentalBreakdown struct {
	ElapsedHours   decimal.Decimal   `json:"elapsed_hours"`
	Months         int64             `json:"months"`
	Weeks          int64             `json:"weeks"`
	Days           int64             `json:"days"`
	Hours          int64             `json:"hours"`
	MonthsCost     decimal.Decimal   `json:"months_cost"`
	WeeksCost      decimal.Decimal   `json:"weeks_cost"`
	DaysCost       decimal.Decimal   `json:"days_cost"`
	HoursCost      decimal.Decimal   `json:"hours_cost"`
	FallbackPeriod domain.RatePeriod `json:"fallback_period,omitempty"`
	TotalCost      decimal.Decimal   `json:"total_cost"`
}

// CalculateRentalAmount returns the base rental amount for the range [start, end).
func CalculateRentalAmount(rates domain.RateTierSet, start, end time.Time) (decimal.Decimal, error) {
	breakdown, err := CalculateRentalAmountWithBreakdown(rates, start, end)
	if err != nil {
		return decimal.Zero, err
	}
	return breakdown.TotalCost, nil
}

// CalculateRentalAmountWithBreakdown prices the range greedily from the largest enabled
// period down. Whatever is left after months, weeks and days is billed by the hour when
// hourly rates are enabled. Without hourly rates a sub-day remainder is rounded up to one
// unit of the smallest enabled period; a remainder of a day or more cannot be priced.
func CalculateRentalAmountWithBreakdown(rates domain.RateTierSet, start, end time.Time) (RentalBreakdown, error) {
	if !rates.AnyEnabled() {
		return RentalBreakdown{}, &domain.CalculationError{
			Code:    domain.CalculationNoTierEnabled,
			Message: "no rental period is enabled for this vehicle",
		}
	}
	if !end.After(start) {
		return RentalBreakdown{}, &domain.CalculationError{
			Code:    domain.CalculationInvalidRange,
			Message: "end date must be after start date",
		}
	}

	elapsed := end.Sub(start)
	remaining := elapsed
	b := RentalBreakdown{
		ElapsedHours: decimal.NewFromFloat(elapsed.Hours()).Round(2),
		MonthsCost:   decimal.Zero,
		WeeksCost:    decimal.Zero,
		DaysCost:     decimal.Zero,
		HoursCost:    decimal.Zero,
	}

	consume := func(p domain.RatePeriod) (int64, decimal.Decimal) {
		tier := rates.Tier(p)
		if !tier.Enabled {
			return 0, decimal.Zero
		}
		unit := periodDuration(p)
		units := int64(remaining / unit)
		remaining -= time.Duration(units) * unit
		return units, tier.PriceAmount.Mul(decimal.NewFromInt(units))
	}

	b.Months, b.MonthsCost = consume(domain.RatePeriodMonth)
	b.Weeks, b.WeeksCost = consume(domain.RatePeriodWeek)
	b.Days, b.DaysCost = consume(domain.RatePeriodDay)

	if remaining > 0 {
		hours := int64((remaining + time.Hour - 1) / time.Hour)

		switch {
		case rates.Hour.Enabled:
			if minHours := rates.MinHours(); hours < minHours {
				hours = minHours
			}
			b.Hours = hours
			b.HoursCost = rates.Hour.PriceAmount.Mul(decimal.NewFromInt(hours))

		case remaining < periodDuration(domain.RatePeriodDay):
			p, ok := smallestEnabled(rates, domain.RatePeriodDay)
			if !ok {
				return RentalBreakdown{}, uncovered(hours)
			}
			b.FallbackPeriod = p
			price := rates.Tier(p).PriceAmount
			switch p {
			case domain.RatePeriodDay:
				b.Days++
				b.DaysCost = b.DaysCost.Add(price)
			case domain.RatePeriodWeek:
				b.Weeks++
				b.WeeksCost = b.WeeksCost.Add(price)
			case domain.RatePeriodMonth:
				b.Months++
				b.MonthsCost = b.MonthsCost.Add(price)
			}

		default:
			return RentalBreakdown{}, uncovered(hours)
		}
	}

	b.TotalCost = b.MonthsCost.Add(b.WeeksCost).Add(b.DaysCost).Add(b.HoursCost).Round(2)
	return b, nil
}

func periodDuration(p domain.RatePeriod) time.Duration {
	return time.Duration(p.Hours()) * time.Hour
}

// smallestEnabled returns the smallest enabled period at or above from.
func smallestEnabled(rates domain.RateTierSet, from domain.RatePeriod) (domain.RatePeriod, bool) {
	for _, p := range domain.RatePeriods {
		if p.Hours() < from.Hours() {
			continue
		}
		if rates.Tier(p).Enabled {
			return p, true
		}
	}
	return "", false
}

func uncovered(hours int64) *domain.CalculationError {
	return &domain.CalculationError{
		Code:    domain.CalculationUncoveredRemainder,
		Message: fmt.Sprintf("no enabled rental period covers the remaining %d hours", hours),
	}
}
