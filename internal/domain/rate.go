package domain

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type RatePeriod string

const (
	RatePeriodHour  RatePeriod = "hour"
	RatePeriodDay   RatePeriod = "day"
	RatePeriodWeek  RatePeriod = "week"
	RatePeriodMonth RatePeriod = "month"
)

// RatePeriods is ordered from the smallest to the largest unit.
var RatePeriods = []RatePeriod{RatePeriodHour, RatePeriodDay, RatePeriodWeek, RatePeriodMonth}

const (
	MinHourlyBookingUnits = 1
	MaxHourlyBookingUnits = 10
)

// Hours returns the length of one unit of the period. A month is billed as 30 days.
func (p RatePeriod) Hours() int64 {
	switch p {
	case RatePeriodHour:
		return 1
	case RatePeriodDay:
		return 24
	case RatePeriodWeek:
		return 7 * 24
	case RatePeriodMonth:
		return 30 * 24
	default:
		return 0
	}
}

// RateTier is the validated price configuration for one rental period.
type RateTier struct {
	Enabled          bool            `json:"enabled"`
	PriceAmount      decimal.Decimal `json:"price_amount"`
	MileageLimitKm   *int            `json:"mileage_limit_km,omitempty"`
	UnlimitedMileage bool            `json:"unlimited_mileage"`
	MinBookingUnits  *int            `json:"min_booking_units,omitempty"`
}

// RateTierSet holds the four period tiers of a single vehicle.
type RateTierSet struct {
	Hour  RateTier `json:"hour"`
	Day   RateTier `json:"day"`
	Week  RateTier `json:"week"`
	Month RateTier `json:"month"`
}

func (s RateTierSet) Tier(p RatePeriod) RateTier {
	switch p {
	case RatePeriodHour:
		return s.Hour
	case RatePeriodDay:
		return s.Day
	case RatePeriodWeek:
		return s.Week
	case RatePeriodMonth:
		return s.Month
	default:
		return RateTier{}
	}
}

func (s RateTierSet) AnyEnabled() bool {
	for _, p := range RatePeriods {
		if s.Tier(p).Enabled {
			return true
		}
	}
	return false
}

// MinHours returns the hourly minimum, or zero when none is configured.
func (s RateTierSet) MinHours() int64 {
	if s.Hour.MinBookingUnits == nil {
		return 0
	}
	return int64(*s.Hour.MinBookingUnits)
}

// Equal compares prices by value, so "100" and "100.00" match.
func (s RateTierSet) Equal(other RateTierSet) bool {
	for _, p := range RatePeriods {
		if !s.Tier(p).equal(other.Tier(p)) {
			return false
		}
	}
	return true
}

func (t RateTier) equal(o RateTier) bool {
	return t.Enabled == o.Enabled &&
		t.PriceAmount.Equal(o.PriceAmount) &&
		t.UnlimitedMileage == o.UnlimitedMileage &&
		equalIntPtr(t.MileageLimitKm, o.MileageLimitKm) &&
		equalIntPtr(t.MinBookingUnits, o.MinBookingUnits)
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// RateTierInput is a tier as entered in the vehicle form. Numeric fields stay raw
// strings so that empty and non-numeric entries can be reported per field.
type RateTierInput struct {
	Enabled          bool   `json:"enabled"`
	PriceAmount      string `json:"price_amount"`
	MileageLimitKm   string `json:"mileage_limit_km"`
	UnlimitedMileage bool   `json:"unlimited_mileage"`
	MinBookingUnits  string `json:"min_booking_units"`
}

type RateTierSetInput struct {
	Hour  RateTierInput `json:"hour"`
	Day   RateTierInput `json:"day"`
	Week  RateTierInput `json:"week"`
	Month RateTierInput `json:"month"`
}

func (in RateTierSetInput) tier(p RatePeriod) RateTierInput {
	switch p {
	case RatePeriodHour:
		return in.Hour
	case RatePeriodDay:
		return in.Day
	case RatePeriodWeek:
		return in.Week
	default:
		return in.Month
	}
}

// Validate converts the form input into a RateTierSet, collecting every field error.
// Field paths are rooted at "rates".
func (in RateTierSetInput) Validate() (RateTierSet, error) {
	var errs ValidationErrors
	var set RateTierSet

	tiers := make(map[RatePeriod]RateTier, len(RatePeriods))
	anyEnabled := false
	for _, p := range RatePeriods {
		tier, ok := validateTier(p, in.tier(p), &errs)
		if ok {
			tiers[p] = tier
		}
		if in.tier(p).Enabled {
			anyEnabled = true
		}
	}
	if !anyEnabled {
		errs.Add("rates", "at least one rental period must be selected.")
	}
	if err := errs.Err(); err != nil {
		return RateTierSet{}, err
	}

	set.Hour = tiers[RatePeriodHour]
	set.Day = tiers[RatePeriodDay]
	set.Week = tiers[RatePeriodWeek]
	set.Month = tiers[RatePeriodMonth]
	return set, nil
}

func validateTier(p RatePeriod, in RateTierInput, errs *ValidationErrors) (RateTier, bool) {
	if !in.Enabled {
		return RateTier{}, true
	}
	prefix := "rates." + string(p)
	before := len(*errs)

	tier := RateTier{Enabled: true, UnlimitedMileage: in.UnlimitedMileage}

	price := strings.TrimSpace(in.PriceAmount)
	if price == "" {
		errs.Add(prefix+".price_amount", "price is required")
	} else if amount, err := decimal.NewFromString(price); err != nil {
		errs.Add(prefix+".price_amount", "price must be a number")
	} else if !amount.IsPositive() {
		errs.Add(prefix+".price_amount", "price must be greater than zero")
	} else {
		tier.PriceAmount = amount
	}

	if !in.UnlimitedMileage {
		mileage := strings.TrimSpace(in.MileageLimitKm)
		if mileage == "" {
			errs.Add(prefix+".mileage_limit_km", "mileage limit is required unless mileage is unlimited")
		} else if km, err := strconv.Atoi(mileage); err != nil || km < 0 {
			errs.Add(prefix+".mileage_limit_km", "mileage limit must be a whole number of kilometres")
		} else {
			tier.MileageLimitKm = &km
		}
	}

	if p == RatePeriodHour {
		units, err := strconv.Atoi(strings.TrimSpace(in.MinBookingUnits))
		if err != nil || units < MinHourlyBookingUnits || units > MaxHourlyBookingUnits {
			errs.Add(prefix+".min_booking_units", "minimum booking hours must be a whole number between 1 and 10")
		} else {
			tier.MinBookingUnits = &units
		}
	}

	return tier, len(*errs) == before
}

// Input renders a validated set back into form input, used to autofill a selected vehicle.
func (s RateTierSet) Input() RateTierSetInput {
	return RateTierSetInput{
		Hour:  s.Hour.input(),
		Day:   s.Day.input(),
		Week:  s.Week.input(),
		Month: s.Month.input(),
	}
}

func (t RateTier) input() RateTierInput {
	if !t.Enabled {
		return RateTierInput{}
	}
	in := RateTierInput{
		Enabled:          true,
		PriceAmount:      t.PriceAmount.String(),
		UnlimitedMileage: t.UnlimitedMileage,
	}
	if t.MileageLimitKm != nil && !t.UnlimitedMileage {
		in.MileageLimitKm = strconv.Itoa(*t.MileageLimitKm)
	}
	if t.MinBookingUnits != nil {
		in.MinBookingUnits = strconv.Itoa(*t.MinBookingUnits)
	}
	return in
}
