package service

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"srm-agent-portal/internal/domain"
	"srm-agent-portal/internal/utils"
)

type SecurityDepositInput struct {
	Enabled bool   `json:"enabled"`
	Amount  string `json:"amount"`
}

// PaymentInput holds the payment-step fields exactly as entered.
type PaymentInput struct {
	StartAt         string               `json:"start_at"`
	EndAt           string               `json:"end_at"`
	AdvanceAmount   string               `json:"advance_amount"`
	SecurityDeposit SecurityDepositInput `json:"security_deposit"`
}

// BuildQuote validates the payment fields and prices the range against rates.
// Field problems come back as domain.ValidationErrors; an unpriceable range as
// *domain.CalculationError.
func BuildQuote(rates domain.RateTierSet, in PaymentInput, loc *time.Location) (domain.Quote, utils.RentalBreakdown, error) {
	var errs domain.ValidationErrors

	start, err := utils.ParseBookingTime(in.StartAt, loc)
	if err != nil {
		errs.Add("start_at", err.Error())
	}
	end, err := utils.ParseBookingTime(in.EndAt, loc)
	if err != nil {
		errs.Add("end_at", err.Error())
	}

	advance := decimal.Zero
	if raw := strings.TrimSpace(in.AdvanceAmount); raw != "" {
		if advance, err = decimal.NewFromString(raw); err != nil {
			errs.Add("advance_amount", "advance must be a number")
		} else if advance.IsNegative() {
			errs.Add("advance_amount", "advance cannot be negative")
		}
	}

	deposit := domain.SecurityDeposit{Enabled: in.SecurityDeposit.Enabled}
	if deposit.Enabled {
		raw := strings.TrimSpace(in.SecurityDeposit.Amount)
		if raw == "" {
			errs.Add("security_deposit.amount", "deposit amount is required when a security deposit is taken")
		} else if amount, err := decimal.NewFromString(raw); err != nil {
			errs.Add("security_deposit.amount", "deposit amount must be a number")
		} else if !amount.IsPositive() {
			errs.Add("security_deposit.amount", "deposit amount must be greater than zero")
		} else {
			deposit.Amount = decimal.NewNullDecimal(amount.Round(2))
		}
	}

	if err := errs.Err(); err != nil {
		return domain.Quote{}, utils.RentalBreakdown{}, err
	}

	breakdown, err := utils.CalculateRentalAmountWithBreakdown(rates, start, end)
	if err != nil {
		return domain.Quote{}, utils.RentalBreakdown{}, err
	}

	base := breakdown.TotalCost
	advance = advance.Round(2)
	if advance.GreaterThan(base) {
		errs.Add("advance_amount", "advance cannot exceed the base rental amount")
		return domain.Quote{}, breakdown, errs
	}

	return domain.Quote{
		StartAt:          start,
		EndAt:            end,
		BaseRentalAmount: base,
		AdvanceAmount:    advance,
		RemainingAmount:  base.Sub(advance),
		SecurityDeposit:  deposit,
	}, breakdown, nil
}
