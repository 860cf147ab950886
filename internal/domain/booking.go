package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FlowStep is the position of an SRM booking flow.
type FlowStep string

const (
	FlowStepCustomer  FlowStep = "CUSTOMER"
	FlowStepVehicle   FlowStep = "VEHICLE"
	FlowStepPayment   FlowStep = "PAYMENT"
	FlowStepCompleted FlowStep = "COMPLETED"
)

func (s FlowStep) Label() string {
	switch s {
	case FlowStepCustomer:
		return "customer"
	case FlowStepVehicle:
		return "vehicle"
	case FlowStepPayment:
		return "payment"
	case FlowStepCompleted:
		return "completed"
	default:
		return string(s)
	}
}

// Rank orders steps so that re-entering an earlier step never moves the flow backward.
func (s FlowStep) Rank() int {
	switch s {
	case FlowStepCustomer:
		return 0
	case FlowStepVehicle:
		return 1
	case FlowStepPayment:
		return 2
	case FlowStepCompleted:
		return 3
	default:
		return -1
	}
}

type BookingStatus string

const (
	BookingStatusDraft     BookingStatus = "DRAFT"
	BookingStatusFinalized BookingStatus = "FINALIZED"
)

// Booking is the provisional reservation linking one customer and one vehicle.
type Booking struct {
	ID         string        `json:"id"`
	AgentID    string        `json:"agent_id"`
	CustomerID string        `json:"customer_id"`
	VehicleID  *string       `json:"vehicle_id,omitempty"`
	Status     BookingStatus `json:"status"`
	StartAt    *time.Time    `json:"start_at,omitempty"`
	EndAt      *time.Time    `json:"end_at,omitempty"`
	Quote      *Quote        `json:"quote,omitempty"`
	CreatedOn  time.Time     `json:"created_on"`
	UpdatedOn  time.Time     `json:"updated_on"`
}

type SecurityDeposit struct {
	Enabled bool                `json:"enabled"`
	Amount  decimal.NullDecimal `json:"amount"`
}

// Quote is the monetary summary shown before finalization.
type Quote struct {
	StartAt          time.Time       `json:"start_at"`
	EndAt            time.Time       `json:"end_at"`
	BaseRentalAmount decimal.Decimal `json:"base_rental_amount"`
	AdvanceAmount    decimal.Decimal `json:"advance_amount"`
	RemainingAmount  decimal.Decimal `json:"remaining_amount"`
	SecurityDeposit  SecurityDeposit `json:"security_deposit"`
}
