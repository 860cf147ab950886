package service

import (
	"strings"

	"srm-agent-portal/internal/domain"
)

type ResolutionMode string

const (
	// ResolutionExisting attaches a record found through search
	ResolutionExisting ResolutionMode = "existing"
	// ResolutionNew creates a record from the submitted form values
	ResolutionNew ResolutionMode = "new"
	// ResolutionBlocked means nothing was selected or typed; submission must not proceed
	ResolutionBlocked ResolutionMode = "blocked"
)

type Resolution struct {
	Mode ResolutionMode `json:"mode"`
	ID   string         `json:"id,omitempty"`
}

// Resolve decides whether a step reuses a searched record or creates a new one.
// A selection without an identifier counts as no selection.
func Resolve(selection *domain.SearchResult, typedValue string) Resolution {
	if selection != nil {
		if id := strings.TrimSpace(selection.ID); id != "" {
			return Resolution{Mode: ResolutionExisting, ID: id}
		}
	}
	if strings.TrimSpace(typedValue) != "" {
		return Resolution{Mode: ResolutionNew}
	}
	return Resolution{Mode: ResolutionBlocked}
}

// ApplyCustomerSelection returns the customer form values implied by a selection.
// Picking a record copies all of its fields; picking "add new" keeps only the typed
// name so no dependent field of a previously selected customer survives.
func ApplyCustomerSelection(selection *domain.SearchResult, typedValue string) domain.CustomerDetails {
	if selection != nil && selection.Customer != nil && strings.TrimSpace(selection.ID) != "" {
		return *selection.Customer
	}
	return domain.CustomerDetails{FullName: strings.TrimSpace(typedValue)}
}

// ApplyVehicleSelection is the vehicle counterpart of ApplyCustomerSelection. Rates
// are copied from the record, or reset to an empty set for a new vehicle.
func ApplyVehicleSelection(selection *domain.SearchResult) (domain.VehicleDetails, domain.RateTierSetInput) {
	if selection != nil && selection.Vehicle != nil && strings.TrimSpace(selection.ID) != "" {
		details := *selection.Vehicle
		details.PhotoPaths = append([]string(nil), selection.Vehicle.PhotoPaths...)
		var rates domain.RateTierSetInput
		if selection.Rates != nil {
			rates = selection.Rates.Input()
		}
		return details, rates
	}
	return domain.VehicleDetails{}, domain.RateTierSetInput{}
}
