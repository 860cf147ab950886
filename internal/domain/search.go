package domain

// SearchResult is one hit of a customer or vehicle search. Exactly one of
// Customer or Vehicle is populated; Rates accompanies vehicle hits.
type SearchResult struct {
	ID       string           `json:"id"`
	Label    string           `json:"label"`
	Customer *CustomerDetails `json:"customer,omitempty"`
	Vehicle  *VehicleDetails  `json:"vehicle,omitempty"`
	Rates    *RateTierSet     `json:"rates,omitempty"`
}
