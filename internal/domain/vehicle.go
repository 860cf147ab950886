package domain

import "time"

type VehicleDetails struct {
	Make        string   `json:"make"`
	Model       string   `json:"model"`
	Year        int      `json:"year"`
	PlateNumber string   `json:"plate_number"`
	Color       string   `json:"color"`
	PhotoPaths  []string `json:"photo_paths"`
}

type Vehicle struct {
	ID        string      `json:"id"`
	AgentID   string      `json:"agent_id"`
	VehicleDetails
	Rates     RateTierSet `json:"rates"`
	CreatedOn time.Time   `json:"created_on"`
	UpdatedOn time.Time   `json:"updated_on"`
}

func (v *Vehicle) Label() string {
	label := v.Make + " " + v.Model
	if v.PlateNumber != "" {
		label += " (" + v.PlateNumber + ")"
	}
	return label
}

func (v *Vehicle) SearchResult() SearchResult {
	details := v.VehicleDetails
	rates := v.Rates
	return SearchResult{
		ID:      v.ID,
		Label:   v.Label(),
		Vehicle: &details,
		Rates:   &rates,
	}
}
