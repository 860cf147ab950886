package domain

import "time"

// CustomerDetails are the customer-step form fields. Nationality, licence, phone and
// photo are auto-filled when an existing customer is selected from search.
type CustomerDetails struct {
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Nationality      string `json:"nationality"`
	LicenseNumber    string `json:"license_number"`
	IDNumber         string `json:"id_number"`
	ProfilePhotoPath string `json:"profile_photo_path"`
}

type Customer struct {
	ID        string    `json:"id"`
	AgentID   string    `json:"agent_id"`
	CustomerDetails
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

func (c *Customer) SearchResult() SearchResult {
	details := c.CustomerDetails
	return SearchResult{
		ID:       c.ID,
		Label:    c.FullName,
		Customer: &details,
	}
}
