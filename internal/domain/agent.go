package domain

import "time"

// Agent is a portal user who lists vehicles and runs SRM bookings.
type Agent struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	CompanyName  string    `json:"company_name"`
	PasswordHash string    `json:"-"`
	CreatedOn    time.Time `json:"created_on"`
}
