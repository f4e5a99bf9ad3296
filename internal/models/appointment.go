package models

import "time"

// Appointment is a consultation booking submitted from the website.
type Appointment struct {
	Name          string `json:"name" validate:"required"`
	Phone         string `json:"phone" validate:"required"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	Service       string `json:"service" validate:"required"`
	PreferredDate string `json:"preferred_date" validate:"required,datetime=2006-01-02"`
	PreferredTime string `json:"preferred_time,omitempty"`
	Message       string `json:"message,omitempty"`
}

// Date returns the preferred date as a UTC midnight time.
func (a Appointment) Date() (time.Time, error) {
	return time.Parse(DateLayout, a.PreferredDate)
}

// QuoteRequest is a quote enquiry from a website visitor.
type QuoteRequest struct {
	Name        string `json:"name" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Requirement string `json:"requirement" validate:"required"`
	Budget      string `json:"budget,omitempty"`
}

// Ack is the response body of a submission endpoint.
type Ack struct {
	Status  string `json:"status"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
