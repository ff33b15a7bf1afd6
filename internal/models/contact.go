package models

import "time"

// ContactInput holds a validated contact-form inquiry.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

// Contact is a stored inquiry.
type Contact struct {
	ID string `json:"id"`
	ContactInput
	CreatedAt time.Time `json:"createdAt"`
}
