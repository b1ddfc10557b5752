package models

import "time"

// Contact is a customer directory entry keyed by normalized mobile number
type Contact struct {
	ID        int       `json:"id"`
	FullName  string    `json:"full_name"`
	Mobile    string    `json:"mobile"` // Always +8801XXXXXXXXX
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateContactRequest is the contact creation form
type CreateContactRequest struct {
	FullName string `json:"full_name" validate:"required,max=120"`
	Mobile   string `json:"mobile" validate:"required"` // Accepted in any BD format, normalized on save
	Notes    string `json:"notes"`
}

// ContactPage is a single page of the contact listing
type ContactPage struct {
	Rows    []Contact `json:"rows"`
	Page    int       `json:"page"`
	Pages   int       `json:"pages"`
	PerPage int       `json:"per_page"`
	Total   int       `json:"total"`
}
