package models

import "time"

// Profile roles used by notification-step recipient resolution.
const (
	RoleEmployee = "employee"
	RoleEmployer = "employer"
)

// Profile is one addressable person record looked up by ID.
type Profile struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	FullName string `json:"full_name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Recipient converts a profile into a notification recipient.
func (p *Profile) Recipient() Recipient {
	return Recipient{
		UserID: p.ID,
		Email:  p.Email,
		Phone:  p.Phone,
		Name:   p.FullName,
	}
}

// OnboardingTask is one task row bulk-inserted by the data_update step.
type OnboardingTask struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employee_id" validate:"required"`
	Title      string     `json:"title"       validate:"required"`
	Status     string     `json:"status"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Document is one contract document whose status the data_update step flips.
type Document struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}
