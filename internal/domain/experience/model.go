package experience

import (
	"errors"
	"strings"
	"time"
)

// Domain errors
var (
	ErrEmptyPosition  = errors.New("position is required")
	ErrEmptyCompany   = errors.New("company is required")
	ErrEmptyStartDate = errors.New("start date is required")
	ErrEndBeforeStart = errors.New("end date cannot be before start date")
)

// Experience is one role in the work history.
type Experience struct {
	ID           string    `json:"id"`
	Position     string    `json:"position"`
	Company      string    `json:"company"`
	Location     string    `json:"location"`
	StartDate    string    `json:"start_date"`
	EndDate      *string   `json:"end_date"` // nil means current role
	Description  string    `json:"description"`
	Technologies string    `json:"technologies"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate checks if the Experience has valid data.
// Dates are compared as strings, which orders correctly for YYYY-MM and YYYY-MM-DD.
// PRE: Experience struct is populated
// POST: Returns nil if valid, error otherwise
func (e *Experience) Validate() error {
	if strings.TrimSpace(e.Position) == "" {
		return ErrEmptyPosition
	}
	if strings.TrimSpace(e.Company) == "" {
		return ErrEmptyCompany
	}
	if strings.TrimSpace(e.StartDate) == "" {
		return ErrEmptyStartDate
	}
	if e.EndDate != nil && *e.EndDate < e.StartDate {
		return ErrEndBeforeStart
	}
	return nil
}

// IsCurrent returns true if the role has no end date.
// INVARIANT: Experience fields are not mutated
func (e *Experience) IsCurrent() bool {
	return e.EndDate == nil
}

// Period formats the tenure for display, e.g. "2021-03 - Present".
func (e *Experience) Period() string {
	end := "Present"
	if e.EndDate != nil {
		end = *e.EndDate
	}
	return e.StartDate + " - " + end
}
