package profile

import (
	"errors"
	"strings"
	"time"
)

// Domain errors
var (
	ErrEmptyName    = errors.New("name is required")
	ErrInvalidEmail = errors.New("email must contain '@'")
)

// PersonalInfo is the site owner's contact card. There is exactly one.
type PersonalInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Location  string    `json:"location"`
	Bio       string    `json:"bio"`
	Github    string    `json:"github"`
	Linkedin  string    `json:"linkedin"`
	Twitter   string    `json:"twitter"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks if the PersonalInfo has valid data.
// PRE: PersonalInfo struct is populated
// POST: Returns nil if valid, error otherwise
func (p *PersonalInfo) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		return ErrInvalidEmail
	}
	return nil
}
