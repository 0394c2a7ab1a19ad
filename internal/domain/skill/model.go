package skill

import (
	"errors"
	"strings"
	"time"
)

// Proficiency bounds (percent).
const (
	MinProficiency = 0
	MaxProficiency = 100
)

// Domain errors
var (
	ErrEmptyName          = errors.New("skill name is required")
	ErrEmptyCategory      = errors.New("category is required")
	ErrInvalidProficiency = errors.New("proficiency must be between 0 and 100")
)

// Skill is one technology or competency with a self-assessed proficiency.
type Skill struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Proficiency int       `json:"proficiency"`
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks if the Skill has valid data.
// PRE: Skill struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Skill) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(s.Category) == "" {
		return ErrEmptyCategory
	}
	if s.Proficiency < MinProficiency || s.Proficiency > MaxProficiency {
		return ErrInvalidProficiency
	}
	return nil
}
