package project

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxTitleLength = 120
)

// Domain errors
var (
	ErrEmptyTitle       = errors.New("title is required")
	ErrTitleTooLong     = errors.New("title cannot exceed 120 characters")
	ErrEmptyCategory    = errors.New("category is required")
	ErrEmptyDescription = errors.New("description is required")
)

// Project is a portfolio showcase entry.
type Project struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	Image        string    `json:"image"`
	DemoURL      string    `json:"demo_url"`
	GithubURL    string    `json:"github_url"`
	Technologies string    `json:"technologies"` // comma-joined
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate checks if the Project has valid data.
// PRE: Project struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrEmptyTitle
	}
	if len(p.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if strings.TrimSpace(p.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(p.Description) == "" {
		return ErrEmptyDescription
	}
	return nil
}

// Tags splits the technology list into trimmed, non-empty tags.
// INVARIANT: Project fields are not mutated
func (p *Project) Tags() []string {
	return SplitTags(p.Technologies)
}

// SplitTags splits a comma-separated list, trimming whitespace and dropping empties.
func SplitTags(s string) []string {
	var tags []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// JoinTags is the inverse of SplitTags.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
