package about

import (
	"errors"
	"time"
)

// CategoryKeys are the skill-category groups shown on the about page, in display order.
var CategoryKeys = []string{"aiml", "development", "cloud"}

// ErrEmptyDescription is returned when the about text is blank.
var ErrEmptyDescription = errors.New("description is required")

// Stats are free-form counters. Values are stored with their display suffix ("50+", "98%").
type Stats struct {
	Projects     string `json:"projects"`
	Experience   string `json:"experience"`
	Technologies string `json:"technologies"`
	Satisfaction string `json:"satisfaction"`
}

// Category groups skill tags under a title.
type Category struct {
	Key   string   `json:"key"`
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

// Resume points at a downloadable CV.
type Resume struct {
	Link string `json:"link"`
	Text string `json:"text"`
}

// AboutInfo is the singleton "about me" section.
type AboutInfo struct {
	ID              string     `json:"id"`
	Description     string     `json:"description"`
	Stats           Stats      `json:"stats"`
	SkillCategories []Category `json:"skill_categories"`
	Resume          Resume     `json:"resume"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Validate checks if the AboutInfo has valid data.
func (a *AboutInfo) Validate() error {
	if a.Description == "" {
		return ErrEmptyDescription
	}
	return nil
}

// Category returns the category stored under key, if any.
func (a *AboutInfo) Category(key string) (Category, bool) {
	for _, c := range a.SkillCategories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}
