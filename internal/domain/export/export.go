package export

import (
	"encoding/json"

	"portfolio/internal/domain/about"
	"portfolio/internal/domain/experience"
	"portfolio/internal/domain/message"
	"portfolio/internal/domain/profile"
	"portfolio/internal/domain/project"
	"portfolio/internal/domain/skill"
)

// Filename is the attachment name offered by the dashboard download.
const Filename = "portfolio-data.json"

// Document is the full content backup: one top-level key per collection.
// Singletons are null when absent; list collections are always arrays.
type Document struct {
	PersonalInfo *profile.PersonalInfo   `json:"personal_info"`
	AboutInfo    *about.AboutInfo        `json:"about_info"`
	Projects     []project.Project       `json:"projects"`
	Skills       []skill.Skill           `json:"skills"`
	Experience   []experience.Experience `json:"experience"`
	Messages     []message.Message       `json:"messages"`
}

// Normalize replaces nil lists with empty ones.
// POST: every list field is non-nil
func (d *Document) Normalize() {
	if d.Projects == nil {
		d.Projects = []project.Project{}
	}
	if d.Skills == nil {
		d.Skills = []skill.Skill{}
	}
	if d.Experience == nil {
		d.Experience = []experience.Experience{}
	}
	if d.Messages == nil {
		d.Messages = []message.Message{}
	}
}

// RecordCount returns the number of list records plus present singletons.
func (d *Document) RecordCount() int {
	n := len(d.Projects) + len(d.Skills) + len(d.Experience) + len(d.Messages)
	if d.PersonalInfo != nil {
		n++
	}
	if d.AboutInfo != nil {
		n++
	}
	return n
}

// ToJSON serializes the Document with two-space indentation.
// PRE: Normalize has been called
func (d *Document) ToJSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
