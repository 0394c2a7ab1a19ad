package forms

import (
	"net/url"
	"strconv"

	"portfolio/internal/domain/skill"
)

// DefaultSkillIcon is stored when the icon input is left blank.
const DefaultSkillIcon = "fas fa-cog"

// SkillToRecord maps the skill modal form. proficiency must be an integer 0-100.
func SkillToRecord(v url.Values) (skill.Skill, Errors) {
	errs := Errors{}
	s := skill.Skill{
		Name:        required(v, errs, "name", "Skill name"),
		Category:    required(v, errs, "category", "Category"),
		Proficiency: parsePercent(v, errs, "proficiency"),
		Icon:        get(v, "icon"),
		Description: get(v, "description"),
	}
	if s.Icon == "" {
		s.Icon = DefaultSkillIcon
	}
	return s, errs
}

// SkillToForm is the inverse of SkillToRecord.
func SkillToForm(s skill.Skill) url.Values {
	return url.Values{
		"name":        {s.Name},
		"category":    {s.Category},
		"proficiency": {strconv.Itoa(s.Proficiency)},
		"icon":        {s.Icon},
		"description": {s.Description},
	}
}
