package forms

import (
	"net/url"
	"strings"

	"portfolio/internal/domain/about"
)

// About stat inputs hold bare numbers; the stored values carry a display suffix.
const (
	FieldProjectsCount     = "projects_count"
	FieldYearsExperience   = "years_experience"
	FieldTechnologiesCount = "technologies_count"
	FieldSatisfactionRate  = "satisfaction_rate"
	FieldResumeLink        = "resume_link"
	FieldResumeText        = "resume_text"
)

// CategoryTitleField names the title input for a skill category.
func CategoryTitleField(key string) string { return "category_" + key + "_title" }

// CategoryTagsField names the comma-separated tags input for a skill category.
func CategoryTagsField(key string) string { return "category_" + key + "_tags" }

// AboutToRecord maps the about form, adding "+" to the count stats and "%" to
// the satisfaction rate.
func AboutToRecord(v url.Values) (about.AboutInfo, Errors) {
	errs := Errors{}
	a := about.AboutInfo{
		Description: required(v, errs, "description", "Description"),
		Stats: about.Stats{
			Projects:     withSuffix(get(v, FieldProjectsCount), "+"),
			Experience:   withSuffix(get(v, FieldYearsExperience), "+"),
			Technologies: withSuffix(get(v, FieldTechnologiesCount), "+"),
			Satisfaction: withSuffix(get(v, FieldSatisfactionRate), "%"),
		},
		Resume: about.Resume{
			Link: get(v, FieldResumeLink),
			Text: get(v, FieldResumeText),
		},
	}
	for _, key := range about.CategoryKeys {
		title := get(v, CategoryTitleField(key))
		tags := splitTags(v.Get(CategoryTagsField(key)))
		if title == "" && len(tags) == 0 {
			continue
		}
		a.SkillCategories = append(a.SkillCategories, about.Category{Key: key, Title: title, Tags: tags})
	}
	for _, f := range []string{FieldProjectsCount, FieldYearsExperience, FieldTechnologiesCount, FieldSatisfactionRate} {
		if s := withoutSuffix(withoutSuffix(get(v, f), "+"), "%"); s != "" && strings.Trim(s, "0123456789") != "" {
			errs.Add(f, "Enter a number.")
		}
	}
	return a, errs
}

// AboutToForm strips the stat suffixes and joins category tags with ", ".
func AboutToForm(a about.AboutInfo) url.Values {
	out := url.Values{
		"description":          {a.Description},
		FieldProjectsCount:     {withoutSuffix(a.Stats.Projects, "+")},
		FieldYearsExperience:   {withoutSuffix(a.Stats.Experience, "+")},
		FieldTechnologiesCount: {withoutSuffix(a.Stats.Technologies, "+")},
		FieldSatisfactionRate:  {withoutSuffix(a.Stats.Satisfaction, "%")},
		FieldResumeLink:        {a.Resume.Link},
		FieldResumeText:        {a.Resume.Text},
	}
	for _, key := range about.CategoryKeys {
		c, _ := a.Category(key)
		out.Set(CategoryTitleField(key), c.Title)
		out.Set(CategoryTagsField(key), strings.Join(c.Tags, ", "))
	}
	return out
}
