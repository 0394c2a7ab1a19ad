package forms

import (
	"net/url"
	"regexp"

	"portfolio/internal/domain/experience"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}(-\d{2})?$`)

// ExperienceToRecord maps the experience modal form. An empty end_date means
// the role is current and is stored as null.
func ExperienceToRecord(v url.Values) (experience.Experience, Errors) {
	errs := Errors{}
	e := experience.Experience{
		Position:     required(v, errs, "position", "Position"),
		Company:      required(v, errs, "company", "Company"),
		Location:     get(v, "location"),
		StartDate:    required(v, errs, "start_date", "Start date"),
		Description:  get(v, "description"),
		Technologies: normalizeList(v.Get("technologies")),
	}
	if end := get(v, "end_date"); end != "" {
		e.EndDate = &end
	}

	if e.StartDate != "" && !datePattern.MatchString(e.StartDate) {
		errs.Add("start_date", "Use YYYY-MM or YYYY-MM-DD.")
	}
	if e.EndDate != nil {
		switch {
		case !datePattern.MatchString(*e.EndDate):
			errs.Add("end_date", "Use YYYY-MM or YYYY-MM-DD.")
		case e.StartDate != "" && *e.EndDate < e.StartDate:
			errs.Add("end_date", "End date cannot be before the start date.")
		}
	}
	return e, errs
}

// ExperienceToForm is the inverse of ExperienceToRecord.
func ExperienceToForm(e experience.Experience) url.Values {
	end := ""
	if e.EndDate != nil {
		end = *e.EndDate
	}
	return url.Values{
		"position":     {e.Position},
		"company":      {e.Company},
		"location":     {e.Location},
		"start_date":   {e.StartDate},
		"end_date":     {end},
		"description":  {e.Description},
		"technologies": {e.Technologies},
	}
}
