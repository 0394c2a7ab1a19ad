package forms

import (
	"net/url"

	"portfolio/internal/domain/profile"
)

// Profile form field names that differ from the stored names.
const (
	FieldFullName = "fullName"
	FieldJobTitle = "jobTitle"
)

// ProfileToRecord maps the profile form. fullName and jobTitle are stored as name and title.
func ProfileToRecord(v url.Values) (profile.PersonalInfo, Errors) {
	errs := Errors{}
	p := profile.PersonalInfo{
		Name:     required(v, errs, FieldFullName, "Full name"),
		Title:    get(v, FieldJobTitle),
		Email:    get(v, "email"),
		Phone:    get(v, "phone"),
		Location: get(v, "location"),
		Bio:      get(v, "bio"),
		Github:   get(v, "github"),
		Linkedin: get(v, "linkedin"),
		Twitter:  get(v, "twitter"),
	}
	if p.Email != "" && !looksLikeEmail(p.Email) {
		errs.Add("email", "Enter a valid email address.")
	}
	return p, errs
}

// ProfileToForm is the inverse of ProfileToRecord.
func ProfileToForm(p profile.PersonalInfo) url.Values {
	return url.Values{
		FieldFullName: {p.Name},
		FieldJobTitle: {p.Title},
		"email":       {p.Email},
		"phone":       {p.Phone},
		"location":    {p.Location},
		"bio":         {p.Bio},
		"github":      {p.Github},
		"linkedin":    {p.Linkedin},
		"twitter":     {p.Twitter},
	}
}
