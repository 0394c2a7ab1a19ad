package forms

import (
	"net/url"

	"portfolio/internal/domain/project"
)

// ProjectToRecord maps the project modal form.
func ProjectToRecord(v url.Values) (project.Project, Errors) {
	errs := Errors{}
	p := project.Project{
		Title:        required(v, errs, "title", "Title"),
		Category:     required(v, errs, "category", "Category"),
		Description:  required(v, errs, "description", "Description"),
		Image:        get(v, "image"),
		DemoURL:      get(v, "demo_url"),
		GithubURL:    get(v, "github_url"),
		Technologies: normalizeList(v.Get("technologies")),
	}
	if len(p.Title) > project.MaxTitleLength {
		errs.Add("title", "Title is too long.")
	}
	for _, f := range []string{"demo_url", "github_url"} {
		if s := get(v, f); s != "" {
			if u, err := url.Parse(s); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
				errs.Add(f, "Enter a full http(s) URL.")
			}
		}
	}
	return p, errs
}

// ProjectToForm is the inverse of ProjectToRecord.
func ProjectToForm(p project.Project) url.Values {
	return url.Values{
		"title":        {p.Title},
		"category":     {p.Category},
		"description":  {p.Description},
		"image":        {p.Image},
		"demo_url":     {p.DemoURL},
		"github_url":   {p.GithubURL},
		"technologies": {p.Technologies},
	}
}
