package dashboard

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"portfolio/internal/adapters/storage"
	"portfolio/internal/application/forms"
	"portfolio/internal/domain/about"
	"portfolio/internal/domain/experience"
	"portfolio/internal/domain/message"
	"portfolio/internal/domain/profile"
	"portfolio/internal/domain/project"
	"portfolio/internal/domain/record"
	"portfolio/internal/domain/skill"
)

// Section identifies one dashboard panel.
type Section string

const (
	Overview   Section = "overview"
	Profile    Section = "profile"
	About      Section = "about"
	Projects   Section = "projects"
	Skills     Section = "skills"
	Experience Section = "experience"
	Messages   Section = "messages"
)

// Sections lists the panels in navigation order.
var Sections = []Section{Overview, Profile, About, Projects, Skills, Experience, Messages}

// Controller errors
var (
	ErrUnknownSection = errors.New("unknown section")
	ErrUnsupported    = errors.New("operation not supported for this section")
)

// binding ties a section to its collection and Data Mapper functions.
type binding interface {
	collection() record.Collection
	title() string
	noun() string
	editable() bool
	list(ctx context.Context, s record.Store) (any, error)
	form(ctx context.Context, s record.Store, id string) (url.Values, error)
	fields(v url.Values) (record.Fields, forms.Errors, error)
}

type entity[T any] struct {
	c        record.Collection
	label    string
	toRecord func(url.Values) (T, forms.Errors)
	toForm   func(T) url.Values
}

func (e entity[T]) collection() record.Collection { return e.c }
func (e entity[T]) title() string                 { return e.label }
func (e entity[T]) noun() string                  { return strings.ToLower(e.label) }
func (e entity[T]) editable() bool                { return e.toRecord != nil }

func (e entity[T]) repo(s record.Store) *storage.Repository[T] {
	return storage.NewRepository[T](s, e.c)
}

func (e entity[T]) list(ctx context.Context, s record.Store) (any, error) {
	items, err := e.repo(s).List(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (e entity[T]) form(ctx context.Context, s record.Store, id string) (url.Values, error) {
	v, err := e.repo(s).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.toForm(v), nil
}

func (e entity[T]) fields(v url.Values) (record.Fields, forms.Errors, error) {
	ent, errs := e.toRecord(v)
	if errs.Any() {
		return nil, errs, nil
	}
	f, err := storage.ToFields(ent)
	return f, nil, err
}

var bindings = map[Section]binding{
	Profile:    entity[profile.PersonalInfo]{c: record.PersonalInfo, label: "Profile", toRecord: forms.ProfileToRecord, toForm: forms.ProfileToForm},
	About:      entity[about.AboutInfo]{c: record.AboutInfo, label: "About information", toRecord: forms.AboutToRecord, toForm: forms.AboutToForm},
	Projects:   entity[project.Project]{c: record.Projects, label: "Project", toRecord: forms.ProjectToRecord, toForm: forms.ProjectToForm},
	Skills:     entity[skill.Skill]{c: record.Skills, label: "Skill", toRecord: forms.SkillToRecord, toForm: forms.SkillToForm},
	Experience: entity[experience.Experience]{c: record.Experience, label: "Experience", toRecord: forms.ExperienceToRecord, toForm: forms.ExperienceToForm},
	Messages:   entity[message.Message]{c: record.Messages, label: "Message"},
}

// Valid reports whether s names a dashboard panel.
func (s Section) Valid() bool {
	return s == Overview || bindings[s] != nil
}

// Title is the heading shown for s.
func (s Section) Title() string {
	switch s {
	case Overview:
		return "Overview"
	case Profile:
		return "Personal Information"
	case About:
		return "About"
	case Projects:
		return "Projects"
	case Skills:
		return "Skills"
	case Experience:
		return "Experience"
	case Messages:
		return "Messages"
	}
	return ""
}

// Collection returns the collection backing s, or "" for the overview.
func (s Section) Collection() record.Collection {
	if b := bindings[s]; b != nil {
		return b.collection()
	}
	return ""
}

// SectionFor returns the section that manages collection c.
func SectionFor(c record.Collection) (Section, bool) {
	for s, b := range bindings {
		if b.collection() == c {
			return s, true
		}
	}
	return "", false
}
