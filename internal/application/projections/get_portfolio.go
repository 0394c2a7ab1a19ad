package projections

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"

	"portfolio/internal/adapters/storage"
	"portfolio/internal/domain/about"
	"portfolio/internal/domain/experience"
	"portfolio/internal/domain/profile"
	"portfolio/internal/domain/project"
	"portfolio/internal/domain/record"
	"portfolio/internal/domain/skill"
)

// SkillGroup is one category of skills on the public site.
type SkillGroup struct {
	Category string        `json:"category"`
	Skills   []skill.Skill `json:"skills"`
}

// PortfolioResult is the public read model. Messages and accounts are never included.
type PortfolioResult struct {
	Profile     *profile.PersonalInfo   `json:"personal_info"`
	About       *about.AboutInfo        `json:"about_info"`
	Projects    []project.Project       `json:"projects"`
	SkillGroups []SkillGroup            `json:"skill_groups"`
	Experience  []experience.Experience `json:"experience"`
}

// GetPortfolioDeps holds dependencies for the public portfolio projection.
type GetPortfolioDeps struct {
	Store record.Store
}

func optional[T any](ctx context.Context, s record.Store, c record.Collection) (*T, error) {
	v, err := storage.NewRepository[T](s, c).Get(ctx, record.SingletonID)
	if errors.Is(err, record.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GroupSkills groups skills by category in order of first appearance.
// Categories match case-insensitively; the first spelling seen names the group.
// INVARIANT: skills keep their relative order within a group
func GroupSkills(skills []skill.Skill) []SkillGroup {
	fold := cases.Fold()
	groups := []SkillGroup{}
	index := map[string]int{}
	for _, s := range skills {
		key := fold.String(strings.TrimSpace(s.Category))
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, SkillGroup{Category: s.Category})
		}
		groups[i].Skills = append(groups[i].Skills, s)
	}
	return groups
}

// GetPortfolio loads everything the public site shows.
// PRE: none
// POST: absent singletons are nil; lists are non-nil
func GetPortfolio(ctx context.Context, deps GetPortfolioDeps) (PortfolioResult, error) {
	var res PortfolioResult
	var skills []skill.Skill

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		res.Profile, err = optional[profile.PersonalInfo](gctx, deps.Store, record.PersonalInfo)
		return err
	})
	g.Go(func() (err error) {
		res.About, err = optional[about.AboutInfo](gctx, deps.Store, record.AboutInfo)
		return err
	})
	g.Go(func() (err error) {
		res.Projects, err = storage.NewRepository[project.Project](deps.Store, record.Projects).List(gctx)
		return err
	})
	g.Go(func() (err error) {
		skills, err = storage.NewRepository[skill.Skill](deps.Store, record.Skills).List(gctx)
		return err
	})
	g.Go(func() (err error) {
		res.Experience, err = storage.NewRepository[experience.Experience](deps.Store, record.Experience).List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return PortfolioResult{}, err
	}

	res.SkillGroups = GroupSkills(skills)
	if res.Projects == nil {
		res.Projects = []project.Project{}
	}
	if res.Experience == nil {
		res.Experience = []experience.Experience{}
	}
	return res, nil
}
