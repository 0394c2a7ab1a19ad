package projections

import (
	"context"

	"golang.org/x/sync/errgroup"

	"portfolio/internal/adapters/storage"
	"portfolio/internal/domain/message"
	"portfolio/internal/domain/record"
)

// Summary holds the overview counters.
type Summary struct {
	Projects   int `json:"projects"`
	Skills     int `json:"skills"`
	Experience int `json:"experience"`
	Messages   int `json:"messages"`
	Unread     int `json:"unread"`
}

// GetSummaryDeps holds dependencies for the summary projection.
type GetSummaryDeps struct {
	Store record.Store
}

// SummaryOf computes the counters from already-loaded lists.
func SummaryOf(projects, skills, experience int, msgs []message.Message) Summary {
	return Summary{
		Projects:   projects,
		Skills:     skills,
		Experience: experience,
		Messages:   len(msgs),
		Unread:     message.CountUnread(msgs),
	}
}

// GetSummary counts each list collection concurrently.
// PRE: none
// POST: the first backend failure is returned and the remaining loads are cancelled
func GetSummary(ctx context.Context, deps GetSummaryDeps) (Summary, error) {
	var projects, skills, experience int
	var msgs []message.Message

	g, gctx := errgroup.WithContext(ctx)
	count := func(c record.Collection, n *int) func() error {
		return func() error {
			recs, err := deps.Store.List(gctx, c)
			*n = len(recs)
			return err
		}
	}
	g.Go(count(record.Projects, &projects))
	g.Go(count(record.Skills, &skills))
	g.Go(count(record.Experience, &experience))
	g.Go(func() (err error) {
		msgs, err = storage.NewRepository[message.Message](deps.Store, record.Messages).List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return SummaryOf(projects, skills, experience, msgs), nil
}
