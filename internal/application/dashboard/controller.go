// Package dashboard drives the admin dashboard: which section is shown, the
// add/edit modal, delete confirmation and the notifications that follow each
// action. It owns no state between calls; the HTTP layer carries the current
// section and edit target in the URL.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"golang.org/x/sync/errgroup"

	"portfolio/internal/adapters/storage"
	"portfolio/internal/application/forms"
	"portfolio/internal/application/projections"
	"portfolio/internal/domain/message"
	"portfolio/internal/domain/record"
)

// Notice kinds
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// Notification is a dismissible banner.
type Notification struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Modal is the add/edit dialog. An empty EditID means create mode.
type Modal struct {
	Section Section
	EditID  string
	Title   string
	Form    url.Values
	Errors  forms.Errors
}

// Confirm asks the user to confirm a destructive action.
type Confirm struct {
	Section Section
	ID      string
	Prompt  string
}

// Page is everything needed to render one dashboard state.
type Page struct {
	Section Section
	Summary projections.Summary
	Items   any          // typed entity slice for list sections
	Form    url.Values   // current values for singleton sections
	Errors  forms.Errors // inline errors for singleton sections
	Modal   *Modal
	Confirm *Confirm
	Notice  *Notification
}

// Controller runs dashboard actions against a Record Store.
type Controller struct {
	store record.Store
}

// New returns a Controller backed by store.
func New(store record.Store) *Controller {
	return &Controller{store: store}
}

func success(text string) *Notification {
	return &Notification{Kind: NoticeSuccess, Text: text}
}

// failure appends the raw backend message to prefix.
func failure(prefix string, err error) *Notification {
	return &Notification{Kind: NoticeError, Text: prefix + ": " + err.Error()}
}

func lookup(s Section) (binding, error) {
	if s == Overview {
		return nil, nil
	}
	b, ok := bindings[s]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, s)
	}
	return b, nil
}

// load fetches the section data and the summary counters concurrently.
// Not-found on a singleton yields a blank form. Any other failure becomes the page notice.
func (c *Controller) load(ctx context.Context, s Section, b binding) Page {
	p := Page{Section: s}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		p.Summary, err = projections.GetSummary(gctx, projections.GetSummaryDeps{Store: c.store})
		return err
	})
	if b != nil {
		g.Go(func() (err error) {
			if b.collection().IsSingleton() {
				p.Form, err = b.form(gctx, c.store, record.SingletonID)
				if errors.Is(err, record.ErrNotFound) {
					p.Form, err = url.Values{}, nil
				}
				return err
			}
			p.Items, err = b.list(gctx, c.store)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		slog.Warn("dashboard_event", "event", "load_failed", "section", s, "error", err)
		p.Notice = failure("Error loading data", err)
	}
	return p
}

// Show loads one section.
// PRE: none
// POST: backend failures are reported in Page.Notice, never as the error
func (c *Controller) Show(ctx context.Context, s Section) (Page, error) {
	b, err := lookup(s)
	if err != nil {
		return Page{}, err
	}
	return c.load(ctx, s, b), nil
}

// OpenModal opens the add (editID empty) or edit dialog for a list section.
// In edit mode the form is populated from the stored record.
func (c *Controller) OpenModal(ctx context.Context, s Section, editID string) (Page, error) {
	b, err := lookup(s)
	if err != nil {
		return Page{}, err
	}
	if b == nil || !b.editable() || b.collection().IsSingleton() {
		return Page{}, fmt.Errorf("%w: modal on %s", ErrUnsupported, s)
	}

	p := c.load(ctx, s, b)
	m := &Modal{Section: s, Title: "Add New " + b.title(), Form: url.Values{}}
	if editID != "" {
		form, err := b.form(ctx, c.store, editID)
		if err != nil {
			p.Notice = failure("Error loading data", err)
			return p, nil
		}
		m.EditID = editID
		m.Title = "Edit " + b.title()
		m.Form = form
	}
	p.Modal = m
	return p, nil
}

// Submit saves a modal or singleton form.
// Validation errors keep the form open with inline errors and write nothing.
// Singletons are written with Put, list records with Create (empty editID) or Update.
// POST: on success the modal is closed, the section reloaded and a success notice attached;
// on backend failure the form stays open and the notice carries the raw backend text
func (c *Controller) Submit(ctx context.Context, s Section, editID string, form url.Values) (Page, error) {
	b, err := lookup(s)
	if err != nil {
		return Page{}, err
	}
	if b == nil || !b.editable() {
		return Page{}, fmt.Errorf("%w: submit on %s", ErrUnsupported, s)
	}
	singleton := b.collection().IsSingleton()

	reopen := func(p Page, errs forms.Errors) Page {
		if singleton {
			p.Form, p.Errors = form, errs
			return p
		}
		title := "Add New " + b.title()
		if editID != "" {
			title = "Edit " + b.title()
		}
		p.Modal = &Modal{Section: s, EditID: editID, Title: title, Form: form, Errors: errs}
		return p
	}

	fields, errs, err := b.fields(form)
	if errs.Any() {
		return reopen(c.load(ctx, s, b), errs), nil
	}

	verb := "updated"
	id := editID
	if err == nil {
		switch {
		case singleton:
			id = record.SingletonID
			err = c.store.Put(ctx, b.collection(), id, fields)
		case editID == "":
			verb = "added"
			id, err = c.store.Create(ctx, b.collection(), fields)
		default:
			err = c.store.Update(ctx, b.collection(), editID, fields)
		}
	}

	p := c.load(ctx, s, b)
	if err != nil {
		slog.Warn("dashboard_event", "event", "save_failed", "section", s, "id", editID, "error", err)
		p = reopen(p, nil)
		p.Notice = failure("Error saving "+b.noun(), err)
		return p, nil
	}
	slog.Info("dashboard_event", "event", "record_saved", "section", s, "id", id, "verb", verb)
	if p.Notice == nil {
		p.Notice = success(b.title() + " " + verb + " successfully!")
	}
	return p, nil
}

// Delete removes a list record once confirmed.
// PRE: s is a list section
// POST: when confirmed is false nothing is deleted and Page.Confirm is set
func (c *Controller) Delete(ctx context.Context, s Section, id string, confirmed bool) (Page, error) {
	b, err := lookup(s)
	if err != nil {
		return Page{}, err
	}
	if b == nil || b.collection().IsSingleton() {
		return Page{}, fmt.Errorf("%w: delete on %s", ErrUnsupported, s)
	}

	if !confirmed {
		p := c.load(ctx, s, b)
		p.Confirm = &Confirm{Section: s, ID: id, Prompt: "Are you sure you want to delete this " + b.noun() + "?"}
		return p, nil
	}

	err = c.store.Delete(ctx, b.collection(), id)
	p := c.load(ctx, s, b)
	if err != nil {
		slog.Warn("dashboard_event", "event", "delete_failed", "section", s, "id", id, "error", err)
		p.Notice = failure("Error deleting "+b.noun(), err)
		return p, nil
	}
	slog.Info("dashboard_event", "event", "record_deleted", "section", s, "id", id)
	if p.Notice == nil {
		p.Notice = success(b.title() + " deleted successfully!")
	}
	return p, nil
}

// ToggleRead flips a message's read state with a partial update.
// INVARIANT: toggling twice restores the original state
func (c *Controller) ToggleRead(ctx context.Context, id string) (Page, error) {
	b := bindings[Messages]
	repo := storage.NewRepository[message.Message](c.store, record.Messages)

	m, err := repo.Get(ctx, id)
	if err == nil {
		m.ToggleRead()
		err = repo.Patch(ctx, id, record.Fields{"read": m.Read})
	}

	p := c.load(ctx, Messages, b)
	if err != nil {
		slog.Warn("dashboard_event", "event", "toggle_read_failed", "id", id, "error", err)
		p.Notice = failure("Error updating message", err)
		return p, nil
	}
	state := "unread"
	if m.Read {
		state = "read"
	}
	if p.Notice == nil {
		p.Notice = success("Message marked as " + state)
	}
	return p, nil
}

// Summary recomputes the overview counters.
func (c *Controller) Summary(ctx context.Context) (projections.Summary, error) {
	return projections.GetSummary(ctx, projections.GetSummaryDeps{Store: c.store})
}

// Items loads the typed records behind a list section, for fragment rendering.
func (c *Controller) Items(ctx context.Context, s Section) (any, error) {
	b, err := lookup(s)
	if err != nil {
		return nil, err
	}
	if b == nil || b.collection().IsSingleton() {
		return nil, fmt.Errorf("%w: list on %s", ErrUnsupported, s)
	}
	return b.list(ctx, c.store)
}
