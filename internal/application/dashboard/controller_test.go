package dashboard

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"portfolio/internal/adapters/storage/filestore"
	"portfolio/internal/domain/message"
	"portfolio/internal/domain/project"
	"portfolio/internal/domain/record"
	"portfolio/internal/domain/skill"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newStore(t *testing.T) record.Store {
	t.Helper()
	s, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	tick := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return s.WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	})
}

// flakyStore fails writes with a backend error and counts deletes.
type flakyStore struct {
	record.Store
	failWrites bool
	deletes    atomic.Int32
}

var errDenied = errors.New("Missing or insufficient permissions.")

func (f *flakyStore) Create(ctx context.Context, c record.Collection, fields record.Fields) (string, error) {
	if f.failWrites {
		return "", errors.Join(record.ErrPermission, errDenied)
	}
	return f.Store.Create(ctx, c, fields)
}

func (f *flakyStore) Delete(ctx context.Context, c record.Collection, id string) error {
	f.deletes.Add(1)
	if f.failWrites {
		return errors.Join(record.ErrPermission, errDenied)
	}
	return f.Store.Delete(ctx, c, id)
}

func skillForm(name, category, proficiency string) url.Values {
	return url.Values{"name": {name}, "category": {category}, "proficiency": {proficiency}}
}

// TestSubmit_CreateSkillRust tests the Rust skill scenario end to end.
func TestSubmit_CreateSkillRust(t *testing.T) {
	ctx := context.Background()
	c := New(newStore(t))

	p, err := c.Submit(ctx, Skills, "", skillForm("Rust", "Programming", "90"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Modal != nil {
		t.Errorf("modal should close on success, got %+v", p.Modal)
	}
	if p.Notice == nil || p.Notice.Kind != NoticeSuccess || p.Notice.Text != "Skill added successfully!" {
		t.Errorf("notice = %+v", p.Notice)
	}
	if p.Summary.Skills != 1 {
		t.Errorf("summary skills = %d, want 1", p.Summary.Skills)
	}

	items, ok := p.Items.([]skill.Skill)
	if !ok || len(items) != 1 {
		t.Fatalf("items = %#v", p.Items)
	}
	got := items[0]
	if got.ID == "" || got.Name != "Rust" || got.Category != "Programming" || got.Proficiency != 90 {
		t.Errorf("listed skill = %+v", got)
	}
}

// TestSubmit_ValidationKeepsModalOpen tests inline errors with no write.
func TestSubmit_ValidationKeepsModalOpen(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	c := New(store)

	form := url.Values{"title": {""}, "category": {"Web"}, "description": {"x"}}
	p, err := c.Submit(ctx, Projects, "", form)
	if err != nil {
		t.Fatal(err)
	}
	if p.Modal == nil || p.Modal.Errors["title"] == "" {
		t.Fatalf("expected modal with title error, got %+v", p.Modal)
	}
	if p.Modal.Form.Get("category") != "Web" {
		t.Error("form values should be preserved")
	}
	recs, _ := store.List(ctx, record.Projects)
	if len(recs) != 0 {
		t.Errorf("validation failure wrote %d records", len(recs))
	}
}

// TestSubmit_BackendFailureAppendsRawMessage tests the error notification text.
func TestSubmit_BackendFailureAppendsRawMessage(t *testing.T) {
	store := &flakyStore{Store: newStore(t), failWrites: true}
	c := New(store)

	form := url.Values{"title": {"Tracker"}, "category": {"Web"}, "description": {"Habits"}}
	p, err := c.Submit(context.Background(), Projects, "", form)
	if err != nil {
		t.Fatal(err)
	}
	if p.Notice == nil || p.Notice.Kind != NoticeError {
		t.Fatalf("notice = %+v", p.Notice)
	}
	if !strings.HasPrefix(p.Notice.Text, "Error saving project: ") || !strings.Contains(p.Notice.Text, errDenied.Error()) {
		t.Errorf("notice text = %q", p.Notice.Text)
	}
	if p.Modal == nil {
		t.Error("modal should stay open after a failed save")
	}
}

// TestSubmit_UpdateKeepsUnspecifiedFields tests edit mode through the modal.
func TestSubmit_UpdateKeepsUnspecifiedFields(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	c := New(store)

	id, err := store.Create(ctx, record.Projects, record.Fields{
		"title": "Tracker", "category": "Web", "description": "Habits", "featured": true,
	})
	if err != nil {
		t.Fatal(err)
	}

	p, err := c.OpenModal(ctx, Projects, id)
	if err != nil {
		t.Fatal(err)
	}
	if p.Modal == nil || p.Modal.Title != "Edit Project" || p.Modal.Form.Get("title") != "Tracker" {
		t.Fatalf("modal = %+v", p.Modal)
	}

	form := p.Modal.Form
	form.Set("title", "Habit Tracker")
	p, err = c.Submit(ctx, Projects, id, form)
	if err != nil {
		t.Fatal(err)
	}
	if p.Notice == nil || p.Notice.Text != "Project updated successfully!" {
		t.Errorf("notice = %+v", p.Notice)
	}

	rec, err := store.Get(ctx, record.Projects, id)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Fields["title"] != "Habit Tracker" || rec.Fields["featured"] != true {
		t.Errorf("fields = %v", rec.Fields)
	}
}

// TestOpenModal_CreateMode tests the blank add dialog.
func TestOpenModal_CreateMode(t *testing.T) {
	p, err := New(newStore(t)).OpenModal(context.Background(), Experience, "")
	if err != nil {
		t.Fatal(err)
	}
	if p.Modal == nil || p.Modal.EditID != "" || p.Modal.Title != "Add New Experience" || len(p.Modal.Form) != 0 {
		t.Errorf("modal = %+v", p.Modal)
	}
}

// TestOpenModal_Unsupported tests sections without a modal.
func TestOpenModal_Unsupported(t *testing.T) {
	c := New(newStore(t))
	for _, s := range []Section{Overview, Profile, Messages} {
		if _, err := c.OpenModal(context.Background(), s, ""); !errors.Is(err, ErrUnsupported) {
			t.Errorf("%s: err = %v, want ErrUnsupported", s, err)
		}
	}
	if _, err := c.Show(context.Background(), "settings"); !errors.Is(err, ErrUnknownSection) {
		t.Errorf("err = %v, want ErrUnknownSection", err)
	}
}

// TestDelete_RequiresConfirmation tests that an unconfirmed delete does nothing.
func TestDelete_RequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: newStore(t)}
	c := New(store)
	id, err := store.Create(ctx, record.Projects, record.Fields{"title": "Tracker"})
	if err != nil {
		t.Fatal(err)
	}

	p, err := c.Delete(ctx, Projects, id, false)
	if err != nil {
		t.Fatal(err)
	}
	if p.Confirm == nil || p.Confirm.Prompt != "Are you sure you want to delete this project?" {
		t.Errorf("confirm = %+v", p.Confirm)
	}
	if store.deletes.Load() != 0 {
		t.Fatal("unconfirmed delete reached the store")
	}

	p, err = c.Delete(ctx, Projects, id, true)
	if err != nil {
		t.Fatal(err)
	}
	if p.Notice == nil || p.Notice.Text != "Project deleted successfully!" {
		t.Errorf("notice = %+v", p.Notice)
	}
	if items := p.Items.([]project.Project); len(items) != 0 {
		t.Errorf("items after delete = %+v", items)
	}
	if _, err := store.Get(ctx, record.Projects, id); !errors.Is(err, record.ErrNotFound) {
		t.Errorf("get after delete: %v", err)
	}
}

// TestDelete_Missing tests the failure notice for a missing record.
func TestDelete_Missing(t *testing.T) {
	p, err := New(newStore(t)).Delete(context.Background(), Skills, "42", true)
	if err != nil {
		t.Fatal(err)
	}
	if p.Notice == nil || p.Notice.Kind != NoticeError || !strings.HasPrefix(p.Notice.Text, "Error deleting skill: ") {
		t.Errorf("notice = %+v", p.Notice)
	}
}

// TestToggleRead_Twice tests that two toggles restore the state and the unread counter follows.
func TestToggleRead_Twice(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	c := New(store)
	id, err := store.Create(ctx, record.Messages, record.Fields{"name": "Ada", "email": "ada@example.com", "message": "hi", "read": false})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Create(ctx, record.Messages, record.Fields{"name": "Bo", "email": "bo@example.com", "message": "yo", "read": false}); err != nil {
		t.Fatal(err)
	}

	p, err := c.ToggleRead(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if p.Notice.Text != "Message marked as read" || p.Summary.Unread != 1 {
		t.Errorf("after first toggle: notice=%q unread=%d", p.Notice.Text, p.Summary.Unread)
	}

	p, err = c.ToggleRead(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if p.Notice.Text != "Message marked as unread" || p.Summary.Unread != 2 {
		t.Errorf("after second toggle: notice=%q unread=%d", p.Notice.Text, p.Summary.Unread)
	}

	msgs := p.Items.([]message.Message)
	if diff := cmp.Diff(2, message.CountUnread(msgs)); diff != "" {
		t.Errorf("unread (-want +got):\n%s", diff)
	}
}

// TestSubmit_SingletonUsesPut tests that profile saves replace the singleton.
func TestSubmit_SingletonUsesPut(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	c := New(store)

	p, err := c.Show(ctx, Profile)
	if err != nil {
		t.Fatal(err)
	}
	if p.Notice != nil || p.Form == nil {
		t.Fatalf("missing profile should render a blank form, got notice %+v", p.Notice)
	}

	form := url.Values{"fullName": {"Jordan Lee"}, "jobTitle": {"Engineer"}, "email": {"j@example.com"}}
	p, err = c.Submit(ctx, Profile, "", form)
	if err != nil {
		t.Fatal(err)
	}
	if p.Notice == nil || p.Notice.Text != "Profile updated successfully!" {
		t.Errorf("notice = %+v", p.Notice)
	}
	if p.Form.Get("fullName") != "Jordan Lee" {
		t.Errorf("reloaded form = %v", p.Form)
	}
	rec, err := store.Get(ctx, record.PersonalInfo, record.SingletonID)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Fields["name"] != "Jordan Lee" || rec.Fields["title"] != "Engineer" {
		t.Errorf("stored = %v", rec.Fields)
	}
}

// TestShow_Overview tests the concurrent summary load.
func TestShow_Overview(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	for _, c := range []record.Collection{record.Projects, record.Projects, record.Experience} {
		if _, err := store.Create(ctx, c, record.Fields{"title": "x"}); err != nil {
			t.Fatal(err)
		}
	}
	p, err := New(store).Show(ctx, Overview)
	if err != nil {
		t.Fatal(err)
	}
	if p.Summary.Projects != 2 || p.Summary.Experience != 1 || p.Items != nil {
		t.Errorf("overview = %+v", p)
	}
}
