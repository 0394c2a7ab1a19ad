package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"portfolio/internal/adapters/storage"
	"portfolio/internal/adapters/storage/filestore"
	"portfolio/internal/domain/account"
	"portfolio/internal/domain/record"
)

func init() {
	account.PasswordCost = bcrypt.MinCost
}

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

// newTestStore returns a file-backed store whose clock advances one second per write.
func newTestStore(t *testing.T) record.Store {
	t.Helper()
	s, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("filestore.New: %v", err)
	}
	tick := fixedTime
	return s.WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	})
}

func accountRepo(s record.Store) *storage.Repository[account.Account] {
	return storage.NewRepository[account.Account](s, record.Accounts)
}

// failingStore fails every call with ErrUnavailable.
type failingStore struct{}

var errBackendDown = errors.New("dial tcp 127.0.0.1:5432: connection refused")

func (failingStore) fail() error {
	return errors.Join(record.ErrUnavailable, errBackendDown)
}

func (f failingStore) Get(context.Context, record.Collection, string) (record.Record, error) {
	return record.Record{}, f.fail()
}

func (f failingStore) List(context.Context, record.Collection) ([]record.Record, error) {
	return nil, f.fail()
}

func (f failingStore) Create(context.Context, record.Collection, record.Fields) (string, error) {
	return "", f.fail()
}

func (f failingStore) Update(context.Context, record.Collection, string, record.Fields) error {
	return f.fail()
}

func (f failingStore) Put(context.Context, record.Collection, string, record.Fields) error {
	return f.fail()
}

func (f failingStore) Delete(context.Context, record.Collection, string) error {
	return f.fail()
}
