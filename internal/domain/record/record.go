package record

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"
)

// Collection names a group of records of one entity type.
type Collection string

// Collections managed by the dashboard.
const (
	PersonalInfo Collection = "personal_info"
	AboutInfo    Collection = "about_info"
	Projects     Collection = "projects"
	Skills       Collection = "skills"
	Experience   Collection = "experience"
	Messages     Collection = "messages"
	Accounts     Collection = "accounts"
)

// SingletonID is the well-known id of the single record in a singleton collection.
const SingletonID = "main"

// All lists every collection a backend must provision.
var All = []Collection{PersonalInfo, AboutInfo, Projects, Skills, Experience, Messages, Accounts}

// Domain errors
var (
	ErrNotFound          = errors.New("record not found")
	ErrPermission        = errors.New("permission denied")
	ErrUnavailable       = errors.New("backend unavailable")
	ErrInvalidCollection = errors.New("unknown collection")
)

// Reserved keys are carried on Record itself and never inside Fields.
const (
	KeyID        = "id"
	KeyCreatedAt = "created_at"
	KeyUpdatedAt = "updated_at"
)

// Fields holds a record's payload keyed by stored field name.
type Fields map[string]any

// Record is one entity instance with a unique id within its collection.
type Record struct {
	ID        string
	Fields    Fields
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is the persistence surface shared by every backend.
type Store interface {
	Get(ctx context.Context, c Collection, id string) (Record, error)
	List(ctx context.Context, c Collection) ([]Record, error)
	Create(ctx context.Context, c Collection, f Fields) (string, error)
	Update(ctx context.Context, c Collection, id string, partial Fields) error
	Put(ctx context.Context, c Collection, id string, f Fields) error
	Delete(ctx context.Context, c Collection, id string) error
}

// Valid reports whether c is a known collection.
func (c Collection) Valid() bool {
	for _, known := range All {
		if c == known {
			return true
		}
	}
	return false
}

// IsSingleton reports whether c holds exactly one record under SingletonID.
func (c Collection) IsSingleton() bool {
	return c == PersonalInfo || c == AboutInfo
}

// Label returns the node label used by graph backends.
func (c Collection) Label() string {
	switch c {
	case PersonalInfo:
		return "PersonalInfo"
	case AboutInfo:
		return "AboutInfo"
	case Projects:
		return "Project"
	case Skills:
		return "Skill"
	case Experience:
		return "Experience"
	case Messages:
		return "Message"
	case Accounts:
		return "Account"
	}
	return ""
}

// Clean returns a copy of f without the reserved keys.
func (f Fields) Clean() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		if k == KeyID || k == KeyCreatedAt || k == KeyUpdatedAt {
			continue
		}
		out[k] = v
	}
	return out
}

// Merge returns a copy of f with every key of partial overwritten.
// The merge is shallow: nested objects are replaced, not combined.
func (f Fields) Merge(partial Fields) Fields {
	out := make(Fields, len(f)+len(partial))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range partial.Clean() {
		out[k] = v
	}
	return out
}

// NextID returns max+1 over the numeric ids in ids. Non-numeric ids are ignored.
func NextID(ids []string) string {
	highest := 0
	for _, id := range ids {
		n, err := strconv.Atoi(id)
		if err == nil && n > highest {
			highest = n
		}
	}
	return strconv.Itoa(highest + 1)
}

// SortNewestFirst orders records by creation time descending.
// Ties fall back to numeric id descending, then id descending.
func SortNewestFirst(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		ai, errA := strconv.Atoi(a.ID)
		bi, errB := strconv.Atoi(b.ID)
		if errA == nil && errB == nil {
			return ai > bi
		}
		return a.ID > b.ID
	})
}

// CheckCollection returns ErrInvalidCollection for unknown collections.
func CheckCollection(c Collection) error {
	if !c.Valid() {
		return errors.Join(ErrInvalidCollection, errors.New(string(c)))
	}
	return nil
}
