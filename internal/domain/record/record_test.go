package record_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"portfolio/internal/domain/record"
)

// TestNextID tests max-plus-one id allocation.
func TestNextID(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want string
	}{
		{"empty collection", nil, "1"},
		{"sequential", []string{"1", "2", "3"}, "4"},
		{"gap after delete", []string{"1", "7"}, "8"},
		{"non-numeric ignored", []string{"main", "2"}, "3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := record.NextID(tt.ids); got != tt.want {
				t.Errorf("NextID(%v) = %q, want %q", tt.ids, got, tt.want)
			}
		})
	}
}

// TestSortNewestFirst tests the listing order shared by all backends.
func TestSortNewestFirst(t *testing.T) {
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	recs := []record.Record{
		{ID: "1", CreatedAt: base},
		{ID: "3", CreatedAt: base.Add(time.Hour)},
		{ID: "2", CreatedAt: base},
		{ID: "10", CreatedAt: base},
	}
	record.SortNewestFirst(recs)

	var got []string
	for _, r := range recs {
		got = append(got, r.ID)
	}
	want := []string{"3", "10", "2", "1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

// TestFields_Merge tests that partial updates leave unspecified fields unchanged.
func TestFields_Merge(t *testing.T) {
	orig := record.Fields{"name": "Go", "proficiency": 80}
	merged := orig.Merge(record.Fields{"proficiency": 95, "id": "ignored"})

	want := record.Fields{"name": "Go", "proficiency": 95}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Errorf("Merge mismatch (-want +got):\n%s", diff)
	}
	if orig["proficiency"] != 80 {
		t.Error("Merge must not mutate the receiver")
	}
}

// TestCollection_Valid tests collection name checks.
func TestCollection_Valid(t *testing.T) {
	if !record.Projects.Valid() {
		t.Error("projects should be valid")
	}
	if record.Collection("users").Valid() {
		t.Error("users should not be valid")
	}
	if err := record.CheckCollection("users"); !errors.Is(err, record.ErrInvalidCollection) {
		t.Errorf("CheckCollection error = %v, want ErrInvalidCollection", err)
	}
	if !record.PersonalInfo.IsSingleton() || record.Projects.IsSingleton() {
		t.Error("singleton classification is wrong")
	}
}
