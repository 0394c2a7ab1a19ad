package project_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"portfolio/internal/domain/project"
)

// TestProject_Validate tests validation of Project.
func TestProject_Validate(t *testing.T) {
	valid := project.Project{Title: "Tracker", Category: "Web", Description: "Habit tracker"}
	tests := []struct {
		name    string
		mutate  func(p *project.Project)
		wantErr error
	}{
		{"valid", func(p *project.Project) {}, nil},
		{"empty title", func(p *project.Project) { p.Title = " " }, project.ErrEmptyTitle},
		{"long title", func(p *project.Project) { p.Title = strings.Repeat("a", project.MaxTitleLength+1) }, project.ErrTitleTooLong},
		{"empty category", func(p *project.Project) { p.Category = "" }, project.ErrEmptyCategory},
		{"empty description", func(p *project.Project) { p.Description = "" }, project.ErrEmptyDescription},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			if err := p.Validate(); err != tt.wantErr {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestSplitTags tests that tag lists are trimmed and empties dropped.
func TestSplitTags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Go, React ,, SQL ", []string{"Go", "React", "SQL"}},
		{"", nil},
		{" , ", nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, project.SplitTags(tt.in)); diff != "" {
			t.Errorf("SplitTags(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
	if got := project.JoinTags([]string{"Go", "SQL"}); got != "Go, SQL" {
		t.Errorf("JoinTags = %q", got)
	}
}
