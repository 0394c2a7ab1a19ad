package experience_test

import (
	"testing"

	"portfolio/internal/domain/experience"
)

func ptr(s string) *string { return &s }

// TestExperience_Validate tests required fields and date ordering.
func TestExperience_Validate(t *testing.T) {
	tests := []struct {
		name    string
		exp     experience.Experience
		wantErr error
	}{
		{"current role", experience.Experience{Position: "Engineer", Company: "Acme", StartDate: "2021-03"}, nil},
		{"finished role", experience.Experience{Position: "Engineer", Company: "Acme", StartDate: "2019-01", EndDate: ptr("2021-02")}, nil},
		{"end before start", experience.Experience{Position: "Engineer", Company: "Acme", StartDate: "2021-03", EndDate: ptr("2020-12")}, experience.ErrEndBeforeStart},
		{"no position", experience.Experience{Company: "Acme", StartDate: "2021-03"}, experience.ErrEmptyPosition},
		{"no company", experience.Experience{Position: "Engineer", StartDate: "2021-03"}, experience.ErrEmptyCompany},
		{"no start", experience.Experience{Position: "Engineer", Company: "Acme"}, experience.ErrEmptyStartDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.exp.Validate(); err != tt.wantErr {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestExperience_Period tests the display range for current and past roles.
func TestExperience_Period(t *testing.T) {
	cur := experience.Experience{StartDate: "2021-03"}
	if !cur.IsCurrent() || cur.Period() != "2021-03 - Present" {
		t.Errorf("current Period() = %q", cur.Period())
	}
	past := experience.Experience{StartDate: "2019-01", EndDate: ptr("2021-02")}
	if past.IsCurrent() || past.Period() != "2019-01 - 2021-02" {
		t.Errorf("past Period() = %q", past.Period())
	}
}
