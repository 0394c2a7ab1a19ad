package profile_test

import (
	"testing"

	"portfolio/internal/domain/profile"
)

func TestPersonalInfo_Validate(t *testing.T) {
	tests := []struct {
		name    string
		info    profile.PersonalInfo
		wantErr error
	}{
		{"valid", profile.PersonalInfo{Name: "Ada Lovelace", Email: "ada@example.com"}, nil},
		{"email optional", profile.PersonalInfo{Name: "Ada Lovelace"}, nil},
		{"empty name", profile.PersonalInfo{Email: "ada@example.com"}, profile.ErrEmptyName},
		{"bad email", profile.PersonalInfo{Name: "Ada", Email: "ada"}, profile.ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.info.Validate(); err != tt.wantErr {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
