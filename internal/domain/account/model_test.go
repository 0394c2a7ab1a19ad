package account_test

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"portfolio/internal/domain/account"
)

func init() {
	account.PasswordCost = bcrypt.MinCost
}

// TestAccount_Validate tests validation of Account.
func TestAccount_Validate(t *testing.T) {
	tests := []struct {
		name    string
		account account.Account
		wantErr error
	}{
		{"valid", account.Account{Email: "admin@example.com"}, nil},
		{"empty email", account.Account{Email: "  "}, account.ErrEmptyEmail},
		{"missing at", account.Account{Email: "admin.example.com"}, account.ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()
			if err != tt.wantErr {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestAccount_SetPassword tests the SetPassword method.
func TestAccount_SetPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid password", "securepassword123", false},
		{"exactly 12 chars", "123456789012", false},
		{"empty password", "", true},
		{"11 chars", "12345678901", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &account.Account{}
			err := a.SetPassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("SetPassword() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && a.PasswordHash == tt.password {
				t.Error("SetPassword() should hash the password, not store plaintext")
			}
		})
	}
}

// TestAccount_CheckPassword tests the CheckPassword method.
func TestAccount_CheckPassword(t *testing.T) {
	a := &account.Account{}
	if err := a.SetPassword("securepassword123"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	if err := a.CheckPassword("securepassword123"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := a.CheckPassword("wrongpassword123"); err != account.ErrWrongPassword {
		t.Errorf("wrong password error = %v, want ErrWrongPassword", err)
	}
	if err := (&account.Account{}).CheckPassword("anything12345"); err == nil {
		t.Error("CheckPassword() should fail when no hash is set")
	}
}

// TestAccount_Lockout tests RecordFailedLogin, IsLocked and ResetFailedLogins.
func TestAccount_Lockout(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	a := &account.Account{}

	for i := 0; i < account.MaxFailedLogins-1; i++ {
		a.RecordFailedLogin(now)
		if a.IsLocked(now) {
			t.Fatalf("account should not be locked after %d failures", i+1)
		}
	}
	a.RecordFailedLogin(now)
	if !a.IsLocked(now) {
		t.Fatal("account should be locked after 5 failures")
	}
	if a.IsLocked(now.Add(account.LockoutDuration + time.Second)) {
		t.Error("lock should expire after LockoutDuration")
	}

	a.ResetFailedLogins()
	if a.FailedLogins != 0 || a.IsLocked(now) {
		t.Error("ResetFailedLogins should clear counter and lock")
	}
}

// TestAccount_ClearExpiredLock tests that a lapsed lock restarts the count.
func TestAccount_ClearExpiredLock(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	a := &account.Account{}
	for i := 0; i < account.MaxFailedLogins; i++ {
		a.RecordFailedLogin(now)
	}

	if a.ClearExpiredLock(now) {
		t.Fatal("an active lock must not be cleared")
	}
	later := now.Add(account.LockoutDuration + time.Second)
	if !a.ClearExpiredLock(later) {
		t.Fatal("a lapsed lock should be cleared")
	}
	a.RecordFailedLogin(later)
	if a.FailedLogins != 1 || a.IsLocked(later) {
		t.Errorf("after expiry one failure: failed_logins=%d locked=%v", a.FailedLogins, a.IsLocked(later))
	}
	if a.ClearExpiredLock(later) {
		t.Error("nothing to clear without a lock")
	}
}
