package orchestrators

import (
	"context"
	"errors"
	"testing"
)

// TestExecuteSeedAdmin tests first-run bootstrap.
func TestExecuteSeedAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("no password", func(t *testing.T) {
		deps := AccountDeps{Accounts: accountRepo(newTestStore(t)), Now: fixedNow}
		if err := ExecuteSeedAdmin(ctx, deps, testEmail, ""); !errors.Is(err, ErrNoAdminPassword) {
			t.Errorf("err = %v, want ErrNoAdminPassword", err)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		repo := accountRepo(newTestStore(t))
		deps := AccountDeps{Accounts: repo, Now: fixedNow}
		for i := 0; i < 2; i++ {
			if err := ExecuteSeedAdmin(ctx, deps, testEmail, testPassword); err != nil {
				t.Fatalf("run %d: %v", i, err)
			}
		}
		all, err := repo.List(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(all) != 1 {
			t.Fatalf("accounts = %d, want 1", len(all))
		}
		if err := all[0].CheckPassword(testPassword); err != nil {
			t.Errorf("password not set: %v", err)
		}
	})
}

// TestExecuteSetPassword_ResetsLock tests that a password reset clears lockout.
func TestExecuteSetPassword_ResetsLock(t *testing.T) {
	ctx := context.Background()
	repo := accountRepo(newTestStore(t))
	deps := AccountDeps{Accounts: repo, Now: fixedNow}

	created, err := ExecuteSetPassword(ctx, deps, testEmail, testPassword)
	if err != nil || !created {
		t.Fatalf("create: created=%v err=%v", created, err)
	}

	all, _ := repo.List(ctx)
	acct := all[0]
	for i := 0; i < 5; i++ {
		acct.RecordFailedLogin(fixedTime)
	}
	if err := repo.Put(ctx, acct.ID, acct); err != nil {
		t.Fatal(err)
	}

	created, err = ExecuteSetPassword(ctx, deps, testEmail, "another-long-password")
	if err != nil || created {
		t.Fatalf("reset: created=%v err=%v", created, err)
	}
	all, _ = repo.List(ctx)
	if all[0].IsLocked(fixedTime) {
		t.Error("account still locked after reset")
	}
	if err := all[0].CheckPassword("another-long-password"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
}

// TestExecuteSetPassword_TooShort tests the minimum length rule.
func TestExecuteSetPassword_TooShort(t *testing.T) {
	deps := AccountDeps{Accounts: accountRepo(newTestStore(t)), Now: fixedNow}
	if _, err := ExecuteSetPassword(context.Background(), deps, testEmail, "short"); err == nil {
		t.Error("expected error for short password")
	}
}
