package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"portfolio/internal/domain/account"
)

// AccountDeps holds dependencies for admin bootstrap and password reset.
type AccountDeps struct {
	Accounts AccountStore
	Now      func() time.Time
}

// ErrNoAdminPassword is returned when bootstrap has no password to use.
var ErrNoAdminPassword = errors.New("no admin password configured")

// ExecuteSeedAdmin creates the first admin account when none exist.
// PRE: store is reachable
// POST: at least one account exists, or ErrNoAdminPassword when password is empty
func ExecuteSeedAdmin(ctx context.Context, deps AccountDeps, email, password string) error {
	all, err := deps.Accounts.List(ctx)
	if err != nil {
		return err
	}
	if len(all) > 0 {
		return nil
	}
	if password == "" {
		return ErrNoAdminPassword
	}
	if _, err := ExecuteSetPassword(ctx, deps, email, password); err != nil {
		return err
	}
	slog.Info("auth_event", "event", "admin_seeded", "email", email)
	return nil
}

// ExecuteSetPassword sets the password of the account with email, creating it if absent.
// It also clears any lockout.
// PRE: password >= account.MinPasswordLen
// POST: returns true when a new account was created
func ExecuteSetPassword(ctx context.Context, deps AccountDeps, email, password string) (bool, error) {
	email = strings.TrimSpace(email)
	acct, found, err := findAccount(ctx, deps.Accounts, email)
	if err != nil {
		return false, err
	}
	now := deps.Now()
	if !found {
		acct = account.Account{Email: email, CreatedAt: now}
	}
	if err := acct.Validate(); err != nil {
		return false, err
	}
	if err := acct.SetPassword(password); err != nil {
		return false, err
	}
	acct.ResetFailedLogins()
	acct.UpdatedAt = now

	if found {
		if err := deps.Accounts.Put(ctx, acct.ID, acct); err != nil {
			return false, err
		}
		slog.Info("auth_event", "event", "password_reset", "email", email)
		return false, nil
	}
	if _, err := deps.Accounts.Create(ctx, acct); err != nil {
		return false, err
	}
	slog.Info("auth_event", "event", "account_created", "email", email)
	return true, nil
}
