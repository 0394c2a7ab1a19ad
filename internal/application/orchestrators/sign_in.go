package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"portfolio/internal/domain/account"
)

// AccountStore is the account persistence needed by sign-in and bootstrap.
type AccountStore interface {
	List(ctx context.Context) ([]account.Account, error)
	Create(ctx context.Context, a account.Account) (string, error)
	Put(ctx context.Context, id string, a account.Account) error
}

// SignInErrorKind is the closed set of sign-in failures shown to the user.
type SignInErrorKind int

const (
	SignInInvalidInput SignInErrorKind = iota + 1
	SignInUserNotFound
	SignInWrongPassword
	SignInTooManyRequests
	SignInUserDisabled
	SignInUnavailable
)

func (k SignInErrorKind) String() string {
	switch k {
	case SignInInvalidInput:
		return "invalid_input"
	case SignInUserNotFound:
		return "user_not_found"
	case SignInWrongPassword:
		return "wrong_password"
	case SignInTooManyRequests:
		return "too_many_requests"
	case SignInUserDisabled:
		return "user_disabled"
	case SignInUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// SignInError carries the failure kind and, for Unavailable, the backend cause.
type SignInError struct {
	Kind SignInErrorKind
	Err  error
}

func (e *SignInError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sign in: %s: %v", e.Kind, e.Err)
	}
	return "sign in: " + e.Kind.String()
}

func (e *SignInError) Unwrap() error {
	return e.Err
}

// SignInInput carries the submitted credentials.
type SignInInput struct {
	Email    string
	Password string
}

// SignInResult identifies the signed-in account.
type SignInResult struct {
	AccountID string
	Email     string
}

// SignInDeps holds dependencies for SignIn.
type SignInDeps struct {
	Accounts AccountStore
	Now      func() time.Time
}

// findAccount returns the account whose normalized email matches.
func findAccount(ctx context.Context, store AccountStore, email string) (account.Account, bool, error) {
	all, err := store.List(ctx)
	if err != nil {
		return account.Account{}, false, err
	}
	want := account.NormalizeEmail(email)
	for _, a := range all {
		if account.NormalizeEmail(a.Email) == want {
			return a, true, nil
		}
	}
	return account.Account{}, false, nil
}

// ExecuteSignIn checks credentials against the accounts collection.
// PRE: none; empty input yields SignInInvalidInput
// POST: on success the failed-login counter is cleared; on a wrong password it is incremented
// INVARIANT: every failure is a *SignInError
func ExecuteSignIn(ctx context.Context, input SignInInput, deps SignInDeps) (SignInResult, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return SignInResult{}, &SignInError{Kind: SignInInvalidInput}
	}

	acct, ok, err := findAccount(ctx, deps.Accounts, email)
	if err != nil {
		slog.Error("auth_event", "event", "login_failed", "email", email, "reason", "store_error", "error", err)
		return SignInResult{}, &SignInError{Kind: SignInUnavailable, Err: err}
	}
	if !ok {
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "not_found")
		return SignInResult{}, &SignInError{Kind: SignInUserNotFound}
	}
	if acct.Disabled {
		slog.Info("auth_event", "event", "login_blocked", "email", email, "reason", "disabled")
		return SignInResult{}, &SignInError{Kind: SignInUserDisabled}
	}

	now := deps.Now()
	if acct.IsLocked(now) {
		slog.Info("auth_event", "event", "login_blocked", "email", email, "reason", "locked")
		return SignInResult{}, &SignInError{Kind: SignInTooManyRequests}
	}

	lapsed := acct.ClearExpiredLock(now)

	if err := acct.CheckPassword(input.Password); err != nil {
		acct.RecordFailedLogin(now)
		if err := deps.Accounts.Put(ctx, acct.ID, acct); err != nil {
			slog.Warn("auth_event", "event", "failed_login_not_recorded", "email", email, "error", err)
		}
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "wrong_password", "failed_logins", acct.FailedLogins)
		return SignInResult{}, &SignInError{Kind: SignInWrongPassword}
	}

	if lapsed || acct.FailedLogins > 0 || !acct.LockedUntil.IsZero() {
		acct.ResetFailedLogins()
		if err := deps.Accounts.Put(ctx, acct.ID, acct); err != nil {
			slog.Warn("auth_event", "event", "failed_login_reset_not_saved", "email", email, "error", err)
		}
	}

	slog.Info("auth_event", "event", "login_success", "email", acct.Email)
	return SignInResult{AccountID: acct.ID, Email: acct.Email}, nil
}
