package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/lib/pq"

	"portfolio/internal/domain/record"
)

// Postgres SQLSTATE values that mean the caller is not allowed to act.
const (
	pqInsufficientPrivilege  = "42501"
	pqInvalidAuthClass       = "28"
	pqConnectionExceptionCls = "08"
	pqUniqueViolation        = "23505"
)

// ErrIDTaken means a concurrent Create claimed the same next id. Under
// READ COMMITTED two transactions can both read max(id) before either inserts.
var ErrIDTaken = errors.New("id already taken by a concurrent insert")

// mapErr classifies a driver error onto the record sentinels, keeping the
// driver text so the dashboard can show it.
func mapErr(op string, where string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, record.ErrNotFound) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == pqInsufficientPrivilege, pqErr.Code.Class() == pqInvalidAuthClass:
			return fmt.Errorf("%s %s: %w: %w", op, where, record.ErrPermission, err)
		case pqErr.Code.Class() == pqConnectionExceptionCls:
			return fmt.Errorf("%s %s: %w: %w", op, where, record.ErrUnavailable, err)
		case pqErr.Code == pqUniqueViolation:
			return fmt.Errorf("%s %s: %w: %w", op, where, ErrIDTaken, err)
		}
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.As(err, &netErr) {
		return fmt.Errorf("%s %s: %w: %w", op, where, record.ErrUnavailable, err)
	}
	return fmt.Errorf("%s %s: %w", op, where, err)
}
