package types

import (
	"context"
	"time"
)

// UserStore is the credential-store capability. Implementations own
// the password hash; it never crosses this boundary except at create
// and credential-check time.
type UserStore interface {
	// CreateUser inserts a new user. Returns ErrDuplicateUser when the
	// email is already present; the store is unchanged in that case.
	CreateUser(ctx context.Context, u User, passwordHash string) (User, error)

	// FindByEmail returns the user and its password hash for
	// credential checks. Returns ErrUserNotFound when absent.
	FindByEmail(ctx context.Context, email string) (User, string, error)

	// FindByID returns the user record. Returns ErrUserNotFound.
	FindByID(ctx context.Context, id string) (User, error)

	// ListUsers returns all users, passwordless.
	ListUsers(ctx context.Context) ([]User, error)

	// CountUsers returns the number of stored users.
	CountUsers(ctx context.Context) (int, error)
}

// ReportStore owns all Report records. Reports are append-only; the
// doctor-notes update is the single mutation path.
type ReportStore interface {
	// AddReport appends a report.
	AddReport(ctx context.Context, r Report) error

	// ListAll returns every report.
	ListAll(ctx context.Context) ([]Report, error)

	// ListByUser returns reports submitted by the given user.
	ListByUser(ctx context.Context, userID string) ([]Report, error)

	// UpdateDoctorNotes sets the doctor-notes field of the report
	// matched by the (userID, date) composite key. Returns
	// ErrReportNotFound when no report matches. The update touches no
	// other report and is idempotent for identical notes.
	UpdateDoctorNotes(ctx context.Context, userID string, date time.Time, notes string) error
}
