package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"medichain/internal/logging"
	"medichain/internal/types"
)

// dateFormat is the canonical on-disk encoding of a report date. The
// (user_id, date) pair is the composite key, so the encoding must be
// lossless and byte-stable; the fixed-width fraction keeps lexical
// order equal to chronological order for ORDER BY.
const dateFormat = "2006-01-02T15:04:05.000000000Z07:00"

// LocalStore implements Store on SQLite.
type LocalStore struct {
	db     *sql.DB
	mu     sync.Mutex
	dbPath string
}

// NewLocalStore opens (or creates) the SQLite database at path.
func NewLocalStore(path string) (*LocalStore, error) {
	logging.Store("initializing LocalStore at %s", path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("failed to set sqlite journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("failed to set sqlite synchronous=NORMAL: %v", err)
	}

	s := &LocalStore{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	logging.Store("LocalStore schema ready")
	return s, nil
}

// initialize creates the required tables.
func (s *LocalStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL,
		created_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS reports (
		id                  TEXT PRIMARY KEY,
		user_id             TEXT NOT NULL,
		user_name           TEXT NOT NULL,
		user_role           TEXT NOT NULL,
		symptoms            TEXT NOT NULL,
		medical_history     TEXT NOT NULL DEFAULT '',
		possible_conditions TEXT NOT NULL,
		confidence_level    TEXT NOT NULL,
		next_steps          TEXT NOT NULL,
		disclaimer          TEXT NOT NULL,
		doctor_notes        TEXT NOT NULL DEFAULT '',
		date                TEXT NOT NULL,
		UNIQUE(user_id, date)
	);
	CREATE INDEX IF NOT EXISTS idx_reports_user ON reports(user_id);

	CREATE TABLE IF NOT EXISTS meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *LocalStore) Close() error {
	return s.db.Close()
}

// --- UserStore ---

// CreateUser inserts a user; the email uniqueness constraint maps to
// ErrDuplicateUser and leaves the table unchanged.
func (s *LocalStore) CreateUser(ctx context.Context, u types.User, passwordHash string) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, passwordHash, string(u.Role))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return types.User{}, types.ErrDuplicateUser
		}
		return types.User{}, fmt.Errorf("failed to insert user: %w", err)
	}
	logging.Store("user created: id=%s role=%s", u.ID, u.Role)
	return u, nil
}

func (s *LocalStore) FindByEmail(ctx context.Context, email string) (types.User, string, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, role, password_hash FROM users WHERE email = ?`, email)

	var u types.User
	var role, hash string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, "", types.ErrUserNotFound
		}
		return types.User{}, "", fmt.Errorf("failed to query user: %w", err)
	}
	u.Role = types.Role(role)
	return u, hash, nil
}

func (s *LocalStore) FindByID(ctx context.Context, id string) (types.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, role FROM users WHERE id = ?`, id)

	var u types.User
	var role string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, types.ErrUserNotFound
		}
		return types.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	u.Role = types.Role(role)
	return u, nil
}

func (s *LocalStore) ListUsers(ctx context.Context) ([]types.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, role FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var out []types.User
	for rows.Next() {
		var u types.User
		var role string
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &role); err != nil {
			return nil, err
		}
		u.Role = types.Role(role)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *LocalStore) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// --- ReportStore ---

func (s *LocalStore) AddReport(ctx context.Context, r types.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reports
		 (id, user_id, user_name, user_role, symptoms, medical_history,
		  possible_conditions, confidence_level, next_steps, disclaimer, doctor_notes, date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), r.UserID, r.UserName, string(r.UserRole),
		r.Symptoms, r.MedicalHistory,
		r.PossibleConditions, string(r.ConfidenceLevel), r.NextSteps, r.Disclaimer,
		r.DoctorNotes, r.Date.UTC().Format(dateFormat))
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	logging.Store("report added: user=%s date=%s", r.UserID, r.Date.UTC().Format(dateFormat))
	return nil
}

const reportColumns = `user_id, user_name, user_role, symptoms, medical_history,
	possible_conditions, confidence_level, next_steps, disclaimer, doctor_notes, date`

func (s *LocalStore) scanReports(rows *sql.Rows) ([]types.Report, error) {
	var out []types.Report
	for rows.Next() {
		var r types.Report
		var role, confidence, date string
		if err := rows.Scan(&r.UserID, &r.UserName, &role, &r.Symptoms, &r.MedicalHistory,
			&r.PossibleConditions, &confidence, &r.NextSteps, &r.Disclaimer, &r.DoctorNotes, &date); err != nil {
			return nil, err
		}
		r.UserRole = types.Role(role)
		r.ConfidenceLevel = types.ConfidenceLevel(confidence)
		parsed, err := time.Parse(dateFormat, date)
		if err != nil {
			return nil, fmt.Errorf("corrupt report date %q: %w", date, err)
		}
		r.Date = parsed
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListAll returns every report, newest first.
func (s *LocalStore) ListAll(ctx context.Context) ([]types.Report, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reportColumns+` FROM reports ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()
	return s.scanReports(rows)
}

// ListByUser returns one user's reports, newest first.
func (s *LocalStore) ListByUser(ctx context.Context, userID string) ([]types.Report, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE user_id = ? ORDER BY date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()
	return s.scanReports(rows)
}

// UpdateDoctorNotes is the single mutation path in the data model: a
// one-statement UPDATE keyed on the composite key, so concurrent
// writers cannot interleave a read-modify-write.
func (s *LocalStore) UpdateDoctorNotes(ctx context.Context, userID string, date time.Time, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE reports SET doctor_notes = ? WHERE user_id = ? AND date = ?`,
		notes, userID, date.UTC().Format(dateFormat))
	if err != nil {
		return fmt.Errorf("failed to update doctor notes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return types.ErrReportNotFound
	}
	logging.Store("doctor notes updated: user=%s date=%s", userID, date.UTC().Format(dateFormat))
	return nil
}

// --- seeding bookkeeping ---

func (s *LocalStore) Initialized(ctx context.Context) (bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'initialized'`).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return value == "true", nil
}

func (s *LocalStore) SetInitialized(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('initialized', 'true')
		 ON CONFLICT(key) DO UPDATE SET value = 'true'`)
	return err
}
