package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"medichain/internal/types"
)

// MemoryStore implements Store in memory. Used in tests and as a
// throwaway backend; all methods are safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	users       []userRecord
	reports     []types.Report
	initialized bool
}

type userRecord struct {
	user types.User
	hash string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Close is a no-op for the in-memory backend.
func (s *MemoryStore) Close() error { return nil }

// --- UserStore ---

func (s *MemoryStore) CreateUser(_ context.Context, u types.User, passwordHash string) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.users {
		if rec.user.Email == u.Email {
			return types.User{}, types.ErrDuplicateUser
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.users = append(s.users, userRecord{user: u, hash: passwordHash})
	return u, nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (types.User, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.users {
		if rec.user.Email == email {
			return rec.user, rec.hash, nil
		}
	}
	return types.User{}, "", types.ErrUserNotFound
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.users {
		if rec.user.ID == id {
			return rec.user, nil
		}
	}
	return types.User{}, types.ErrUserNotFound
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.User, 0, len(s.users))
	for _, rec := range s.users {
		out = append(out, rec.user)
	}
	return out, nil
}

func (s *MemoryStore) CountUsers(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

// --- ReportStore ---

func (s *MemoryStore) AddReport(_ context.Context, r types.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return nil
}

func newestFirst(reports []types.Report) []types.Report {
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].Date.After(reports[j].Date)
	})
	return reports
}

func (s *MemoryStore) ListAll(_ context.Context) ([]types.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newestFirst(append([]types.Report(nil), s.reports...)), nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]types.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []types.Report
	for _, r := range s.reports {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return newestFirst(out), nil
}

func (s *MemoryStore) UpdateDoctorNotes(_ context.Context, userID string, date time.Time, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.reports {
		if s.reports[i].UserID == userID && s.reports[i].Date.Equal(date) {
			s.reports[i].DoctorNotes = notes
			return nil
		}
	}
	return types.ErrReportNotFound
}

// --- seeding bookkeeping ---

func (s *MemoryStore) Initialized(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized, nil
}

func (s *MemoryStore) SetInitialized(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = true
	return nil
}
