package store

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"medichain/internal/logging"
	"medichain/internal/types"
)

// demoPassword is the shared credential of the seeded demo accounts.
const demoPassword = "password"

// SeedDemoData populates first-run demo data: one account per role and
// a single historical report for the demo patient. It is a no-op when
// the store has already been initialized, so repeated starts are safe.
func SeedDemoData(ctx context.Context, s Store) error {
	done, err := s.Initialized(ctx)
	if err != nil {
		return fmt.Errorf("failed to check seed marker: %w", err)
	}
	if done {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	demoUsers := []types.User{
		{ID: "1", Name: "Admin User", Email: "admin@medichain.com", Role: types.RoleAdmin},
		{ID: "2", Name: "Doctor Smith", Email: "doctor@medichain.com", Role: types.RoleDoctor},
		{ID: "3", Name: "Jane Patient", Email: "patient@medichain.com", Role: types.RolePatient},
	}
	for _, u := range demoUsers {
		if _, err := s.CreateUser(ctx, u, string(hash)); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.Email, err)
		}
	}

	demoReport := types.Report{
		SymptomInput: types.SymptomInput{
			Symptoms: "Headache and fatigue for 2 days.",
		},
		AnalysisResult: types.AnalysisResult{
			PossibleConditions: "Common Cold, Influenza, Migraine",
			ConfidenceLevel:    types.ConfidenceMedium,
			NextSteps:          "Rest and drink fluids. See a doctor if symptoms worsen.",
			Disclaimer:         "This is not a medical diagnosis.",
		},
		Date:     time.Now().UTC().Add(-24 * time.Hour),
		UserID:   "3",
		UserName: "Jane Patient",
		UserRole: types.RolePatient,
	}
	if err := s.AddReport(ctx, demoReport); err != nil {
		return fmt.Errorf("failed to seed demo report: %w", err)
	}

	if err := s.SetInitialized(ctx); err != nil {
		return fmt.Errorf("failed to set seed marker: %w", err)
	}
	logging.Boot("demo data seeded: %d users, 1 report", len(demoUsers))
	return nil
}
