// Package types defines the MediChain domain model: users, sessions,
// symptom submissions, analysis results, and persisted reports, plus
// the store interfaces the rest of the system depends on.
package types

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Role identifies what a user is allowed to see and do.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// ParseRole normalizes and validates a role string.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RolePatient:
		return RolePatient, nil
	case RoleDoctor:
		return RoleDoctor, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// User is an account record. The credential (password hash) lives only
// in the user store and is never part of this struct.
// Users are immutable after signup.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Session is the explicit, request-scoped authentication context.
// It is passed to operations that need it rather than held globally.
type Session struct {
	User     User      `json:"user"`
	Token    string    `json:"token"`
	IssuedAt time.Time `json:"issuedAt"`
}

// MinSymptomChars is the validation floor for a symptom description.
// Exactly MinSymptomChars characters is accepted.
const MinSymptomChars = 10

// SymptomInput is one symptom submission. It is transient; only the
// derived Report is persisted.
type SymptomInput struct {
	Symptoms       string `json:"symptoms"`
	MedicalHistory string `json:"medicalHistory,omitempty"`
}

// Validate enforces the intake contract on the raw submission.
func (in SymptomInput) Validate() error {
	if utf8.RuneCountInString(in.Symptoms) < MinSymptomChars {
		return &ValidationError{
			Field:   "symptoms",
			Message: fmt.Sprintf("please describe your symptoms in at least %d characters", MinSymptomChars),
		}
	}
	return nil
}

// ConfidenceLevel is the model's self-reported confidence. Only the
// three canonical values are accepted; anything else is a schema
// violation at the requester boundary.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// ParseConfidence canonicalizes a confidence string (case-insensitive).
func ParseConfidence(s string) (ConfidenceLevel, error) {
	switch ConfidenceLevel(strings.ToLower(strings.TrimSpace(s))) {
	case ConfidenceLow:
		return ConfidenceLow, nil
	case ConfidenceMedium:
		return ConfidenceMedium, nil
	case ConfidenceHigh:
		return ConfidenceHigh, nil
	default:
		return "", fmt.Errorf("confidence level outside {low, medium, high}: %q", s)
	}
}

// AnalysisResult is the typed output contract of the text-generation
// capability. The emergency branch synthesizes one without a remote
// call.
type AnalysisResult struct {
	PossibleConditions string          `json:"possibleConditions"`
	ConfidenceLevel    ConfidenceLevel `json:"confidenceLevel"`
	NextSteps          string          `json:"nextSteps"`
	Disclaimer         string          `json:"disclaimer"`
}

// Report is the persisted record of one submission and its analysis.
// Reports are append-only; DoctorNotes is the single mutable field,
// addressed by the (UserID, Date) composite key.
type Report struct {
	SymptomInput
	AnalysisResult
	Date        time.Time `json:"date"`
	UserID      string    `json:"userId"`
	UserName    string    `json:"userName"`
	UserRole    Role      `json:"userRole"`
	DoctorNotes string    `json:"doctorNotes,omitempty"`
}

// Key returns the composite identity of a report.
func (r Report) Key() (string, time.Time) {
	return r.UserID, r.Date
}
