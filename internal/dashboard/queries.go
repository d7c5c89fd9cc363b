// Package dashboard provides the read-side transforms behind the role
// dashboards: visibility filtering, free-text search, confidence
// filtering, and date sorting. All functions are pure and operate on
// report slices already in memory; there is no pagination.
package dashboard

import (
	"sort"
	"strings"

	"medichain/internal/types"
)

// SortDir orders reports by date.
type SortDir string

const (
	SortNewestFirst SortDir = "desc"
	SortOldestFirst SortDir = "asc"
)

// Query is one dashboard read request.
type Query struct {
	// Search matches case-insensitively against symptoms, possible
	// conditions, and the submitting user's name.
	Search string

	// Confidence, when set, keeps only reports with an equal
	// confidence level (case-insensitive).
	Confidence string

	// Sort orders by date; default is newest first.
	Sort SortDir
}

// VisibleReports applies role-based visibility: a patient sees only
// their own reports, doctors and admins see all of them.
func VisibleReports(viewer types.User, all []types.Report) []types.Report {
	switch viewer.Role {
	case types.RoleDoctor, types.RoleAdmin:
		return append([]types.Report(nil), all...)
	default:
		var out []types.Report
		for _, r := range all {
			if r.UserID == viewer.ID {
				out = append(out, r)
			}
		}
		return out
	}
}

// PatientReports keeps only patient-authored reports, the "patient
// list" view for doctors and admins.
func PatientReports(all []types.Report) []types.Report {
	var out []types.Report
	for _, r := range all {
		if r.UserRole == types.RolePatient {
			out = append(out, r)
		}
	}
	return out
}

// Apply filters and sorts a report slice. The input is not mutated.
func Apply(q Query, reports []types.Report) []types.Report {
	out := make([]types.Report, 0, len(reports))

	search := strings.ToLower(strings.TrimSpace(q.Search))
	confidence := strings.ToLower(strings.TrimSpace(q.Confidence))

	for _, r := range reports {
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		if confidence != "" && strings.ToLower(string(r.ConfidenceLevel)) != confidence {
			continue
		}
		out = append(out, r)
	}

	if q.Sort == SortOldestFirst {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	} else {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	}
	return out
}

func matchesSearch(r types.Report, lowered string) bool {
	return strings.Contains(strings.ToLower(r.Symptoms), lowered) ||
		strings.Contains(strings.ToLower(r.PossibleConditions), lowered) ||
		strings.Contains(strings.ToLower(r.UserName), lowered)
}
