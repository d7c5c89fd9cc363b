package dashboard

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"medichain/internal/types"
)

var (
	patientA = types.User{ID: "a", Name: "Alice Patient", Role: types.RolePatient}
	patientC = types.User{ID: "c", Name: "Carol Patient", Role: types.RolePatient}
	doctorB  = types.User{ID: "b", Name: "Doctor Bob", Role: types.RoleDoctor}
	adminD   = types.User{ID: "d", Name: "Dana Admin", Role: types.RoleAdmin}
)

func sampleReports() []types.Report {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	return []types.Report{
		{
			SymptomInput:   types.SymptomInput{Symptoms: "persistent cough and fever"},
			AnalysisResult: types.AnalysisResult{PossibleConditions: "Influenza", ConfidenceLevel: types.ConfidenceMedium},
			Date:           base,
			UserID:         patientA.ID, UserName: patientA.Name, UserRole: types.RolePatient,
		},
		{
			SymptomInput:   types.SymptomInput{Symptoms: "migraine with aura"},
			AnalysisResult: types.AnalysisResult{PossibleConditions: "Migraine", ConfidenceLevel: types.ConfidenceHigh},
			Date:           base.Add(time.Hour),
			UserID:         patientC.ID, UserName: patientC.Name, UserRole: types.RolePatient,
		},
		{
			SymptomInput:   types.SymptomInput{Symptoms: "lower back pain after lifting"},
			AnalysisResult: types.AnalysisResult{PossibleConditions: "Muscle strain", ConfidenceLevel: types.ConfidenceLow},
			Date:           base.Add(2 * time.Hour),
			UserID:         doctorB.ID, UserName: doctorB.Name, UserRole: types.RoleDoctor,
		},
	}
}

func TestVisibleReports_RoleScoping(t *testing.T) {
	all := sampleReports()

	own := VisibleReports(patientA, all)
	if assert.Len(t, own, 1) {
		assert.Equal(t, patientA.ID, own[0].UserID)
	}

	assert.Len(t, VisibleReports(doctorB, all), 3, "doctor sees all reports")
	assert.Len(t, VisibleReports(adminD, all), 3, "admin sees all reports")
	assert.Empty(t, VisibleReports(types.User{ID: "z", Role: types.RolePatient}, all))
}

func TestPatientReports_FiltersAuthorRole(t *testing.T) {
	got := PatientReports(sampleReports())
	assert.Len(t, got, 2)
	for _, r := range got {
		assert.Equal(t, types.RolePatient, r.UserRole)
	}
}

func TestApply_Search(t *testing.T) {
	all := sampleReports()

	bySymptom := Apply(Query{Search: "COUGH"}, all)
	if assert.Len(t, bySymptom, 1) {
		assert.Equal(t, patientA.ID, bySymptom[0].UserID)
	}

	byCondition := Apply(Query{Search: "migraine"}, all)
	assert.Len(t, byCondition, 1)

	byName := Apply(Query{Search: "carol"}, all)
	if assert.Len(t, byName, 1) {
		assert.Equal(t, patientC.ID, byName[0].UserID)
	}

	assert.Empty(t, Apply(Query{Search: "no such thing"}, all))
}

func TestApply_ConfidenceFilter(t *testing.T) {
	all := sampleReports()

	for _, q := range []string{"high", "HIGH", " High "} {
		got := Apply(Query{Confidence: q}, all)
		if assert.Len(t, got, 1, "query %q", q) {
			assert.Equal(t, types.ConfidenceHigh, got[0].ConfidenceLevel)
		}
	}
}

func TestApply_SortByDate(t *testing.T) {
	all := sampleReports()

	newest := Apply(Query{}, all)
	assert.True(t, newest[0].Date.After(newest[len(newest)-1].Date), "default is newest first")

	oldest := Apply(Query{Sort: SortOldestFirst}, all)
	assert.True(t, oldest[0].Date.Before(oldest[len(oldest)-1].Date))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	all := sampleReports()
	snapshot := append([]types.Report(nil), all...)

	Apply(Query{Sort: SortOldestFirst, Search: "pain"}, all)

	if diff := cmp.Diff(snapshot, all); diff != "" {
		t.Errorf("input slice mutated (-want +got):\n%s", diff)
	}
}
