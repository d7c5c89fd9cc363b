package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"medichain/internal/auth"
	"medichain/internal/store"
	"medichain/internal/types"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

type stubRequester struct {
	result types.AnalysisResult
	err    error
	calls  int
}

func (s *stubRequester) Request(ctx context.Context, in types.SymptomInput) (types.AnalysisResult, error) {
	s.calls++
	if s.err != nil {
		return types.AnalysisResult{}, s.err
	}
	return s.result, nil
}

type fixture struct {
	server    *Server
	store     *store.MemoryStore
	requester *stubRequester
	auth      *auth.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := store.NewMemoryStore()
	authSvc := auth.NewService(mem, "test-secret", time.Hour)
	req := &stubRequester{result: types.AnalysisResult{
		PossibleConditions: "Common Cold",
		ConfidenceLevel:    types.ConfidenceMedium,
		NextSteps:          "Rest and hydrate.",
		Disclaimer:         "Not medical advice.",
	}}
	srv := New(authSvc, req, mem, mem, zap.NewNop())
	return &fixture{server: srv, store: mem, requester: req, auth: authSvc}
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

// signup + login in one step, returning the session token.
func (f *fixture) login(t *testing.T, name, email string, role types.Role) types.Session {
	t.Helper()
	ctx := context.Background()
	_, err := f.auth.Signup(ctx, name, email, "password123", role)
	require.NoError(t, err)
	sess, err := f.auth.Login(ctx, email, "password123")
	require.NoError(t, err)
	return sess
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignupAndLogin(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"name": "Jane", "email": "jane@example.com", "password": "password123", "role": "patient",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Same email again conflicts.
	rec = f.do(t, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"name": "Jane", "email": "jane@example.com", "password": "password123", "role": "patient",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "jane@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var sess types.Session
	decodeBody(t, rec, &sess)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, types.RolePatient, sess.User.Role)

	rec = f.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "jane@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignupRejectsBadRole(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"name": "Eve", "email": "eve@example.com", "password": "password123", "role": "superuser",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeAnonymousNotPersisted(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/analyze", "", gin.H{
		"symptoms": "persistent dry cough for a week", "consent": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp analyzeResponse
	decodeBody(t, rec, &resp)
	assert.False(t, resp.Persisted)
	assert.False(t, resp.Emergency)
	assert.Equal(t, "Common Cold", resp.Result.PossibleConditions)

	all, err := f.store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAnalyzePersistsForSession(t *testing.T) {
	f := newFixture(t)
	sess := f.login(t, "Jane", "jane@example.com", types.RolePatient)

	rec := f.do(t, http.MethodPost, "/api/v1/analyze", sess.Token, gin.H{
		"symptoms": "persistent dry cough for a week", "consent": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp analyzeResponse
	decodeBody(t, rec, &resp)
	assert.True(t, resp.Persisted)
	require.NotNil(t, resp.Report)
	assert.Equal(t, sess.User.ID, resp.Report.UserID)

	all, err := f.store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAnalyzeConsentRequired(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/v1/analyze", "", gin.H{
		"symptoms": "persistent dry cough for a week", "consent": false,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, f.requester.calls)
}

func TestAnalyzeValidation(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/v1/analyze", "", gin.H{
		"symptoms": "too short", "consent": true,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, f.requester.calls)
}

func TestAnalyzeEmergencySkipsRequester(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/v1/analyze", "", gin.H{
		"symptoms": "sudden crushing chest pain radiating to my arm", "consent": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp analyzeResponse
	decodeBody(t, rec, &resp)
	assert.True(t, resp.Emergency)
	assert.Equal(t, types.ConfidenceHigh, resp.Result.ConfidenceLevel)
	assert.Zero(t, f.requester.calls)
}

func TestAnalyzeErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"schema violation", &types.SchemaViolationError{Detail: "missing field"}, http.StatusBadGateway},
		{"transport failure", &types.AnalysisRequestError{Err: errors.New("dial tcp: refused")}, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.requester.err = tc.err
			rec := f.do(t, http.MethodPost, "/api/v1/analyze", "", gin.H{
				"symptoms": "persistent dry cough for a week", "consent": true,
			})
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestAnalyzeRejectsBadToken(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/v1/analyze", "not-a-token", gin.H{
		"symptoms": "persistent dry cough for a week", "consent": true,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReportsRoleScoping(t *testing.T) {
	f := newFixture(t)
	jane := f.login(t, "Jane", "jane@example.com", types.RolePatient)
	bob := f.login(t, "Bob", "bob@example.com", types.RolePatient)
	doc := f.login(t, "Dr. Smith", "doctor@example.com", types.RoleDoctor)

	for _, sess := range []types.Session{jane, bob} {
		rec := f.do(t, http.MethodPost, "/api/v1/analyze", sess.Token, gin.H{
			"symptoms": "persistent dry cough for a week", "consent": true,
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	type listResponse struct {
		Reports []types.Report `json:"reports"`
	}

	rec := f.do(t, http.MethodGet, "/api/v1/reports", jane.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got listResponse
	decodeBody(t, rec, &got)
	require.Len(t, got.Reports, 1)
	assert.Equal(t, jane.User.ID, got.Reports[0].UserID)

	rec = f.do(t, http.MethodGet, "/api/v1/reports", doc.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &got)
	assert.Len(t, got.Reports, 2)

	// Unauthenticated listing is rejected.
	rec = f.do(t, http.MethodGet, "/api/v1/reports", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReportsSearchAndFilter(t *testing.T) {
	f := newFixture(t)
	doc := f.login(t, "Dr. Smith", "doctor@example.com", types.RoleDoctor)
	jane := f.login(t, "Jane", "jane@example.com", types.RolePatient)

	rec := f.do(t, http.MethodPost, "/api/v1/analyze", jane.Token, gin.H{
		"symptoms": "persistent dry cough for a week", "consent": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	type listResponse struct {
		Reports []types.Report `json:"reports"`
	}
	var got listResponse

	rec = f.do(t, http.MethodGet, "/api/v1/reports?search=cough", doc.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &got)
	assert.Len(t, got.Reports, 1)

	rec = f.do(t, http.MethodGet, "/api/v1/reports?search=nosuchterm", doc.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &got)
	assert.Empty(t, got.Reports)

	rec = f.do(t, http.MethodGet, "/api/v1/reports?confidence=HIGH", doc.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &got)
	assert.Empty(t, got.Reports)
}

func TestPatientsRequiresDoctorOrAdmin(t *testing.T) {
	f := newFixture(t)
	jane := f.login(t, "Jane", "jane@example.com", types.RolePatient)
	doc := f.login(t, "Dr. Smith", "doctor@example.com", types.RoleDoctor)

	rec := f.do(t, http.MethodGet, "/api/v1/patients", jane.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/patients", doc.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUsersRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	jane := f.login(t, "Jane", "jane@example.com", types.RolePatient)
	doc := f.login(t, "Dr. Smith", "doctor@example.com", types.RoleDoctor)
	admin := f.login(t, "Alice", "admin@example.com", types.RoleAdmin)

	rec := f.do(t, http.MethodGet, "/api/v1/users", jane.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/users", doc.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/users", admin.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Users []types.User `json:"users"`
	}
	decodeBody(t, rec, &got)
	assert.Len(t, got.Users, 3)
}

func TestUpdateDoctorNotes(t *testing.T) {
	f := newFixture(t)
	jane := f.login(t, "Jane", "jane@example.com", types.RolePatient)
	doc := f.login(t, "Dr. Smith", "doctor@example.com", types.RoleDoctor)

	rec := f.do(t, http.MethodPost, "/api/v1/analyze", jane.Token, gin.H{
		"symptoms": "persistent dry cough for a week", "consent": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp analyzeResponse
	decodeBody(t, rec, &resp)
	require.NotNil(t, resp.Report)

	rec = f.do(t, http.MethodPut, "/api/v1/reports/notes", doc.Token, gin.H{
		"userId": resp.Report.UserID, "date": resp.Report.Date, "doctorNotes": "Follow up in two weeks.",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	all, err := f.store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Follow up in two weeks.", all[0].DoctorNotes)

	// Patients may not write notes.
	rec = f.do(t, http.MethodPut, "/api/v1/reports/notes", jane.Token, gin.H{
		"userId": resp.Report.UserID, "date": resp.Report.Date, "doctorNotes": "self-note",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Unknown key is a 404.
	rec = f.do(t, http.MethodPut, "/api/v1/reports/notes", doc.Token, gin.H{
		"userId": "no-such-user", "date": resp.Report.Date, "doctorNotes": "x",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
