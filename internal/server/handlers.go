package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medichain/internal/dashboard"
	"medichain/internal/intake"
	"medichain/internal/types"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type analyzeRequest struct {
	Symptoms       string `json:"symptoms"`
	MedicalHistory string `json:"medicalHistory"`
	Consent        bool   `json:"consent"`
}

type analyzeResponse struct {
	Result    types.AnalysisResult `json:"result"`
	Emergency bool                 `json:"emergency"`
	Persisted bool                 `json:"persisted"`
	Report    *types.Report        `json:"report,omitempty"`
}

type updateNotesRequest struct {
	UserID      string    `json:"userId"`
	Date        time.Time `json:"date"`
	DoctorNotes string    `json:"doctorNotes"`
}

func (s *Server) handleSignup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	role, err := types.ParseRole(req.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.auth.Signup(c.Request.Context(), req.Name, req.Email, req.Password, role)
	if err != nil {
		var verr *types.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
		case errors.Is(err, types.ErrDuplicateUser):
			c.JSON(http.StatusConflict, gin.H{"error": "an account with this email already exists"})
		default:
			s.log.Error("signup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sess, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, types.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		s.log.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, sess)
}

// handleAnalyze runs one intake submission. Each request gets a fresh
// pipeline instance; single-submission gating is a per-form concern
// and the stores handle concurrent writers.
func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sub := intake.Submission{
		Input: types.SymptomInput{
			Symptoms:       req.Symptoms,
			MedicalHistory: req.MedicalHistory,
		},
		Consent: req.Consent,
	}
	if sess, ok := currentSession(c); ok {
		user := sess.User
		sub.User = &user
	}

	pipe := intake.New(s.requester, s.reports)
	outcome, err := pipe.Submit(c.Request.Context(), sub)
	if err != nil {
		s.writeAnalyzeError(c, err)
		return
	}

	c.JSON(http.StatusOK, analyzeResponse{
		Result:    outcome.Result,
		Emergency: outcome.Emergency,
		Persisted: outcome.Persisted,
		Report:    outcome.Report,
	})
}

func (s *Server) writeAnalyzeError(c *gin.Context, err error) {
	var verr *types.ValidationError
	var serr *types.SchemaViolationError
	var aerr *types.AnalysisRequestError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, types.ErrConsentNotGiven):
		c.JSON(http.StatusBadRequest, gin.H{"error": "consent is required before analysis"})
	case errors.Is(err, types.ErrSubmissionInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "a submission is already in progress"})
	case errors.As(err, &serr):
		// Distinct from transport failures so callers can tell a
		// malformed model response apart from an outage.
		s.log.Error("analysis schema violation", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "the analysis service returned an invalid response", "code": "schema_violation"})
	case errors.As(err, &aerr):
		s.log.Error("analysis request failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": aerr.Error()})
	default:
		s.log.Error("analyze failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func dashboardQuery(c *gin.Context) dashboard.Query {
	return dashboard.Query{
		Search:     c.Query("search"),
		Confidence: c.Query("confidence"),
		Sort:       dashboard.SortDir(c.Query("sort")),
	}
}

func (s *Server) handleListReports(c *gin.Context) {
	sess, _ := currentSession(c)

	all, err := s.reports.ListAll(c.Request.Context())
	if err != nil {
		s.log.Error("list reports failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	visible := dashboard.VisibleReports(sess.User, all)
	out := dashboard.Apply(dashboardQuery(c), visible)
	c.JSON(http.StatusOK, gin.H{"reports": out})
}

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.users.ListUsers(c.Request.Context())
	if err != nil {
		s.log.Error("list users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (s *Server) handleListPatients(c *gin.Context) {
	all, err := s.reports.ListAll(c.Request.Context())
	if err != nil {
		s.log.Error("list patients failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	patients := dashboard.PatientReports(all)
	out := dashboard.Apply(dashboardQuery(c), patients)
	c.JSON(http.StatusOK, gin.H{"reports": out})
}

func (s *Server) handleUpdateNotes(c *gin.Context) {
	var req updateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.UserID == "" || req.Date.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and date are required"})
		return
	}

	err := s.reports.UpdateDoctorNotes(c.Request.Context(), req.UserID, req.Date, req.DoctorNotes)
	if err != nil {
		if errors.Is(err, types.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		s.log.Error("update doctor notes failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": true})
}
