// Package intake implements the symptom-intake state machine: input
// validation, the consent gate, the emergency short-circuit, the
// analysis call, and the commit of the resulting report. It is
// independent of any UI or transport layer; callers drive it with a
// Submission and read the Outcome.
package intake

import (
	"context"
	"sync"
	"time"

	"medichain/internal/logging"
	"medichain/internal/triage"
	"medichain/internal/types"
)

// State is one position in the intake state machine.
type State string

const (
	StateIdle                  State = "idle"
	StateValidating            State = "validating"
	StateConsentPending        State = "consent_pending"
	StateEmergencyShortCircuit State = "emergency_short_circuit"
	StateAnalyzing             State = "analyzing"
	StateComplete              State = "complete"
	StateFailed                State = "failed"
)

// Requester is the analysis capability the pipeline invokes at most
// once per submission, and never before consent and triage have run.
type Requester interface {
	Request(ctx context.Context, in types.SymptomInput) (types.AnalysisResult, error)
}

// Fixed result synthesized on the emergency branch. Unconditional and
// produced before any remote call.
const (
	emergencyConditions = "Critical Symptoms Detected"
	emergencyNextSteps  = "Your symptoms may indicate a medical emergency. Call your local emergency number or go to the nearest emergency department immediately. Do not wait for an online analysis."
	emergencyDisclaimer = "This automated safety check is not a medical diagnosis. If you believe you are experiencing an emergency, seek immediate medical care."
)

// EmergencyResult returns the synthesized analysis for flagged input.
func EmergencyResult() types.AnalysisResult {
	return types.AnalysisResult{
		PossibleConditions: emergencyConditions,
		ConfidenceLevel:    types.ConfidenceHigh,
		NextSteps:          emergencyNextSteps,
		Disclaimer:         emergencyDisclaimer,
	}
}

// Submission is one intake attempt. Consent is tracked per submission,
// never remembered across attempts. User is nil for anonymous callers.
type Submission struct {
	Input   types.SymptomInput
	Consent bool
	User    *types.User
}

// Outcome records where a submission ended up. States holds the full
// transition history of the attempt.
type Outcome struct {
	State     State
	States    []State
	Result    types.AnalysisResult
	Emergency bool
	Persisted bool
	Report    *types.Report
}

// Pipeline runs intake submissions. One submission may be in flight at
// a time; a second concurrent Submit returns ErrSubmissionInFlight.
// Every Submit is a fresh state instance - there is no partial retry.
type Pipeline struct {
	requester Requester
	reports   types.ReportStore

	mu       sync.Mutex
	inFlight bool

	now func() time.Time
}

// New wires a pipeline to its analysis capability and report store.
// reports may be nil when persistence is not configured; Complete is
// still reached and nothing is committed.
func New(requester Requester, reports types.ReportStore) *Pipeline {
	return &Pipeline{
		requester: requester,
		reports:   reports,
		now:       time.Now,
	}
}

func (p *Pipeline) begin() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inFlight {
		return types.ErrSubmissionInFlight
	}
	p.inFlight = true
	return nil
}

func (p *Pipeline) end() {
	p.mu.Lock()
	p.inFlight = false
	p.mu.Unlock()
}

func (o *Outcome) transition(s State) {
	o.State = s
	o.States = append(o.States, s)
	logging.IntakeDebug("state -> %s", s)
}

// Submit runs one intake attempt to Complete or Failed. The returned
// Outcome is non-nil whenever the attempt started; the error carries
// the typed failure for the caller to surface. All failures are
// terminal for this attempt only.
func (p *Pipeline) Submit(ctx context.Context, sub Submission) (*Outcome, error) {
	if err := p.begin(); err != nil {
		return nil, err
	}
	defer p.end()

	out := &Outcome{State: StateIdle, States: []State{StateIdle}}

	out.transition(StateValidating)
	if err := sub.Input.Validate(); err != nil {
		// Rejected input returns the machine to Idle; nothing ran.
		out.transition(StateIdle)
		return out, err
	}

	out.transition(StateConsentPending)
	if !sub.Consent {
		return out, types.ErrConsentNotGiven
	}

	// The classifier must run before any remote call is issued.
	if phrase, flagged := triage.Match(sub.Input.Symptoms); flagged {
		logging.Intake("emergency short-circuit: phrase=%q", phrase)
		out.transition(StateEmergencyShortCircuit)
		out.Emergency = true
		out.Result = EmergencyResult()
	} else {
		out.transition(StateAnalyzing)
		result, err := p.requester.Request(ctx, sub.Input)
		if err != nil {
			out.transition(StateFailed)
			return out, err
		}
		out.Result = result
	}

	out.transition(StateComplete)

	// Persistence is a side effect distinct from reaching Complete:
	// only authenticated submissions are committed, and the result is
	// returned to the caller either way.
	if sub.User != nil && p.reports != nil {
		report := types.Report{
			SymptomInput:   sub.Input,
			AnalysisResult: out.Result,
			Date:           p.now().UTC(),
			UserID:         sub.User.ID,
			UserName:       sub.User.Name,
			UserRole:       sub.User.Role,
		}
		if err := p.reports.AddReport(ctx, report); err != nil {
			logging.Get(logging.CategoryIntake).Error("report commit failed for user %s: %v", sub.User.ID, err)
			return out, err
		}
		out.Persisted = true
		out.Report = &report
		logging.Intake("report persisted: user=%s date=%s emergency=%t", sub.User.ID, report.Date.Format(time.RFC3339), out.Emergency)
	}

	return out, nil
}
