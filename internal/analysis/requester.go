package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"medichain/internal/logging"
	"medichain/internal/types"
)

const systemPrompt = `You are an AI-powered symptom checker designed to provide preliminary insights into a patient's symptoms and possible conditions. You are not a doctor and you never diagnose. Based on the provided symptoms and medical history, generate a list of possible medical conditions, a confidence level indication, recommended next steps, and a disclaimer.`

// promptTemplate has exactly two interpolation points: symptoms and
// medical history.
const promptTemplate = `Symptoms: %s
Medical History: %s

Respond with a JSON object containing:
  possibleConditions: a list of possible medical conditions based on the provided symptoms and medical history
  confidenceLevel: low, medium, or high
  nextSteps: recommended next steps for the patient, such as consulting a doctor or seeking immediate medical attention
  disclaimer: a disclaimer that the information provided is not a substitute for professional medical advice`

// resultSchema is the JSON schema enforced on the model response.
const resultSchema = `{
  "type": "object",
  "properties": {
    "possibleConditions": {"type": "string"},
    "confidenceLevel": {"type": "string", "enum": ["low", "medium", "high"]},
    "nextSteps": {"type": "string"},
    "disclaimer": {"type": "string"}
  },
  "required": ["possibleConditions", "confidenceLevel", "nextSteps", "disclaimer"]
}`

// Requester issues the single outbound analysis call and validates the
// response into the AnalysisResult contract. Exactly one attempt per
// submission; retries, if any, live inside the transport client.
type Requester struct {
	client Client
}

// NewRequester wires a Requester to a transport client.
func NewRequester(client Client) *Requester {
	return &Requester{client: client}
}

// rawResult mirrors the wire shape before contract validation.
type rawResult struct {
	PossibleConditions string `json:"possibleConditions"`
	ConfidenceLevel    string `json:"confidenceLevel"`
	NextSteps          string `json:"nextSteps"`
	Disclaimer         string `json:"disclaimer"`
}

// Request serializes the input into the prompt template, performs the
// remote call, and validates the response. Transport and provider
// failures come back as *types.AnalysisRequestError; responses that do
// not satisfy the contract come back as *types.SchemaViolationError.
func (r *Requester) Request(ctx context.Context, in types.SymptomInput) (types.AnalysisResult, error) {
	history := strings.TrimSpace(in.MedicalHistory)
	if history == "" {
		history = "None provided."
	}
	userPrompt := fmt.Sprintf(promptTemplate, in.Symptoms, history)

	raw, err := r.client.CompleteWithSchema(ctx, systemPrompt, userPrompt, resultSchema)
	if err != nil {
		logging.Get(logging.CategoryAnalysis).Error("analysis request failed: %v", err)
		return types.AnalysisResult{}, &types.AnalysisRequestError{Err: err}
	}

	return parseResult(raw)
}

// parseResult validates raw model output against the AnalysisResult
// contract. Nothing is defaulted; any mismatch is a typed violation.
func parseResult(raw string) (types.AnalysisResult, error) {
	var parsed rawResult
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return types.AnalysisResult{}, &types.SchemaViolationError{
			Detail: fmt.Sprintf("response is not valid JSON: %v", err),
			Raw:    raw,
		}
	}

	for field, value := range map[string]string{
		"possibleConditions": parsed.PossibleConditions,
		"confidenceLevel":    parsed.ConfidenceLevel,
		"nextSteps":          parsed.NextSteps,
		"disclaimer":         parsed.Disclaimer,
	} {
		if strings.TrimSpace(value) == "" {
			return types.AnalysisResult{}, &types.SchemaViolationError{
				Detail: fmt.Sprintf("missing required field %q", field),
				Raw:    raw,
			}
		}
	}

	confidence, err := types.ParseConfidence(parsed.ConfidenceLevel)
	if err != nil {
		return types.AnalysisResult{}, &types.SchemaViolationError{
			Detail: err.Error(),
			Raw:    raw,
		}
	}

	logging.AnalysisDebug("analysis response validated: confidence=%s", confidence)
	return types.AnalysisResult{
		PossibleConditions: strings.TrimSpace(parsed.PossibleConditions),
		ConfidenceLevel:    confidence,
		NextSteps:          strings.TrimSpace(parsed.NextSteps),
		Disclaimer:         strings.TrimSpace(parsed.Disclaimer),
	}, nil
}
