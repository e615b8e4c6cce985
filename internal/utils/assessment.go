package utils

import (
	"fmt"

	"github.com/mikey/lead-vetting/internal/core"
)

// maxEmailSize bounds the address embedded in a prompt (RFC 5321 path limit)
const maxEmailSize = 320

// AssessmentSystemPrompt is sent as the system message where the model supports one
const AssessmentSystemPrompt = "You are an email domain classification system. Respond only with JSON."

const assessmentPromptFormat = `You are an email domain classification system used to vet sign-up leads.
Classify the email address below and respond with a JSON object containing:
- disposable: boolean (true if the domain belongs to a disposable or temporary mailbox service)
- webmail: boolean (true if the domain is a free consumer webmail provider such as gmail.com)
- score: integer between 0 and 100 (how likely the address belongs to a real business contact)

Email address: %s

Respond only with the JSON object and nothing else.`

// assessmentResponse is the JSON object the models are asked for
type assessmentResponse struct {
	Disposable bool `json:"disposable"`
	Webmail    bool `json:"webmail"`
	Score      int  `json:"score"`
}

// AssessmentPrompt builds the classification prompt for an email address
func (tp *TextProcessor) AssessmentPrompt(email string) string {
	return fmt.Sprintf(assessmentPromptFormat, tp.ProcessText(email, maxEmailSize))
}

// ParseAssessment converts a model response into an EmailAssessment
func ParseAssessment(text, source string) (*core.EmailAssessment, error) {
	var resp assessmentResponse
	if err := ExtractJSON(text, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse %s assessment: %w", source, err)
	}

	return &core.EmailAssessment{
		Disposable: resp.Disposable,
		Webmail:    resp.Webmail,
		Score:      resp.Score,
		Source:     source,
	}, nil
}
