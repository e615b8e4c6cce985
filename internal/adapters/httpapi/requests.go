package httpapi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mikey/lead-vetting/internal/core"
)

// maxFieldLength bounds every free-text field of a lead
const maxFieldLength = 320

// LeadRequest is the HTTP request body for POST /webhook/lead.
// It mirrors what the sign-up form posts.
type LeadRequest struct {
	UserName    string `json:"userName"`
	EmailDomain string `json:"emailDomain"`
	Company     string `json:"company"`
	Email       string `json:"email"`
}

// Validate validates and normalizes the request.
func (r *LeadRequest) Validate() error {
	if r == nil {
		return errors.New("request body is required")
	}

	r.UserName = strings.TrimSpace(r.UserName)
	r.EmailDomain = strings.TrimSpace(r.EmailDomain)
	r.Company = strings.TrimSpace(r.Company)
	r.Email = strings.TrimSpace(r.Email)

	for name, value := range map[string]string{
		"userName":    r.UserName,
		"emailDomain": r.EmailDomain,
		"company":     r.Company,
		"email":       r.Email,
	} {
		if len(value) > maxFieldLength {
			return fmt.Errorf("%s must be at most %d characters", name, maxFieldLength)
		}
	}

	if r.Email == "" {
		return errors.New("email is required")
	}
	if !strings.Contains(r.Email, "@") {
		return errors.New("email must contain @")
	}
	return nil
}

// ToLead converts the request into the domain lead.
func (r *LeadRequest) ToLead() *core.Lead {
	return &core.Lead{
		UserName:    r.UserName,
		EmailDomain: r.EmailDomain,
		Company:     r.Company,
		Email:       r.Email,
	}
}

// EvaluateRequest is the HTTP request body for POST /v1/evaluate.
// Pointer fields distinguish an absent value from a zero value.
type EvaluateRequest struct {
	Enrichment *EnrichmentPayload `json:"enrichment"`
	Submission *SubmissionPayload `json:"submission"`
}

// EnrichmentPayload holds the provider signals of an evaluation request.
type EnrichmentPayload struct {
	DeliverabilityConfirmed *bool `json:"deliverabilityConfirmed"`
	IsDisposableDomain      *bool `json:"isDisposableDomain"`
	IsWebmailDomain         *bool `json:"isWebmailDomain"`
	QualityScore            *int  `json:"qualityScore"`
}

// SubmissionPayload holds the submitted and verified identity of an evaluation request.
type SubmissionPayload struct {
	SubmittedEmailDomain *string `json:"submittedEmailDomain"`
	VerifiedEmailAddress *string `json:"verifiedEmailAddress"`
}

// Validate checks every input the evaluator needs is present.
func (r *EvaluateRequest) Validate() error {
	if r == nil {
		return errors.New("request body is required")
	}
	if r.Enrichment == nil {
		return errors.New("enrichment is required")
	}
	if r.Submission == nil {
		return errors.New("submission is required")
	}

	switch {
	case r.Enrichment.DeliverabilityConfirmed == nil:
		return errors.New("enrichment.deliverabilityConfirmed is required")
	case r.Enrichment.IsDisposableDomain == nil:
		return errors.New("enrichment.isDisposableDomain is required")
	case r.Enrichment.IsWebmailDomain == nil:
		return errors.New("enrichment.isWebmailDomain is required")
	case r.Enrichment.QualityScore == nil:
		return errors.New("enrichment.qualityScore is required")
	case r.Submission.SubmittedEmailDomain == nil:
		return errors.New("submission.submittedEmailDomain is required")
	case r.Submission.VerifiedEmailAddress == nil:
		return errors.New("submission.verifiedEmailAddress is required")
	}
	return nil
}

// Parsed returns the domain inputs. Call only after Validate succeeds.
func (r *EvaluateRequest) Parsed() (core.EnrichmentResult, core.Submission) {
	return core.EnrichmentResult{
			DeliverabilityConfirmed: *r.Enrichment.DeliverabilityConfirmed,
			IsDisposableDomain:      *r.Enrichment.IsDisposableDomain,
			IsWebmailDomain:         *r.Enrichment.IsWebmailDomain,
			QualityScore:            *r.Enrichment.QualityScore,
		}, core.Submission{
			SubmittedEmailDomain: *r.Submission.SubmittedEmailDomain,
			VerifiedEmailAddress: *r.Submission.VerifiedEmailAddress,
		}
}
