package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ReasonVerified is reported for leads that are not flagged as spam
	ReasonVerified = "The email address has been verified."
	// ReasonSpamRisk is reported for leads flagged as spam
	ReasonSpamRisk = "The email address is from a general domain like gmail or a disposable email service or it does not exist and rejects mail"
	// ReasonUnreachable is reported when the enrichment data could not be fetched
	ReasonUnreachable = "Could not connect to the server"

	highScore   = 80
	mediumScore = 50
)

var (
	// ErrInvalidInput is returned when enrichment or submission data is incomplete
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidLead is returned when a lead carries no usable email address
	ErrInvalidLead = errors.New("invalid lead")
)

// Evaluate classifies a lead from the enrichment signals and the submitted contact data.
// It is pure: no I/O, no shared state, and it accepts every input combination.
// Quality scores outside 0-100 are not clamped and fall into the nearest band.
func Evaluate(enrichment EnrichmentResult, submission Submission) Verdict {
	spam := SpamNo
	if !enrichment.DeliverabilityConfirmed || enrichment.IsDisposableDomain || enrichment.IsWebmailDomain {
		spam = SpamYes
	}

	confidence := ConfidenceFor(enrichment.QualityScore)

	// The two providers disagreeing on the address identity overrides everything above.
	// Domains must match exactly, case included.
	if submission.SubmittedEmailDomain != DomainOf(submission.VerifiedEmailAddress) {
		spam = SpamYes
		confidence = ConfidenceHigh
	}

	return Verdict{
		Spam:       spam,
		Confidence: confidence,
		Reason:     ReasonFor(spam),
		Result:     ClassifyResult(spam, confidence),
	}
}

// EvaluateChecked validates the inputs before calling Evaluate
func EvaluateChecked(enrichment EnrichmentResult, submission Submission) (Verdict, error) {
	if strings.TrimSpace(submission.SubmittedEmailDomain) == "" {
		return Verdict{}, fmt.Errorf("%w: submittedEmailDomain is required", ErrInvalidInput)
	}
	if strings.TrimSpace(submission.VerifiedEmailAddress) == "" {
		return Verdict{}, fmt.Errorf("%w: verifiedEmailAddress is required", ErrInvalidInput)
	}
	return Evaluate(enrichment, submission), nil
}

// ConfidenceFor maps a provider quality score to a confidence band
func ConfidenceFor(score int) Confidence {
	switch {
	case score >= highScore:
		return ConfidenceHigh
	case score >= mediumScore:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// ClassifyResult derives the final result from the spam flag and confidence only
func ClassifyResult(spam Spam, confidence Confidence) Result {
	if confidence != ConfidenceHigh {
		return ResultVetting
	}
	switch spam {
	case SpamYes:
		return ResultFailed
	case SpamNo:
		return ResultPassed
	default:
		return ResultVetting
	}
}

// ReasonFor returns the fixed explanation for a spam flag
func ReasonFor(spam Spam) string {
	if spam == SpamYes {
		return ReasonSpamRisk
	}
	return ReasonVerified
}

// DomainOf returns the part after the last '@', or the whole value when there is none.
func DomainOf(address string) string {
	if i := strings.LastIndex(address, "@"); i >= 0 {
		return address[i+1:]
	}
	return address
}

// FallbackVerdict is the conservative verdict used when enrichment data is unavailable
func FallbackVerdict(reason string) Verdict {
	if reason == "" {
		reason = ReasonUnreachable
	}
	return Verdict{
		Spam:       SpamYes,
		Confidence: ConfidenceHigh,
		Reason:     reason,
		Result:     ResultFailed,
	}
}

// TrustedPartnerVerdict is the verdict synthesized for a trusted partner
func TrustedPartnerVerdict(partner string) Verdict {
	return Verdict{
		Spam:       SpamNo,
		Confidence: ConfidenceHigh,
		Reason:     "Email domain is from trusted company - " + partner,
		Result:     ResultPassed,
	}
}
