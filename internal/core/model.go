package core

import (
	"strings"
	"time"
)

// Spam is the spam flag of a verdict
type Spam string

const (
	SpamYes Spam = "yes"
	SpamNo  Spam = "no"
)

// Confidence is the confidence band derived from the provider quality score
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Result is the final acceptance label of a verdict
type Result string

const (
	ResultPassed  Result = "passed"
	ResultFailed  Result = "failed"
	ResultVetting Result = "vetting"
)

// EnrichmentResult holds the signals returned by the email enrichment provider
type EnrichmentResult struct {
	DeliverabilityConfirmed bool `json:"deliverabilityConfirmed"`
	IsDisposableDomain      bool `json:"isDisposableDomain"`
	IsWebmailDomain         bool `json:"isWebmailDomain"`
	QualityScore            int  `json:"qualityScore"`
}

// Submission holds the contact data the verdict is cross-checked against
type Submission struct {
	SubmittedEmailDomain string `json:"submittedEmailDomain"`
	VerifiedEmailAddress string `json:"verifiedEmailAddress"`
}

// Verdict is the classification of a single lead
type Verdict struct {
	Spam       Spam       `json:"spam"`
	Confidence Confidence `json:"confidence"`
	Reason     string     `json:"reason"`
	Result     Result     `json:"result"`
}

// Lead is the sign-up lead as posted by the web form
type Lead struct {
	UserName    string `json:"userName"`
	EmailDomain string `json:"emailDomain"`
	Company     string `json:"company"`
	Email       string `json:"email"`
}

// Domain returns the submitted email domain as typed, falling back to the domain of the email
func (l *Lead) Domain() string {
	if l.EmailDomain != "" {
		return l.EmailDomain
	}
	if i := strings.LastIndex(l.Email, "@"); i >= 0 {
		return l.Email[i+1:]
	}
	return ""
}

// EmailAssessment is the domain-level assessment from the first provider
type EmailAssessment struct {
	Disposable bool
	Webmail    bool
	Score      int
	Source     string
}

// AddressCheck is the deliverability check from the second provider
type AddressCheck struct {
	Deliverable bool
	Address     string
	Source      string
}

// Source identifies how a vetting outcome was produced
type Source string

const (
	SourcePartner   Source = "partner"
	SourceCache     Source = "cache"
	SourceProviders Source = "providers"
	SourceFallback  Source = "fallback"
)

// VettingOutcome wraps a verdict with request metadata
type VettingOutcome struct {
	Verdict      Verdict
	ProcessingID string
	Source       Source
	EvaluatedAt  time.Time
}

// CacheEntry is the provider evidence cached for one email address
type CacheEntry struct {
	Email                string
	Enrichment           EnrichmentResult
	VerifiedEmailAddress string
	LastSeen             time.Time
	ExpiresAt            time.Time
}
