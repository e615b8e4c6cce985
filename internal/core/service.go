package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mikey/lead-vetting/internal/metrics"
)

// VettingService fetches enrichment data for a lead and hands it to Evaluate
type VettingService struct {
	assessor        EmailAssessor
	verifier        AddressVerifier
	cache           CacheRepository
	partners        PartnerMatcher
	metrics         *metrics.Metrics
	logger          *zap.Logger
	cacheEnabled    bool
	cacheTTL        time.Duration
	providerTimeout time.Duration
	now             func() time.Time
}

// VettingOptions carries the tunables of the vetting service
type VettingOptions struct {
	CacheEnabled    bool
	CacheTTL        time.Duration
	ProviderTimeout time.Duration
}

// NewVettingService creates a new vetting service
func NewVettingService(
	assessor EmailAssessor,
	verifier AddressVerifier,
	cache CacheRepository,
	partners PartnerMatcher,
	m *metrics.Metrics,
	logger *zap.Logger,
	opts VettingOptions,
) *VettingService {
	return &VettingService{
		assessor:        assessor,
		verifier:        verifier,
		cache:           cache,
		partners:        partners,
		metrics:         m,
		logger:          logger,
		cacheEnabled:    opts.CacheEnabled && cache != nil,
		cacheTTL:        opts.CacheTTL,
		providerTimeout: opts.ProviderTimeout,
		now:             time.Now,
	}
}

// Vet produces a verdict for a lead. Provider failures never surface as errors:
// they yield the conservative fallback verdict instead.
func (s *VettingService) Vet(ctx context.Context, lead *Lead) (*VettingOutcome, error) {
	start := s.now()
	defer func() { s.metrics.ObserveVetLatency(time.Since(start)) }()

	if lead == nil || !strings.Contains(lead.Email, "@") {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidLead)
	}

	id := uuid.NewString()
	email := strings.ToLower(strings.TrimSpace(lead.Email))
	domain := lead.Domain()
	logger := s.logger.With(
		zap.String("processing_id", id),
		zap.String("email_domain", domain),
	)

	// Trusted partners bypass the providers and the evaluator entirely
	if s.partners != nil {
		if name, ok := s.partners.Match(domain, lead.Company); ok {
			logger.Info("Skipping enrichment for trusted partner",
				zap.String("partner", name),
				zap.String("action", "partner_bypass"))
			return s.outcome(id, logger, TrustedPartnerVerdict(name), SourcePartner), nil
		}
	}

	if s.cacheEnabled {
		if entry, err := s.cache.Get(ctx, email); err == nil {
			logger.Debug("Cache hit for email")
			verdict := Evaluate(entry.Enrichment, Submission{
				SubmittedEmailDomain: domain,
				VerifiedEmailAddress: entry.VerifiedEmailAddress,
			})
			return s.outcome(id, logger, verdict, SourceCache), nil
		}
	}

	enrichment, verified, err := s.enrich(ctx, email)
	if err != nil {
		logger.Warn("Enrichment unavailable, using fallback verdict", zap.Error(err))
		return s.outcome(id, logger, FallbackVerdict(ReasonUnreachable), SourceFallback), nil
	}

	verdict := Evaluate(*enrichment, Submission{
		SubmittedEmailDomain: domain,
		VerifiedEmailAddress: verified,
	})

	if s.cacheEnabled {
		entry := &CacheEntry{
			Email:                email,
			Enrichment:           *enrichment,
			VerifiedEmailAddress: verified,
			LastSeen:             s.now(),
			ExpiresAt:            s.now().Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	return s.outcome(id, logger, verdict, SourceProviders), nil
}

// enrich queries both providers and merges their answers
func (s *VettingService) enrich(ctx context.Context, email string) (*EnrichmentResult, string, error) {
	if s.providerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.providerTimeout)
		defer cancel()
	}

	start := s.now()
	assessment, err := s.assessor.Assess(ctx, email)
	s.metrics.ObserveProviderLatency("assessor", time.Since(start))
	if err != nil {
		s.metrics.IncrementUpstreamFailure("assessor")
		return nil, "", fmt.Errorf("assess email: %w", err)
	}

	start = s.now()
	check, err := s.verifier.Verify(ctx, email)
	s.metrics.ObserveProviderLatency("verifier", time.Since(start))
	if err != nil {
		s.metrics.IncrementUpstreamFailure("verifier")
		return nil, "", fmt.Errorf("verify address: %w", err)
	}

	return &EnrichmentResult{
		DeliverabilityConfirmed: check.Deliverable,
		IsDisposableDomain:      assessment.Disposable,
		IsWebmailDomain:         assessment.Webmail,
		QualityScore:            assessment.Score,
	}, check.Address, nil
}

func (s *VettingService) outcome(id string, logger *zap.Logger, verdict Verdict, source Source) *VettingOutcome {
	s.metrics.IncrementVerdict(string(verdict.Result), string(source))
	logger.Info("Lead vetted",
		zap.String("source", string(source)),
		zap.String("spam", string(verdict.Spam)),
		zap.String("confidence", string(verdict.Confidence)),
		zap.String("result", string(verdict.Result)))

	return &VettingOutcome{
		Verdict:      verdict,
		ProcessingID: id,
		Source:       source,
		EvaluatedAt:  s.now(),
	}
}
