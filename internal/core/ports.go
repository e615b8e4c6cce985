package core

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by cache repositories when no live entry exists
var ErrCacheMiss = errors.New("cache entry not found")

// EmailAssessor defines the first enrichment provider: domain type and quality score
type EmailAssessor interface {
	// Assess returns the domain-level signals for an email address
	Assess(ctx context.Context, email string) (*EmailAssessment, error)
}

// AddressVerifier defines the second enrichment provider: deliverability and identity
type AddressVerifier interface {
	// Verify checks that the address exists and resolves its canonical form
	Verify(ctx context.Context, email string) (*AddressCheck, error)
}

// PartnerMatcher recognises trusted partners that bypass enrichment
type PartnerMatcher interface {
	// Match returns the partner name when domain and company belong to a trusted partner
	Match(domain, company string) (string, bool)
}

// CacheRepository defines the interface for caching provider evidence
type CacheRepository interface {
	// Get retrieves a cached entry for an email address
	Get(ctx context.Context, email string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, email string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
