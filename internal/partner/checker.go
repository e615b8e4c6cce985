package partner

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

// Partner is a trusted company whose sign-ups skip enrichment
type Partner struct {
	Domain  string `mapstructure:"domain"`
	Company string `mapstructure:"company"`
}

// Checker recognises trusted partners by email domain and company name
type Checker struct {
	partners []Partner
	logger   *zap.Logger
}

// NewChecker creates a new partner checker
func NewChecker(partners []Partner, logger *zap.Logger) *Checker {
	// Drop incomplete entries
	normalized := make([]Partner, 0, len(partners))
	for _, p := range partners {
		domain := strings.TrimSpace(p.Domain)
		company := strings.TrimSpace(p.Company)
		if domain == "" || company == "" {
			continue
		}
		normalized = append(normalized, Partner{Domain: domain, Company: company})
	}

	if len(normalized) > 0 && logger != nil {
		domains := make([]string, len(normalized))
		for i, p := range normalized {
			domains[i] = p.Domain
		}
		logger.Info("Initialized partner checker", zap.Strings("domains", domains))
	}

	return &Checker{
		partners: normalized,
		logger:   logger,
	}
}

// Match returns the partner's company name when the domain matches exactly and the
// company matches after trimming and case folding
func (c *Checker) Match(domain, company string) (string, bool) {
	if len(c.partners) == 0 {
		return "", false
	}

	// A Caser is stateful and must not be shared between goroutines
	fold := cases.Fold()
	company = fold.String(strings.TrimSpace(company))

	for _, p := range c.partners {
		if p.Domain != domain {
			continue
		}
		if fold.String(p.Company) == company {
			if c.logger != nil {
				c.logger.Debug("Company is a trusted partner",
					zap.String("domain", domain),
					zap.String("partner", p.Company))
			}
			return p.Company, true
		}
	}

	return "", false
}
