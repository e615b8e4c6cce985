package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/mail"
	"strings"
	"time"

	"gitlab.com/etke.cc/go/trysmtp"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"github.com/mikey/lead-vetting/internal/core"
)

// Source identifies evidence produced by this adapter
const Source = "local"

// Resolver is the subset of net.Resolver used for domain checks
type Resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Dialer confirms a mailbox accepts mail for an address
type Dialer interface {
	Dial(ctx context.Context, from, to string) error
}

// SMTPDialer checks mailboxes by opening an SMTP session to the recipient's MX
type SMTPDialer struct {
	// dial overrides trysmtp.Connect in tests
	dial func(from, to string) (io.Closer, error)
}

// Dial connects to the recipient's mail server and issues MAIL FROM / RCPT TO.
// It returns ctx.Err() as soon as ctx is done; a late connection is closed in the background.
func (p SMTPDialer) Dial(ctx context.Context, from, to string) error {
	dial := p.dial
	if dial == nil {
		dial = func(from, to string) (io.Closer, error) {
			return trysmtp.Connect(from, to)
		}
	}

	type result struct {
		client io.Closer
		err    error
	}
	done := make(chan result, 1)
	go func() {
		client, err := dial(from, to)
		done <- result{client: client, err: err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if r := <-done; r.err == nil {
				r.client.Close()
			}
		}()
		return ctx.Err()
	case r := <-done:
		if r.err != nil {
			return r.err
		}
		return r.client.Close()
	}
}

// Checker is an offline implementation of both EmailAssessor and AddressVerifier.
// It relies on curated domain lists and DNS instead of a paid API.
type Checker struct {
	resolver   Resolver
	dialer     Dialer
	dialFrom   string
	dnsTimeout time.Duration
	logger     *zap.Logger
}

// NewChecker creates a new local checker. A nil dialer disables SMTP checks.
func NewChecker(resolver Resolver, dialer Dialer, dialFrom string, dnsTimeout time.Duration, logger *zap.Logger) *Checker {
	if resolver == nil {
		resolver = &net.Resolver{PreferGo: true}
	}
	return &Checker{
		resolver:   resolver,
		dialer:     dialer,
		dialFrom:   dialFrom,
		dnsTimeout: dnsTimeout,
		logger:     logger,
	}
}

// Assess classifies the domain of an email address and scores it 0-100
func (c *Checker) Assess(ctx context.Context, email string) (*core.EmailAssessment, error) {
	localPart, domain, ok := splitAddress(email)
	if !ok {
		c.logger.Debug("Invalid email syntax", zap.String("email_domain", core.DomainOf(email)))
		return &core.EmailAssessment{Source: Source}, nil
	}

	base := baseDomain(domain)
	assessment := &core.EmailAssessment{
		Disposable: disposableDomains[domain] || disposableDomains[base],
		Webmail:    webmailDomains[domain] || webmailDomains[base],
		Source:     Source,
	}

	hasMX, err := c.hasMX(ctx, domain)
	if err != nil {
		return nil, err
	}

	assessment.Score = score(assessment, hasMX, rolePrefixes[localPart])
	return assessment, nil
}

// Verify checks the address has a mail exchanger and, when probing is enabled, a mailbox
func (c *Checker) Verify(ctx context.Context, email string) (*core.AddressCheck, error) {
	check := &core.AddressCheck{Address: normalize(email), Source: Source}
	_, domain, ok := splitAddress(email)
	if !ok {
		return check, nil
	}

	hasMX, err := c.hasMX(ctx, domain)
	if err != nil {
		return nil, err
	}
	if !hasMX {
		return check, nil
	}

	if c.dialer != nil {
		if err := c.dialer.Dial(ctx, c.dialFrom, check.Address); err != nil {
			c.logger.Debug("SMTP check rejected address",
				zap.String("email_domain", domain),
				zap.Error(err))
			return check, nil
		}
	}

	check.Deliverable = true
	return check, nil
}

// hasMX reports whether the domain can receive mail, falling back to an A record
func (c *Checker) hasMX(ctx context.Context, domain string) (bool, error) {
	if c.dnsTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.dnsTimeout)
		defer cancel()
	}

	records, err := c.resolver.LookupMX(ctx, domain)
	if err == nil {
		return len(records) > 0, nil
	}

	var dnsErr *net.DNSError
	if !errors.As(err, &dnsErr) || !dnsErr.IsNotFound {
		return false, fmt.Errorf("MX lookup failed for %s: %w", domain, err)
	}

	addrs, err := c.resolver.LookupHost(ctx, domain)
	if err != nil {
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return false, nil
		}
		return false, fmt.Errorf("host lookup failed for %s: %w", domain, err)
	}
	return len(addrs) > 0, nil
}

// score rates how likely the address belongs to a reachable business contact
func score(a *core.EmailAssessment, hasMX, role bool) int {
	s := 20
	if hasMX {
		s += 40
	}
	if !a.Webmail && !a.Disposable {
		s += 25
	}
	if !role {
		s += 15
	}
	if a.Disposable && s > 10 {
		s = 10
	}
	return s
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// splitAddress validates syntax and returns the lowercased local part and domain
func splitAddress(email string) (localPart, domain string, ok bool) {
	email = normalize(email)
	if len(email) < 3 || len(email) > 254 {
		return "", "", false
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", "", false
	}

	at := strings.LastIndex(email, "@")
	localPart, domain = email[:at], email[at+1:]
	if localPart == "" || len(localPart) > 64 || !strings.Contains(domain, ".") {
		return "", "", false
	}
	return localPart, domain, true
}

// baseDomain returns the registrable domain, so mail.yahoo.co.uk matches yahoo.co.uk
func baseDomain(domain string) string {
	base, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		return domain
	}
	return base
}
