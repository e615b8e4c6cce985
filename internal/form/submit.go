package form

import (
	"context"

	"go.uber.org/zap"

	"github.com/mikey/lead-vetting/internal/core"
)

// LeadVerifier obtains a verdict for a lead from the vetting backend
type LeadVerifier interface {
	VerifyLead(ctx context.Context, lead *core.Lead) (*core.Verdict, error)
}

// Vetter is the in-process vetting service
type Vetter interface {
	Vet(ctx context.Context, lead *core.Lead) (*core.VettingOutcome, error)
}

// ServiceVerifier adapts the in-process vetting service to LeadVerifier
type ServiceVerifier struct {
	vetter Vetter
}

// NewServiceVerifier creates a verifier backed by the vetting service
func NewServiceVerifier(vetter Vetter) *ServiceVerifier {
	return &ServiceVerifier{vetter: vetter}
}

// VerifyLead vets the lead in-process
func (v *ServiceVerifier) VerifyLead(ctx context.Context, lead *core.Lead) (*core.Verdict, error) {
	outcome, err := v.vetter.Vet(ctx, lead)
	if err != nil {
		return nil, err
	}
	return &outcome.Verdict, nil
}

// Submitter runs the form's submit flow
type Submitter struct {
	verifier LeadVerifier
	partners core.PartnerMatcher
	logger   *zap.Logger
}

// NewSubmitter creates a new submitter. partners may be nil.
func NewSubmitter(verifier LeadVerifier, partners core.PartnerMatcher, logger *zap.Logger) *Submitter {
	return &Submitter{
		verifier: verifier,
		partners: partners,
		logger:   logger,
	}
}

// Submit validates the form and, when valid, shows the verdict for the lead.
// Verifier failures are not returned: the dialog shows the connectivity fallback.
func (s *Submitter) Submit(ctx context.Context, state *State) error {
	errs := Validate(state.Fields)
	state.Errors = errs
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	state.Submitting = true
	defer func() { state.Submitting = false }()

	lead := state.Fields.Lead()

	if s.partners != nil {
		if name, ok := s.partners.Match(lead.EmailDomain, lead.Company); ok {
			s.logger.Debug("Trusted partner submitted the form", zap.String("partner", name))
			state.show(core.TrustedPartnerVerdict(name))
			return nil
		}
	}

	verdict, err := s.verifier.VerifyLead(ctx, lead)
	if err != nil {
		s.logger.Warn("Lead verification failed", zap.Error(err))
		state.show(core.FallbackVerdict(core.ReasonUnreachable))
		return nil
	}

	state.show(*verdict)
	return nil
}
