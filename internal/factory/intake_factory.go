package factory

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mikey/lead-vetting/internal/adapters/httpapi"
	"github.com/mikey/lead-vetting/internal/adapters/intake"
	"github.com/mikey/lead-vetting/internal/config"
	"github.com/mikey/lead-vetting/internal/core"
	"github.com/mikey/lead-vetting/internal/ports"
)

// IntakeFactory creates the lead intakes based on configuration
type IntakeFactory struct {
	cfg      *config.Config
	logger   *zap.Logger
	service  *core.VettingService
	gatherer prometheus.Gatherer
}

// NewIntakeFactory creates a new intake factory
func NewIntakeFactory(cfg *config.Config, logger *zap.Logger, service *core.VettingService, gatherer prometheus.Gatherer) *IntakeFactory {
	return &IntakeFactory{
		cfg:      cfg,
		logger:   logger,
		service:  service,
		gatherer: gatherer,
	}
}

// CreateIntakes returns the HTTP API and, when enabled, the SMTP intake
func (f *IntakeFactory) CreateIntakes() ([]ports.Intake, error) {
	api, err := f.CreateHTTPServer()
	if err != nil {
		return nil, err
	}
	intakes := []ports.Intake{api}

	if f.cfg.GetBool("intake.enabled") {
		smtpIntake, err := f.CreateSMTPIntake()
		if err != nil {
			return nil, err
		}
		intakes = append(intakes, smtpIntake)
	}
	return intakes, nil
}

// CreateHTTPServer creates the webhook and evaluation API server
func (f *IntakeFactory) CreateHTTPServer() (*httpapi.Server, error) {
	readHeaderTimeout, err := f.cfg.GetDuration("server.read_header_timeout")
	if err != nil {
		return nil, err
	}

	handler := httpapi.NewHandler(f.service, f.gatherer, f.logger.Named("http"))
	return httpapi.NewServer(
		f.cfg.GetServer().ListenAddress,
		readHeaderTimeout,
		handler.Router(),
		f.logger.Named("http"),
	), nil
}

// CreateSMTPIntake creates the SMTP intake
func (f *IntakeFactory) CreateSMTPIntake() (*intake.SMTPIntake, error) {
	ic := f.cfg.GetIntake()
	if ic.ListenAddress == "" {
		return nil, fmt.Errorf("intake.listen_address is required when the SMTP intake is enabled")
	}
	if ic.RelayEnabled && (ic.RelayAddress == "" || ic.RelayPort <= 0) {
		return nil, fmt.Errorf("intake.relay.address and intake.relay.port are required when relaying")
	}

	return intake.NewSMTPIntake(f.service, f.logger.Named("smtp"), intake.Options{
		ListenAddr:    ic.ListenAddress,
		BlockFailed:   ic.BlockFailed,
		CompanyHeader: ic.CompanyHeader,
		Headers: intake.Headers{
			Spam:       ic.SpamHeader,
			Confidence: ic.ConfidenceHeader,
			Result:     ic.ResultHeader,
			Reason:     ic.ReasonHeader,
		},
		RelayEnabled: ic.RelayEnabled,
		RelayAddr:    ic.RelayAddress,
		RelayPort:    ic.RelayPort,
	}), nil
}
