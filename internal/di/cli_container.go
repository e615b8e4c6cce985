package di

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/lead-vetting/internal/adapters/webhook"
	"github.com/mikey/lead-vetting/internal/config"
	"github.com/mikey/lead-vetting/internal/core"
	"github.com/mikey/lead-vetting/internal/form"
	"github.com/mikey/lead-vetting/internal/logging"
)

// BuildCLIContainer creates and configures a dependency injection container for the CLI.
// v carries the defaults, the optional config file and the bound command line flags.
func BuildCLIContainer(v *viper.Viper) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() *config.Config {
		return config.NewFromViper(v)
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(cfg *config.Config) (*zap.Logger, error) {
		return logging.InitConsoleLogger(cfg.GetBool("cli.verbose"), cfg.GetBool("cli.json_log"))
	}); err != nil {
		return nil, err
	}

	// Register metrics registry; the CLI never serves it
	if err := container.Provide(prometheus.NewRegistry); err != nil {
		return nil, err
	}

	if err := provideVetting(container); err != nil {
		return nil, err
	}

	// Register the form's verifier: the remote webhook when configured, else in-process
	if err := container.Provide(func(cfg *config.Config, service *core.VettingService, logger *zap.Logger) (form.LeadVerifier, error) {
		wc := cfg.GetWebhook()
		if wc.URL == "" {
			return form.NewServiceVerifier(service), nil
		}
		timeout, err := cfg.GetDuration("webhook.timeout")
		if err != nil {
			return nil, err
		}
		logger.Debug("Using remote webhook", zap.String("url", wc.URL))
		return webhook.NewClient(wc.URL, timeout, logger), nil
	}); err != nil {
		return nil, err
	}

	if err := container.Provide(func(verifier form.LeadVerifier, partners core.PartnerMatcher, logger *zap.Logger) *form.Submitter {
		return form.NewSubmitter(verifier, partners, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
