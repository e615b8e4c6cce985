package di

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/lead-vetting/internal/config"
	"github.com/mikey/lead-vetting/internal/core"
	"github.com/mikey/lead-vetting/internal/factory"
	"github.com/mikey/lead-vetting/internal/logging"
	"github.com/mikey/lead-vetting/internal/metrics"
	"github.com/mikey/lead-vetting/internal/partner"
	"github.com/mikey/lead-vetting/internal/ports"
	"github.com/mikey/lead-vetting/internal/utils"
)

// BuildContainer creates and configures a dependency injection container for the daemon
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register metrics registry, with runtime collectors for the daemon
	if err := container.Provide(func() *prometheus.Registry {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		return reg
	}); err != nil {
		return nil, err
	}

	if err := provideVetting(container); err != nil {
		return nil, err
	}

	// Register intakes
	if err := container.Provide(factory.NewIntakeFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.IntakeFactory) ([]ports.Intake, error) {
		return f.CreateIntakes()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideVetting registers everything between the configuration and the vetting service.
// The container must already provide *config.Config, *zap.Logger and *prometheus.Registry.
func provideVetting(container *dig.Container) error {
	// Metrics
	if err := container.Provide(func(reg *prometheus.Registry) prometheus.Registerer { return reg }); err != nil {
		return err
	}
	if err := container.Provide(func(reg *prometheus.Registry) prometheus.Gatherer { return reg }); err != nil {
		return err
	}
	if err := container.Provide(metrics.New); err != nil {
		return err
	}

	// Factories
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return err
	}
	if err := container.Provide(factory.NewProviderFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return err
	}

	// Providers
	if err := container.Provide(func(f *factory.ProviderFactory) (core.EmailAssessor, error) {
		return f.CreateAssessor()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.ProviderFactory) (core.AddressVerifier, error) {
		return f.CreateVerifier()
	}); err != nil {
		return err
	}

	// Cache repository
	if err := container.Provide(func(f *factory.CacheFactory) (factory.StoppableCache, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(c factory.StoppableCache) core.CacheRepository { return c }); err != nil {
		return err
	}

	// Trusted partners
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (*partner.Checker, error) {
		partners, err := cfg.GetPartners()
		if err != nil {
			return nil, err
		}
		return partner.NewChecker(partners, logger), nil
	}); err != nil {
		return err
	}
	if err := container.Provide(func(c *partner.Checker) core.PartnerMatcher { return c }); err != nil {
		return err
	}

	// Vetting service
	if err := container.Provide(func(cf *factory.CacheFactory, pf *factory.ProviderFactory) (core.VettingOptions, error) {
		ttl, err := cf.GetCacheTTL()
		if err != nil {
			return core.VettingOptions{}, err
		}
		timeout, err := pf.ProviderTimeout()
		if err != nil {
			return core.VettingOptions{}, err
		}
		return core.VettingOptions{
			CacheEnabled:    cf.IsCacheEnabled(),
			CacheTTL:        ttl,
			ProviderTimeout: timeout,
		}, nil
	}); err != nil {
		return err
	}
	return container.Provide(core.NewVettingService)
}
