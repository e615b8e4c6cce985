package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/lead-vetting/internal/adapters/bedrock"
	"github.com/mikey/lead-vetting/internal/adapters/gemini"
	"github.com/mikey/lead-vetting/internal/adapters/hunter"
	"github.com/mikey/lead-vetting/internal/adapters/local"
	"github.com/mikey/lead-vetting/internal/adapters/openai"
	"github.com/mikey/lead-vetting/internal/adapters/uproc"
	"github.com/mikey/lead-vetting/internal/config"
	"github.com/mikey/lead-vetting/internal/core"
	"github.com/mikey/lead-vetting/internal/utils"
)

// ProviderFactory creates the enrichment providers
type ProviderFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor

	mu      sync.Mutex
	local   *local.Checker
	closers []io.Closer
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *ProviderFactory {
	return &ProviderFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateAssessor creates the first enrichment provider based on the configuration
func (f *ProviderFactory) CreateAssessor() (core.EmailAssessor, error) {
	provider := f.cfg.GetString("enrichment.provider")
	f.logger.Info("Creating email assessor", zap.String("provider", provider))

	switch provider {
	case "hunter":
		hunterCfg := f.cfg.GetHunter()
		if hunterCfg.APIKey == "" {
			return nil, errors.New("hunter.api_key is required for the hunter provider")
		}
		httpClient, err := f.httpClient()
		if err != nil {
			return nil, err
		}
		return hunter.NewClient(hunterCfg.BaseURL, hunterCfg.APIKey, httpClient, f.logger), nil
	case "local":
		checker, err := f.localChecker()
		if err != nil {
			return nil, err
		}
		return checker, nil
	case "openai":
		openaiCfg := f.cfg.GetOpenAI()
		return openai.NewAssessor(
			openai.NewClient(openaiCfg.APIKey, openaiCfg.BaseURL),
			openaiCfg.ModelName,
			openaiCfg.MaxTokens,
			openaiCfg.Temperature,
			openaiCfg.TopP,
			f.logger,
			f.textProcessor,
		), nil
	case "gemini":
		geminiCfg := f.cfg.GetGemini()
		assessor, err := gemini.NewAssessor(
			geminiCfg.APIKey,
			geminiCfg.ModelName,
			geminiCfg.MaxTokens,
			geminiCfg.Temperature,
			geminiCfg.TopP,
			f.logger,
			f.textProcessor,
		)
		if err != nil {
			return nil, err
		}
		f.track(assessor)
		return assessor, nil
	case "bedrock":
		bedrockCfg := f.cfg.GetBedrock()
		client, err := bedrock.NewClient(context.Background(), bedrockCfg.Region)
		if err != nil {
			return nil, err
		}
		return bedrock.NewAssessor(
			client,
			bedrockCfg.ModelID,
			bedrockCfg.MaxTokens,
			bedrockCfg.Temperature,
			bedrockCfg.TopP,
			f.logger,
			f.textProcessor,
		), nil
	default:
		return nil, fmt.Errorf("unsupported enrichment provider: %s", provider)
	}
}

// CreateVerifier creates the second enrichment provider based on the configuration
func (f *ProviderFactory) CreateVerifier() (core.AddressVerifier, error) {
	provider := f.cfg.GetString("verification.provider")
	f.logger.Info("Creating address verifier", zap.String("provider", provider))

	switch provider {
	case "uproc":
		uprocCfg := f.cfg.GetUProc()
		if uprocCfg.Email == "" || uprocCfg.APIKey == "" {
			return nil, errors.New("uproc.email and uproc.api_key are required for the uproc provider")
		}
		httpClient, err := f.httpClient()
		if err != nil {
			return nil, err
		}
		return uproc.NewClient(uprocCfg.BaseURL, uprocCfg.Email, uprocCfg.APIKey, uprocCfg.Processor, httpClient, f.logger), nil
	case "local":
		checker, err := f.localChecker()
		if err != nil {
			return nil, err
		}
		return checker, nil
	default:
		return nil, fmt.Errorf("unsupported verification provider: %s", provider)
	}
}

// ProviderTimeout returns the per-call budget for enrichment providers
func (f *ProviderFactory) ProviderTimeout() (time.Duration, error) {
	return f.cfg.GetDuration("enrichment.timeout")
}

// Close releases provider clients that hold connections
func (f *ProviderFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	for _, c := range f.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	f.closers = nil
	return errors.Join(errs...)
}

func (f *ProviderFactory) track(c io.Closer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closers = append(f.closers, c)
}

func (f *ProviderFactory) httpClient() (*http.Client, error) {
	timeout, err := f.ProviderTimeout()
	if err != nil {
		return nil, err
	}
	return &http.Client{Timeout: timeout}, nil
}

// localChecker returns the shared offline checker, which serves both provider roles
func (f *ProviderFactory) localChecker() (*local.Checker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.local != nil {
		return f.local, nil
	}

	dnsTimeout, err := f.cfg.GetDuration("local.dns_timeout")
	if err != nil {
		return nil, err
	}

	localCfg := f.cfg.GetLocal()
	var dialer local.Dialer
	if localCfg.SMTPCheck {
		dialer = local.SMTPDialer{}
	}

	f.local = local.NewChecker(nil, dialer, localCfg.SMTPFrom, dnsTimeout, f.logger)
	return f.local, nil
}
