package config

import (
	"fmt"

	"github.com/mikey/lead-vetting/internal/partner"
)

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	ListenAddress string
}

// HunterConfig represents the configuration for the Hunter email verifier
type HunterConfig struct {
	BaseURL string
	APIKey  string
}

// UProcConfig represents the configuration for the uProc email checker
type UProcConfig struct {
	BaseURL   string
	Email     string
	APIKey    string
	Processor string
}

// LocalConfig represents the configuration for the offline checker
type LocalConfig struct {
	SMTPCheck bool
	SMTPFrom  string
}

// LLMConfig represents the configuration shared by the LLM-backed assessors
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// CacheConfig represents the evidence cache configuration
type CacheConfig struct {
	Type          string
	Enabled       bool
	SQLitePath    string
	MySQLDSN      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// IntakeConfig represents the SMTP intake configuration
type IntakeConfig struct {
	Enabled          bool
	ListenAddress    string
	BlockFailed      bool
	CompanyHeader    string
	SpamHeader       string
	ConfidenceHeader string
	ResultHeader     string
	ReasonHeader     string
	RelayEnabled     bool
	RelayAddress     string
	RelayPort        int
}

// WebhookConfig represents the configuration of the form's webhook client
type WebhookConfig struct {
	URL string
}

// GetServer returns the HTTP server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress: c.GetString("server.listen_address"),
	}
}

// GetHunter returns the Hunter configuration
func (c *Config) GetHunter() HunterConfig {
	return HunterConfig{
		BaseURL: c.GetString("hunter.base_url"),
		APIKey:  c.GetString("hunter.api_key"),
	}
}

// GetUProc returns the uProc configuration
func (c *Config) GetUProc() UProcConfig {
	return UProcConfig{
		BaseURL:   c.GetString("uproc.base_url"),
		Email:     c.GetString("uproc.email"),
		APIKey:    c.GetString("uproc.api_key"),
		Processor: c.GetString("uproc.processor"),
	}
}

// GetLocal returns the offline checker configuration
func (c *Config) GetLocal() LocalConfig {
	return LocalConfig{
		SMTPCheck: c.GetBool("local.smtp_check"),
		SMTPFrom:  c.GetString("local.smtp_from"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() LLMConfig {
	return c.getLLM("gemini")
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() LLMConfig {
	return c.getLLM("openai")
}

func (c *Config) getLLM(section string) LLMConfig {
	return LLMConfig{
		APIKey:      c.GetString(section + ".api_key"),
		BaseURL:     c.GetString(section + ".base_url"),
		ModelName:   c.GetString(section + ".model_name"),
		MaxTokens:   c.GetInt(section + ".max_tokens"),
		Temperature: float32(c.GetFloat64(section + ".temperature")),
		TopP:        float32(c.GetFloat64(section + ".top_p")),
	}
}

// GetCache returns the cache configuration
func (c *Config) GetCache() CacheConfig {
	return CacheConfig{
		Type:          c.GetString("cache.type"),
		Enabled:       c.GetBool("cache.enabled"),
		SQLitePath:    c.GetString("cache.sqlite_path"),
		MySQLDSN:      c.GetString("cache.mysql_dsn"),
		RedisAddr:     c.GetString("cache.redis_addr"),
		RedisPassword: c.GetString("cache.redis_password"),
		RedisDB:       c.GetInt("cache.redis_db"),
	}
}

// GetIntake returns the SMTP intake configuration
func (c *Config) GetIntake() IntakeConfig {
	return IntakeConfig{
		Enabled:          c.GetBool("intake.enabled"),
		ListenAddress:    c.GetString("intake.listen_address"),
		BlockFailed:      c.GetBool("intake.block_failed"),
		CompanyHeader:    c.GetString("intake.company_header"),
		SpamHeader:       c.GetString("intake.headers.spam"),
		ConfidenceHeader: c.GetString("intake.headers.confidence"),
		ResultHeader:     c.GetString("intake.headers.result"),
		ReasonHeader:     c.GetString("intake.headers.reason"),
		RelayEnabled:     c.GetBool("intake.relay.enabled"),
		RelayAddress:     c.GetString("intake.relay.address"),
		RelayPort:        c.GetInt("intake.relay.port"),
	}
}

// GetWebhook returns the webhook client configuration
func (c *Config) GetWebhook() WebhookConfig {
	return WebhookConfig{
		URL: c.GetString("webhook.url"),
	}
}

// GetPartners returns the trusted partner list
func (c *Config) GetPartners() ([]partner.Partner, error) {
	var partners []partner.Partner
	if err := c.v.UnmarshalKey("partners.trusted", &partners); err != nil {
		return nil, fmt.Errorf("invalid partners.trusted: %w", err)
	}
	return partners, nil
}
