package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/lead-vetting/internal/partner"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	assert.Equal(t, ":8080", cfg.GetServer().ListenAddress)
	assert.Equal(t, "hunter", cfg.GetString("enrichment.provider"))
	assert.Equal(t, "uproc", cfg.GetString("verification.provider"))
	assert.Equal(t, "memory", cfg.GetCache().Type)
	assert.True(t, cfg.GetCache().Enabled)
	assert.False(t, cfg.GetIntake().Enabled)
	assert.Equal(t, "X-Lead-Result", cfg.GetIntake().ResultHeader)

	ttl, err := cfg.GetDuration("cache.ttl")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, ttl)

	partners, err := cfg.GetPartners()
	require.NoError(t, err)
	assert.Equal(t, []partner.Partner{{Domain: "textellent.com", Company: "textellent"}}, partners)
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
enrichment:
  provider: local
cache:
  type: sqlite
  ttl: 2h
partners:
  trusted:
    - domain: acme.com
      company: Acme
    - domain: globex.com
      company: Globex
openai:
  model_name: gpt-4o-mini
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := NewFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.GetString("enrichment.provider"))
	assert.Equal(t, "sqlite", cfg.GetCache().Type)
	assert.Equal(t, "gpt-4o-mini", cfg.GetOpenAI().ModelName)
	assert.Equal(t, 300, cfg.GetOpenAI().MaxTokens)

	partners, err := cfg.GetPartners()
	require.NoError(t, err)
	assert.Len(t, partners, 2)
	assert.Equal(t, "Globex", partners[1].Company)
}

func TestGetDurationInvalid(t *testing.T) {
	v := NewEmptyViper()
	v.Set("cache.ttl", "forever")

	_, err := NewFromViper(v).GetDuration("cache.ttl")
	assert.Error(t, err)
}
