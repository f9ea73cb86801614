package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_CoverageConfig(t *testing.T) {
	os.Setenv("COVERAGE_PROVIDER_PRIORITY", "supersonic, mtn")
	os.Setenv("COVERAGE_PRIMARY_PROVIDER", "supersonic")
	os.Setenv("COVERAGE_RETRY_ATTEMPTS", "3")
	os.Setenv("COVERAGE_PROVIDER_TIMEOUT", "5s")
	os.Setenv("COVERAGE_USE_MOCKS", "true")
	defer func() {
		os.Unsetenv("COVERAGE_PROVIDER_PRIORITY")
		os.Unsetenv("COVERAGE_PRIMARY_PROVIDER")
		os.Unsetenv("COVERAGE_RETRY_ATTEMPTS")
		os.Unsetenv("COVERAGE_PROVIDER_TIMEOUT")
		os.Unsetenv("COVERAGE_USE_MOCKS")
	}()

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, []string{"supersonic", "mtn"}, cfg.Coverage.ProviderPriority)
	assert.Equal(t, "supersonic", cfg.Coverage.PrimaryProvider)
	assert.Equal(t, 3, cfg.Coverage.RetryAttempts)
	assert.Equal(t, 5*time.Second, cfg.Coverage.ProviderTimeout)
	assert.True(t, cfg.Coverage.UseMocks)
}

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("COVERAGE_PROVIDER_PRIORITY")
	os.Unsetenv("COVERAGE_PRIMARY_PROVIDER")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, []string{"mtn", "tarana", "supersonic"}, cfg.Coverage.ProviderPriority)
	assert.Equal(t, "mtn", cfg.Coverage.PrimaryProvider)
	assert.Equal(t, 300, cfg.Coverage.CacheTTLSeconds)
	assert.False(t, cfg.Coverage.UseMocks)
	assert.Equal(t, "circletel_coverage", cfg.Database.Database)
}
