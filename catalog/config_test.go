package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 100, cfg.PerPage)
	assert.Empty(t, cfg.BaseURL)
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := NewConfig(WithBaseURL(" https://mealie.local/api/ "), WithToken("t"))
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "https://mealie.local/api", cfg.BaseURL)
	})

	tests := map[string]*Config{
		"missing base url": NewConfig(WithToken("t")),
		"missing token":    NewConfig(WithBaseURL("http://x")),
		"zero timeout":     NewConfig(WithBaseURL("http://x"), WithToken("t"), WithTimeout(0)),
		"zero page size":   NewConfig(WithBaseURL("http://x"), WithToken("t"), WithPerPage(0)),
	}
	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := NewClient(NewConfig())
	assert.Error(t, err)
}
