package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadServerConfigDefaults(t *testing.T) {
	c := LoadServerConfig()

	assert.Equal(t, "5000", c.Port)
	assert.Equal(t, DefaultUpstreamURL, c.UpstreamURL)
	assert.Equal(t, 30*time.Second, c.FetchTimeout)
	assert.Equal(t, 100, c.ChunkSize)
	assert.Equal(t, time.Duration(0), c.RefreshInterval)
	assert.Equal(t, "dev-secret-change-me", c.AdminSecret)
	assert.Equal(t, "cardmirror", c.AdminIssuer)
}

func TestLoadServerConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "10000")
	t.Setenv("CARDMIRROR_UPSTREAM_URL", "http://localhost:9000/cards")
	t.Setenv("CARDMIRROR_FETCH_TIMEOUT", "5s")
	t.Setenv("CARDMIRROR_CHUNK_SIZE", "25")
	t.Setenv("CARDMIRROR_REFRESH_INTERVAL", "1h")
	t.Setenv("CARDMIRROR_ADMIN_SECRET", "s3cret")
	t.Setenv("CARDMIRROR_ADMIN_ISSUER", "ops-team")

	c := LoadServerConfig()

	assert.Equal(t, "10000", c.Port)
	assert.Equal(t, "http://localhost:9000/cards", c.UpstreamURL)
	assert.Equal(t, 5*time.Second, c.FetchTimeout)
	assert.Equal(t, 25, c.ChunkSize)
	assert.Equal(t, time.Hour, c.RefreshInterval)
	assert.Equal(t, "s3cret", c.AdminSecret)
	assert.Equal(t, "ops-team", c.AdminIssuer)
}

func TestLoadServerConfigIgnoresBadValues(t *testing.T) {
	t.Setenv("CARDMIRROR_CHUNK_SIZE", "zero")
	t.Setenv("CARDMIRROR_REFRESH_INTERVAL", "soon")

	c := LoadServerConfig()

	assert.Equal(t, 100, c.ChunkSize)
	assert.Equal(t, time.Duration(0), c.RefreshInterval)
}
