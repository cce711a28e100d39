package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthCheck_Success(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")

	assert.Equal(t, http.StatusOK, resp.Code)

	health := decodeData[HealthResponse](t, resp)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "tolerance 2s", health.Components["engine"].Message)
	assert.Equal(t, "no tracked videos", health.Components["videos"].Message)
}

func TestHealthCheck_DegradedWithoutSponsorSource(t *testing.T) {
	ts := setupTestServer(t, withoutSponsorSource())

	health := decodeData[HealthResponse](t, ts.api.Get("/health"))

	assert.Equal(t, "degraded", health.Status)
	assert.Equal(t, "degraded", health.Components["sponsors"].Status)
}

func TestFormatVideoCount(t *testing.T) {
	assert.Equal(t, "no tracked videos", formatVideoCount(0))
	assert.Equal(t, "1 tracked video", formatVideoCount(1))
	assert.Equal(t, "12 tracked videos", formatVideoCount(12))
}
