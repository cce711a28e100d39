package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/chapter-timeline/internal/logger"
	"github.com/listenupapp/chapter-timeline/internal/service"
	"github.com/listenupapp/chapter-timeline/internal/sponsor"
	"github.com/listenupapp/chapter-timeline/internal/timeline"
)

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api     humatest.TestAPI
	sponsor *sponsor.Static
}

type serverOption func(*Options, *bool)

func withRateLimit(rps float64, burst int) serverOption {
	return func(o *Options, _ *bool) {
		o.RateLimitRPS = rps
		o.RateLimitBurst = burst
	}
}

func withoutSponsorSource() serverOption {
	return func(_ *Options, withSource *bool) {
		*withSource = false
	}
}

// setupTestServer creates a test server backed by an in-memory sponsor source.
func setupTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	options := Options{}
	withSource := true
	for _, opt := range opts {
		opt(&options, &withSource)
	}

	log := logger.Discard()
	engine := timeline.New(timeline.WithLogger(log))
	static := sponsor.NewStatic(nil)

	var source sponsor.Source
	if withSource {
		source = static
	}
	timelines := service.NewTimelineService(engine, source, nil, log)

	srv := NewServer(engine, timelines, options, log)
	t.Cleanup(srv.Close)

	return &testServer{
		Server:  srv,
		api:     humatest.Wrap(t, srv.API()),
		sponsor: static,
	}
}

// envelope is the decoded shape of every response body.
type envelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

func decodeData[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	require.True(t, env.Success, resp.Body.String())
	assert.Equal(t, EnvelopeVersion, env.Version)
	return env.Data
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) envelope[any] {
	t.Helper()
	var env envelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	assert.False(t, env.Success)
	assert.Equal(t, EnvelopeVersion, env.Version)
	return env
}

func TestServer_UnknownRoute(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/nothing-here")

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "route not found", decodeError(t, resp).Error)
}

func TestServer_RateLimit(t *testing.T) {
	ts := setupTestServer(t, withRateLimit(0.001, 1))

	first := ts.api.Get("/health")
	assert.Equal(t, http.StatusOK, first.Code)

	second := ts.api.Get("/health")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, decodeError(t, second).Error)

	// A different client has its own budget.
	other := ts.api.Get("/health", "X-Forwarded-For: 198.51.100.7")
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestServer_CORSPreflight(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Do(http.MethodOptions, "/api/v1/videos",
		"Origin: https://player.example",
		"Access-Control-Request-Method: PUT",
	)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))
}
