package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/azhar1598/xplore-be/internal/config"
	"github.com/azhar1598/xplore-be/internal/domain"
	"github.com/azhar1598/xplore-be/internal/util"
	apperrors "github.com/azhar1598/xplore-be/pkg/errors"
)

type stubSynth struct {
	insight *domain.BusinessInsight
	err     error
	names   []string
}

func (s *stubSynth) GetBusinessInsights(_ context.Context, name string) (*domain.BusinessInsight, error) {
	s.names = append(s.names, name)
	return s.insight, s.err
}

type stubController struct {
	result  *domain.InsightResult
	records []domain.InsightRecord
	err     error
	owner   string
	name    string
	filter  domain.HistoryFilter
}

func (s *stubController) GetInsights(_ context.Context, owner, name string) (*domain.InsightResult, error) {
	s.owner = owner
	s.name = name
	return s.result, s.err
}

func (s *stubController) History(_ context.Context, filter domain.HistoryFilter) ([]domain.InsightRecord, error) {
	s.filter = filter
	return s.records, s.err
}

func testInsight() *domain.BusinessInsight {
	return &domain.BusinessInsight{
		BusinessName:      "Mobile Repair",
		YoutubeVideo:      "https://www.youtube.com/embed/abc123",
		BusinessThumbnail: "https://images.example/medium/xyz.jpg",
	}
}

func newTestServer(synth *stubSynth, ctrl *stubController, checks map[string]HealthCheck) *Server {
	cfg := config.ServerConfig{
		Port:           "0",
		AllowedOrigins: []string{"http://localhost:3000"},
	}
	circuit := func() util.CircuitBreakerStatus { return util.CircuitBreakerStatus{State: "CLOSED"} }
	return New(cfg,
		NewInsightHandler(synth, ctrl, zap.NewNop()),
		NewHealthHandler(checks, circuit),
		zap.NewNop(),
	)
}

func do(t *testing.T, srv *Server, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var body map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestRootReturnsBareInsight(t *testing.T) {
	synth := &stubSynth{insight: testInsight()}
	srv := newTestServer(synth, &stubController{}, nil)

	rec, body := do(t, srv, httptest.NewRequest(http.MethodGet, "/?name=mobile%20repair", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Mobile Repair", body["businessName"])
	assert.Equal(t, "https://www.youtube.com/embed/abc123", body["youtubeVideo"])
	assert.Equal(t, []string{"mobile repair"}, synth.names)
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
}

func TestRootMissingName(t *testing.T) {
	synth := &stubSynth{insight: testInsight()}
	srv := newTestServer(synth, &stubController{}, nil)

	for _, target := range []string{"/", "/?name=", "/?name=%20%20"} {
		rec, body := do(t, srv, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, "Business name is required", body["error"])
	}
	assert.Empty(t, synth.names)

	long := "/?name=" + strings.Repeat("a", 201)
	rec, body := do(t, srv, httptest.NewRequest(http.MethodGet, long, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Business name is too long", body["error"])
}

func TestRootErrorMapping(t *testing.T) {
	tests := map[string]struct {
		err     error
		status  int
		message string
	}{
		"provider unavailable": {
			err:     apperrors.NewProviderError("text provider unavailable", "text", errors.New("timeout")),
			status:  http.StatusServiceUnavailable,
			message: "text provider unavailable",
		},
		"malformed response": {
			err:     apperrors.NewMalformedResponseError("generated insight is not valid JSON", "text", nil),
			status:  http.StatusBadGateway,
			message: "generated insight is not valid JSON",
		},
		"unclassified": {
			err:     errors.New("something odd"),
			status:  http.StatusInternalServerError,
			message: "Internal server error",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			srv := newTestServer(&stubSynth{err: tt.err}, &stubController{}, nil)
			rec, body := do(t, srv, httptest.NewRequest(http.MethodGet, "/?name=bakery", nil))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, body["error"])
			assert.NotEmpty(t, body["details"])
		})
	}
}

func TestBusinessInsightsEnvelope(t *testing.T) {
	ctrl := &stubController{result: &domain.InsightResult{Source: domain.SourceAPI, Data: testInsight()}}
	srv := newTestServer(&stubSynth{}, ctrl, nil)

	req := httptest.NewRequest(http.MethodGet, "/business-insights?name=mobile+repair", nil)
	req.Header.Set(HeaderUserID, "user-1")
	rec, body := do(t, srv, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", body["status"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "api", data["source"])
	assert.Equal(t, "Mobile Repair", data["data"].(map[string]any)["businessName"])
	assert.Equal(t, "user-1", ctrl.owner)
}

func TestBusinessInsightsValidation(t *testing.T) {
	srv := newTestServer(&stubSynth{}, &stubController{}, nil)

	rec, body := do(t, srv, httptest.NewRequest(http.MethodGet, "/business-insights?name=bakery", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User id is required", body["message"])

	req := httptest.NewRequest(http.MethodGet, "/business-insights", nil)
	req.Header.Set(HeaderUserID, "user-1")
	rec, body = do(t, srv, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Business name is required", body["message"])
}

func TestBusinessInsightsHidesInternalErrors(t *testing.T) {
	ctrl := &stubController{err: apperrors.NewStoreError("failed to insert insight", "insert", errors.New("pq: password authentication failed"))}
	srv := newTestServer(&stubSynth{}, ctrl, nil)

	req := httptest.NewRequest(http.MethodGet, "/business-insights?name=bakery", nil)
	req.Header.Set(HeaderUserID, "user-1")
	rec, body := do(t, srv, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", body["message"])
	assert.Equal(t, apperrors.CodeDatabase, body["code"])
}

func TestHistoryPassesFilter(t *testing.T) {
	ctrl := &stubController{records: []domain.InsightRecord{{OwnerID: "user-1", BusinessName: "bakery", CreatedAt: time.Now()}}}
	srv := newTestServer(&stubSynth{}, ctrl, nil)

	req := httptest.NewRequest(http.MethodGet, "/business-insights/history?name=bakery&limit=5", nil)
	req.Header.Set(HeaderUserID, "user-1")
	rec, body := do(t, srv, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["data"], 1)
	assert.Equal(t, domain.HistoryFilter{OwnerID: "user-1", BusinessName: "bakery", Limit: 5}, ctrl.filter)

	req = httptest.NewRequest(http.MethodGet, "/business-insights/history?limit=abc", nil)
	req.Header.Set(HeaderUserID, "user-1")
	rec, body = do(t, srv, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "limit must be a non-negative integer", body["message"])
}

func TestHistoryRequiresOwner(t *testing.T) {
	ctrl := &stubController{}
	srv := newTestServer(&stubSynth{}, ctrl, nil)

	rec, body := do(t, srv, httptest.NewRequest(http.MethodGet, "/business-insights/history?name=bakery", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User id is required", body["message"])
	assert.Equal(t, domain.HistoryFilter{}, ctrl.filter)
}

func TestBusinessNamePassedThroughUnchanged(t *testing.T) {
	synth := &stubSynth{insight: testInsight()}
	ctrl := &stubController{result: &domain.InsightResult{Source: domain.SourceAPI, Data: testInsight()}}
	srv := newTestServer(synth, ctrl, nil)

	for _, target := range []string{"/?name=%20Tea%20Stall%20", "/?name=Tea%20Stall"} {
		rec, _ := do(t, srv, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, []string{" Tea Stall ", "Tea Stall"}, synth.names)

	req := httptest.NewRequest(http.MethodGet, "/business-insights?name=%20Tea%20Stall%20", nil)
	req.Header.Set(HeaderUserID, "user-1")
	rec, _ := do(t, srv, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, " Tea Stall ", ctrl.name)
}

func TestHealthz(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		srv := newTestServer(&stubSynth{}, &stubController{}, map[string]HealthCheck{
			"redis":    func(context.Context) error { return nil },
			"postgres": func(context.Context) error { return nil },
		})
		rec, body := do(t, srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		data := body["data"].(map[string]any)
		assert.Equal(t, "ok", data["status"])
		assert.Equal(t, "CLOSED", data["textCircuit"].(map[string]any)["state"])
	})

	t.Run("degraded", func(t *testing.T) {
		srv := newTestServer(&stubSynth{}, &stubController{}, map[string]HealthCheck{
			"redis": func(context.Context) error { return errors.New("connection refused") },
		})
		rec, body := do(t, srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		data := body["data"].(map[string]any)
		assert.Equal(t, "degraded", data["status"])
		assert.Equal(t, "connection refused", data["checks"].(map[string]any)["redis"])
	})
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(&stubSynth{}, &stubController{}, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	srv := newTestServer(&stubSynth{insight: testInsight()}, &stubController{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/?name=bakery", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
