package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/scheduleterp/internal/profile"
)

func newTestProfile(t *testing.T, travelURL string) *profile.Profile {
	t.Helper()
	p := &profile.Profile{Mode: "dev", TravelTimeBaseURL: travelURL}
	p.FromEnv()
	require.NoError(t, p.Validate())
	return p
}

func TestServer_Healthz(t *testing.T) {
	s, err := NewServer(t.Context(), newTestProfile(t, "http://127.0.0.1:1"), nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Service ready.", rec.Body.String())
}

func TestServer_PrometheusMetrics(t *testing.T) {
	s, err := NewServer(t.Context(), newTestProfile(t, "http://127.0.0.1:1"), nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
	assert.Contains(t, rec.Body.String(), "scheduleterp_classification_duration_seconds")
}

func TestServer_ClassifyUsesTravelService(t *testing.T) {
	travel := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/traveltime/IRB/ESJ", r.URL.Path)
		_, _ = w.Write([]byte(`{"success": true, "time_mins": 12.7}`))
	}))
	defer travel.Close()

	s, err := NewServer(t.Context(), newTestProfile(t, travel.URL), nil)
	require.NoError(t, err)

	body := `{
		"candidate": {
			"course": {"_id": "MATH140"},
			"section": {"section_id": "0101", "meetings": [{"time": "MW 11:00am - 11:50am", "location": "ESJ 0202"}]}
		},
		"selected": [{
			"course": {"_id": "CMSC131"},
			"section": {"section_id": "0101", "meetings": [{"time": "MWF 10:00am - 10:50am", "location": "IRB 0324"}]}
		}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/conflicts/classify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"states":["warning"]}`, rec.Body.String())
}
