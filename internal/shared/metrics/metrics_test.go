package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(analysisCompletedTotal.WithLabelValues("local", "good"))
	IncAnalysisCompleted("local", "good", 85)
	after := testutil.ToFloat64(analysisCompletedTotal.WithLabelValues("local", "good"))
	if after-before != 1 {
		t.Fatalf("expected completed counter to grow by 1, got %v", after-before)
	}

	SetOnline(true)
	if got := testutil.ToFloat64(connectivityOnline); got != 1 {
		t.Fatalf("expected online gauge 1, got %v", got)
	}
	SetOnline(false)
	if got := testutil.ToFloat64(connectivityOnline); got != 0 {
		t.Fatalf("expected online gauge 0, got %v", got)
	}
}

func TestHandlerRendersPrometheusText(t *testing.T) {
	gin.SetMode(gin.TestMode)
	IncAnalysisStarted("enhanced")
	ObserveAnalysisDurationMs("enhanced", -5)
	IncExport("json")

	r := gin.New()
	r.GET("/metrics", Handler())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	for _, name := range []string{
		"docuscore_analysis_started_total",
		"docuscore_analysis_duration_ms_bucket",
		"docuscore_exports_total",
	} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %s in metrics output", name)
		}
	}
}
