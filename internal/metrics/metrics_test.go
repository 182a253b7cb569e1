package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TestCollector_RecordsAdmissionMetrics は許可・拒否・レイテンシが
// 登録したレジストリに出力されることを検証する。
func TestCollector_RecordsAdmissionMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAdmissionGranted("loan")
	c.RecordAdmissionDenied("loan", "CAPACITY_EXCEEDED")
	c.RecordAdmissionDenied("reservation", "INSUFFICIENT_CAPACITY")
	c.RecordAdmissionLatency("loan", 15*time.Millisecond)
	c.RecordHTTPStatus(400)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	body := w.Body.String()
	for _, want := range []string{
		`loanman_admission_granted_total{operation="loan"} 1`,
		`loanman_admission_denied_total{operation="loan",reason="CAPACITY_EXCEEDED"} 1`,
		`loanman_admission_denied_total{operation="reservation",reason="INSUFFICIENT_CAPACITY"} 1`,
		`loanman_http_status_total{status_code="400"} 1`,
		`loanman_admission_latency_seconds_count{operation="loan"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q\n---\n%s", want, body)
		}
	}
}

// TestNewCollector_DoubleRegisterPanics は同一レジストリへの二重登録が
// panicすることを検証する（MustRegisterの契約）。
func TestNewCollector_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	NewCollector(reg)
}
