package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveUpstreamCountsOutcomes(t *testing.T) {
	ok := testutil.ToFloat64(upstreamCallsTotal.WithLabelValues("unit-llm", "ok"))
	bad := testutil.ToFloat64(upstreamCallsTotal.WithLabelValues("unit-llm", "error"))

	ObserveUpstream("unit-llm", time.Now(), nil)
	ObserveUpstream("unit-llm", time.Now(), errors.New("503"))
	ObserveUpstream("unit-llm", time.Now(), errors.New("503"))

	assert.Equal(t, ok+1, testutil.ToFloat64(upstreamCallsTotal.WithLabelValues("unit-llm", "ok")))
	assert.Equal(t, bad+2, testutil.ToFloat64(upstreamCallsTotal.WithLabelValues("unit-llm", "error")))
}

func TestHandoffAndRecordWrite(t *testing.T) {
	before := testutil.ToFloat64(turnHandoffsTotal.WithLabelValues("llm2", "rejected"))
	Handoff("llm2", "rejected")
	assert.Equal(t, before+1, testutil.ToFloat64(turnHandoffsTotal.WithLabelValues("llm2", "rejected")))

	before = testutil.ToFloat64(recordWritesTotal.WithLabelValues("append_speech", "ok"))
	RecordWrite("append_speech", nil)
	assert.Equal(t, before+1, testutil.ToFloat64(recordWritesTotal.WithLabelValues("append_speech", "ok")))
}

func TestHandlerExposesNamespace(t *testing.T) {
	Handoff("llm1", "generated")
	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "gd_turn_handoffs_total")
}
