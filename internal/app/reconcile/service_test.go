package reconcile

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

type runWorkerFake struct {
	calls int
	err   error
}

func (w *runWorkerFake) ReconcileAll() error {
	w.calls++
	return w.err
}

func newTestRouter(w Worker) http.Handler {
	data := &ServiceData{worker: w}
	data.metrics.responseDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "test_request_durations_seconds"}, nil)
	return NewRouter(data)
}

func TestWrongPath(t *testing.T) {
	req := httptest.NewRequest("GET", "/invalid", nil)
	resp := httptest.NewRecorder()
	newTestRouter(&runWorkerFake{}).ServeHTTP(resp, req)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestWrongMethod(t *testing.T) {
	req := httptest.NewRequest("GET", "/reconcile", nil)
	resp := httptest.NewRecorder()
	newTestRouter(&runWorkerFake{}).ServeHTTP(resp, req)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)
}

func TestRun(t *testing.T) {
	w := &runWorkerFake{}
	req := httptest.NewRequest("POST", "/reconcile", nil)
	resp := httptest.NewRecorder()
	newTestRouter(w).ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "OK", resp.Body.String())
	assert.Equal(t, 1, w.calls)
}

func TestRun_Fails(t *testing.T) {
	w := &runWorkerFake{err: errors.New("db down")}
	req := httptest.NewRequest("POST", "/reconcile", nil)
	resp := httptest.NewRecorder()
	newTestRouter(w).ServeHTTP(resp, req)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}
