package reconcile

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/heptiolabs/healthcheck"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rolevate/roomgo/internal/pkg/cmdapp"
)

type serviceMetric struct {
	responseDur prometheus.ObserverVec
}

// ServiceData keeps data required for service work
type ServiceData struct {
	Port    int
	health  healthcheck.Handler
	worker  Worker
	metrics serviceMetric
}

// StartWebServer starts the HTTP service and listens for the requests
func StartWebServer(data *ServiceData) error {
	cmdapp.Log.Infof("Starting HTTP service at %d", data.Port)
	r := NewRouter(data)
	http.Handle("/", r)
	portStr := strconv.Itoa(data.Port)
	err := http.ListenAndServe(":"+portStr, nil)

	if err != nil {
		return errors.Wrap(err, "Can't start HTTP listener at port "+portStr)
	}
	return nil
}

// NewRouter creates the router for HTTP service
func NewRouter(data *ServiceData) *mux.Router {
	router := mux.NewRouter()
	rh := promhttp.InstrumentHandlerDuration(data.metrics.responseDur, &runHandler{data: data})
	router.Methods("POST").Path("/reconcile").Handler(rh)
	router.Methods("GET").Path("/metrics").Handler(promhttp.Handler())
	if data.health != nil {
		router.Methods("GET").Path("/live").HandlerFunc(data.health.LiveEndpoint)
		router.Methods("GET").Path("/ready").HandlerFunc(data.health.ReadyEndpoint)
	}
	return router
}

type runHandler struct {
	data *ServiceData
}

//ServeHTTP triggers a reconciliation pass outside the timer schedule
func (h *runHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cmdapp.Log.Infof("Request from %s", r.RemoteAddr)

	err := h.data.worker.ReconcileAll()
	if err != nil {
		http.Error(w, "Reconcile failed", http.StatusInternalServerError)
		cmdapp.Log.Error(err)
		return
	}
	w.Write([]byte("OK"))
}
