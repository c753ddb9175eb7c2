// Package endpoints serves the admin routes shared by every nodesched server:
// a health check and the rendered stats.
package endpoints

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/twitter/nodesched/common/stats"
)

const (
	HealthPath  = "/health"
	MetricsPath = "/admin/metrics.json"
)

// AddAdminRoutes registers the health and metrics handlers on r.
func AddAdminRoutes(r *mux.Router, stat stats.StatsReceiver) {
	r.HandleFunc(HealthPath, healthHandler).Methods(http.MethodGet)
	r.HandleFunc(MetricsPath, statsHandler(stat)).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(helpHandler)
}

func helpHandler(w http.ResponseWriter, r *http.Request) {
	http.Error(w, fmt.Sprintf("unknown path %s, common paths: '%s', '%s'", r.URL.Path, HealthPath, MetricsPath), http.StatusNotFound)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "ok")
}

// statsHandler renders stat, pretty printed with ?pretty=true.
func statsHandler(stat stats.StatsReceiver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		pretty := r.URL.Query().Get("pretty") == "true"
		if _, err := w.Write(stat.Render(pretty)); err != nil {
			log.Errorf("endpoints: writing stats: %v", err)
		}
	}
}

// MakeStatsReceiver builds a finagle style receiver latched at the given
// interval, in millisecond precision, scoped by scope.
func MakeStatsReceiver(scope string, latched time.Duration) (stats.StatsReceiver, func()) {
	s, cancel := stats.NewCustomStatsReceiver(stats.NewFinagleStatsRegistry, latched)
	return s.Scope(scope).Precision(time.Millisecond), cancel
}
