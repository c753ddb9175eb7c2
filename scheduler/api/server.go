// Package api serves a server.Scheduler over HTTP/JSON.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/twitter/nodesched/common/endpoints"
	"github.com/twitter/nodesched/common/stats"
	"github.com/twitter/nodesched/scheduler/domain"
	"github.com/twitter/nodesched/scheduler/knapsack"
	"github.com/twitter/nodesched/scheduler/server"
)

const (
	RoundsPath     = "/rounds"
	LedgerPath     = "/ledger"
	AlgorithmsPath = "/algorithms"
)

// Response wraps every reply body.
type Response struct {
	HttpStatusCode int         `json:"httpStatusCode"`
	ErrorMsg       string      `json:"errorMsg,omitempty"`
	Response       interface{} `json:"response,omitempty"`
}

// Handler combines the scheduler, the round rate limiter and the stats
// receiver behind one router.
type Handler struct {
	scheduler server.Scheduler
	stat      stats.StatsReceiver
	limiter   *rate.Limiter
	Router    *mux.Router
}

// NewHandler builds the router. maxRoundsPerSecond <= 0 disables the limit.
func NewHandler(scheduler server.Scheduler, stat stats.StatsReceiver, maxRoundsPerSecond float64, burst int) *Handler {
	limit := rate.Inf
	if maxRoundsPerSecond > 0 {
		limit = rate.Limit(maxRoundsPerSecond)
	}
	if burst < 1 {
		burst = 1
	}
	h := &Handler{
		scheduler: scheduler,
		stat:      stat,
		limiter:   rate.NewLimiter(limit, burst),
		Router:    mux.NewRouter(),
	}
	h.Router.HandleFunc(RoundsPath, h.RunRoundHandler).Methods(http.MethodPost)
	h.Router.HandleFunc(LedgerPath, h.LedgerHandler).Methods(http.MethodGet)
	h.Router.HandleFunc(AlgorithmsPath, h.AlgorithmsHandler).Methods(http.MethodGet)
	endpoints.AddAdminRoutes(h.Router, stat)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Router.ServeHTTP(w, r)
}

// RunRoundHandler runs the domain.Request in the body. An "algorithm" query
// parameter overrides the body's algorithm.
func (h *Handler) RunRoundHandler(w http.ResponseWriter, r *http.Request) {
	h.stat.Counter(stats.APIRequestsCounter, "rounds").Inc(1)
	if !h.limiter.Allow() {
		h.stat.Counter(stats.APIRateLimitedCounter).Inc(1)
		writeError(w, http.StatusTooManyRequests, errors.New("round rate limit exceeded, retry later"))
		return
	}

	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()
	req := domain.Request{}
	if err := d.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "unmarshalling body"))
		return
	}
	if alg := r.URL.Query().Get("algorithm"); alg != "" {
		req.Algorithm = alg
	}

	res, err := h.scheduler.RunRound(r.Context(), req)
	if err != nil {
		code := statusFor(err)
		log.Infof("round failed with %d: %v", code, err)
		writeJSON(w, code, Response{HttpStatusCode: code, ErrorMsg: err.Error(), Response: res})
		return
	}
	writeJSON(w, http.StatusOK, Response{HttpStatusCode: http.StatusOK, Response: res})
}

func (h *Handler) LedgerHandler(w http.ResponseWriter, r *http.Request) {
	h.stat.Counter(stats.APIRequestsCounter, "ledger").Inc(1)
	l, err := h.scheduler.Ledger(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{HttpStatusCode: http.StatusOK, Response: l})
}

func (h *Handler) AlgorithmsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{HttpStatusCode: http.StatusOK, Response: server.AlgorithmNames()})
}

// statusFor maps a round error to its status code. Anything that is not the
// caller's fault is a ledger store failure.
func statusFor(err error) int {
	switch {
	case domain.IsInvalidInput(errors.Cause(err)):
		return http.StatusBadRequest
	case knapsack.IsInfeasible(err):
		return http.StatusUnprocessableEntity
	}
	return http.StatusServiceUnavailable
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, Response{HttpStatusCode: code, ErrorMsg: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("writing response: %v", err)
	}
}

// PrintEndpoints logs every route and its methods.
func PrintEndpoints(r *mux.Router) {
	r.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		path, err := route.GetPathTemplate()
		if err != nil {
			return err
		}
		methods, _ := route.GetMethods()
		log.Infof("%v %s", methods, path)
		return nil
	})
}

// Serve listens on addr until the server fails.
func Serve(addr string, h *Handler) error {
	srv := &http.Server{
		Handler:      h,
		Addr:         addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	log.Infof("serving nodesched api on %s", addr)
	PrintEndpoints(h.Router)
	return errors.Wrapf(srv.ListenAndServe(), "nodesched api on %s stopped", addr)
}
