package server

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/twitter/nodesched/common"
	"github.com/twitter/nodesched/common/stats"
	"github.com/twitter/nodesched/scheduler/domain"
	"github.com/twitter/nodesched/scheduler/knapsack"
	"github.com/twitter/nodesched/scheduler/ledger"
)

// RoundScheduler runs rounds one at a time against a ledger store.
type RoundScheduler struct {
	config     SchedulerConfig
	store      ledger.Store
	stat       stats.StatsReceiver
	algorithms map[string]Algorithm

	// held for the whole of a round, from ledger load to commit
	mu sync.Mutex
}

// NewScheduler returns a RoundScheduler, or an error when the configured
// default algorithm is unknown. A nil store never persists and a nil stat
// records nothing.
func NewScheduler(cfg SchedulerConfig, store ledger.Store, stat stats.StatsReceiver) (*RoundScheduler, error) {
	cfg = cfg.withDefaults()
	algs := NewAlgorithms(cfg)
	if _, ok := algs[cfg.Algorithm]; !ok {
		return nil, errors.Errorf("unknown algorithm %q, expected one of %v", cfg.Algorithm, AlgorithmNames())
	}
	if store == nil {
		store = ledger.NewNopStore()
	}
	if stat == nil {
		stat = stats.NilStatsReceiver()
	}
	log.Infof("new round scheduler: %s", cfg)
	return &RoundScheduler{
		config:     cfg,
		store:      store,
		stat:       stat,
		algorithms: algs,
	}, nil
}

func (s *RoundScheduler) Config() SchedulerConfig {
	return s.config
}

func (s *RoundScheduler) RunRound(ctx context.Context, req domain.Request) (*domain.Result, error) {
	defer s.stat.Latency(stats.SchedRoundLatency_ms).Time().Stop()

	alg, err := s.checkRequest(req)
	if err != nil {
		s.stat.Counter(stats.SchedInvalidInputCounter).Inc(1)
		log.Infof("rejected round: %v", err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	persist := req.Ledger == nil
	hist := req.Ledger
	if persist {
		if hist, err = s.store.Load(ctx); err != nil {
			s.stat.Counter(stats.LedgerStoreErrCounter).Inc(1)
			return nil, errors.Wrap(err, "loading ledger")
		}
	}

	res, err := alg.Run(req.Tasks, req.Nodes, hist)
	if err != nil {
		switch {
		case domain.IsInvalidInput(err):
			s.stat.Counter(stats.SchedInvalidInputCounter).Inc(1)
		case knapsack.IsInfeasible(err):
			s.stat.Counter(stats.SchedInfeasibleCounter).Inc(1)
		}
		return nil, err
	}
	res.RoundID = common.GenRoundID(s.config.RoundPrefix)
	if res.Ledger == nil {
		if res.Ledger, err = hist.Add(res.Usage); err != nil {
			return nil, errors.Wrap(err, "updating ledger")
		}
	}

	var commitErr error
	if persist {
		committed, err := s.store.Commit(ctx, res.Usage)
		if err != nil {
			s.stat.Counter(stats.LedgerStoreErrCounter).Inc(1)
			commitErr = errors.Wrapf(err, "committing ledger for round %s", res.RoundID)
			log.Errorf("%v", commitErr)
		} else {
			res.Ledger = committed
		}
	}

	s.record(res)
	return res, commitErr
}

func (s *RoundScheduler) Ledger(ctx context.Context) (ledger.Ledger, error) {
	l, err := s.store.Load(ctx)
	if err != nil {
		s.stat.Counter(stats.LedgerStoreErrCounter).Inc(1)
		return nil, errors.Wrap(err, "loading ledger")
	}
	return l, nil
}

// checkRequest resolves the algorithm and validates the whole request, so
// nothing is loaded or computed for a bad one.
func (s *RoundScheduler) checkRequest(req domain.Request) (Algorithm, error) {
	name := req.Algorithm
	if name == "" {
		name = s.config.Algorithm
	}
	alg, ok := s.algorithms[name]
	if !ok {
		return nil, &domain.InvalidInputError{Kind: "request", ID: name, Field: "algorithm", Reason: "is not a known algorithm"}
	}
	if err := domain.Validate(req.Tasks, req.Nodes); err != nil {
		return nil, err
	}
	if err := ledger.CheckUsage(req.Ledger); err != nil {
		return nil, &domain.InvalidInputError{Kind: "request", Field: "ledger", Reason: err.Error()}
	}
	return alg, nil
}

func (s *RoundScheduler) record(res *domain.Result) {
	placed := res.Placed()
	s.stat.Counter(stats.SchedRoundsRunCounter).Inc(1)
	s.stat.Counter(stats.SchedTasksPlacedCounter).Inc(int64(len(placed)))
	s.stat.Counter(stats.SchedTasksUnscheduledCounter).Inc(int64(len(res.Unscheduled)))

	for i := range res.Nodes {
		n := &res.Nodes[i]
		usage := res.Usage[n.Name]
		pct := 0.0
		if b := budget(res.Algorithm, n); b > 0 {
			pct = usage * 100 / b
		}
		s.stat.Gauge(stats.NodeUsageGauge, n.Name).Update(int64(usage))
		s.stat.GaugeFloat(stats.NodeUtilizationPctGauge, n.Name).Update(pct)
		s.stat.GaugeFloat(stats.NodeLedgerGauge, n.Name).Update(res.Ledger.Get(n.Name))
	}

	log.WithFields(
		log.Fields{
			"round":       res.RoundID,
			"algorithm":   res.Algorithm,
			"placed":      len(placed),
			"unscheduled": len(res.Unscheduled),
			"value":       res.TotalValue(),
		}).Info("round complete")
}
