package server

import (
	"sort"

	"github.com/twitter/nodesched/scheduler/bestfit"
	"github.com/twitter/nodesched/scheduler/domain"
	"github.com/twitter/nodesched/scheduler/fairness"
	"github.com/twitter/nodesched/scheduler/knapsack"
	"github.com/twitter/nodesched/scheduler/ledger"
)

type bestFitAlg struct{}

func (bestFitAlg) Name() string { return bestfit.AlgorithmName }

func (bestFitAlg) Run(tasks []domain.Task, nodes []domain.Node, _ ledger.Ledger) (*domain.Result, error) {
	return bestfit.Schedule(tasks, nodes)
}

type knapsackAlg struct {
	selector *knapsack.Selector
}

func (knapsackAlg) Name() string { return knapsack.AlgorithmName }

func (a knapsackAlg) Run(tasks []domain.Task, nodes []domain.Node, _ ledger.Ledger) (*domain.Result, error) {
	return a.selector.FillNodes(tasks, nodes)
}

type fairnessAlg struct {
	policy fairness.Policy
}

func (a fairnessAlg) Name() string { return string(a.policy) }

func (a fairnessAlg) Run(tasks []domain.Task, nodes []domain.Node, hist ledger.Ledger) (*domain.Result, error) {
	return fairness.Allocate(a.policy, tasks, nodes, hist)
}

// NewAlgorithms returns every algorithm keyed by name.
func NewAlgorithms(cfg SchedulerConfig) map[string]Algorithm {
	cfg = cfg.withDefaults()
	algs := []Algorithm{
		bestFitAlg{},
		knapsackAlg{selector: knapsack.NewSelector(cfg.MaxKnapsackCells)},
	}
	for _, p := range fairness.Policies {
		algs = append(algs, fairnessAlg{policy: p})
	}
	m := make(map[string]Algorithm, len(algs))
	for _, a := range algs {
		m[a.Name()] = a
	}
	return m
}

// AlgorithmNames lists the known algorithm names, sorted.
func AlgorithmNames() []string {
	var names []string
	for name := range NewAlgorithms(SchedulerConfig{}) {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// budget is what a node's usage is measured against: uptime for the time
// based scheduler, capacity for the others.
func budget(algorithm string, n *domain.Node) float64 {
	if algorithm == bestfit.AlgorithmName {
		return n.Uptime
	}
	return n.EffectiveCapacity()
}
