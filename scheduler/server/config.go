package server

import (
	"fmt"

	"github.com/twitter/nodesched/scheduler/knapsack"
)

const DefaultAlgorithm = "proportional"

// SchedulerConfig holds the coordinator settings.
type SchedulerConfig struct {
	// Algorithm runs requests that name none.
	Algorithm string

	// MaxKnapsackCells bounds the knapsack dp table, see knapsack.DefaultMaxCells.
	MaxKnapsackCells int64

	// RoundPrefix is prepended to generated round ids.
	RoundPrefix string
}

func (sc SchedulerConfig) String() string {
	return fmt.Sprintf("SchedulerConfig: Algorithm: %s, MaxKnapsackCells: %d, RoundPrefix: %q",
		sc.Algorithm, sc.MaxKnapsackCells, sc.RoundPrefix)
}

func (sc SchedulerConfig) withDefaults() SchedulerConfig {
	if sc.Algorithm == "" {
		sc.Algorithm = DefaultAlgorithm
	}
	if sc.MaxKnapsackCells <= 0 {
		sc.MaxKnapsackCells = knapsack.DefaultMaxCells
	}
	return sc
}
