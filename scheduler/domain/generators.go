package domain

import (
	"fmt"
	"math/rand"

	"github.com/leanovate/gopter"

	"github.com/twitter/nodesched/scheduler/ledger"
)

// GenRandomTasks generates n tasks T1..Tn with whole costs in [0, maxCost]
// and whole values in [0, 100).
func GenRandomTasks(rng *rand.Rand, n int, maxCost int) []Task {
	tasks := make([]Task, n)
	for i := range tasks {
		tasks[i] = Task{
			ID:    fmt.Sprintf("T%d", i+1),
			Cost:  float64(rng.Intn(maxCost + 1)),
			Value: float64(rng.Intn(100)),
		}
	}
	return tasks
}

// GenRandomNodes generates n nodes with whole capacity, speed and uptime.
// Speed is at least 1.
func GenRandomNodes(rng *rand.Rand, n int) []Node {
	nodes := make([]Node, n)
	for i := range nodes {
		nodes[i] = Node{
			Name:     fmt.Sprintf("node%d", i+1),
			Capacity: float64(rng.Intn(4000)),
			Speed:    float64(1 + rng.Intn(80)),
			Uptime:   float64(rng.Intn(900)),
		}
	}
	return nodes
}

// GenRandomBatch generates up to 15 tasks and 4 nodes, with a ledger entry for
// some of the nodes.
func GenRandomBatch(rng *rand.Rand) Batch {
	b := Batch{
		Tasks:  GenRandomTasks(rng, rng.Intn(16), 1024),
		Nodes:  GenRandomNodes(rng, rng.Intn(5)),
		Ledger: ledger.New(),
	}
	for _, n := range b.Nodes {
		if rng.Intn(2) == 0 {
			b.Ledger[n.Name] = float64(rng.Intn(5000))
		}
	}
	return b
}

// Wrapper function that generates a Batch for property based tests
func GopterGenBatch() gopter.Gen {
	return func(genParams *gopter.GenParameters) *gopter.GenResult {
		b := GenRandomBatch(genParams.Rng)
		return gopter.NewGenResult(&b, gopter.NoShrinker)
	}
}
