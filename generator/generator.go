// Package generator produces task and node data sets for rounds: the fixed
// demo sets and seeded random batches.
package generator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/twitter/nodesched/scheduler/domain"
	"github.com/twitter/nodesched/scheduler/ledger"
)

const (
	MinRandomTasks = 8
	MaxRandomTasks = 15

	// DemoNodeCapacity is the capacity of every node in the capacity demo.
	DemoNodeCapacity = 2000
)

// RandomCosts are the only costs Random draws from.
var RandomCosts = []float64{128, 512, 1024}

var demoNodeNames = []string{"nano1", "nano2", "nano3", "orin"}

// DemoTimeData is the speed/uptime demo: four nodes and three tasks sized in
// tokens.
func DemoTimeData() ([]domain.Node, []domain.Task) {
	nodes := []domain.Node{
		{Name: "nano1", Speed: 25, Uptime: 600},
		{Name: "nano2", Speed: 35, Uptime: 600},
		{Name: "nano3", Speed: 45, Uptime: 600},
		{Name: "orin", Speed: 80, Uptime: 900},
	}
	tasks := []domain.Task{
		{ID: "task1", Cost: 500},
		{ID: "task2", Cost: 300},
		{ID: "task3", Cost: 700},
	}
	return nodes, tasks
}

// DemoCapacityData is the capacity demo: the four demo nodes at
// DemoNodeCapacity each, with a zeroed ledger for them.
func DemoCapacityData() ([]domain.Node, ledger.Ledger) {
	nodes := make([]domain.Node, 0, len(demoNodeNames))
	hist := ledger.New()
	for _, name := range demoNodeNames {
		nodes = append(nodes, domain.Node{Name: name, Capacity: DemoNodeCapacity})
		hist[name] = 0
	}
	return nodes, hist
}

// Random returns between MinRandomTasks and MaxRandomTasks tasks named T1..Tn.
// Each cost is one of RandomCosts and each value is base plus 1 to 100
// seconds, as unix seconds. The same seed and base give the same tasks.
func Random(seed int64, base time.Time) []domain.Task {
	rng := rand.New(rand.NewSource(seed))
	n := MinRandomTasks + rng.Intn(MaxRandomTasks-MinRandomTasks+1)
	tasks := make([]domain.Task, 0, n)
	for i := 1; i <= n; i++ {
		cost := RandomCosts[rng.Intn(len(RandomCosts))]
		at := base.Add(time.Duration(1+rng.Intn(100)) * time.Second)
		tasks = append(tasks, domain.Task{
			ID:    fmt.Sprintf("T%d", i),
			Cost:  cost,
			Value: float64(at.UnixNano()) / float64(time.Second),
		})
	}
	return tasks
}

// RandomBatch is Random over the capacity demo nodes.
func RandomBatch(seed int64, base time.Time) domain.Batch {
	nodes, hist := DemoCapacityData()
	return domain.Batch{Nodes: nodes, Tasks: Random(seed, base), Ledger: hist}
}
