package knapsack

import (
	log "github.com/sirupsen/logrus"

	"github.com/twitter/nodesched/scheduler/domain"
)

const AlgorithmName = "knapsack"

// FillNodes runs the selector once per node, in node order, over the tasks
// still unplaced. Each node receives its chosen subset back to back, with
// Start/End as capacity offsets. Whatever no node chose is unscheduled.
func (s *Selector) FillNodes(tasks []domain.Task, nodes []domain.Node) (*domain.Result, error) {
	if err := domain.Validate(tasks, nodes); err != nil {
		return nil, err
	}
	capacities := make([]int64, len(nodes))
	for i := range nodes {
		c, err := Capacity(&nodes[i])
		if err != nil {
			return nil, err
		}
		capacities[i] = c
	}
	if _, err := integralCosts(tasks); err != nil {
		return nil, err
	}

	res := domain.NewResult(AlgorithmName, domain.CopyNodes(nodes))
	pool := domain.CopyTasks(tasks)
	placed := map[string]bool{}
	var table []float64
	for i := range res.Nodes {
		node := &res.Nodes[i]
		var sel *Selection
		var err error
		sel, table, err = s.selectInto(pool, capacities[i], table)
		if err != nil {
			return nil, err
		}
		for _, t := range sel.Chosen {
			start := node.Used()
			node.Place(t, start, start+t.Cost)
			placed[t.ID] = true
		}
		res.Usage[node.Name] = node.Used()
		pool = sel.Rejected
		log.Debugf("knapsack filled %s with %d tasks, value %g", node.Name, len(sel.Chosen), sel.TotalValue)
	}
	res.Unscheduled = domain.Unplaced(tasks, placed)
	return res, nil
}
