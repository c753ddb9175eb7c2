// Package bestfit places tasks on nodes with heterogeneous speed and uptime.
//
// Tasks are taken largest first (stable, so equal costs keep input order).
// A task of cost c runs for c/speed on a node, and the node is a candidate
// when that still ends within its uptime. Among candidates the node left with
// the least spare time wins, the first in node order on ties. Tasks with no
// candidate stay unscheduled and are not retried.
package bestfit

import (
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/twitter/nodesched/common/minby"
	"github.com/twitter/nodesched/scheduler/domain"
)

const AlgorithmName = "bestfit"

// Schedule returns the placement of tasks over nodes. The inputs are not
// modified. Usage in the result is busy time per node.
func Schedule(tasks []domain.Task, nodes []domain.Node) (*domain.Result, error) {
	if err := domain.Validate(tasks, nodes); err != nil {
		return nil, err
	}
	res := domain.NewResult(AlgorithmName, domain.CopyNodes(nodes))
	pool := domain.CopyTasks(tasks)
	placed := map[string]bool{}

	order := minby.Descending(len(pool), func(i int) float64 { return pool[i].Cost })
	for _, ti := range order {
		task := pool[ti]
		leftover := func(ni int) float64 {
			n := &res.Nodes[ni]
			return n.Uptime - (n.TimeUsed() + duration(task, n))
		}
		fits := func(ni int) bool {
			n := &res.Nodes[ni]
			d := duration(task, n)
			return !math.IsInf(d, 1) && n.TimeUsed()+d <= n.Uptime
		}
		best := minby.Index(len(res.Nodes), leftover, fits)
		if best < 0 {
			log.Debugf("bestfit: no node has time for %s", task)
			continue
		}
		node := &res.Nodes[best]
		start := node.TimeUsed()
		end := start + duration(task, node)
		node.Place(task, start, end)
		res.Usage[node.Name] += end - start
		placed[task.ID] = true
		log.Debugf("bestfit: %s on %s [%g, %g), %g left", task.ID, node.Name, start, end, node.RemainingTime())
	}
	res.Unscheduled = domain.Unplaced(tasks, placed)
	return res, nil
}

// duration is the execution time of t on n, +Inf when n cannot process work.
func duration(t domain.Task, n *domain.Node) float64 {
	if n.Speed <= 0 {
		if t.Cost == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return t.Cost / n.Speed
}
