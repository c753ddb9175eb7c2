// Package fairness splits a batch of tasks across equal-role nodes while
// steering long-run usage, as recorded in the historical ledger, toward
// equality.
//
// Both policies treat capacity as the node's budget for the round
// (Capacity, or Speed*Uptime when unset), place tasks back to back with
// Start/End as capacity offsets, and finish by adding the round's usage to
// the ledger they were given. The given ledger is never modified.
package fairness

import (
	"math"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/twitter/nodesched/common/minby"
	"github.com/twitter/nodesched/scheduler/domain"
	"github.com/twitter/nodesched/scheduler/ledger"
)

type Policy string

const (
	// RoundRobin ranks nodes by raw usage plus history.
	RoundRobin Policy = "roundrobin"
	// Proportional ranks nodes by usage plus history over capacity.
	Proportional Policy = "proportional"
)

var Policies = []Policy{RoundRobin, Proportional}

func ParsePolicy(name string) (Policy, error) {
	for _, p := range Policies {
		if string(p) == name {
			return p, nil
		}
	}
	return "", errors.Errorf("unknown fairness policy %q, expected one of %v", name, Policies)
}

// Allocate runs the given policy over one round.
func Allocate(p Policy, tasks []domain.Task, nodes []domain.Node, hist ledger.Ledger) (*domain.Result, error) {
	switch p {
	case RoundRobin:
		return AllocateRoundRobin(tasks, nodes, hist)
	case Proportional:
		return AllocateProportional(tasks, nodes, hist)
	}
	return nil, errors.Errorf("unknown fairness policy %q", p)
}

// AllocateRoundRobin takes tasks by descending value, once each, and puts each
// on the least loaded node (usage this round plus history) that has room.
func AllocateRoundRobin(tasks []domain.Task, nodes []domain.Node, hist ledger.Ledger) (*domain.Result, error) {
	a, err := newAllocation(RoundRobin, tasks, nodes, hist)
	if err != nil {
		return nil, err
	}
	for _, ti := range a.byValue() {
		task := a.pool[ti]
		ranked := minby.Ascending(len(a.res.Nodes), a.load)
		placed := false
		for _, ni := range ranked {
			if a.remaining(ni) >= task.Cost {
				a.place(task, ni)
				placed = true
				break
			}
		}
		if !placed {
			log.Debugf("roundrobin: no node has room for %s", task)
		}
	}
	return a.finish()
}

// AllocateProportional repeatedly gives the node with the lowest utilization
// ratio, (usage + history) / capacity, the first pooled task that fits it,
// re-ranking after every assignment. A node that fits nothing yields to the
// next ranked node. Allocation stops when no node fits any pooled task.
func AllocateProportional(tasks []domain.Task, nodes []domain.Node, hist ledger.Ledger) (*domain.Result, error) {
	a, err := newAllocation(Proportional, tasks, nodes, hist)
	if err != nil {
		return nil, err
	}
	pool := a.byValue()
	for len(pool) > 0 {
		ranked := minby.Ascending(len(a.res.Nodes), a.ratio)
		assigned := false
		for _, ni := range ranked {
			left := a.remaining(ni)
			if left <= 0 {
				continue
			}
			for pi, ti := range pool {
				if a.pool[ti].Cost <= left {
					a.place(a.pool[ti], ni)
					pool = append(pool[:pi], pool[pi+1:]...)
					assigned = true
					break
				}
			}
			if assigned {
				break
			}
		}
		if !assigned {
			break
		}
	}
	return a.finish()
}

type allocation struct {
	res  *domain.Result
	pool []domain.Task
	orig []domain.Task
	hist ledger.Ledger
	seen map[string]bool
}

func newAllocation(p Policy, tasks []domain.Task, nodes []domain.Node, hist ledger.Ledger) (*allocation, error) {
	if err := domain.Validate(tasks, nodes); err != nil {
		return nil, err
	}
	if err := ledger.CheckUsage(hist); err != nil {
		return nil, &domain.InvalidInputError{Kind: "ledger", Field: "usage", Reason: err.Error()}
	}
	return &allocation{
		res:  domain.NewResult(string(p), domain.CopyNodes(nodes)),
		pool: domain.CopyTasks(tasks),
		orig: tasks,
		hist: hist,
		seen: map[string]bool{},
	}, nil
}

// byValue is the pool's indices by descending value, ties in input order.
func (a *allocation) byValue() []int {
	return minby.Descending(len(a.pool), func(i int) float64 { return a.pool[i].Value })
}

func (a *allocation) load(ni int) float64 {
	name := a.res.Nodes[ni].Name
	return a.res.Usage[name] + a.hist.Get(name)
}

// ratio is +Inf for a node without capacity so it ranks last.
func (a *allocation) ratio(ni int) float64 {
	c := a.res.Nodes[ni].EffectiveCapacity()
	if c <= 0 {
		return math.Inf(1)
	}
	return a.load(ni) / c
}

func (a *allocation) remaining(ni int) float64 {
	n := &a.res.Nodes[ni]
	return n.EffectiveCapacity() - a.res.Usage[n.Name]
}

func (a *allocation) place(t domain.Task, ni int) {
	n := &a.res.Nodes[ni]
	start := a.res.Usage[n.Name]
	n.Place(t, start, start+t.Cost)
	a.res.Usage[n.Name] = start + t.Cost
	a.seen[t.ID] = true
	log.Debugf("%s: %s on %s, load %g", a.res.Algorithm, t.ID, n.Name, a.load(ni))
}

func (a *allocation) finish() (*domain.Result, error) {
	next, err := a.hist.Add(a.res.Usage)
	if err != nil {
		return nil, err
	}
	a.res.Ledger = next
	a.res.Unscheduled = domain.Unplaced(a.orig, a.seen)
	return a.res, nil
}
