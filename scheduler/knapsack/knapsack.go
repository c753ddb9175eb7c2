// Package knapsack selects the value maximizing subset of tasks that fits an
// integer capacity, using the 0/1 dynamic program.
package knapsack

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/twitter/nodesched/scheduler/domain"
)

// DefaultMaxCells bounds the dp table at (n+1)*(capacity+1) cells, 80MB of float64.
const DefaultMaxCells int64 = 10000000

// ErrNonIntegral is returned when a cost or capacity has a fractional part.
var ErrNonIntegral = errors.New("knapsack needs integral costs and capacity")

// TableTooLargeError reports a capacity too large for the dp table bound.
type TableTooLargeError struct {
	Cells    int64
	MaxCells int64
}

func (e *TableTooLargeError) Error() string {
	return fmt.Sprintf("knapsack table of %d cells exceeds the bound of %d cells", e.Cells, e.MaxCells)
}

// Selection is the outcome of one Select call.
type Selection struct {
	// Chosen tasks in reverse input order, as found by the backtrack.
	Chosen []domain.Task
	// Rejected tasks in input order.
	Rejected   []domain.Task
	TotalCost  int64
	TotalValue float64
}

// Selector runs the dp under a table size bound.
type Selector struct {
	MaxCells int64
}

func NewSelector(maxCells int64) *Selector {
	if maxCells <= 0 {
		maxCells = DefaultMaxCells
	}
	return &Selector{MaxCells: maxCells}
}

// Select picks with the default bound.
func Select(tasks []domain.Task, capacity int64) (*Selection, error) {
	return NewSelector(DefaultMaxCells).Select(tasks, capacity)
}

// Select returns the subset of tasks maximizing total value with total cost
// at most capacity. Empty input or zero capacity selects nothing.
func (s *Selector) Select(tasks []domain.Task, capacity int64) (*Selection, error) {
	sel, _, err := s.selectInto(tasks, capacity, nil)
	return sel, err
}

// selectInto is Select with the dp table carved from buf when it is large
// enough. It returns the table it used so callers can pass it on.
func (s *Selector) selectInto(tasks []domain.Task, capacity int64, buf []float64) (*Selection, []float64, error) {
	if capacity < 0 {
		return nil, buf, &domain.InvalidInputError{Kind: "knapsack", Field: "capacity", Reason: fmt.Sprintf("must not be negative, got %d", capacity)}
	}
	if err := domain.ValidateTasks(tasks); err != nil {
		return nil, buf, err
	}
	costs, err := integralCosts(tasks)
	if err != nil {
		return nil, buf, err
	}

	n := len(tasks)
	if capacity >= s.MaxCells || int64(n+1) > s.MaxCells/(capacity+1) {
		return nil, buf, &TableTooLargeError{Cells: cellCount(n, capacity), MaxCells: s.MaxCells}
	}
	width := capacity + 1
	cells := int64(n+1) * width

	// table[i*width+w] is the best value using the first i tasks within w.
	if int64(cap(buf)) < cells {
		buf = make([]float64, cells)
	}
	table := buf[:cells]
	// rows 1..n are fully rewritten below, row 0 may hold a previous table
	for w := int64(0); w < width; w++ {
		table[w] = 0
	}
	for i := 1; i <= n; i++ {
		cost, value := costs[i-1], tasks[i-1].Value
		row, prev := int64(i)*width, int64(i-1)*width
		for w := int64(0); w <= capacity; w++ {
			skip := table[prev+w]
			if cost <= w {
				if take := value + table[prev+w-cost]; take > skip {
					table[row+w] = take
					continue
				}
			}
			table[row+w] = skip
		}
	}

	sel := &Selection{Chosen: []domain.Task{}, Rejected: []domain.Task{}}
	chosen := make([]bool, n)
	w := capacity
	for i := n; i > 0; i-- {
		if table[int64(i)*width+w] != table[int64(i-1)*width+w] {
			chosen[i-1] = true
			sel.Chosen = append(sel.Chosen, tasks[i-1])
			sel.TotalCost += costs[i-1]
			sel.TotalValue += tasks[i-1].Value
			w -= costs[i-1]
		}
	}
	for i, t := range tasks {
		if !chosen[i] {
			sel.Rejected = append(sel.Rejected, t)
		}
	}
	log.Debugf("knapsack chose %d of %d tasks, cost %d/%d, value %g",
		len(sel.Chosen), n, sel.TotalCost, capacity, sel.TotalValue)
	return sel, table, nil
}

func integralCosts(tasks []domain.Task) ([]int64, error) {
	costs := make([]int64, len(tasks))
	for i, t := range tasks {
		c, ok := asInt(t.Cost)
		if !ok {
			return nil, errors.Wrapf(ErrNonIntegral, "task %q cost %v", t.ID, t.Cost)
		}
		costs[i] = c
	}
	return costs, nil
}

// cellCount is (n+1)*(capacity+1), saturating at math.MaxInt64.
func cellCount(n int, capacity int64) int64 {
	if capacity >= math.MaxInt64/int64(n+1)-1 {
		return math.MaxInt64
	}
	return int64(n+1) * (capacity + 1)
}

// asInt converts v when it is a whole number within int64 range.
func asInt(v float64) (int64, bool) {
	if v != math.Trunc(v) || v > math.MaxInt64/2 || v < math.MinInt64/2 {
		return 0, false
	}
	return int64(v), true
}

// Capacity converts a node capacity to the integer the dp needs.
func Capacity(n *domain.Node) (int64, error) {
	c, ok := asInt(n.EffectiveCapacity())
	if !ok {
		return 0, errors.Wrapf(ErrNonIntegral, "node %q capacity %v", n.Name, n.EffectiveCapacity())
	}
	return c, nil
}

// IsInfeasible reports whether err means the input cannot be solved by the
// dp at all: fractional amounts or a table over the bound.
func IsInfeasible(err error) bool {
	cause := errors.Cause(err)
	if cause == ErrNonIntegral {
		return true
	}
	_, ok := cause.(*TableTooLargeError)
	return ok
}
