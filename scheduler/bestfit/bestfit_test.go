package bestfit

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twitter/nodesched/scheduler/domain"
)

func ids(tasks []domain.Task) []string {
	out := []string{}
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestPicksSmallestLeftover(t *testing.T) {
	nodes := []domain.Node{
		{Name: "long", Speed: 1, Uptime: 100},
		{Name: "short", Speed: 1, Uptime: 50},
	}
	res, err := Schedule([]domain.Task{{ID: "t", Cost: 40}}, nodes)
	require.NoError(t, err)

	assert.Empty(t, res.Nodes[0].Schedule)
	require.Len(t, res.Nodes[1].Schedule, 1)
	placed := res.Nodes[1].Schedule[0]
	assert.Equal(t, &domain.Placement{Node: "short", Start: 0, End: 40}, placed.Placement)
	assert.Equal(t, 10.0, res.Nodes[1].RemainingTime())
	assert.Equal(t, 100.0, res.Nodes[0].RemainingTime())
	assert.Equal(t, map[string]float64{"long": 0, "short": 40}, res.Usage)
}

func TestLeftoverTieGoesToFirstNode(t *testing.T) {
	nodes := []domain.Node{
		{Name: "a", Speed: 2, Uptime: 50},
		{Name: "b", Speed: 1, Uptime: 30},
	}
	// 40 on a: 50-20=30 left, on b: 30-40 does not fit. 20 on a: 30-10=20, on b: 30-20=10.
	res, err := Schedule([]domain.Task{{ID: "x", Cost: 40}, {ID: "y", Cost: 20}}, nodes)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, ids(res.Nodes[0].Schedule))
	assert.Equal(t, []string{"y"}, ids(res.Nodes[1].Schedule))

	same := []domain.Node{{Name: "first", Speed: 1, Uptime: 50}, {Name: "second", Speed: 1, Uptime: 50}}
	res, err = Schedule([]domain.Task{{ID: "t", Cost: 40}}, same)
	require.NoError(t, err)
	assert.Equal(t, "first", res.Placed()[0].Placement.Node)
}

func TestEqualCostsKeepInputOrder(t *testing.T) {
	nodes := []domain.Node{{Name: "n", Speed: 1, Uptime: 100}}
	tasks := []domain.Task{{ID: "a", Cost: 10}, {ID: "b", Cost: 20}, {ID: "c", Cost: 10}}
	res, err := Schedule(tasks, nodes)
	require.NoError(t, err)

	sched := res.Nodes[0].Schedule
	assert.Equal(t, []string{"b", "a", "c"}, ids(sched))
	assert.Equal(t, 0.0, sched[0].Placement.Start)
	assert.Equal(t, 20.0, sched[1].Placement.Start)
	assert.Equal(t, 30.0, sched[2].Placement.Start)
	assert.Equal(t, 40.0, res.Nodes[0].TimeUsed())
}

func TestDemoData(t *testing.T) {
	nodes := []domain.Node{
		{Name: "nano1", Speed: 25, Uptime: 600},
		{Name: "nano2", Speed: 35, Uptime: 600},
		{Name: "nano3", Speed: 45, Uptime: 600},
		{Name: "orin", Speed: 80, Uptime: 900},
	}
	tasks := []domain.Task{{ID: "task1", Cost: 500}, {ID: "task2", Cost: 300}, {ID: "task3", Cost: 700}}
	res, err := Schedule(tasks, nodes)
	require.NoError(t, err)

	// the slowest node always leaves the least spare time
	assert.Equal(t, []string{"task3", "task1", "task2"}, ids(res.Nodes[0].Schedule))
	assert.Equal(t, 60.0, res.Nodes[0].TimeUsed())
	assert.Empty(t, res.Unscheduled)
}

func TestUnschedulableIsNotRetried(t *testing.T) {
	nodes := []domain.Node{{Name: "n", Speed: 1, Uptime: 100}}
	tasks := []domain.Task{{ID: "small", Cost: 30}, {ID: "huge", Cost: 200}, {ID: "mid", Cost: 80}}
	res, err := Schedule(tasks, nodes)
	require.NoError(t, err)

	assert.Equal(t, []string{"mid"}, ids(res.Nodes[0].Schedule))
	// input order, placement fields unset
	assert.Equal(t, []string{"small", "huge"}, ids(res.Unscheduled))
	for _, u := range res.Unscheduled {
		assert.Nil(t, u.Placement)
	}
}

func TestStoppedNodeIsNeverChosen(t *testing.T) {
	nodes := []domain.Node{{Name: "stopped", Speed: 0, Uptime: 100}, {Name: "n", Speed: 1, Uptime: 100}}
	res, err := Schedule([]domain.Task{{ID: "t", Cost: 10}}, nodes)
	require.NoError(t, err)
	assert.Empty(t, res.Nodes[0].Schedule)
	assert.Equal(t, []string{"t"}, ids(res.Nodes[1].Schedule))
}

func TestEmptyInputs(t *testing.T) {
	res, err := Schedule([]domain.Task{{ID: "t", Cost: 1}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"t"}, ids(res.Unscheduled))

	res, err = Schedule(nil, []domain.Node{{Name: "n", Speed: 1, Uptime: 1}})
	require.NoError(t, err)
	assert.Empty(t, res.Placed())
	assert.Empty(t, res.Unscheduled)
	assert.Equal(t, map[string]float64{"n": 0}, res.Usage)
}

func TestInvalidInputIsRejected(t *testing.T) {
	nodes := []domain.Node{{Name: "n", Speed: -1, Uptime: 10}}
	tasks := []domain.Task{{ID: "t", Cost: 1}}
	res, err := Schedule(tasks, nodes)
	assert.Nil(t, res)
	assert.True(t, domain.IsInvalidInput(err))
	assert.Nil(t, tasks[0].Placement)

	_, err = Schedule([]domain.Task{{ID: "t", Cost: 1}, {ID: "t", Cost: 2}}, []domain.Node{{Name: "n", Speed: 1, Uptime: 10}})
	assert.True(t, domain.IsInvalidInput(err))
}

func TestRandomInvariants(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		nodes := make([]domain.Node, r.Intn(5))
		for i := range nodes {
			nodes[i] = domain.Node{Name: fmt.Sprintf("n%d", i), Speed: float64(1 + r.Intn(80)), Uptime: float64(r.Intn(900))}
		}
		tasks := make([]domain.Task, r.Intn(20))
		for i := range tasks {
			tasks[i] = domain.Task{ID: fmt.Sprintf("T%d", i+1), Cost: float64(r.Intn(1024)), Value: float64(r.Intn(100))}
		}

		res, err := Schedule(tasks, nodes)
		require.NoError(t, err)
		again, err := Schedule(tasks, nodes)
		require.NoError(t, err)
		assert.Equal(t, res, again, "trial %d is not deterministic", trial)

		seen := map[string]bool{}
		for _, n := range res.Nodes {
			prevEnd := 0.0
			for _, task := range n.Schedule {
				if task.Placement.Start != prevEnd || task.Placement.Node != n.Name {
					t.Fatalf("trial %d: schedule of %s is not back to back: %s", trial, n.Name, spew.Sdump(n.Schedule))
				}
				prevEnd = task.Placement.End
				seen[task.ID] = true
			}
			assert.True(t, n.TimeUsed() <= n.Uptime, "trial %d: %s over uptime", trial, n.Name)
		}
		for _, u := range res.Unscheduled {
			assert.False(t, seen[u.ID], "trial %d: %s both placed and unscheduled", trial, u.ID)
			seen[u.ID] = true
		}
		assert.Len(t, seen, len(tasks))
	}
}
