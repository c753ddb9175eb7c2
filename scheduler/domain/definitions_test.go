package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twitter/nodesched/scheduler/ledger"
)

func TestNodeDerivedQuantities(t *testing.T) {
	n := Node{Name: "orin", Speed: 80, Uptime: 900}
	assert.Equal(t, 72000.0, n.EffectiveCapacity())
	assert.Equal(t, 0.0, n.TimeUsed())
	assert.Equal(t, 900.0, n.RemainingTime())

	first := n.Place(Task{ID: "a", Cost: 800}, 0, 10)
	n.Place(Task{ID: "b", Cost: 400}, 10, 15)
	assert.Equal(t, &Placement{Node: "orin", Start: 0, End: 10}, first.Placement)
	assert.Equal(t, 15.0, n.TimeUsed())
	assert.Equal(t, 885.0, n.RemainingTime())
	assert.Equal(t, 1200.0, n.Used())
	assert.Equal(t, 70800.0, n.RemainingCapacity())

	n.Capacity = 2000
	assert.Equal(t, 800.0, n.RemainingCapacity())
}

func TestTaskPlacement(t *testing.T) {
	task := Task{ID: "t", Cost: 3, Value: 1}
	assert.False(t, task.IsPlaced())
	assert.Equal(t, 0.0, task.Duration())
	assert.Contains(t, task.String(), "unscheduled")

	n := Node{Name: "n"}
	placed := n.Place(task, 2, 5)
	assert.True(t, placed.IsPlaced())
	assert.False(t, task.IsPlaced())
	assert.Equal(t, 3.0, placed.Duration())
	assert.Contains(t, placed.String(), "node:n")
}

func TestTokensAlias(t *testing.T) {
	var tasks []Task
	require.NoError(t, json.Unmarshal([]byte(`[{"id":"a","tokens":512,"value":3},{"id":"b","cost":128}]`), &tasks))
	assert.Equal(t, []Task{{ID: "a", Cost: 512, Value: 3}, {ID: "b", Cost: 128}}, tasks)

	var b Batch
	require.NoError(t, json.Unmarshal([]byte(`{"nodes":[{"name":"n","capacity":10}],"tasks":[{"id":"x","tokens":1}],"ledger":{"n":4}}`), &b))
	assert.Equal(t, 1.0, b.Tasks[0].Cost)
	assert.Equal(t, 4.0, b.Ledger.Get("n"))
}

func TestValidate(t *testing.T) {
	ok := []Node{{Name: "n", Capacity: 1}}
	cases := []struct {
		name  string
		tasks []Task
		nodes []Node
		field string
	}{
		{"empty id", []Task{{Cost: 1}}, ok, "id"},
		{"duplicate id", []Task{{ID: "a"}, {ID: "a"}}, ok, "id"},
		{"negative cost", []Task{{ID: "a", Cost: -1}}, ok, "cost"},
		{"negative value", []Task{{ID: "a", Value: -1}}, ok, "value"},
		{"nan cost", []Task{{ID: "a", Cost: math.NaN()}}, ok, "cost"},
		{"placed task", []Task{{ID: "a", Placement: &Placement{Node: "n"}}}, ok, "placement"},
		{"empty name", nil, []Node{{Capacity: 1}}, "name"},
		{"duplicate name", nil, []Node{{Name: "n"}, {Name: "n"}}, "name"},
		{"negative capacity", nil, []Node{{Name: "n", Capacity: -1}}, "capacity"},
		{"negative speed", nil, []Node{{Name: "n", Speed: -1}}, "speed"},
		{"infinite uptime", nil, []Node{{Name: "n", Uptime: math.Inf(1)}}, "uptime"},
		{"scheduled node", nil, []Node{{Name: "n", Schedule: []Task{{ID: "a"}}}}, "schedule"},
	}
	for _, c := range cases {
		err := Validate(c.tasks, c.nodes)
		require.True(t, IsInvalidInput(err), "%s: got %v", c.name, err)
		assert.Equal(t, c.field, err.(*InvalidInputError).Field, c.name)
	}

	assert.NoError(t, Validate(nil, nil))
	assert.NoError(t, Validate([]Task{{ID: "a", Cost: 1}}, nil))
}

func TestCopiesAreDetached(t *testing.T) {
	nodes := []Node{{Name: "n", Capacity: 5}}
	cp := CopyNodes(nodes)
	cp[0].Place(Task{ID: "a"}, 0, 1)
	assert.Empty(t, nodes[0].Schedule)

	tasks := []Task{{ID: "a", Cost: 1, Placement: &Placement{Node: "n"}}}
	assert.Nil(t, CopyTasks(tasks)[0].Placement)
	assert.NotNil(t, tasks[0].Placement)
}

func TestResultHelpers(t *testing.T) {
	nodes := CopyNodes([]Node{{Name: "a", Capacity: 10}, {Name: "b", Capacity: 10}})
	res := NewResult("test", nodes)
	assert.Equal(t, map[string]float64{"a": 0, "b": 0}, res.Usage)

	tasks := []Task{{ID: "x", Cost: 2, Value: 5}, {ID: "y", Cost: 3, Value: 7}, {ID: "z", Cost: 1, Value: 1}}
	res.Nodes[1].Place(tasks[1], 0, 3)
	res.Nodes[0].Place(tasks[0], 0, 2)
	res.Unscheduled = Unplaced(tasks, map[string]bool{"x": true, "y": true})

	assert.Equal(t, []Task{tasks[2]}, res.Unscheduled)
	assert.Equal(t, 12.0, res.TotalValue())
	placed := res.Placed()
	require.Len(t, placed, 2)
	assert.Equal(t, "x", placed[0].ID)
	assert.Equal(t, "y", res.Assignment()["b"][0].ID)
}

// A zero Capacity reads as unset, on a literal node and over JSON alike.
func TestZeroCapacityFallsBackToSpeedUptime(t *testing.T) {
	assert.Equal(t, 500.0, (&Node{Name: "n", Capacity: 0, Speed: 5, Uptime: 100}).EffectiveCapacity())
	assert.Equal(t, 0.0, (&Node{Name: "n"}).EffectiveCapacity())

	n := Node{}
	require.NoError(t, json.Unmarshal([]byte(`{"name": "n", "capacity": 0, "speed": 5, "uptime": 100}`), &n))
	assert.Equal(t, 500.0, n.EffectiveCapacity())
}

func TestRequestLedgerSurvivesJSON(t *testing.T) {
	for _, tc := range []struct {
		in      ledger.Ledger
		wantNil bool
	}{
		{nil, true},
		{ledger.New(), false},
		{ledger.Ledger{"n1": 7}, false},
	} {
		b, err := json.Marshal(Request{Algorithm: "roundrobin", Batch: Batch{Ledger: tc.in}})
		require.NoError(t, err)
		out := Request{}
		require.NoError(t, json.Unmarshal(b, &out), string(b))
		assert.Equal(t, tc.wantNil, out.Ledger == nil, string(b))
		assert.Equal(t, len(tc.in), len(out.Ledger))
	}
}
