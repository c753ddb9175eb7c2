// Package domain provides definitions for the Tasks, Nodes and Results
// exchanged with the scheduling algorithms.
package domain

import (
	"encoding/json"
	"fmt"

	"github.com/twitter/nodesched/scheduler/ledger"
)

// Task is one non-preemptible unit of work.
type Task struct {
	ID    string  `json:"id"`
	Cost  float64 `json:"cost"`
	Value float64 `json:"value"`

	// Placement is nil until an algorithm places the task.
	Placement *Placement `json:"placement,omitempty"`
}

// Placement records where and when a task runs. Start and End are seconds for
// the time based scheduler and capacity offsets for the capacity based ones.
type Placement struct {
	Node  string  `json:"node"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (t Task) String() string {
	if t.Placement == nil {
		return fmt.Sprintf("%s(cost:%g, value:%g, unscheduled)", t.ID, t.Cost, t.Value)
	}
	return fmt.Sprintf("%s(cost:%g, value:%g, node:%s, %g-%g)",
		t.ID, t.Cost, t.Value, t.Placement.Node, t.Placement.Start, t.Placement.End)
}

// IsPlaced reports whether the task holds a placement.
func (t Task) IsPlaced() bool {
	return t.Placement != nil
}

// Duration is End-Start of the placement, zero when unplaced.
func (t Task) Duration() float64 {
	if t.Placement == nil {
		return 0
	}
	return t.Placement.End - t.Placement.Start
}

// UnmarshalJSON accepts "tokens" as an alias for "cost".
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	aux := struct {
		*plain
		Tokens *float64 `json:"tokens,omitempty"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Tokens != nil && t.Cost == 0 {
		t.Cost = *aux.Tokens
	}
	return nil
}

// Node is a compute resource. The capacity based algorithms use Capacity
// when it is positive, otherwise Speed*Uptime: a Capacity of 0 reads as unset,
// so a node with capacity 0 and a positive Speed and Uptime still gets
// Speed*Uptime. Give such a node no Speed or Uptime to make it hold nothing.
// The time based scheduler uses Speed and Uptime.
type Node struct {
	Name     string  `json:"name"`
	Capacity float64 `json:"capacity,omitempty"`
	Speed    float64 `json:"speed,omitempty"`
	Uptime   float64 `json:"uptime,omitempty"`

	// Schedule holds the placed tasks in placement order, back to back.
	Schedule []Task `json:"schedule,omitempty"`
}

func (n *Node) String() string {
	return fmt.Sprintf("%s(capacity:%g, speed:%g, uptime:%g, tasks:%d)",
		n.Name, n.EffectiveCapacity(), n.Speed, n.Uptime, len(n.Schedule))
}

// EffectiveCapacity is Capacity when set, otherwise Speed*Uptime.
func (n *Node) EffectiveCapacity() float64 {
	if n.Capacity > 0 {
		return n.Capacity
	}
	return n.Speed * n.Uptime
}

// TimeUsed is the end of the last scheduled task, zero if empty.
func (n *Node) TimeUsed() float64 {
	if len(n.Schedule) == 0 {
		return 0
	}
	last := n.Schedule[len(n.Schedule)-1]
	if last.Placement == nil {
		return 0
	}
	return last.Placement.End
}

func (n *Node) RemainingTime() float64 {
	return n.Uptime - n.TimeUsed()
}

// Used is the sum of the costs of the scheduled tasks.
func (n *Node) Used() float64 {
	used := 0.0
	for _, t := range n.Schedule {
		used += t.Cost
	}
	return used
}

func (n *Node) RemainingCapacity() float64 {
	return n.EffectiveCapacity() - n.Used()
}

// Place appends t to the schedule at [start, end) and returns the placed copy.
func (n *Node) Place(t Task, start, end float64) Task {
	t.Placement = &Placement{Node: n.Name, Start: start, End: end}
	n.Schedule = append(n.Schedule, t)
	return t
}

// Batch is one scheduling call's input as read from a file or request body.
type Batch struct {
	Nodes  []Node        `json:"nodes"`
	Tasks  []Task        `json:"tasks"`
	// Ledger is sent as null when nil, so an empty snapshot stays non-nil
	// over the wire.
	Ledger ledger.Ledger `json:"ledger"`
}

// Request asks for one scheduling round. A nil Ledger means the round reads
// and updates the persisted ledger. A non-nil Ledger is used as the snapshot
// and the persisted ledger is left alone.
type Request struct {
	Algorithm string `json:"algorithm,omitempty"`
	Batch
}

// Result is the output of one scheduling call.
type Result struct {
	RoundID   string `json:"roundId,omitempty"`
	Algorithm string `json:"algorithm"`
	// Nodes in input order, each with its schedule.
	Nodes []Node `json:"nodes"`
	// Unscheduled tasks in input order, unmodified.
	Unscheduled []Task `json:"unscheduled"`
	// Usage is the per node total added this round, in the algorithm's unit.
	Usage map[string]float64 `json:"usage"`
	// Ledger is the historical usage after this round.
	Ledger ledger.Ledger `json:"ledger,omitempty"`
}

// Assignment maps node name to the tasks placed on it, in placement order.
func (r *Result) Assignment() map[string][]Task {
	a := make(map[string][]Task, len(r.Nodes))
	for _, n := range r.Nodes {
		a[n.Name] = n.Schedule
	}
	return a
}

// Placed returns the placed tasks, node by node.
func (r *Result) Placed() []Task {
	var placed []Task
	for _, n := range r.Nodes {
		placed = append(placed, n.Schedule...)
	}
	return placed
}

// TotalValue sums the value of the placed tasks.
func (r *Result) TotalValue() float64 {
	v := 0.0
	for _, t := range r.Placed() {
		v += t.Value
	}
	return v
}
