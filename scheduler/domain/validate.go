package domain

import (
	"fmt"
	"math"
)

// InvalidInputError rejects a call before any placement happens.
type InvalidInputError struct {
	Kind   string // "task" or "node"
	ID     string
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s %s", e.Kind, e.ID, e.Field, e.Reason)
}

// IsInvalidInput reports whether err is an *InvalidInputError.
func IsInvalidInput(err error) bool {
	_, ok := err.(*InvalidInputError)
	return ok
}

// Validate checks tasks and nodes together. An empty node pool is valid: every
// task simply ends up unscheduled.
func Validate(tasks []Task, nodes []Node) error {
	if err := ValidateTasks(tasks); err != nil {
		return err
	}
	return ValidateNodes(nodes)
}

func ValidateTasks(tasks []Task) error {
	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if t.ID == "" {
			return &InvalidInputError{"task", t.ID, "id", "must not be empty"}
		}
		if seen[t.ID] {
			return &InvalidInputError{"task", t.ID, "id", "is duplicated"}
		}
		seen[t.ID] = true
		if err := checkAmount("task", t.ID, "cost", t.Cost); err != nil {
			return err
		}
		if err := checkAmount("task", t.ID, "value", t.Value); err != nil {
			return err
		}
		if t.Placement != nil {
			return &InvalidInputError{"task", t.ID, "placement", "must be unset on input"}
		}
	}
	return nil
}

func ValidateNodes(nodes []Node) error {
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n.Name == "" {
			return &InvalidInputError{"node", n.Name, "name", "must not be empty"}
		}
		if seen[n.Name] {
			return &InvalidInputError{"node", n.Name, "name", "is duplicated"}
		}
		seen[n.Name] = true
		if err := checkAmount("node", n.Name, "capacity", n.Capacity); err != nil {
			return err
		}
		if err := checkAmount("node", n.Name, "speed", n.Speed); err != nil {
			return err
		}
		if err := checkAmount("node", n.Name, "uptime", n.Uptime); err != nil {
			return err
		}
		if len(n.Schedule) != 0 {
			return &InvalidInputError{"node", n.Name, "schedule", "must be empty on input"}
		}
	}
	return nil
}

func checkAmount(kind, id, field string, v float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return &InvalidInputError{kind, id, field, fmt.Sprintf("must be finite, got %v", v)}
	case v < 0:
		return &InvalidInputError{kind, id, field, fmt.Sprintf("must not be negative, got %v", v)}
	}
	return nil
}

// CopyNodes returns detached copies with empty schedules, so algorithms never
// write to caller-owned nodes.
func CopyNodes(nodes []Node) []Node {
	cp := make([]Node, len(nodes))
	for i, n := range nodes {
		cp[i] = Node{Name: n.Name, Capacity: n.Capacity, Speed: n.Speed, Uptime: n.Uptime}
	}
	return cp
}

// CopyTasks returns copies without placements.
func CopyTasks(tasks []Task) []Task {
	cp := make([]Task, len(tasks))
	for i, t := range tasks {
		t.Placement = nil
		cp[i] = t
	}
	return cp
}

// NewResult builds a Result over nodes with a zero usage entry per node.
func NewResult(algorithm string, nodes []Node) *Result {
	usage := make(map[string]float64, len(nodes))
	for _, n := range nodes {
		usage[n.Name] = 0
	}
	return &Result{Algorithm: algorithm, Nodes: nodes, Unscheduled: []Task{}, Usage: usage}
}

// Unplaced collects, in input order, the tasks whose ids are not in placed.
func Unplaced(tasks []Task, placed map[string]bool) []Task {
	out := []Task{}
	for _, t := range tasks {
		if !placed[t.ID] {
			out = append(out, t)
		}
	}
	return out
}
