//go:build property_test
// +build property_test

package fairness

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/twitter/nodesched/scheduler/domain"
)

func Test_AllocateProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 1000
	properties := gopter.NewProperties(parameters)
	policy := gen.OneConstOf(RoundRobin, Proportional)

	properties.Property("nodes stay within capacity", prop.ForAll(
		func(b *domain.Batch, p Policy) bool {
			res, err := Allocate(p, b.Tasks, b.Nodes, b.Ledger)
			if err != nil {
				return false
			}
			for _, n := range res.Nodes {
				if n.Used() > n.EffectiveCapacity() {
					return false
				}
			}
			return len(res.Placed())+len(res.Unscheduled) == len(b.Tasks)
		},
		domain.GopterGenBatch(), policy,
	))

	properties.Property("ledger grows by exactly the round usage", prop.ForAll(
		func(b *domain.Batch, p Policy) bool {
			before := b.Ledger.Clone()
			res, err := Allocate(p, b.Tasks, b.Nodes, b.Ledger)
			if err != nil || !reflect.DeepEqual(before, b.Ledger) {
				return false
			}
			for _, n := range res.Nodes {
				if res.Ledger.Get(n.Name) != before.Get(n.Name)+n.Used() {
					return false
				}
			}
			return true
		},
		domain.GopterGenBatch(), policy,
	))

	properties.Property("deterministic", prop.ForAll(
		func(b *domain.Batch, p Policy) bool {
			r1, err1 := Allocate(p, b.Tasks, b.Nodes, b.Ledger)
			r2, err2 := Allocate(p, b.Tasks, b.Nodes, b.Ledger)
			return err1 == nil && err2 == nil && reflect.DeepEqual(r1, r2)
		},
		domain.GopterGenBatch(), policy,
	))

	properties.TestingRun(t)
}
