// Package ledger holds the historical runtime ledger: accumulated usage per
// node name, carried across scheduling rounds. Values only ever grow.
package ledger

import (
	"fmt"
	"math"
	"sort"

	"github.com/pkg/errors"
)

// Ledger maps node name to accumulated usage. Missing names read as zero.
type Ledger map[string]float64

func New() Ledger {
	return Ledger{}
}

// Get returns the accumulated usage for name, zero when unseen.
func (l Ledger) Get(name string) float64 {
	return l[name]
}

func (l Ledger) Clone() Ledger {
	cp := make(Ledger, len(l))
	for k, v := range l {
		cp[k] = v
	}
	return cp
}

// Add returns a new ledger with usage added to l. l is not modified.
// Negative or non finite usage is rejected, the ledger never decreases.
func (l Ledger) Add(usage map[string]float64) (Ledger, error) {
	if err := CheckUsage(usage); err != nil {
		return nil, err
	}
	out := l.Clone()
	for name, u := range usage {
		out[name] += u
	}
	return out, nil
}

// Names returns the node names in sorted order.
func (l Ledger) Names() []string {
	names := make([]string, 0, len(l))
	for k := range l {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Spread is max-min over names, reading missing names as zero.
func (l Ledger) Spread(names []string) float64 {
	if len(names) == 0 {
		return 0
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, n := range names {
		v := l.Get(n)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return hi - lo
}

func (l Ledger) String() string {
	s := "{"
	for i, n := range l.Names() {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s:%g", n, l[n])
	}
	return s + "}"
}

// CheckUsage rejects usage that would make a ledger entry decrease.
func CheckUsage(usage map[string]float64) error {
	for name, u := range usage {
		if u < 0 || math.IsNaN(u) || math.IsInf(u, 0) {
			return errors.Errorf("ledger usage for %q must be finite and non-negative, got %v", name, u)
		}
	}
	return nil
}
