// Package minby selects and ranks indices by a float key. Every function
// breaks ties by index: the first element seen wins.
package minby

import "sort"

// Index returns the index in [0,n) with the smallest key among those accepted
// by ok, or -1 if none is accepted. A nil ok accepts everything.
func Index(n int, key func(i int) float64, ok func(i int) bool) int {
	best := -1
	bestKey := 0.0
	for i := 0; i < n; i++ {
		if ok != nil && !ok(i) {
			continue
		}
		k := key(i)
		if best == -1 || k < bestKey {
			best, bestKey = i, k
		}
	}
	return best
}

// Ascending returns the indices [0,n) ordered by ascending key.
func Ascending(n int, key func(i int) float64) []int {
	return rank(n, func(a, b float64) bool { return a < b }, key)
}

// Descending returns the indices [0,n) ordered by descending key.
func Descending(n int, key func(i int) float64) []int {
	return rank(n, func(a, b float64) bool { return a > b }, key)
}

func rank(n int, less func(a, b float64) bool, key func(i int) float64) []int {
	idx := make([]int, n)
	keys := make([]float64, n)
	for i := range idx {
		idx[i] = i
		keys[i] = key(i)
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return less(keys[idx[a]], keys[idx[b]])
	})
	return idx
}
