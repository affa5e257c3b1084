package gen

import (
	"errors"
	"fmt"
	"slices"
)

// topoSort returns the indices 0..n-1 ordered so that each index follows
// the indices depsFn reports for it.
//
// The result is deterministic: when several nodes are ready the smallest
// index goes first. A cycle is an error.
func topoSort(n int, depsFn func(i int) []int) ([]int, error) {
	if n <= 0 {
		return nil, nil
	}

	indeg := make([]int, n)
	users := make([][]int, n)

	for i := range n {
		for _, d := range slices.Compact(slices.Sorted(slices.Values(depsFn(i)))) {
			if d < 0 || d >= n {
				return nil, fmt.Errorf("dependency index out of range: %d depends on %d", i, d)
			}

			indeg[i]++
			users[d] = append(users[d], i)
		}
	}

	var ready []int
	for i := range n {
		if indeg[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]int, 0, n)

	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]

		order = append(order, i)
		for _, j := range users[i] {
			indeg[j]--
			if indeg[j] == 0 {
				k, _ := slices.BinarySearch(ready, j)
				ready = slices.Insert(ready, k, j)
			}
		}
	}

	if len(order) != n {
		return nil, errors.New("cycle detected")
	}

	return order, nil
}
