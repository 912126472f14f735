package repo

import (
	"fmt"

	"github.com/odvcencio/gitlet/pkg/object"
)

const maxGraphTraversalSteps = 1_000_000

// Tests may tighten the limit; the hard maximum still applies.
var graphTraversalStepsLimit = maxGraphTraversalSteps

func graphTraversalLimit() int {
	if graphTraversalStepsLimit <= 0 || graphTraversalStepsLimit > maxGraphTraversalSteps {
		return maxGraphTraversalSteps
	}
	return graphTraversalStepsLimit
}

func graphStepsLimitError(op string, limit int) error {
	return fmt.Errorf("%s: traversal exceeded maximum steps (%d)", op, limit)
}

// commitArena holds every commit read during one graph operation, keyed by
// digest, so that repeated walks over the same history read each commit
// from the store once.
type commitArena struct {
	store   *object.Store
	commits map[object.Hash]*object.CommitObj
}

func newCommitArena(store *object.Store) *commitArena {
	return &commitArena{
		store:   store,
		commits: make(map[object.Hash]*object.CommitObj),
	}
}

func (a *commitArena) get(h object.Hash) (*object.CommitObj, error) {
	if c, ok := a.commits[h]; ok {
		return c, nil
	}
	c, err := a.store.ReadCommit(h)
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", h, err)
	}
	a.commits[h] = c
	return c, nil
}

type graphQueueItem struct {
	hash object.Hash
	dist int
}

// distances returns the breadth-first distance from start to every commit
// reachable from it over any parent edge, start included at distance 0.
func (a *commitArena) distances(op string, start object.Hash) (map[object.Hash]int, error) {
	limit := graphTraversalLimit()
	dist := map[object.Hash]int{start: 0}
	queue := []graphQueueItem{{hash: start}}
	steps := 0
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		steps++
		if steps > limit {
			return nil, graphStepsLimitError(op, limit)
		}
		c, err := a.get(item.hash)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		for _, p := range c.Parents {
			if _, seen := dist[p]; seen {
				continue
			}
			dist[p] = item.dist + 1
			queue = append(queue, graphQueueItem{hash: p, dist: item.dist + 1})
		}
	}
	return dist, nil
}
