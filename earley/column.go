package earley

import (
	"github.com/emirpasic/gods/sets/hashset"

	"github.com/kbnf-go/kbnf/ids"
)

// LeoItem is the memoized "topmost" item of a right-recursive completion
// chain: when nonterminal NT completes with origin equal to the column
// this LeoItem lives in, the recognizer advances Target directly instead
// of walking every normal postdot item one link at a time.
type LeoItem struct {
	NT     ids.NonterminalID
	Target Item // the item to advance, as if NT had just completed before it
}

// column is one Earley set: every item derived at this position, indexed
// both as an insertion-ordered list (for iteration/the work queue) and by
// postdot symbol (for complete() to find predecessors quickly).
type column struct {
	items   []Item
	seen    map[Item]bool
	// postdotNormal[nt] lists items whose symbol right after the dot is
	// nonterminal nt - the predecessors complete() must advance when nt
	// finishes deriving starting at this column.
	postdotNormal map[ids.NonterminalID][]Item
	// leo[nt] is set once this column is finalized, for nonterminals
	// eligible for Leo's chain-collapsing optimization.
	leo map[ids.NonterminalID]LeoItem
	// predicted tracks which nonterminals have already had their
	// alternatives expanded into this column, so predict() does not
	// re-walk a nonterminal's production list on every postdot occurrence
	// of it within the same column.
	predicted *hashset.Set
}

func newColumn() *column {
	return &column{
		seen:          map[Item]bool{},
		postdotNormal: map[ids.NonterminalID][]Item{},
		leo:           map[ids.NonterminalID]LeoItem{},
		predicted:     hashset.New(),
	}
}

// markPredicted records nt as expanded in this column, returning false if it
// already was.
func (c *column) markPredicted(nt ids.NonterminalID) bool {
	if c.predicted.Contains(nt) {
		return false
	}
	c.predicted.Add(nt)
	return true
}

// add inserts it if not already present, returning true if it was new.
func (c *column) add(it Item) bool {
	if c.seen[it] {
		return false
	}
	c.seen[it] = true
	c.items = append(c.items, it)
	return true
}

func (c *column) indexPostdotNonterminal(nt ids.NonterminalID, it Item) {
	c.postdotNormal[nt] = append(c.postdotNormal[nt], it)
}

// removePostdotNonterminal drops a single occurrence of it from the
// postdot index for nt; used by Compact to retire a postdot entry's stale
// copy once its item's Origin has been rewritten through a Leo chain.
func (c *column) removePostdotNonterminal(nt ids.NonterminalID, it Item) {
	list := c.postdotNormal[nt]
	for i, cand := range list {
		if cand == it {
			c.postdotNormal[nt] = append(list[:i], list[i+1:]...)
			return
		}
	}
}
