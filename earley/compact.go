package earley

import "github.com/kbnf-go/kbnf/grammar"

// Mark identifies a point in the recognizer's column history that Revert
// can return to, for the token-enumeration pass's speculative byte
// feeding.
type Mark int

// Snapshot returns a mark for the recognizer's current column.
func (r *Recognizer) Snapshot() Mark { return Mark(r.Column()) }

// Revert discards every column appended after mark. AcceptByte only ever
// appends new columns and finalizes data local to the column it just
// closed, so truncating the column slice is sufficient to undo any number
// of speculative AcceptByte calls.
func (r *Recognizer) Revert(mark Mark) {
	r.columns = r.columns[:int(mark)+1]
}

// Compact drops the per-item bookkeeping of columns that can no longer be
// the origin of any live item. Each current-column item's start position
// is first rewritten through its Leo chain - if nt (the nonterminal of
// the item's own production) has a Leo memo at columns[Origin], the item
// is really just another instance of that already-collapsed chain, so its
// effective origin is the chain's Target origin, however much older that
// is than the item's own raw Origin. The maximum of these (rewritten)
// origins is the oldest column still reachable; everything strictly
// between it and the current column can be freed.
func (r *Recognizer) Compact() {
	k := r.Column()
	if k == 0 {
		return
	}
	col := r.columns[k]
	maxOrigin := 0
	for i, it := range col.items {
		nt := r.g.ProductionAt(it.Production).LHS
		entry, ok := r.columns[it.Origin].leo[nt]
		origin := it.Origin
		if ok {
			origin = entry.Target.Origin
		}
		if origin != it.Origin {
			old := it
			it.Origin = origin
			col.items[i] = it
			if sym, ok := it.postdotSymbol(r.g); ok && sym.Kind == grammar.KindNonterminal {
				col.removePostdotNonterminal(sym.Nonterminal, old)
				col.indexPostdotNonterminal(sym.Nonterminal, it)
			}
		}
		if int(origin) > maxOrigin {
			maxOrigin = int(origin)
		}
	}
	if maxOrigin+1 >= k {
		return
	}
	for i := maxOrigin + 1; i < k; i++ {
		r.columns[i].clear()
	}
}

// clear drops a column's item and index storage, keeping the column object
// itself (and its position in r.columns) alive so later columns' Origin
// indices stay meaningful.
func (c *column) clear() {
	if c.items == nil && len(c.postdotNormal) == 0 {
		return // already compacted
	}
	c.items = nil
	c.seen = nil
	c.postdotNormal = nil
	c.leo = nil
}
