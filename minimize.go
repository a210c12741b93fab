package dawg

import (
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Minimize merges equivalent subtrees of the trie, bottom-up by height
// (Revuz's algorithm). The combined code of every final node is set in
// used, whether or not the node survives the merge.
func (d *Dawg) Minimize(used *bitset.BitSet) error {
	if err := d.check(phaseBuilding); err != nil {
		return err
	}

	buckets, err := d.sortByHeight(used)
	if err != nil {
		return d.fail(err)
	}

	before := d.arena.liveNodes
	height := len(buckets)
	for k, bucket := range buckets {
		if err := d.mergeLevel(bucket); err != nil {
			return d.fail(err)
		}
		buckets[k] = nil

		d.log.Debug("minimizing",
			zap.Int("level", k),
			zap.Int("height", height),
			zap.Float64("percent", 100*float64(k+1)/float64(height)),
		)
	}

	d.height = height
	d.phase = phaseMinimized
	d.log.Info("minimization done",
		zap.Int("height", height),
		zap.Int("nodesBefore", before),
		zap.Int("nodesAfter", d.arena.liveNodes),
		zap.Int("transitions", d.arena.liveTrans),
	)
	return nil
}

// sortByHeight walks the trie in post-order and returns, for every height
// h, the transitions whose destination has height h. The root's height is
// len(result).
func (d *Dawg) sortByHeight(used *bitset.BitSet) ([][]transID, error) {
	type frame struct {
		id     nodeID
		next   int
		height int
	}

	var buckets [][]transID
	d.markUsed(d.root, used)
	stack := []frame{{id: d.root}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		n := d.arena.node(top.id)

		if top.next < len(n.trans) {
			child := d.arena.transition(n.trans[top.next]).dest
			top.next++
			if child == noNode || !d.arena.node(child).live {
				return nil, errors.Wrapf(ErrInvariant, "transition %d of node %d has no destination", top.next-1, top.id)
			}
			d.markUsed(child, used)
			stack = append(stack, frame{id: child})
			continue
		}

		h := top.height
		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			break
		}

		if h+1 > d.maxHeight {
			return nil, errors.Wrapf(ErrHeightExceeded, "height %d, ceiling %d", h+1, d.maxHeight)
		}
		for len(buckets) <= h {
			buckets = append(buckets, nil)
		}

		parent := &stack[len(stack)-1]
		t := d.arena.node(parent.id).trans[parent.next-1]
		buckets[h] = append(buckets[h], t)
		if h+1 > parent.height {
			parent.height = h + 1
		}
	}

	return buckets, nil
}

func (d *Dawg) markUsed(id nodeID, used *bitset.BitSet) {
	n := d.arena.node(id)
	if used != nil && n.final() {
		used.Set(uint(n.combined))
	}
}

// mergeLevel sorts the transitions of one height by destination and
// points every run of equivalent destinations at the first one.
func (d *Dawg) mergeLevel(bucket []transID) error {
	if len(bucket) == 0 {
		return nil
	}
	for _, t := range bucket {
		dest := d.arena.transition(t).dest
		if dest == noNode || !d.arena.node(dest).live {
			return errors.Wrapf(ErrInvariant, "transition %d has no destination", t)
		}
	}

	sort.SliceStable(bucket, func(i, j int) bool {
		return d.compareNodes(d.arena.transition(bucket[i]).dest, d.arena.transition(bucket[j]).dest) < 0
	})

	base := d.arena.transition(bucket[0]).dest
	for _, t := range bucket[1:] {
		tr := d.arena.transition(t)
		if tr.dest == base {
			continue
		}
		if d.compareNodes(base, tr.dest) != 0 {
			base = tr.dest
			continue
		}

		d.arena.release(tr.dest)
		tr.dest = base
		d.arena.node(base).incoming++
	}
	return nil
}

// compareNodes orders nodes so that equivalent nodes compare equal:
// final nodes first, then by combined code, then by outgoing
// transitions as (label, destination) pairs, shorter lists first.
// Destinations are compared by arena index, which is only meaningful
// because they are already canonical when their parents are compared.
func (d *Dawg) compareNodes(a, b nodeID) int {
	na, nb := d.arena.node(a), d.arena.node(b)

	if na.final() != nb.final() {
		if na.final() {
			return -1
		}
		return 1
	}
	if na.final() && na.combined != nb.combined {
		return compareInts(int(na.combined), int(nb.combined))
	}

	for i := 0; i < len(na.trans) && i < len(nb.trans); i++ {
		ta, tb := d.arena.transition(na.trans[i]), d.arena.transition(nb.trans[i])
		if ta.label != tb.label {
			return compareInts(int(ta.label), int(tb.label))
		}
		if ta.dest != tb.dest {
			return compareInts(int(ta.dest), int(tb.dest))
		}
	}

	return compareInts(len(na.trans), len(nb.trans))
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
