package dawg

import (
	"github.com/pkg/errors"
)

// sizes of the .bin records, in bytes
const (
	HeaderSize     = 4
	RootOffset     = HeaderSize
	nodeHeaderSize = 2
	lineSize       = 3
	transitionSize = 5

	// MaxOffset is the largest value a 3-byte field can hold.
	MaxOffset = 1<<24 - 1

	maxTransitionCount = 1<<15 - 1
	nonFinalBit        = 1 << 15
)

func (n *node) encodedSize() int64 {
	size := int64(nodeHeaderSize + transitionSize*len(n.trans))
	if n.final() {
		size += lineSize
	}
	return size
}

// AssignOffsets gives every node reachable from the root its position in
// the output, in depth-first order with children in label order, and
// returns the total output size including the 4-byte size header.
// Shared nodes are placed once.
func (d *Dawg) AssignOffsets() (int64, error) {
	if err := d.check(phaseMinimized); err != nil {
		return 0, err
	}

	total := int64(HeaderSize)
	stack := []nodeID{d.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := d.arena.node(id)
		if n.offset >= 0 {
			continue
		}
		if total > MaxOffset {
			return 0, d.fail(errors.Wrapf(ErrOffsetOverflow, "node offset %d", total))
		}

		n.offset = total
		total += n.encodedSize()

		for i := len(n.trans) - 1; i >= 0; i-- {
			dest := d.arena.transition(n.trans[i]).dest
			if d.arena.node(dest).offset < 0 {
				stack = append(stack, dest)
			}
		}
	}

	d.size = total
	d.phase = phaseAssigned
	return total, nil
}
