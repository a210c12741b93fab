package dawg

import (
	"github.com/milden6/dawgdic/codes"
	"github.com/pkg/errors"
)

type nodeID int32

type transID int32

const noNode nodeID = -1

type node struct {
	trans    []transID  // sorted by label
	codes    []codes.ID // terminal codes, empty if not final
	combined codes.ID   // union of codes, valid if len(codes) > 0
	offset   int64      // -1 until AssignOffsets
	incoming int32
	encoded  bool
	live     bool
}

func (n *node) final() bool {
	return len(n.codes) > 0
}

type transition struct {
	label uint16
	dest  nodeID
	live  bool
}

// arena owns every node and transition of one Dawg. Slots are addressed
// by index and recycled through free lists once released.
type arena struct {
	nodes     []node
	trans     []transition
	freeNodes []nodeID
	freeTrans []transID
	liveNodes int
	liveTrans int
	maxNodes  int
	maxTrans  int
}

func (a *arena) newNode() (nodeID, error) {
	if a.maxNodes > 0 && a.liveNodes >= a.maxNodes {
		return noNode, errors.Wrapf(ErrAllocation, "node limit %d reached", a.maxNodes)
	}

	var id nodeID
	if count := len(a.freeNodes); count > 0 {
		id = a.freeNodes[count-1]
		a.freeNodes = a.freeNodes[:count-1]
	} else {
		id = nodeID(len(a.nodes))
		a.nodes = append(a.nodes, node{})
	}

	a.nodes[id] = node{combined: codes.NoID, offset: -1, live: true}
	a.liveNodes++
	return id, nil
}

func (a *arena) newTransition(label uint16, dest nodeID) (transID, error) {
	if a.maxTrans > 0 && a.liveTrans >= a.maxTrans {
		return -1, errors.Wrapf(ErrAllocation, "transition limit %d reached", a.maxTrans)
	}

	var id transID
	if count := len(a.freeTrans); count > 0 {
		id = a.freeTrans[count-1]
		a.freeTrans = a.freeTrans[:count-1]
	} else {
		id = transID(len(a.trans))
		a.trans = append(a.trans, transition{})
	}

	a.trans[id] = transition{label: label, dest: dest, live: true}
	a.liveTrans++
	return id, nil
}

func (a *arena) node(id nodeID) *node {
	return &a.nodes[id]
}

func (a *arena) transition(id transID) *transition {
	return &a.trans[id]
}

// release drops one reference to id. A node whose count reaches zero is
// freed together with its transitions, which in turn drop one reference
// to their destinations. Shared nodes survive until their last
// reference goes.
func (a *arena) release(id nodeID) {
	stack := []nodeID{id}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &a.nodes[id]
		n.incoming--
		if n.incoming > 0 {
			continue
		}

		for _, t := range n.trans {
			stack = append(stack, a.trans[t].dest)
			a.trans[t] = transition{dest: noNode}
			a.freeTrans = append(a.freeTrans, t)
			a.liveTrans--
		}

		*n = node{combined: codes.NoID, offset: -1}
		a.freeNodes = append(a.freeNodes, id)
		a.liveNodes--
	}
}
