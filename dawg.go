package dawg

import (
	"sort"
	"unicode/utf16"

	"github.com/milden6/dawgdic/codes"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// EnumFn is called by Automaton.Enumerate for every prefix in the automaton.
// line is the .inf line of the prefix, or -1 when the prefix is not a word.
type EnumFn = func(word string, line int) EnumerationResult

// EnumerationResult is returned by the enumeration function to indicate whether
// enumeration should continue below this depth or stop altogether
type EnumerationResult = int

const (
	// Continue enumerating all words with this prefix
	Continue EnumerationResult = iota

	// Skip will skip all words with this prefix
	Skip

	// Stop will immediately stop enumerating words
	Stop
)

// LineMapper resolves a code ID to its line number in the .inf file.
// codes.LineMap implements it.
type LineMapper interface {
	Line(id codes.ID) (int, bool)
}

type phase int

const (
	phaseBuilding phase = iota
	phaseMinimized
	phaseAssigned
	phaseEncoded
)

func (p phase) String() string {
	switch p {
	case phaseBuilding:
		return "building"
	case phaseMinimized:
		return "minimized"
	case phaseAssigned:
		return "offsets assigned"
	case phaseEncoded:
		return "encoded"
	default:
		return "unknown"
	}
}

// Dawg compiles (form, code) pairs into a minimal automaton.
//
// The steps must run in order: Insert for every entry, then Minimize,
// then AssignOffsets and Encode (or Write/Save, which do both).
// A Dawg is single-use and not safe for concurrent use.
type Dawg struct {
	table     *codes.Table
	arena     arena
	root      nodeID
	phase     phase
	size      int64
	height    int
	numAdded  int
	maxHeight int
	log       *zap.Logger

	// set by the first fatal error
	err error
}

// New creates an empty Dawg whose codes are interned in table.
func New(table *codes.Table, opts ...Option) *Dawg {
	d := &Dawg{
		table:     table,
		maxHeight: DefaultMaxHeight,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	// the root is allocated before any limit can apply
	limit := d.arena.maxNodes
	d.arena.maxNodes = 0
	d.root, _ = d.arena.newNode()
	d.arena.maxNodes = limit

	return d
}

// Insert adds form to the automaton with the given code. Inserting the
// same pair twice is a no-op; inserting a new code for an existing form
// extends the form's code set.
func (d *Dawg) Insert(form string, code string) error {
	if err := d.check(phaseBuilding); err != nil {
		return err
	}

	id := d.table.Intern(code)
	current := d.root
	for _, label := range utf16.Encode([]rune(form)) {
		next, err := d.child(current, label)
		if err != nil {
			return d.fail(err)
		}
		current = next
	}

	d.addCode(current, id)
	d.numAdded++
	return nil
}

// child returns the destination of the transition labelled label out of
// parent, creating the transition and its node when absent.
func (d *Dawg) child(parent nodeID, label uint16) (nodeID, error) {
	trans := d.arena.node(parent).trans
	i := sort.Search(len(trans), func(i int) bool {
		return d.arena.transition(trans[i]).label >= label
	})
	if i < len(trans) && d.arena.transition(trans[i]).label == label {
		return d.arena.transition(trans[i]).dest, nil
	}

	dest, err := d.arena.newNode()
	if err != nil {
		return noNode, err
	}
	d.arena.node(dest).incoming++
	t, err := d.arena.newTransition(label, dest)
	if err != nil {
		d.arena.release(dest)
		return noNode, err
	}

	// the arena may have grown; fetch the parent again
	p := d.arena.node(parent)
	p.trans = append(p.trans, 0)
	copy(p.trans[i+1:], p.trans[i:])
	p.trans[i] = t

	return dest, nil
}

func (d *Dawg) addCode(id nodeID, code codes.ID) {
	n := d.arena.node(id)
	if len(n.codes) == 0 {
		n.codes = []codes.ID{code}
		n.combined = code
		return
	}

	for _, c := range n.codes {
		if c == code {
			return
		}
	}

	n.codes = append(n.codes, code)
	n.combined = d.table.Intern(d.table.Text(n.combined) + "," + d.table.Text(code))
}

// check returns the stored fatal error, or ErrWrongPhase if the Dawg is
// not in the expected phase.
func (d *Dawg) check(want phase) error {
	if d.err != nil {
		return d.err
	}
	if d.phase != want {
		return errors.Wrapf(ErrWrongPhase, "expected %s, dawg is %s", want, d.phase)
	}
	return nil
}

func (d *Dawg) fail(err error) error {
	d.err = err
	return err
}

// Table returns the code table the Dawg interns into.
func (d *Dawg) Table() *codes.Table {
	return d.table
}

// NumAdded returns the number of successful Insert calls.
func (d *Dawg) NumAdded() int {
	return d.numAdded
}

// NumNodes returns the number of live nodes, including the root.
func (d *Dawg) NumNodes() int {
	return d.arena.liveNodes
}

// NumTransitions returns the number of live transitions.
func (d *Dawg) NumTransitions() int {
	return d.arena.liveTrans
}

// Height returns the height of the root, known once Minimize has run.
func (d *Dawg) Height() int {
	return d.height
}

// Size returns the encoded size in bytes, known once AssignOffsets has run.
func (d *Dawg) Size() int64 {
	return d.size
}
