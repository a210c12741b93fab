/*
Package codes holds the grammatical code table of a dictionary compilation.

Every distinct code string (a compressed DELAF line such as "1.N:fs", or a
comma-joined union of them) is interned once and addressed by a small ID.
After minimization the IDs actually referenced by the automaton are
compacted into consecutive line numbers of the .inf file.
*/
package codes

import (
	"github.com/bits-and-blooms/bitset"
)

// ID is the interned index of a code string.
type ID int32

// NoID is never returned by Intern.
const NoID ID = -1

// Table maps code strings to IDs and back. IDs are dense and assigned
// in first-seen order. A Table belongs to one compilation and is not
// safe for concurrent use.
type Table struct {
	ids  map[string]ID
	text []string
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{ids: make(map[string]ID)}
}

// Intern returns the ID of s, allocating the next ID the first time s is seen.
func (t *Table) Intern(s string) ID {
	if id, ok := t.ids[s]; ok {
		return id
	}
	id := ID(len(t.text))
	t.text = append(t.text, s)
	t.ids[s] = id
	return id
}

// Lookup returns the ID of s without interning it.
func (t *Table) Lookup(s string) (ID, bool) {
	id, ok := t.ids[s]
	return id, ok
}

// Text returns the string of id. It panics if id was not returned by Intern.
func (t *Table) Text(id ID) string {
	if id < 0 || int(id) >= len(t.text) {
		panic("codes: ID out of range")
	}
	return t.text[id]
}

// Len returns the number of interned strings.
func (t *Table) Len() int {
	return len(t.text)
}

// Compact numbers the IDs set in used, in increasing ID order, starting
// at line 0. IDs in used that the table never produced are ignored.
func (t *Table) Compact(used *bitset.BitSet) *LineMap {
	m := &LineMap{lines: make(map[ID]int)}
	if used == nil {
		return m
	}
	for i, ok := used.NextSet(0); ok; i, ok = used.NextSet(i + 1) {
		if int(i) >= len(t.text) {
			break
		}
		m.lines[ID(i)] = len(m.texts)
		m.texts = append(m.texts, t.text[i])
	}
	return m
}

// LineMap is the ID to .inf line number mapping produced by Compact.
type LineMap struct {
	lines map[ID]int
	texts []string
}

// Line returns the line number of id, and false if id was not kept.
// A nil map keeps nothing.
func (m *LineMap) Line(id ID) (int, bool) {
	if m == nil {
		return 0, false
	}
	line, ok := m.lines[id]
	return line, ok
}

// Len returns the number of lines.
func (m *LineMap) Len() int {
	return len(m.texts)
}

// Lines returns the code strings in line order.
func (m *LineMap) Lines() []string {
	return m.texts
}
