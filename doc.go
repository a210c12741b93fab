/*
Package dawg compiles a morphological dictionary into a minimal Directed
Acyclic Word Graph and writes it in the compact .bin format used for
dictionary lookup.

Each entry is an inflected form and a grammatical code. Forms sharing a
prefix share the beginning of a path from the root; the node reached at the
end of a form is final and carries the set of codes of that form. The codes
themselves are interned in a codes.Table, and a final node stores a single
ID naming the comma-joined union of its codes.

In general, to use it you first create a builder using dawg.New(). You then
Insert every (form, code) pair, in any order. Minimize then merges every
pair of subtrees that recognize the same suffixes with the same codes, level
by level from the leaves up, so the trie becomes a DAG where shared nodes are
reference counted. Minimize also records which code IDs are still referenced;
the caller compacts them into .inf line numbers (see codes.Table.Compact).

Finally Write (or Save) assigns a byte offset to every node and encodes the
automaton. The storage format is described at the top of disk.go. An encoded
automaton can be opened again with Load or Read, which access it in place,
to look up forms or dump its content.
*/
package dawg
