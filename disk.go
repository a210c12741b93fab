package dawg

import (
	"fmt"
	"io"
	"os"
	"sort"
	"unicode/utf16"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/exp/mmap"
)

/* FILE FORMAT
All integers are unsigned big-endian.
- 4 bytes: total size of file, this header included
- for each node, starting with the root at offset 4:
	- 2 bytes: bit 15 set if the node is NOT final, bits 0-14 number of transitions
	- if final: 3 bytes, line number of the node's codes in the .inf file
	- for each transition, in increasing label order:
		2 bytes: label (UTF-16 code unit)
		3 bytes: offset of the destination node
*/

// Encode fills a buffer of size bytes (the value returned by
// AssignOffsets) with the automaton. lines gives the .inf line of every
// combined code; a final node whose code has no line is an error.
func (d *Dawg) Encode(size int64, lines LineMapper) ([]byte, error) {
	if err := d.check(phaseAssigned); err != nil {
		return nil, err
	}
	if lines == nil {
		return nil, d.fail(errors.Wrap(ErrInvariant, "nil line mapper"))
	}
	if size != d.size {
		return nil, d.fail(errors.Wrapf(ErrInvariant, "encode size %d, offsets assigned for %d", size, d.size))
	}

	buffer := make([]byte, size)
	putUint32(buffer, uint32(size))

	stack := []nodeID{d.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := d.arena.node(id)
		if n.encoded {
			continue
		}
		n.encoded = true

		if len(n.trans) > maxTransitionCount {
			return nil, d.fail(errors.Wrapf(ErrTooManyTransitions, "node at %d has %d transitions", n.offset, len(n.trans)))
		}

		header := uint16(len(n.trans))
		if !n.final() {
			header |= nonFinalBit
		}

		pos := n.offset
		putUint16(buffer[pos:], header)
		pos += nodeHeaderSize

		if n.final() {
			line, ok := lines.Line(n.combined)
			if !ok {
				return nil, d.fail(errors.Wrapf(ErrMissingLine, "code %d %q", n.combined, d.table.Text(n.combined)))
			}
			if line < 0 || line > MaxOffset {
				return nil, d.fail(errors.Wrapf(ErrOffsetOverflow, "line %d of code %d", line, n.combined))
			}
			putUint24(buffer[pos:], uint32(line))
			pos += lineSize
		}

		for _, t := range n.trans {
			tr := d.arena.transition(t)
			putUint16(buffer[pos:], tr.label)
			putUint24(buffer[pos+2:], uint32(d.arena.node(tr.dest).offset))
			pos += transitionSize
		}

		for i := len(n.trans) - 1; i >= 0; i-- {
			dest := d.arena.transition(n.trans[i]).dest
			if !d.arena.node(dest).encoded {
				stack = append(stack, dest)
			}
		}
	}

	d.phase = phaseEncoded
	return buffer, nil
}

// Write assigns offsets, encodes the automaton and writes it to w.
// Returns the number of bytes written
func (d *Dawg) Write(w io.Writer, lines LineMapper) (int64, error) {
	size, err := d.AssignOffsets()
	if err != nil {
		return 0, err
	}

	buffer, err := d.Encode(size, lines)
	if err != nil {
		return 0, err
	}

	n, err := w.Write(buffer)
	if err != nil {
		return int64(n), d.fail(errors.Wrapf(ErrWrite, "%v", err))
	}

	d.log.Debug("automaton written", zap.Int64("bytes", size))
	return int64(n), nil
}

// Save writes the automaton to filename. Returns the number of bytes written
func (d *Dawg) Save(filename string, lines LineMapper) (int64, error) {
	f, err := os.Create(filename)
	if err != nil {
		return 0, d.fail(errors.Wrapf(ErrWrite, "%v", err))
	}

	n, err := d.Write(f, lines)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = d.fail(errors.Wrapf(ErrWrite, "%v", cerr))
	}
	if err != nil {
		_ = os.Remove(filename)
	}
	return n, err
}

// Automaton gives read access to an encoded automaton in place.
type Automaton struct {
	r    *fieldReader
	size int64
}

type nodeResult struct {
	offset int64
	final  bool
	line   int
	edges  []edgeResult
}

type edgeResult struct {
	label uint16
	node  int64
}

// Load opens a .bin file without reading it into memory.
func Load(filename string) (*Automaton, error) {
	f, err := mmap.Open(filename)
	if err != nil {
		return nil, err
	}

	a, err := Read(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	if int64(f.Len()) < a.size {
		f.Close()
		return nil, errors.Wrapf(ErrBadFormat, "%s is %d bytes, header says %d", filename, f.Len(), a.size)
	}
	return a, nil
}

// Read returns an Automaton that accesses the encoded data in place
// using the given io.ReaderAt
func Read(f io.ReaderAt) (*Automaton, error) {
	r := newFieldReader(f)
	size, err := r.readUint32(0)
	if err != nil {
		return nil, err
	}
	if size < HeaderSize+nodeHeaderSize {
		return nil, errors.Wrapf(ErrBadFormat, "size %d is too small", size)
	}

	return &Automaton{r: r, size: int64(size)}, nil
}

// Size returns the size of the encoded automaton in bytes.
func (a *Automaton) Size() int64 {
	return a.size
}

// Close releases the underlying reader if it can be closed.
func (a *Automaton) Close() error {
	if closer, ok := a.r.ReaderAt.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (a *Automaton) getNode(offset int64) (nodeResult, error) {
	result := nodeResult{offset: offset, line: -1}
	if offset < HeaderSize || offset+nodeHeaderSize > a.size {
		return result, errors.Wrapf(ErrBadFormat, "node offset %d outside [%d, %d)", offset, HeaderSize, a.size)
	}

	header, err := a.r.readUint16(offset)
	if err != nil {
		return result, err
	}
	pos := offset + nodeHeaderSize
	result.final = header&nonFinalBit == 0

	if result.final {
		line, err := a.r.readUint24(pos)
		if err != nil {
			return result, err
		}
		result.line = int(line)
		pos += lineSize
	}

	count := int(header &^ nonFinalBit)
	if pos+int64(count)*transitionSize > a.size {
		return result, errors.Wrapf(ErrBadFormat, "node at %d overruns the file", offset)
	}

	result.edges = make([]edgeResult, count)
	for i := range result.edges {
		label, err := a.r.readUint16(pos)
		if err != nil {
			return result, err
		}
		dest, err := a.r.readUint24(pos + 2)
		if err != nil {
			return result, err
		}
		result.edges[i] = edgeResult{label: label, node: int64(dest)}
		pos += transitionSize
	}

	return result, nil
}

// Lookup follows form from the root and returns the .inf line of the
// node it reaches, with ok false if form is not in the automaton.
func (a *Automaton) Lookup(form string) (line int, ok bool, err error) {
	node, err := a.getNode(RootOffset)
	if err != nil {
		return -1, false, err
	}

	for _, label := range utf16.Encode([]rune(form)) {
		i := sort.Search(len(node.edges), func(i int) bool {
			return node.edges[i].label >= label
		})
		if i == len(node.edges) || node.edges[i].label != label {
			return -1, false, nil
		}
		if node, err = a.getNode(node.edges[i].node); err != nil {
			return -1, false, err
		}
	}

	if !node.final {
		return -1, false, nil
	}
	return node.line, true, nil
}

// Enumerate will call the given method, passing it every prefix in the
// automaton in label order. Return Continue to continue enumeration,
// Skip to skip this branch, or Stop to stop enumeration.
func (a *Automaton) Enumerate(fn EnumFn) error {
	type frame struct {
		node nodeResult
		next int
	}

	// no path in a well-formed file is longer than its node count
	maxDepth := int(a.size / nodeHeaderSize)

	root, err := a.getNode(RootOffset)
	if err != nil {
		return err
	}
	if fn("", root.line) != Continue {
		return nil
	}

	var units []uint16
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.node.edges) {
			stack = stack[:len(stack)-1]
			if len(units) > 0 {
				units = units[:len(units)-1]
			}
			continue
		}

		edge := top.node.edges[top.next]
		top.next++
		if len(stack) > maxDepth {
			return errors.Wrapf(ErrBadFormat, "path deeper than %d nodes at %d", maxDepth, edge.node)
		}

		child, err := a.getNode(edge.node)
		if err != nil {
			return err
		}
		units = append(units, edge.label)

		switch fn(string(utf16.Decode(units)), child.line) {
		case Stop:
			return nil
		case Skip:
			units = units[:len(units)-1]
		default:
			stack = append(stack, frame{node: child})
		}
	}
	return nil
}

// NumNodes walks the file and returns the number of nodes and transitions.
func (a *Automaton) NumNodes() (nodes, edges int, err error) {
	err = a.walk(func(node nodeResult) error {
		nodes++
		edges += len(node.edges)
		return nil
	})
	return nodes, edges, err
}

// walk calls fn for every node in file order.
func (a *Automaton) walk(fn func(node nodeResult) error) error {
	for at := int64(RootOffset); at < a.size; {
		node, err := a.getNode(at)
		if err != nil {
			return err
		}
		if err := fn(node); err != nil {
			return err
		}

		at += nodeHeaderSize + int64(len(node.edges))*transitionSize
		if node.final {
			at += lineSize
		}
	}
	return nil
}

// DumpFile prints every node of an encoded automaton, in file order.
func DumpFile(w io.Writer, f io.ReaderAt) error {
	a, err := Read(f)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "[%08x] Size=%v bytes\n", 0, a.size)

	nodes, edges := 0, 0
	err = a.walk(func(node nodeResult) error {
		if node.final {
			fmt.Fprintf(w, "[%08x] Node final line=%d has %d edges\n", node.offset, node.line, len(node.edges))
		} else {
			fmt.Fprintf(w, "[%08x] Node has %d edges\n", node.offset, len(node.edges))
		}
		for _, edge := range node.edges {
			fmt.Fprintf(w, "           %q goto <%08x>\n", string(utf16.Decode([]uint16{edge.label})), edge.node)
		}
		nodes++
		edges += len(node.edges)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%d nodes, %d edges\n", nodes, edges)
	return nil
}
