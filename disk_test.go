package dawg

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/milden6/dawgdic/codes"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad(t *testing.T) {
	table := codes.NewTable()
	d := New(table)
	insertAll(t, d, []entry{{"hello", ".INTJ"}, {"jello", ".N"}, {"jellos", ".N:p"}})
	used := bitset.New(0)
	require.NoError(t, d.Minimize(used))
	lines := table.Compact(used)

	filename := filepath.Join(t.TempDir(), "test.bin")
	n, err := d.Save(filename, lines)
	require.NoError(t, err)

	info, err := os.Stat(filename)
	require.NoError(t, err)
	require.Equal(t, n, info.Size())

	a, err := Load(filename)
	require.NoError(t, err)
	defer a.Close()

	for form, code := range map[string]string{"hello": ".INTJ", "jello": ".N", "jellos": ".N:p"} {
		line, ok, err := a.Lookup(form)
		require.NoError(t, err)
		require.True(t, ok, form)
		require.Equal(t, code, lines.Lines()[line])
	}

	_, ok, err := a.Lookup("jell")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSaveRemovesPartialFile(t *testing.T) {
	d := New(codes.NewTable())
	require.NoError(t, d.Insert("a", ".N"))
	require.NoError(t, d.Minimize(nil))

	filename := filepath.Join(t.TempDir(), "test.bin")
	_, err := d.Save(filename, codes.NewTable().Compact(nil))
	require.True(t, errors.Is(err, ErrMissingLine))

	_, err = os.Stat(filename)
	require.True(t, os.IsNotExist(err))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.bin"))
	require.Error(t, err)
}

func TestEnumerate(t *testing.T) {
	_, data, lines := compile(t, []entry{{"cat", ".N"}, {"catnip", ".N"}, {"cats", ".N:p"}, {"blip", ".V"}})
	a, err := Read(bytes.NewReader(data))
	require.NoError(t, err)

	var words []string
	require.NoError(t, a.Enumerate(func(word string, line int) EnumerationResult {
		if line >= 0 {
			words = append(words, word+"="+lines.Lines()[line])
		}
		return Continue
	}))
	require.Equal(t, []string{"blip=.V", "cat=.N", "catnip=.N", "cats=.N:p"}, words)

	words = nil
	require.NoError(t, a.Enumerate(func(word string, line int) EnumerationResult {
		if word == "b" {
			return Skip
		}
		if line >= 0 {
			words = append(words, word)
		}
		if word == "catnip" {
			return Stop
		}
		return Continue
	}))
	require.Equal(t, []string{"cat", "catnip"}, words)
}

func TestDumpFile(t *testing.T) {
	_, data, _ := compile(t, []entry{{"xab", ".N"}, {"yab", ".N"}})

	var out bytes.Buffer
	require.NoError(t, DumpFile(&out, bytes.NewReader(data)))

	dump := out.String()
	require.True(t, strings.HasPrefix(dump, "[00000000] Size=35 bytes\n"), dump)
	require.Contains(t, dump, "[00000004] Node has 2 edges")
	require.Contains(t, dump, "[0000001e] Node final line=0 has 0 edges")
	require.Contains(t, dump, "4 nodes, 4 edges")

	a, err := Read(bytes.NewReader(data))
	require.NoError(t, err)
	nodes, edges, err := a.NumNodes()
	require.NoError(t, err)
	require.Equal(t, 4, nodes)
	require.Equal(t, 4, edges)
}

func TestReadMalformed(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte{0, 0}))
	require.True(t, errors.Is(err, ErrBadFormat))

	_, err = Read(bytes.NewReader([]byte{0, 0, 0, 5, 0x80}))
	require.True(t, errors.Is(err, ErrBadFormat))

	// the root announces a transition that is not there
	a, err := Read(bytes.NewReader([]byte{0, 0, 0, 6, 0x80, 0x01}))
	require.NoError(t, err)
	_, _, err = a.Lookup("a")
	require.True(t, errors.Is(err, ErrBadFormat))

	// a transition pointing into the header
	a, err = Read(bytes.NewReader([]byte{0, 0, 0, 11, 0x80, 0x01, 0x00, 'a', 0x00, 0x00, 0x01}))
	require.NoError(t, err)
	_, _, err = a.Lookup("a")
	require.True(t, errors.Is(err, ErrBadFormat))

	// a transition back to the root
	a, err = Read(bytes.NewReader([]byte{0, 0, 0, 11, 0x80, 0x01, 0x00, 'a', 0x00, 0x00, 0x04}))
	require.NoError(t, err)
	err = a.Enumerate(func(word string, line int) EnumerationResult {
		return Continue
	})
	require.True(t, errors.Is(err, ErrBadFormat), "%v", err)
}
