package dawg_test

import (
	"bytes"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	dawg "github.com/milden6/dawgdic"
	"github.com/milden6/dawgdic/codes"
)

func ExampleNew() {
	table := codes.NewTable()
	builder := dawg.New(table)

	builder.Insert("cat", ".N:s")
	builder.Insert("cats", ".N:p")
	builder.Insert("bat", ".N:s")
	builder.Insert("bats", ".N:p")

	used := bitset.New(0)
	builder.Minimize(used)
	lines := table.Compact(used)

	var buffer bytes.Buffer
	builder.Write(&buffer, lines)
	fmt.Printf("%d nodes, %d bytes\n", builder.NumNodes(), buffer.Len())

	automaton, _ := dawg.Read(bytes.NewReader(buffer.Bytes()))
	for _, form := range []string{"cats", "bat", "dog"} {
		line, ok, _ := automaton.Lookup(form)
		if ok {
			fmt.Printf("%s => %s\n", form, lines.Lines()[line])
		} else {
			fmt.Printf("%s not found\n", form)
		}
	}

	// Output:
	// 5 nodes, 45 bytes
	// cats => .N:p
	// bat => .N:s
	// dog not found
}
