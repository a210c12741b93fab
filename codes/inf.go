package codes

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

/* INF FORMAT
- first line: number of code lines, zero padded to 10 digits
- then one line per line number, in order. A line may hold several
  codes joined by unescaped commas.
*/

// ErrBadINF is returned when an .inf file cannot be parsed.
var ErrBadINF = errors.New("malformed inf file")

// WriteINF writes lines as an .inf file using enc.
func WriteINF(w io.Writer, lines []string, enc encoding.Encoding) error {
	tw := transform.NewWriter(w, enc.NewEncoder())
	bw := bufio.NewWriter(tw)

	if _, err := fmt.Fprintf(bw, "%010d\n", len(lines)); err != nil {
		return errors.Wrap(err, "write inf header")
	}
	for i, line := range lines {
		if _, err := bw.WriteString(line); err != nil {
			return errors.Wrapf(err, "write inf line %d", i)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return errors.Wrapf(err, "write inf line %d", i)
		}
	}

	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "flush inf")
	}
	return tw.Close()
}

// ReadINF reads an .inf file written by WriteINF.
func ReadINF(r io.Reader, enc encoding.Encoding) ([]string, error) {
	scanner := bufio.NewScanner(transform.NewReader(r, enc.NewDecoder()))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, errors.Wrap(err, "read inf header")
		}
		return nil, errors.Wrap(ErrBadINF, "missing header")
	}

	header := strings.TrimRight(scanner.Text(), "\r")
	n, err := strconv.Atoi(strings.TrimPrefix(header, "\ufeff"))
	if err != nil || n < 0 {
		return nil, errors.Wrapf(ErrBadINF, "bad header %q", header)
	}

	lines := make([]string, 0, n)
	for len(lines) < n && scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read inf")
	}
	if len(lines) != n {
		return nil, errors.Wrapf(ErrBadINF, "header announces %d lines, found %d", n, len(lines))
	}
	return lines, nil
}

// SplitLine splits an .inf line on the commas that are not escaped
// with a backslash. Escapes are kept in the returned codes.
func SplitLine(line string) []string {
	var result []string
	var current strings.Builder
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			current.WriteByte(line[i])
			if i+1 < len(line) {
				i++
				current.WriteByte(line[i])
			}
		case ',':
			result = append(result, current.String())
			current.Reset()
		default:
			current.WriteByte(line[i])
		}
	}
	return append(result, current.String())
}
