package dela

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// LookupEncoding returns the text encoding called name. Dictionaries are
// UTF-16 little-endian with a byte order mark unless stated otherwise.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "", "utf16le", "utf-16le", "unicode":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case "utf16be", "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), nil
	case "utf8", "utf-8":
		return unicode.UTF8, nil
	default:
		return nil, errors.Errorf("unknown encoding %q", name)
	}
}

// Reader reads the entries of a DELAF dictionary.
type Reader struct {
	scanner *bufio.Scanner
	line    int
	log     *zap.Logger
}

// NewReader decodes r with enc. Empty lines are reported to log, which
// may be nil.
func NewReader(r io.Reader, enc encoding.Encoding, log *zap.Logger) *Reader {
	if log == nil {
		log = zap.NewNop()
	}
	scanner := bufio.NewScanner(transform.NewReader(r, enc.NewDecoder()))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Reader{scanner: scanner, log: log}
}

// Line returns the number of lines read so far.
func (r *Reader) Line() int {
	return r.line
}

// Next returns the next entry of the dictionary, skipping comment and
// empty lines. It returns io.EOF at the end of the input. A line that
// does not parse yields an error wrapping ErrBadLine; reading may go on
// after it.
func (r *Reader) Next() (*Entry, error) {
	for r.scanner.Scan() {
		r.line++
		text := strings.TrimRight(r.scanner.Text(), "\r")
		if r.line == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}

		switch {
		case text == "":
			r.log.Warn("empty line", zap.Int("line", r.line))
			continue
		case text[0] == '/':
			continue
		}

		e, err := ParseLine(text)
		if err != nil {
			return nil, errors.WithMessagef(err, "line %d", r.line)
		}
		return e, nil
	}

	if err := r.scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read line %d", r.line+1)
	}
	return nil, io.EOF
}
