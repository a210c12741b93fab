// Package dela parses DELAF dictionary lines and computes the compressed
// codes stored in .inf files.
//
// A DELAF line reads
//
//	inflected,lemma.Cat+Sem1+Sem2:flex1:flex2
//
// where an empty lemma stands for the inflected form itself, and a
// backslash protects the next character.
package dela

import (
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/pkg/errors"
)

var (
	// ErrBadLine is returned for a DELAF line that cannot be parsed.
	ErrBadLine = errors.New("dela: malformed line")
	// ErrBadInfo is returned for a compressed code that cannot be expanded.
	ErrBadInfo = errors.New("dela: malformed compressed code")
)

// Entry is a parsed DELAF line.
//
// Inflected and Lemma keep the backslash of a protected '=' so that
// Expand can tell it from a separator; every other escape is resolved.
type Entry struct {
	Inflected string
	Lemma     string
	// Semantic holds the grammatical category first, then the semantic codes.
	Semantic  []string
	Flexional []string
}

type lineScanner struct {
	line []rune
	pos  int
}

func (s *lineScanner) more() bool {
	return s.pos < len(s.line)
}

func (s *lineScanner) peek() rune {
	return s.line[s.pos]
}

// field reads up to one of the stop runes, resolving escapes. A protected
// '=' keeps its backslash when keepEqual is set.
func (s *lineScanner) field(stops string, keepEqual bool) (string, error) {
	var b strings.Builder
	for s.more() && !strings.ContainsRune(stops, s.peek()) {
		c := s.peek()
		if c == '\\' {
			s.pos++
			if !s.more() {
				return "", errors.Wrapf(ErrBadLine, "%q ends with a backslash", string(s.line))
			}
			if s.peek() == '=' && keepEqual {
				b.WriteRune('\\')
			}
		}
		b.WriteRune(s.peek())
		s.pos++
	}
	return b.String(), nil
}

// ParseLine parses a DELAF line. Anything after a '/' that ends the codes
// is a comment and is ignored.
func ParseLine(line string) (*Entry, error) {
	s := &lineScanner{line: []rune(line)}
	e := &Entry{}

	var err error
	if e.Inflected, err = s.field(",", true); err != nil {
		return nil, err
	}
	if !s.more() {
		return nil, errors.Wrapf(ErrBadLine, "%q has no comma", line)
	}
	s.pos++

	if e.Lemma, err = s.field(".", true); err != nil {
		return nil, err
	}
	if !s.more() {
		return nil, errors.Wrapf(ErrBadLine, "%q has no grammatical code", line)
	}
	s.pos++
	if e.Lemma == "" {
		e.Lemma = e.Inflected
	}

	category, err := s.field("+/:", false)
	if err != nil {
		return nil, err
	}
	e.Semantic = append(e.Semantic, category)

	for s.more() && s.peek() == '+' {
		s.pos++
		code, err := s.field("+/:", false)
		if err != nil {
			return nil, err
		}
		e.Semantic = append(e.Semantic, code)
	}

	for s.more() && s.peek() == ':' {
		s.pos++
		code, err := s.field(":/", false)
		if err != nil {
			return nil, err
		}
		e.Flexional = append(e.Flexional, code)
	}

	return e, nil
}

// Code returns the grammatical code of the entry, as in .N+z1:ms:fs.
func (e *Entry) Code() string {
	var b strings.Builder
	b.WriteByte('.')
	for i, code := range e.Semantic {
		if i > 0 {
			b.WriteByte('+')
		}
		b.WriteString(code)
	}
	for _, code := range e.Flexional {
		b.WriteByte(':')
		b.WriteString(code)
	}
	return b.String()
}

// Flip swaps the inflected form and the lemma.
func (e *Entry) Flip() {
	e.Inflected, e.Lemma = e.Lemma, e.Inflected
}

// Expand returns the entries to insert for e. An unprotected '=' in the
// inflected form or the lemma stands for both a space and a dash, so such
// an entry expands into two; a protected '=' becomes a plain '='.
func (e *Entry) Expand() []*Entry {
	if !hasUnprotectedEqual(e.Inflected) && !hasUnprotectedEqual(e.Lemma) {
		return []*Entry{e.with(replaceEqual(e.Inflected, '='), replaceEqual(e.Lemma, '='))}
	}
	return []*Entry{
		e.with(replaceEqual(e.Inflected, ' '), replaceEqual(e.Lemma, ' ')),
		e.with(replaceEqual(e.Inflected, '-'), replaceEqual(e.Lemma, '-')),
	}
}

func (e *Entry) with(inflected, lemma string) *Entry {
	return &Entry{
		Inflected: inflected,
		Lemma:     lemma,
		Semantic:  e.Semantic,
		Flexional: e.Flexional,
	}
}

func hasUnprotectedEqual(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '=':
			return true
		}
	}
	return false
}

// replaceEqual replaces every unprotected '=' with sep and unprotects the
// others.
func replaceEqual(s string, sep byte) string {
	if !strings.ContainsRune(s, '=') {
		return s
	}
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s) && s[i+1] == '=':
			b = append(b, '=')
			i++
		case s[i] == '=':
			b = append(b, sep)
		default:
			b = append(b, s[i])
		}
	}
	return string(b)
}

func isSeparator(c uint16) bool {
	return c == ' ' || c == '-'
}

// countTokens counts the tokens of s: every separator is a token, and so
// is every run of other characters.
func countTokens(s []uint16) int {
	n := 0
	inWord := false
	for _, c := range s {
		switch {
		case isSeparator(c):
			n++
			inWord = false
		case !inWord:
			n++
			inWord = true
		}
	}
	return n
}

// nextToken returns the token of s starting at pos and the position after it.
func nextToken(s []uint16, pos int) ([]uint16, int) {
	if pos < len(s) && isSeparator(s[pos]) {
		return s[pos : pos+1], pos + 1
	}
	end := pos
	for end < len(s) && !isSeparator(s[end]) {
		end++
	}
	return s[pos:end], end
}

func commonPrefix(a, b []uint16) int {
	i := 0
	for i < len(a) && i < len(b) && a[i] == b[i] {
		i++
	}
	// never split a surrogate pair
	if i > 0 && utf16.IsSurrogate(rune(a[i-1])) && a[i-1] < 0xdc00 {
		i--
	}
	return i
}

// compressToken writes how to rebuild lemma from inflected: the number of
// code units to remove from the end of inflected, then the units to append.
func compressToken(b *strings.Builder, inflected, lemma []uint16) {
	if len(inflected) == 1 && len(lemma) == 1 && isSeparator(inflected[0]) && isSeparator(lemma[0]) {
		b.WriteRune(rune(lemma[0]))
		return
	}

	prefix := commonPrefix(inflected, lemma)
	b.WriteString(strconv.Itoa(len(inflected) - prefix))
	for _, r := range utf16.Decode(lemma[prefix:]) {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
}

// CompressLine returns the code stored in the .inf file for e. It holds
// the grammatical code and, unless the lemma equals the inflected form,
// how to rebuild the lemma from the inflected form:
//
//	mains,main.N:fp                   => 1.N:fp
//	jean-pierre,.N                    => .N
//	pommes de terre,pomme de terre.N  => 1 0 0.N
//	cannot,can not.V                  => _3 not.V
func CompressLine(e *Entry) string {
	code := e.Code()
	if e.Inflected == e.Lemma {
		return code
	}

	inflected := utf16.Encode([]rune(e.Inflected))
	lemma := utf16.Encode([]rune(e.Lemma))

	var b strings.Builder
	n := countTokens(inflected)
	if n != countTokens(lemma) {
		b.WriteByte('_')
		compressToken(&b, inflected, lemma)
		b.WriteString(code)
		return b.String()
	}

	var ti, tl []uint16
	pi, pl := 0, 0
	for i := 0; i < n; i++ {
		ti, pi = nextToken(inflected, pi)
		tl, pl = nextToken(lemma, pl)
		compressToken(&b, ti, tl)
	}
	b.WriteString(code)
	return b.String()
}

// readCount reads the decimal number at the start of info.
func readCount(info []rune, pos int) (int, int) {
	n := 0
	for pos < len(info) && info[pos] >= '0' && info[pos] <= '9' {
		n = n*10 + int(info[pos]-'0')
		pos++
	}
	return n, pos
}

func trimUnits(units []uint16, n int) string {
	keep := len(units) - n
	if keep < 0 {
		keep = 0
	}
	return string(utf16.Decode(units[:keep]))
}

// Uncompress rebuilds the DELAF line of inflected from one code of the
// .inf file, as produced by CompressLine:
//
//	Uncompress("mains", "1.N:fp") == "mains,main.N:fp"
func Uncompress(inflected, info string) (string, error) {
	var b strings.Builder
	for _, r := range inflected {
		if r == ',' || r == '.' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')

	if strings.HasPrefix(info, ".") {
		b.WriteString(info)
		return b.String(), nil
	}

	entry := utf16.Encode([]rune(inflected))
	in := []rune(info)

	if strings.HasPrefix(info, "_") {
		n, pos := readCount(in, 1)
		b.WriteString(trimUnits(entry, n))
		b.WriteString(string(in[pos:]))
		return b.String(), nil
	}

	pos, posEntry := 0, 0
	for {
		if pos == len(in) {
			return "", errors.Wrapf(ErrBadInfo, "%q has no grammatical code", info)
		}
		c := in[pos]
		if c == '.' {
			break
		}
		if c == ' ' || c == '-' {
			b.WriteRune(c)
			pos++
			posEntry++
			continue
		}

		n, next := readCount(in, pos)
		pos = next
		var suffix []rune
		for pos < len(in) && in[pos] != '.' && in[pos] != ' ' && in[pos] != '-' {
			if in[pos] == '\\' && pos+1 < len(in) {
				pos++
			}
			suffix = append(suffix, in[pos])
			pos++
		}

		start := posEntry
		for posEntry < len(entry) && !isSeparator(entry[posEntry]) {
			posEntry++
		}
		lemma := trimUnits(entry[start:posEntry], n) + string(suffix)
		for _, r := range lemma {
			if r == '.' || r == '+' || r == '\\' || r == '/' {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		}
	}

	b.WriteString(string(in[pos:]))
	return b.String(), nil
}
