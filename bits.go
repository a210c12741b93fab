package dawg

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// All integers of the .bin format are unsigned big-endian.

func putUint16(b []byte, v uint16) {
	binary.BigEndian.PutUint16(b, v)
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

func putUint32(b []byte, v uint32) {
	binary.BigEndian.PutUint32(b, v)
}

// fieldReader reads fixed-width fields at absolute positions
type fieldReader struct {
	io.ReaderAt
	buffer [4]byte
}

func newFieldReader(r io.ReaderAt) *fieldReader {
	return &fieldReader{ReaderAt: r}
}

func (r *fieldReader) read(at int64, n int) ([]byte, error) {
	data := r.buffer[:n]
	if k, err := r.ReadAt(data, at); err != nil && !(err == io.EOF && k == n) {
		return nil, errors.Wrapf(ErrBadFormat, "read %d bytes at %d: %v", n, at, err)
	}
	return data, nil
}

func (r *fieldReader) readUint16(at int64) (uint16, error) {
	data, err := r.read(at, 2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(data), nil
}

func (r *fieldReader) readUint24(at int64) (uint32, error) {
	data, err := r.read(at, 3)
	if err != nil {
		return 0, err
	}
	return uint32(data[0])<<16 | uint32(data[1])<<8 | uint32(data[2]), nil
}

func (r *fieldReader) readUint32(at int64) (uint32, error) {
	data, err := r.read(at, 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(data), nil
}
