package dawg

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestFieldWriter(t *testing.T) {
	b := make([]byte, 9)
	putUint32(b, 0x01020304)
	putUint16(b[4:], 0x8005)
	putUint24(b[6:], 0xa95001)

	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04, 0x80, 0x05, 0xa9, 0x50, 0x01}, b)
}

func TestFieldReader(t *testing.T) {
	r := newFieldReader(bytes.NewReader([]byte{0x01, 0x02, 0x03, 0x04, 0x80, 0x05, 0xa9, 0x50, 0x01}))

	v32, err := r.readUint32(0)
	require.NoError(t, err)
	require.Equal(t, uint32(0x01020304), v32)

	v16, err := r.readUint16(4)
	require.NoError(t, err)
	require.Equal(t, uint16(0x8005), v16)

	// the last field ends exactly at the end of the input
	v24, err := r.readUint24(6)
	require.NoError(t, err)
	require.Equal(t, uint32(0xa95001), v24)

	_, err = r.readUint24(7)
	require.True(t, errors.Is(err, ErrBadFormat))
}

func TestFieldReaderWriter(t *testing.T) {
	b := make([]byte, 3*1000)
	for i := 0; i < 1000; i++ {
		putUint24(b[3*i:], uint32(i*16411)&MaxOffset)
	}

	r := newFieldReader(bytes.NewReader(b))
	for i := 0; i < 1000; i++ {
		v, err := r.readUint24(int64(3 * i))
		require.NoError(t, err)
		require.Equal(t, uint32(i*16411)&MaxOffset, v)
	}
}
