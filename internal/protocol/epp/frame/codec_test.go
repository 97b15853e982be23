package frame

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte(``),
		[]byte(`<epp/>`),
		bytes.Repeat([]byte("a"), 4096),
	}

	for _, p := range payloads {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, p))

		total := binary.BigEndian.Uint32(buf.Bytes()[:prefixLen])
		require.Equal(t, uint32(len(p)+prefixLen), total)

		got, err := Read(&buf)
		require.NoError(t, err)
		require.Equal(t, p, got)
	}
}

func TestReadRejectsOversizeDeclaration(t *testing.T) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], MaxFrameSize+1)
	r := bytes.NewReader(lenBuf[:])

	_, err := Read(r)
	require.ErrorIs(t, err, ErrOversizeFrame)
}

func TestReadRejectsUndersizeDeclaration(t *testing.T) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], 2)
	r := bytes.NewReader(lenBuf[:])

	_, err := Read(r)
	require.ErrorIs(t, err, ErrUndersizeFrame)
}

func TestReadTruncatedFrameFails(t *testing.T) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], 10)
	r := bytes.NewReader(append(lenBuf[:], []byte("ab")...))

	_, err := Read(r)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestWriteRejectsOversizePayload(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, make([]byte, MaxFrameSize))
	require.ErrorIs(t, err, ErrOversizeFrame)
}
