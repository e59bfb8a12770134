package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	buf := []byte{
		0x58, 0x02, // 600
		0x00, 0x00, // 0
		0xff, 0x03, // 1023
		0x01, 0x00, // 1
		0x00, 0x02, // 512
		0x05, 0x08, // mask 0x0805
	}
	f, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, [AnalogCount]uint16{600, 0, 1023, 1, 512}, f.Analog)
	assert.Equal(t, uint16(0x0805), f.Mask)
	assert.Equal(t, buf, f.Encode())
}

func TestDecode_WrongSize(t *testing.T) {
	for _, n := range []int{0, 1, FrameSize - 1, FrameSize + 1} {
		_, err := Decode(make([]byte, n))
		assert.ErrorIs(t, err, ErrShortRead, "len %d", n)
	}
}

func TestParseAddr(t *testing.T) {
	for in, want := range map[string]uint16{"0x42": 0x42, "66": 66, " 0x7f ": 0x7f} {
		got, err := ParseAddr(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "0x80", "zz", "-1"} {
		_, err := ParseAddr(in)
		assert.Error(t, err, in)
	}
}

func TestBusName(t *testing.T) {
	assert.Equal(t, "1", busName("/dev/i2c-1"))
	assert.Equal(t, "I2C1", busName("I2C1"))
}

func TestFakeReader(t *testing.T) {
	f := NewFakeReader(Frame{Mask: 1}, Frame{Mask: 2})
	f.Frames = append(f.Frames, FakeResult{Err: ErrShortRead})

	fr, err := f.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, uint16(1), fr.Mask)
	fr, _ = f.ReadFrame()
	assert.Equal(t, uint16(2), fr.Mask)
	_, err = f.ReadFrame()
	assert.ErrorIs(t, err, ErrShortRead)
	_, err = f.ReadFrame()
	assert.ErrorIs(t, err, ErrShortRead, "last result repeats")
	assert.Equal(t, 4, f.Reads)

	require.NoError(t, f.Close())
	assert.True(t, f.Closed)
}

func TestDefaultAnalogs(t *testing.T) {
	require.Len(t, DefaultAnalogs, AnalogCount)
	for i, a := range DefaultAnalogs {
		assert.Equal(t, i, a.Index, a.Label)
	}
}
