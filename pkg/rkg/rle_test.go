package rkg

import (
	"bytes"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressChannel_CapSplitsRuns(t *testing.T) {
	t.Run("face", func(t *testing.T) {
		tuples, err := CompressChannel(ChannelFace, repeatFrames(Input{Accelerate: true}, 1000))
		require.NoError(t, err)
		assert.Equal(t, []Tuple{{1, 255}, {1, 255}, {1, 255}, {1, 235}}, tuples)
	})

	t.Run("direction", func(t *testing.T) {
		tuples, err := CompressChannel(ChannelDirection, repeatFrames(Input{StickX: -7, StickY: 8}, 510))
		require.NoError(t, err)
		assert.Equal(t, []Tuple{{0x0F, 255}, {0x0F, 255}}, tuples)
	})

	t.Run("trick", func(t *testing.T) {
		tuples, err := CompressChannel(ChannelTrick, repeatFrames(Input{Trick: 3}, 5000))
		require.NoError(t, err)
		assert.Equal(t, []Tuple{{3, 4095}, {3, 905}}, tuples)
	})
}

func TestCompressChannel_Conservation(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		frames := randomFrames(seed, 4000)
		for _, ch := range Channels {
			tuples, err := CompressChannel(ch, frames)
			require.NoError(t, err)

			assert.Equal(t, len(frames), sumLengths(tuples), "seed %d %s", seed, ch)
			for i, tup := range tuples {
				assert.GreaterOrEqual(t, tup.Length, 1, "seed %d %s tuple %d", seed, ch, i)
				assert.LessOrEqual(t, tup.Length, ch.Cap(), "seed %d %s tuple %d", seed, ch, i)
				if i > 0 && tuples[i-1].Symbol == tup.Symbol {
					assert.Equal(t, ch.Cap(), tuples[i-1].Length, "split before a full run")
				}
			}
		}
	}
}

func TestCompressChannel_BoostFlagFollowsRun(t *testing.T) {
	frames := Frames{
		{Accelerate: true},
		{Accelerate: true, Brake: true},
		{Accelerate: true, Brake: true},
		{Brake: true},
		{Accelerate: true, Brake: true},
	}
	tuples, err := CompressChannel(ChannelFace, frames)
	require.NoError(t, err)
	assert.Equal(t, []Tuple{{0x1, 1}, {0xB, 2}, {0x2, 1}, {0x3, 1}}, tuples)
}

func TestCompressChannel_FirstFrameIsFoldedTwice(t *testing.T) {
	// Frame 0 is encoded once to seed the run and again inside the fold. No
	// face state may change its symbol on the second pass, so the leading
	// tuple never has length zero.
	for s := 0; s < 8; s++ {
		in := Input{Accelerate: s&0x1 != 0, Brake: s&0x2 != 0, Item: s&0x4 != 0}
		tuples, err := CompressChannel(ChannelFace, Frames{in, in, {}})
		require.NoError(t, err)
		require.NotEmpty(t, tuples)
		assert.GreaterOrEqual(t, tuples[0].Length, 1, "first frame %#x", s)
		assert.Equal(t, 3, sumLengths(tuples))
	}
}

func TestRunState_ZeroLengthLeadingTuple(t *testing.T) {
	// A fresh state whose first symbol differs from the seed emits an empty run.
	state := runState{tracked: 0x3}
	state = state.step(0xB, ChannelFace.Cap())
	assert.Equal(t, []Tuple{{0x3, 0}, {0xB, 1}}, state.finish())
}

func TestCompressChannel_Errors(t *testing.T) {
	_, err := CompressChannel(ChannelFace, Frames{})
	assert.ErrorIs(t, err, ErrNoFrames)

	_, err = CompressChannel(ChannelDirection, Frames{{}, {StickX: 9}})
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = CompressChannel(ChannelTrick, Frames{{Trick: 16}})
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = CompressChannel(Channel(9), Frames{{}})
	assert.Error(t, err)
}

func TestTuple_AppendBinary(t *testing.T) {
	out, err := Tuple{Symbol: 0x77, Length: 255}.AppendBinary(ChannelDirection, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x77, 0xFF}, out)

	out, err = Tuple{Symbol: 0x3, Length: 300}.AppendBinary(ChannelTrick, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x31, 0x2C}, out)

	out, err = Tuple{Symbol: 0xF, Length: 4095}.AppendBinary(ChannelTrick, []byte{0xAA})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xFF, 0xFF}, out)

	invalid := []struct {
		ch Channel
		t  Tuple
	}{
		{ChannelFace, Tuple{Symbol: 0x100, Length: 1}},
		{ChannelFace, Tuple{Symbol: 0x1, Length: 256}},
		{ChannelDirection, Tuple{Symbol: -1, Length: 1}},
		{ChannelTrick, Tuple{Symbol: 0x10, Length: 1}},
		{ChannelTrick, Tuple{Symbol: 0x1, Length: 4096}},
	}
	for _, tc := range invalid {
		_, err := tc.t.AppendBinary(tc.ch, nil)
		assert.ErrorIs(t, err, ErrInvalidSymbolValue, "%s %+v", tc.ch, tc.t)
	}
}

func TestChannel_RoundTrip(t *testing.T) {
	for seed := int64(10); seed < 15; seed++ {
		frames := randomFrames(seed, 2500)
		streams, err := EncodeStreams(frames)
		require.NoError(t, err)

		decoded, err := DecodeFrames(streams, len(frames))
		require.NoError(t, err)
		require.Len(t, decoded, len(frames))

		// Inputs carry no boost flag, so whole records compare equal.
		assert.Equal(t, []Input(frames), decoded, "seed %d", seed)
	}
}

func TestExpandChannel(t *testing.T) {
	t.Run("face and direction tuples", func(t *testing.T) {
		out := ExpandChannel(ChannelDirection, []byte{0x77, 0x02, 0xF0, 0x01})
		assert.Equal(t, []byte{0x77, 0x77, 0xF0}, out.Symbols)
		assert.Equal(t, 2, out.Tuples)
		assert.Equal(t, TerminatedByExhaustion, out.Termination)
	})

	t.Run("trick tuple carries a 12 bit length", func(t *testing.T) {
		out := ExpandChannel(ChannelTrick, []byte{0x31, 0x2C})
		assert.Len(t, out.Symbols, 300)
		assert.Equal(t, byte(3), out.Symbols[299])
	})

	t.Run("zero tuple stops the stream", func(t *testing.T) {
		out := ExpandChannel(ChannelFace, []byte{0x01, 0x05, 0x00, 0x00, 0x02, 0x03})
		assert.Equal(t, bytes.Repeat([]byte{0x01}, 5), out.Symbols)
		assert.Equal(t, 1, out.Tuples)
		assert.Equal(t, TerminatedBySentinel, out.Termination)
	})

	t.Run("zero symbol with a length is not a sentinel", func(t *testing.T) {
		out := ExpandChannel(ChannelFace, []byte{0x00, 0x02, 0x01, 0x01})
		assert.Equal(t, []byte{0x00, 0x00, 0x01}, out.Symbols)
		assert.Equal(t, TerminatedByExhaustion, out.Termination)
	})

	t.Run("dangling byte", func(t *testing.T) {
		out := ExpandChannel(ChannelFace, []byte{0x01, 0x02, 0x03})
		assert.Equal(t, []byte{0x01, 0x01}, out.Symbols)
		assert.Equal(t, TerminatedByBoundsLimit, out.Termination)
	})

	t.Run("empty", func(t *testing.T) {
		out := ExpandChannel(ChannelFace, nil)
		assert.Empty(t, out.Symbols)
		assert.Equal(t, TerminatedByExhaustion, out.Termination)
	})
}

func TestExpandChannelFrom_ReadError(t *testing.T) {
	_, err := ExpandChannelFrom(ChannelFace, iotest.ErrReader(iotest.ErrTimeout))
	assert.ErrorIs(t, err, iotest.ErrTimeout)
}

func TestChannelReader(t *testing.T) {
	r := NewChannelReader(ChannelTrick, bytes.NewReader([]byte{0x21, 0x00, 0x00, 0x00, 0x10, 0x01}))

	tup, err := r.ReadTuple()
	require.NoError(t, err)
	assert.Equal(t, Tuple{Symbol: 2, Length: 256}, tup)

	_, err = r.ReadTuple()
	assert.ErrorIs(t, err, ErrStreamEnd)
	_, err = r.ReadTuple()
	assert.ErrorIs(t, err, ErrStreamEnd)
	assert.Equal(t, int64(4), r.Offset())
}

func TestRunLengths(t *testing.T) {
	stream, count, err := EncodeChannel(ChannelFace, repeatFrames(Input{Item: true}, 600))
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, []int{255, 255, 90}, RunLengths(ChannelFace, stream))

	assert.Equal(t, []Tuple{{4, 255}, {4, 255}, {4, 90}}, ParseTuples(ChannelFace, stream))
}

func TestTermination_String(t *testing.T) {
	assert.Equal(t, "exhausted", TerminatedByExhaustion.String())
	assert.Equal(t, "sentinel", TerminatedBySentinel.String())
	assert.Equal(t, "bounds limit", TerminatedByBoundsLimit.String())
}
