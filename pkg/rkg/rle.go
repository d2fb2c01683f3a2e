package rkg

import (
	"bytes"
	"fmt"
	"io"
)

// FrameSource is an ordered, index addressable sequence of frames.
type FrameSource interface {
	Len() int
	At(i int) Input
}

// Frames is the simplest FrameSource.
type Frames []Input

func (f Frames) Len() int       { return len(f) }
func (f Frames) At(i int) Input { return f[i] }

// Tuple is a single run: Symbol repeated for Length frames.
type Tuple struct {
	Symbol int
	Length int
}

// AppendBinary appends the two byte form of t for channel ch to dst.
func (t Tuple) AppendBinary(ch Channel, dst []byte) ([]byte, error) {
	if t.Length < 0 || t.Length > ch.Cap() {
		return dst, fmt.Errorf("%s run length %d: %w", ch, t.Length, ErrInvalidSymbolValue)
	}
	if ch == ChannelTrick {
		if t.Symbol < 0 || t.Symbol > 0xF {
			return dst, fmt.Errorf("%s symbol %#x: %w", ch, t.Symbol, ErrInvalidSymbolValue)
		}
		return append(dst, byte(t.Symbol<<4|t.Length>>8), byte(t.Length&0xFF)), nil
	}
	if t.Symbol < 0 || t.Symbol > 0xFF {
		return dst, fmt.Errorf("%s symbol %#x: %w", ch, t.Symbol, ErrInvalidSymbolValue)
	}
	return append(dst, byte(t.Symbol), byte(t.Length)), nil
}

// parseTuple is the inverse of AppendBinary.
func parseTuple(ch Channel, hi, lo byte) Tuple {
	if ch == ChannelTrick {
		return Tuple{Symbol: int(hi >> 4), Length: int(hi&0xF)<<8 | int(lo)}
	}
	return Tuple{Symbol: int(hi), Length: int(lo)}
}

// runState is the accumulator folded over the frames of a channel.
type runState struct {
	tracked byte
	length  int
	tuples  []Tuple
}

// step folds one frame symbol into the state. A run is closed when the
// symbol changes or the run already holds limit frames.
func (s runState) step(current byte, limit int) runState {
	if current != s.tracked || s.length >= limit {
		s.tuples = append(s.tuples, Tuple{Symbol: int(s.tracked), Length: s.length})
		s.tracked = current
		s.length = 1
		return s
	}
	s.length++
	return s
}

func (s runState) finish() []Tuple {
	return append(s.tuples, Tuple{Symbol: int(s.tracked), Length: s.length})
}

// CompressChannel run-length encodes one channel of frames.
//
// The tracked symbol is seeded from frame 0 with a zero context, and frame 0 is
// then folded again using the tracked symbol as its context. If re-encoding
// frame 0 changes the face symbol, the first tuple has length zero.
func CompressChannel(ch Channel, frames FrameSource) ([]Tuple, error) {
	if !ch.Valid() {
		return nil, fmt.Errorf("unknown %s", ch)
	}
	n := frames.Len()
	if n == 0 {
		return nil, ErrNoFrames
	}

	seed, err := ch.Symbol(frames.At(0), 0)
	if err != nil {
		return nil, fmt.Errorf("frame 0: %w", err)
	}

	state := runState{tracked: seed}
	limit := ch.Cap()
	for i := 0; i < n; i++ {
		current, err := ch.Symbol(frames.At(i), state.tracked)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		state = state.step(current, limit)
	}
	return state.finish(), nil
}

// SerializeTuples writes tuples in their binary form.
func SerializeTuples(ch Channel, tuples []Tuple) ([]byte, error) {
	out := make([]byte, 0, len(tuples)*2)
	for _, t := range tuples {
		var err error
		if out, err = t.AppendBinary(ch, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// EncodeChannel compresses and serializes one channel. It returns the byte
// stream and the number of tuples in it.
func EncodeChannel(ch Channel, frames FrameSource) ([]byte, int, error) {
	tuples, err := CompressChannel(ch, frames)
	if err != nil {
		return nil, 0, err
	}
	stream, err := SerializeTuples(ch, tuples)
	if err != nil {
		return nil, 0, err
	}
	return stream, len(tuples), nil
}

// Termination tells how a channel decode stopped.
type Termination int

const (
	// TerminatedByExhaustion means every byte was consumed as whole tuples.
	TerminatedByExhaustion Termination = iota
	// TerminatedBySentinel means a zero tuple ended the stream.
	TerminatedBySentinel
	// TerminatedByBoundsLimit means the source ended in the middle of a tuple.
	TerminatedByBoundsLimit
)

func (t Termination) String() string {
	switch t {
	case TerminatedByExhaustion:
		return "exhausted"
	case TerminatedBySentinel:
		return "sentinel"
	case TerminatedByBoundsLimit:
		return "bounds limit"
	default:
		return fmt.Sprintf("termination(%d)", int(t))
	}
}

// DecodeOutcome is the result of expanding one channel.
type DecodeOutcome struct {
	Symbols     []byte // one symbol per frame
	Tuples      int    // tuples consumed, not counting a sentinel
	Termination Termination
}

// ExpandChannel expands a channel byte stream into per-frame symbols.
func ExpandChannel(ch Channel, stream []byte) DecodeOutcome {
	// A bytes.Reader never fails with anything but io.EOF.
	out, _ := ExpandChannelFrom(ch, bytes.NewReader(stream))
	return out
}

// ExpandChannelFrom expands tuples read sequentially from r until r is
// exhausted or a zero tuple is read. The symbols decoded before a read error
// are returned along with the error.
func ExpandChannelFrom(ch Channel, r io.Reader) (DecodeOutcome, error) {
	var out DecodeOutcome
	cr := NewChannelReader(ch, r)
	for {
		t, err := cr.ReadTuple()
		switch {
		case err == io.EOF:
			out.Termination = TerminatedByExhaustion
			return out, nil
		case err == io.ErrUnexpectedEOF:
			out.Termination = TerminatedByBoundsLimit
			return out, nil
		case err == ErrStreamEnd:
			out.Termination = TerminatedBySentinel
			return out, nil
		case err != nil:
			return out, err
		}
		out.Tuples++
		out.Symbols = append(out.Symbols, bytes.Repeat([]byte{byte(t.Symbol)}, t.Length)...)
	}
}

// ParseTuples returns the tuples of a stream up to its end or sentinel.
func ParseTuples(ch Channel, stream []byte) []Tuple {
	var tuples []Tuple
	for i := 0; i+1 < len(stream); i += 2 {
		if stream[i] == 0 && stream[i+1] == 0 {
			break
		}
		tuples = append(tuples, parseTuple(ch, stream[i], stream[i+1]))
	}
	return tuples
}

// RunLengths returns the length of every tuple in a stream.
func RunLengths(ch Channel, stream []byte) []int {
	tuples := ParseTuples(ch, stream)
	lengths := make([]int, len(tuples))
	for i, t := range tuples {
		lengths[i] = t.Length
	}
	return lengths
}
