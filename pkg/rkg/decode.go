package rkg

import (
	"fmt"
	"io"
)

// DecodeFrames expands the three channel streams and combines them frame by
// frame. When expected is positive at most expected frames are returned.
//
// If the channels disagree on the frame count, or fewer than expected frames
// could be rebuilt, the frames common to all channels are returned together
// with ErrTruncatedStream.
func DecodeFrames(streams Streams, expected int) ([]Input, error) {
	var outcomes [len(Channels)]DecodeOutcome
	for i, ch := range Channels {
		outcomes[i] = ExpandChannel(ch, streams.Stream(ch))
	}
	return combine(outcomes, expected)
}

// Section addresses a channel inside a raw byte source.
type Section struct {
	Start int64
	End   int64
}

// Len returns the section size in bytes.
func (s Section) Len() int64 {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// DecodeSections reads each channel from its section of src and combines the
// result like DecodeFrames.
func DecodeSections(src io.ReaderAt, face, direction, trick Section, expected int) ([]Input, error) {
	sections := [len(Channels)]Section{face, direction, trick}

	var outcomes [len(Channels)]DecodeOutcome
	for i, ch := range Channels {
		out, err := ExpandChannelFrom(ch, NewSection(src, sections[i].Start, sections[i].End))
		if err != nil {
			return nil, fmt.Errorf("read %s section: %w", ch, err)
		}
		outcomes[i] = out
	}
	return combine(outcomes, expected)
}

func combine(outcomes [len(Channels)]DecodeOutcome, expected int) ([]Input, error) {
	n := len(outcomes[0].Symbols)
	truncated := false
	for _, out := range outcomes[1:] {
		if len(out.Symbols) != n {
			truncated = true
		}
		if len(out.Symbols) < n {
			n = len(out.Symbols)
		}
	}
	if expected > 0 {
		truncated = n < expected
		if n > expected {
			n = expected
		}
	}

	frames := make([]Input, n)
	for c, ch := range Channels {
		symbols := outcomes[c].Symbols
		for i := range frames {
			ch.apply(&frames[i], symbols[i])
		}
	}

	if truncated {
		return frames, fmt.Errorf("rebuilt %d frames (face %d, direction %d, trick %d, expected %d): %w",
			n, len(outcomes[0].Symbols), len(outcomes[1].Symbols), len(outcomes[2].Symbols), expected, ErrTruncatedStream)
	}
	return frames, nil
}
