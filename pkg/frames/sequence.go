// Package frames holds ordered per-frame controller inputs and their text form.
package frames

import (
	"github.com/ssargent/rkgkit/pkg/rkg"
)

// Sequence is an ordered list of frame inputs.
type Sequence struct {
	frames []rkg.Input
}

// NewSequence wraps inputs in a Sequence.
func NewSequence(inputs []rkg.Input) *Sequence {
	return &Sequence{frames: inputs}
}

// Len returns the number of frames.
func (s *Sequence) Len() int {
	return len(s.frames)
}

// At returns frame i.
func (s *Sequence) At(i int) rkg.Input {
	return s.frames[i]
}

// Append adds frames to the end of the sequence.
func (s *Sequence) Append(inputs ...rkg.Input) {
	s.frames = append(s.frames, inputs...)
}

// Frames returns the underlying inputs.
func (s *Sequence) Frames() []rkg.Input {
	return s.frames
}

// Equal reports whether both sequences hold the same inputs.
func (s *Sequence) Equal(other *Sequence) bool {
	if s.Len() != other.Len() {
		return false
	}
	for i := range s.frames {
		if s.frames[i] != other.frames[i] {
			return false
		}
	}
	return true
}
