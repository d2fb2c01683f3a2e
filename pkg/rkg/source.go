package rkg

import (
	"bufio"
	"errors"
	"io"
)

// ErrStreamEnd is returned by ReadTuple for the zero tuple that ends a stream.
var ErrStreamEnd = errors.New("end of stream sentinel")

// NewSection bounds a raw byte source to [start, end).
func NewSection(r io.ReaderAt, start, end int64) *io.SectionReader {
	if end < start {
		end = start
	}
	return io.NewSectionReader(r, start, end-start)
}

// NewSectionN bounds a raw byte source to length bytes starting at start.
func NewSectionN(r io.ReaderAt, start, length int64) *io.SectionReader {
	return io.NewSectionReader(r, start, length)
}

// ChannelReader reads tuples of one channel sequentially from a bounded source.
type ChannelReader struct {
	ch     Channel
	reader *bufio.Reader
	offset int64
	done   bool
}

// NewChannelReader creates a tuple reader over r.
func NewChannelReader(ch Channel, r io.Reader) *ChannelReader {
	return &ChannelReader{
		ch:     ch,
		reader: bufio.NewReader(r),
	}
}

// ReadTuple reads the next tuple. It returns io.EOF when the source is
// exhausted on a tuple boundary and io.ErrUnexpectedEOF when a single
// trailing byte is left. Once a zero tuple has been read every later call
// reports the sentinel again.
func (r *ChannelReader) ReadTuple() (Tuple, error) {
	if r.done {
		return Tuple{}, ErrStreamEnd
	}

	var pair [2]byte
	n, err := io.ReadFull(r.reader, pair[:])
	r.offset += int64(n)
	if err != nil {
		return Tuple{}, err
	}

	if pair[0] == 0 && pair[1] == 0 {
		r.done = true
		return Tuple{}, ErrStreamEnd
	}
	return parseTuple(r.ch, pair[0], pair[1]), nil
}

// Offset returns the number of bytes consumed so far.
func (r *ChannelReader) Offset() int64 {
	return r.offset
}
