package rkg

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// Streams holds the serialized tuples of the three channels.
type Streams struct {
	Face      []byte
	Direction []byte
	Trick     []byte
}

// Stream returns the byte stream of a channel.
func (s Streams) Stream(ch Channel) []byte {
	switch ch {
	case ChannelFace:
		return s.Face
	case ChannelDirection:
		return s.Direction
	case ChannelTrick:
		return s.Trick
	default:
		return nil
	}
}

// Len returns the combined size of the streams in bytes.
func (s Streams) Len() int {
	return len(s.Face) + len(s.Direction) + len(s.Trick)
}

// EncodeStreams run-length encodes every channel of frames.
func EncodeStreams(frames FrameSource) (Streams, error) {
	var s Streams
	for _, ch := range Channels {
		stream, _, err := EncodeChannel(ch, frames)
		if err != nil {
			return Streams{}, fmt.Errorf("encode %s: %w", ch, err)
		}
		switch ch {
		case ChannelFace:
			s.Face = stream
		case ChannelDirection:
			s.Direction = stream
		case ChannelTrick:
			s.Trick = stream
		}
	}
	return s, nil
}

// CreateFile encodes frames and assembles a complete ghost file.
func CreateFile(frames FrameSource, meta Metadata) ([]byte, error) {
	streams, err := EncodeStreams(frames)
	if err != nil {
		return nil, err
	}
	return Assemble(streams, meta)
}

// Assemble builds a ghost file from serialized channel streams. On error no
// output is returned.
func Assemble(streams Streams, meta Metadata) ([]byte, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	h := Header{Metadata: meta}
	for _, ch := range Channels {
		stream := streams.Stream(ch)
		if len(stream)%2 != 0 {
			return nil, fmt.Errorf("%s stream has odd length %d: %w", ch, len(stream), ErrInvalidSymbolValue)
		}
		switch ch {
		case ChannelFace:
			h.FaceTuples = len(stream) / 2
		case ChannelDirection:
			h.DirectionTuples = len(stream) / 2
		case ChannelTrick:
			h.TrickTuples = len(stream) / 2
		}
	}

	body := streams.Len()
	if body >= InputCapacity {
		return nil, fmt.Errorf("%d bytes of tuples, capacity %d: %w", body, InputCapacity, ErrCapacityExceeded)
	}
	h.InputLength = body + InputHeaderSize

	buf := make([]byte, FileSize)
	if err := h.MarshalTo(buf); err != nil {
		return nil, err
	}
	off := inputOffset
	off += copy(buf[off:], streams.Face)
	off += copy(buf[off:], streams.Direction)
	copy(buf[off:], streams.Trick)

	binary.BigEndian.PutUint32(buf[DataSize:], Checksum(buf))
	return buf, nil
}

// Checksum computes the CRC32 of the data region of a ghost file.
func Checksum(file []byte) uint32 {
	if len(file) > DataSize {
		file = file[:DataSize]
	}
	return crc32.ChecksumIEEE(file)
}

// File is a parsed ghost file.
type File struct {
	Header   Header
	Streams  Streams
	checksum uint32
}

// ParseFile validates a ghost file and splits it into header and streams.
func ParseFile(data []byte) (*File, error) {
	if len(data) != FileSize {
		return nil, fmt.Errorf("%d bytes, want %d: %w", len(data), FileSize, ErrFileSize)
	}
	if !bytes.Equal(data[fieldMagic.offset:fieldMagic.end()], Magic[:]) {
		return nil, ErrBadMagic
	}

	stored := binary.BigEndian.Uint32(data[DataSize:])
	if computed := Checksum(data); computed != stored {
		return nil, fmt.Errorf("stored %08x, computed %08x: %w", stored, computed, ErrChecksumMismatch)
	}

	h := parseHeader(data)
	f := &File{Header: h, checksum: stored}

	off := inputOffset
	for _, ch := range Channels {
		n := h.Tuples(ch) * 2
		if off+n > DataSize {
			return nil, fmt.Errorf("%s section of %d bytes at %#x: %w", ch, n, off, ErrCapacityExceeded)
		}
		stream := data[off : off+n]
		switch ch {
		case ChannelFace:
			f.Streams.Face = stream
		case ChannelDirection:
			f.Streams.Direction = stream
		case ChannelTrick:
			f.Streams.Trick = stream
		}
		off += n
	}
	return f, nil
}

// Checksum returns the stored CRC32 trailer.
func (f *File) Checksum() uint32 {
	return f.checksum
}

// Frames decodes the input streams into per-frame inputs.
func (f *File) Frames() ([]Input, error) {
	return DecodeFrames(f.Streams, 0)
}
