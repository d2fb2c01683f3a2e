package rkg

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// Layout of a ghost file.
const (
	HeaderSize      = 0x88
	InputHeaderSize = 0x08
	InputCapacity   = 0x276C
	DataSize        = HeaderSize + InputHeaderSize + InputCapacity
	ChecksumSize    = 4
	FileSize        = DataSize + ChecksumSize

	inputOffset = HeaderSize + InputHeaderSize
)

// Magic identifies a ghost file.
var Magic = [4]byte{'R', 'K', 'G', 'D'}

// field is a named byte range of the header.
type field struct {
	name   string
	offset int
	size   int
}

func (f field) end() int { return f.offset + f.size }

var (
	fieldMagic            = field{"magic", 0x00, 4}
	fieldFinishTime       = field{"finish time", 0x04, 3}
	fieldTrack            = field{"track", 0x07, 1}
	fieldVehicleCharacter = field{"vehicle/character", 0x08, 1}
	fieldCharacter        = field{"character", 0x09, 1}
	fieldDate             = field{"date", 0x0A, 3}
	fieldDrift            = field{"drift", 0x0D, 1}
	fieldInputLength      = field{"input length", 0x0E, 2}
	fieldLapCount         = field{"lap count", 0x10, 1}
	fieldLapSplits        = field{"lap splits", 0x11, 9}
	fieldLocation         = field{"location", 0x34, 2}
	fieldMiiHeader        = field{"mii header", 0x3C, 2}
	fieldMiiName          = field{"mii name", 0x3E, 20}
	fieldMiiBody          = field{"mii body", 0x53, 31}
	fieldMiiCRC           = field{"mii crc", 0x86, 2}
	fieldFaceCount        = field{"face tuples", 0x88, 2}
	fieldDirectionCount   = field{"direction tuples", 0x8A, 2}
	fieldTrickCount       = field{"trick tuples", 0x8C, 2}
	fieldInputReserved    = field{"input reserved", 0x8E, 2}
)

// constant is a header field that is the same in every file we write.
type constant struct {
	field
	value []byte
}

var constants = []constant{
	{fieldMagic, Magic[:]},
	{fieldFinishTime, []byte{0x54, 0xA8, 0x2A}},
	{fieldDate, []byte{0x02, 0x10, 0x00}},
	{fieldLapCount, []byte{0x03}},
	{fieldLapSplits, []byte{0x54, 0x00, 0x00, 0x00, 0xA8, 0x00, 0x00, 0x00, 0x2A}},
	{fieldLocation, []byte{0xAA, 0x01}},
	{fieldMiiHeader, []byte{0xC0, 0x10}},
	{fieldMiiName, utf16be("TASToolkit")},
	{fieldMiiBody, []byte{
		0x22, 0x87, 0x30, 0x89, 0x66, 0xC2, 0xC4, 0xED, 0xC3, 0x20, 0x44, 0x3C, 0x40, 0x28, 0x38, 0x0C,
		0x84, 0x48, 0xCF, 0x0E, 0x00, 0x08, 0x00, 0xB9, 0x09, 0x00, 0x8A, 0x81, 0x06, 0xC4, 0x10,
	}},
	{fieldMiiCRC, []byte{0x7A, 0x6E}},
}

// variable lists the fields written per file.
var variable = []field{
	fieldTrack, fieldVehicleCharacter, fieldCharacter, fieldDrift, fieldInputLength,
	fieldFaceCount, fieldDirectionCount, fieldTrickCount, fieldInputReserved,
}

// headerTemplate is the header with every constant field filled in.
var headerTemplate = mustBuildTemplate()

func mustBuildTemplate() [inputOffset]byte {
	t, err := buildTemplate(constants, variable)
	if err != nil {
		panic(err)
	}
	return t
}

// buildTemplate lays out the constant fields and checks that no two fields
// share a byte.
func buildTemplate(consts []constant, vars []field) ([inputOffset]byte, error) {
	var t [inputOffset]byte

	all := append([]field(nil), vars...)
	for _, c := range consts {
		if len(c.value) != c.size {
			return t, fmt.Errorf("header field %s: %d bytes for a %d byte field", c.name, len(c.value), c.size)
		}
		all = append(all, c.field)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].offset < all[j].offset })
	for i, f := range all {
		if f.offset < 0 || f.end() > inputOffset {
			return t, fmt.Errorf("header field %s outside header", f.name)
		}
		if i > 0 && all[i-1].end() > f.offset {
			return t, fmt.Errorf("header fields %s and %s overlap", all[i-1].name, f.name)
		}
	}

	for _, c := range consts {
		copy(t[c.offset:c.end()], c.value)
	}
	return t, nil
}

func utf16be(s string) []byte {
	out := make([]byte, 0, 2*len(s))
	for _, r := range s {
		out = append(out, byte(r>>8), byte(r))
	}
	return out
}

// Metadata are the ghost fields taken from the race rather than the inputs.
type Metadata struct {
	TrackID     int `json:"track_id"`
	VehicleID   int `json:"vehicle_id"`
	CharacterID int `json:"character_id"`
	DriftID     int `json:"drift_id"`
}

// Validate checks every field against the bits the header gives it.
func (m Metadata) Validate() error {
	checks := []struct {
		name  string
		value int
		bits  uint
	}{
		{"track id", m.TrackID, 6},
		{"vehicle id", m.VehicleID, 6},
		{"character id", m.CharacterID, 6},
		{"drift id", m.DriftID, 1},
	}
	for _, c := range checks {
		if c.value < 0 || c.value >= 1<<c.bits {
			return fmt.Errorf("%s %d does not fit %d bits: %w", c.name, c.value, c.bits, ErrOutOfRange)
		}
	}
	return nil
}

// Header holds the variable fields of a ghost header.
type Header struct {
	Metadata
	InputLength     int `json:"input_length"`
	FaceTuples      int `json:"face_tuples"`
	DirectionTuples int `json:"direction_tuples"`
	TrickTuples     int `json:"trick_tuples"`
}

// Tuples returns the tuple count recorded for a channel.
func (h Header) Tuples(ch Channel) int {
	switch ch {
	case ChannelFace:
		return h.FaceTuples
	case ChannelDirection:
		return h.DirectionTuples
	case ChannelTrick:
		return h.TrickTuples
	default:
		return 0
	}
}

// MarshalTo writes the header and input header into the start of buf.
func (h Header) MarshalTo(buf []byte) error {
	if len(buf) < inputOffset {
		return fmt.Errorf("header buffer too short: %d < %d", len(buf), inputOffset)
	}

	scratch := headerTemplate

	packed := []struct {
		f     field
		value int
	}{
		{fieldTrack, h.TrackID << 2},
		{fieldVehicleCharacter, h.VehicleID<<2 + (h.CharacterID>>4)&0x3},
		{fieldCharacter, (h.CharacterID << 4) & 0xFF},
		{fieldDrift, 0x4 + h.DriftID<<1},
	}
	for _, b := range packed {
		if b.value < 0 || b.value > 0xFF {
			return fmt.Errorf("header field %s value %#x: %w", b.f.name, b.value, ErrInvalidSymbolValue)
		}
		scratch[b.f.offset] = byte(b.value)
	}

	words := []struct {
		f     field
		value int
	}{
		{fieldInputLength, h.InputLength},
		{fieldFaceCount, h.FaceTuples},
		{fieldDirectionCount, h.DirectionTuples},
		{fieldTrickCount, h.TrickTuples},
	}
	for _, w := range words {
		if w.value < 0 || w.value > 0xFFFF {
			return fmt.Errorf("header field %s value %#x: %w", w.f.name, w.value, ErrInvalidSymbolValue)
		}
		binary.BigEndian.PutUint16(scratch[w.f.offset:w.f.end()], uint16(w.value))
	}

	copy(buf, scratch[:])
	return nil
}

// parseHeader reads the variable header fields from buf.
func parseHeader(buf []byte) Header {
	word := func(f field) int {
		return int(binary.BigEndian.Uint16(buf[f.offset:f.end()]))
	}
	vc := buf[fieldVehicleCharacter.offset]
	return Header{
		Metadata: Metadata{
			TrackID:     int(buf[fieldTrack.offset] >> 2),
			VehicleID:   int(vc >> 2),
			CharacterID: int(vc&0x3)<<4 | int(buf[fieldCharacter.offset]>>4),
			DriftID:     int(buf[fieldDrift.offset]>>1) & 0x1,
		},
		InputLength:     word(fieldInputLength),
		FaceTuples:      word(fieldFaceCount),
		DirectionTuples: word(fieldDirectionCount),
		TrickTuples:     word(fieldTrickCount),
	}
}
