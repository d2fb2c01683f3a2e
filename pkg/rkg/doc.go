// Package rkg converts ghost replay control inputs to and from the RKG file format.
//
// A ghost stores three independently run-length encoded input channels:
//
//	Face       accelerate, brake, item and a context dependent boost flag
//	Direction  stick X and Y, each biased by +7 into a nibble
//	Trick      the d-pad trick direction
//
// # Tuple Format
//
// Every channel is a sequence of two byte tuples. Face and Direction tuples are
//
//	[symbol(1)][frames(1)]
//
// with at most 255 frames per tuple. Trick tuples pack a 12 bit frame count:
//
//	[symbol<<4 | frames>>8][frames&0xFF]
//
// with at most 4095 frames per tuple. Longer runs are split into consecutive
// tuples carrying the same symbol. When reading, a tuple whose two bytes are
// both zero ends the stream.
//
// # File Layout
//
//	0x0000  header (0x88 bytes, magic "RKGD")
//	0x0088  input header: face, direction and trick tuple counts (big-endian 16 bit)
//	0x0090  face, direction and trick tuples, then zero padding
//	0x27FC  CRC32 (IEEE) over everything before it, big-endian
//
// The whole file is always 0x2800 bytes.
//
// # Usage
//
//	data, err := rkg.CreateFile(frames, rkg.Metadata{TrackID: 8, VehicleID: 1, CharacterID: 2})
//	if err != nil {
//	    return err
//	}
//
//	file, err := rkg.ParseFile(data)
//	if err != nil {
//	    return err
//	}
//	inputs, err := file.Frames()
//
// # Thread Safety
//
// The codec keeps no state between calls. Every function is safe for
// concurrent use.
package rkg
