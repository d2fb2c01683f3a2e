package rkg

import "fmt"

// Channel identifies one of the three input streams stored in a ghost.
type Channel int

const (
	ChannelFace Channel = iota
	ChannelDirection
	ChannelTrick
)

// Channels lists the channels in file order.
var Channels = [...]Channel{ChannelFace, ChannelDirection, ChannelTrick}

const (
	shortRunCap = 0xFF
	trickRunCap = 0xFFF

	stickBias = 7
	stickMin  = -7
	stickMax  = 8

	boostFlag = 0x8
)

func (c Channel) String() string {
	switch c {
	case ChannelFace:
		return "face"
	case ChannelDirection:
		return "direction"
	case ChannelTrick:
		return "trick"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	return c >= ChannelFace && c <= ChannelTrick
}

// Cap returns the longest run a single tuple of the channel can hold.
func (c Channel) Cap() int {
	if c == ChannelTrick {
		return trickRunCap
	}
	return shortRunCap
}

// Input is the controller state of a single frame.
type Input struct {
	Accelerate bool
	Brake      bool
	Item       bool
	StickX     int // [-7, 8]
	StickY     int // [-7, 8]
	Trick      int // [0, 15]
}

// EncodeFace packs the face buttons. previous is the symbol of the run being
// extended; the boost flag is only raised when accelerate and brake are both
// held and previous is none of 0x0, 0x2, 0x3 or 0x7.
func EncodeFace(accelerate, brake, item bool, previous byte) byte {
	var s byte
	if accelerate {
		s |= 0x1
	}
	if brake {
		s |= 0x2
	}
	if item {
		s |= 0x4
	}
	if accelerate && brake {
		switch previous {
		case 0x0, 0x2, 0x3, 0x7:
		default:
			s |= boostFlag
		}
	}
	return s
}

// DecodeFace unpacks the face buttons. The boost flag is ignored.
func DecodeFace(symbol byte) (accelerate, brake, item bool) {
	return symbol&0x1 != 0, symbol&0x2 != 0, symbol&0x4 != 0
}

// EncodeDirection packs a stick position into a byte.
func EncodeDirection(x, y int) (byte, error) {
	if x < stickMin || x > stickMax {
		return 0, fmt.Errorf("stick x %d: %w", x, ErrOutOfRange)
	}
	if y < stickMin || y > stickMax {
		return 0, fmt.Errorf("stick y %d: %w", y, ErrOutOfRange)
	}
	return byte((x+stickBias)<<4 | (y + stickBias)), nil
}

// DecodeDirection unpacks a stick position.
func DecodeDirection(symbol byte) (x, y int) {
	return int(symbol>>4) - stickBias, int(symbol&0xF) - stickBias
}

// EncodeTrick validates a trick value and returns its nibble.
func EncodeTrick(value int) (byte, error) {
	if value < 0 || value > 0xF {
		return 0, fmt.Errorf("trick %d: %w", value, ErrOutOfRange)
	}
	return byte(value), nil
}

// DecodeTrick returns the trick value of a nibble.
func DecodeTrick(symbol byte) int {
	return int(symbol & 0xF)
}

// Symbol encodes the part of in that belongs to the channel. context is the
// symbol of the run in progress and only affects the face channel.
func (c Channel) Symbol(in Input, context byte) (byte, error) {
	switch c {
	case ChannelFace:
		return EncodeFace(in.Accelerate, in.Brake, in.Item, context), nil
	case ChannelDirection:
		return EncodeDirection(in.StickX, in.StickY)
	case ChannelTrick:
		return EncodeTrick(in.Trick)
	default:
		return 0, fmt.Errorf("unknown %s", c)
	}
}

// apply writes a decoded symbol of the channel into in.
func (c Channel) apply(in *Input, symbol byte) {
	switch c {
	case ChannelFace:
		in.Accelerate, in.Brake, in.Item = DecodeFace(symbol)
	case ChannelDirection:
		in.StickX, in.StickY = DecodeDirection(symbol)
	case ChannelTrick:
		in.Trick = DecodeTrick(symbol)
	}
}
