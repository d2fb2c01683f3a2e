package patch

import "github.com/ssargent/rkgkit/pkg/rkg"

// ControllerBytes returns the bytes a patched reader returns for one frame:
// face, direction and trick, in that order. The boost flag is raised whenever
// accelerate and brake are held together.
func ControllerBytes(in rkg.Input) ([3]byte, error) {
	var out [3]byte

	face := rkg.EncodeFace(in.Accelerate, in.Brake, in.Item, 0)
	if in.Accelerate && in.Brake {
		face |= 0x8
	}
	out[0] = face

	dir, err := rkg.EncodeDirection(in.StickX, in.StickY)
	if err != nil {
		return out, err
	}
	out[1] = dir

	trick, err := rkg.EncodeTrick(in.Trick)
	if err != nil {
		return out, err
	}
	out[2] = trick
	return out, nil
}
