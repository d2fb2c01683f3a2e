package rkg

import "math/rand"

// sampleFrames is a 300 frame run with boost, item, stick and long trick runs.
func sampleFrames() Frames {
	frames := make(Frames, 300)
	for i := range frames {
		in := Input{
			Accelerate: i < 200,
			Brake:      (i >= 30 && i < 60) || (i >= 100 && i < 110),
			Item:       i >= 150 && i < 155,
		}
		switch {
		case i < 50:
			in.StickX = 0
		case i < 120:
			in.StickX = 8
		default:
			in.StickX = -7
		}
		if i >= 80 {
			in.StickY = 3
		}
		frames[i] = in
	}
	return frames
}

// randomFrames returns n frames where each input tends to be held for a while.
func randomFrames(seed int64, n int) Frames {
	rng := rand.New(rand.NewSource(seed))
	frames := make(Frames, n)
	var cur Input
	for i := range frames {
		if rng.Intn(8) == 0 {
			cur.Accelerate = rng.Intn(2) == 0
			cur.Brake = rng.Intn(2) == 0
			cur.Item = rng.Intn(4) == 0
		}
		if rng.Intn(5) == 0 {
			cur.StickX = rng.Intn(16) - 7
			cur.StickY = rng.Intn(16) - 7
		}
		if rng.Intn(20) == 0 {
			cur.Trick = rng.Intn(16)
		}
		frames[i] = cur
	}
	return frames
}

func repeatFrames(in Input, n int) Frames {
	frames := make(Frames, n)
	for i := range frames {
		frames[i] = in
	}
	return frames
}

func sumLengths(tuples []Tuple) int {
	total := 0
	for _, t := range tuples {
		total += t.Length
	}
	return total
}
