package audio

import "math"

// ----- Declick ----- //

/*
  1 +    x----------------x
    |   /                  \
    |  /                    `.
    | /                       `-._
  0 +-----+-----------------+--------
    |a    |                 |r     |
*/

// declick shapes the edges of a note: a linear attack and an exponential
// release that reaches about -60 dB at the end of the buffer.
// Both lengths are in samples and clipped to the buffer.
func declick(buf []float64, attack int, release int) {
	n := len(buf)
	if attack > n {
		attack = n
	}
	for i := 0; i < attack; i++ {
		buf[i] *= float64(i) / float64(attack)
	}
	if release > n {
		release = n
	}
	start := n - release
	for i := start; i < n; i++ {
		t := float64(i-start) / float64(release) * 7 // e^-7 ~ -60 dB
		buf[i] *= setTargetAtTime(1, 0, t)
	}
}

// 63% closer to target when pos=1.0
func setTargetAtTime(initialValue float64, targetValue float64, pos float64) float64 {
	return targetValue + (initialValue-targetValue)*math.Exp(-pos)
}
