package audio

import (
	"fmt"
	"math"
)

// Window scales a frame in place before a transform.
type Window func(data []float64)

// cosineWindow builds a0 - a1*cos(x) + a2*cos(2x) over one period.
func cosineWindow(a0, a1, a2 float64) Window {
	return func(data []float64) {
		n := float64(len(data))
		for i := range data {
			x := 2 * math.Pi * float64(i) / n
			data[i] *= a0 - a1*math.Cos(x) + a2*math.Cos(2*x)
		}
	}
}

var (
	Han      = cosineWindow(0.5, 0.5, 0)
	Hamming  = cosineWindow(0.54, 0.46, 0)
	Blackman = cosineWindow(0.42, 0.5, 0.08)
)

// WindowByName resolves the analysis window used in instrument configs.
func WindowByName(name string) (Window, error) {
	switch name {
	case "", "han", "hann":
		return Han, nil
	case "hamming":
		return Hamming, nil
	case "blackman":
		return Blackman, nil
	}
	return nil, fmt.Errorf("unknown window %q", name)
}
