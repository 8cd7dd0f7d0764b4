package audio

// Brown noise integrator constants: y = (y + k·x) / (1 + k), then a fixed boost.
const (
	brownLeak  = 0.02
	brownBoost = 3.5 * 3.5
)

// noiseLength is the loop length of the shared noise buffers, in seconds.
const noiseLength = 2

// NoiseBank holds the looping mono noise buffers every synthetic source reads
// from. It is generated once per engine and never mutated afterwards.
type NoiseBank struct {
	Brown []float64
	White []float64
}

// NewNoiseBank renders both buffers at sampleRate from seed.
func NewNoiseBank(sampleRate int, seed uint64) *NoiseBank {
	if seed == 0 {
		seed = 1
	}
	n := noiseLength * sampleRate
	return &NoiseBank{
		Brown: genBrownNoise(n, seed^0xB50A),
		White: genWhiteNoise(n, seed^0x3417E),
	}
}

// genWhiteNoise produces independent uniform samples in [-1, 1].
func genWhiteNoise(n int, seed uint64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = lcg(&seed)
	}
	return out
}

// genBrownNoise integrates white noise through a leaky accumulator.
func genBrownNoise(n int, seed uint64) []float64 {
	out := make([]float64, n)
	last := 0.0
	for i := range out {
		white := lcg(&seed)
		last = (last + brownLeak*white) / (1 + brownLeak)
		out[i] = last * brownBoost
	}
	return out
}
