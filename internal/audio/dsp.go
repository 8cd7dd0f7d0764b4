package audio

import (
	"math"
)

// putStereoF32 writes a stereo frame as two float32 LE samples at frame i.
func putStereoF32(buf []byte, i int, left, right float64) {
	lv := math.Float32bits(float32(left))
	rv := math.Float32bits(float32(right))
	buf[i*8] = byte(lv)
	buf[i*8+1] = byte(lv >> 8)
	buf[i*8+2] = byte(lv >> 16)
	buf[i*8+3] = byte(lv >> 24)
	buf[i*8+4] = byte(rv)
	buf[i*8+5] = byte(rv >> 8)
	buf[i*8+6] = byte(rv >> 16)
	buf[i*8+7] = byte(rv >> 24)
}

// softSat applies gentle tanh-like saturation instead of hard clipping.
func softSat(x float64) float64 {
	if x > 1.0 {
		return 1.0 - 0.5/(x)
	}
	if x < -1.0 {
		return -1.0 + 0.5/(-x)
	}
	return x - x*x*x/3.0
}

// lcg advances an LCG seed and returns a noise sample in [-1,1].
func lcg(seed *uint64) float64 {
	*seed = *seed*6364136223846793005 + 1442695040888963407
	return float64(int64(*seed>>33)-int64(1<<30)) / float64(1<<30)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// triWave maps a phase in radians to a triangle wave in [-1,1].
func triWave(phase float64) float64 {
	p := math.Mod(phase/(2*math.Pi), 1.0)
	if p < 0 {
		p += 1
	}
	return 4*math.Abs(p-0.5) - 1
}

// pluckEnvelope is a linear attack followed by an exponential decay that
// reaches 0.001 of the peak at total seconds.
func pluckEnvelope(t, attack, total, peak float64) float64 {
	switch {
	case t < 0 || t >= total:
		return 0
	case t < attack:
		return peak * t / attack
	default:
		p := (t - attack) / (total - attack)
		return peak * math.Pow(0.001, p)
	}
}

// sweepFreq glides exponentially from f0 to f1 over dur, then holds f1.
func sweepFreq(t, f0, f1, dur float64) float64 {
	if t >= dur {
		return f1
	}
	return f0 * math.Pow(f1/f0, t/dur)
}

// FilterType selects a biquad response.
type FilterType int

const (
	LowPass FilterType = iota
	HighPass
	BandPass
)

// Biquad is a second-order IIR section (RBJ cookbook, transposed direct form II).
// Band-pass uses the constant 0 dB peak gain variant.
type Biquad struct {
	b0, b1, b2, a1, a2 float64
	z1, z2             float64
}

// NewBiquad designs a filter at cutoff Hz with quality q for sampleRate.
func NewBiquad(kind FilterType, cutoff, q float64, sampleRate int) *Biquad {
	f := &Biquad{}
	f.design(kind, cutoff, q, sampleRate)
	return f
}

func (f *Biquad) design(kind FilterType, cutoff, q float64, sampleRate int) {
	nyquist := float64(sampleRate) / 2
	cutoff = clampF(cutoff, 10, nyquist*0.99)
	if q <= 0 {
		q = math.Sqrt2 / 2
	}
	w0 := 2 * math.Pi * cutoff / float64(sampleRate)
	cosW := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	var b0, b1, b2 float64
	switch kind {
	case HighPass:
		b0 = (1 + cosW) / 2
		b1 = -(1 + cosW)
		b2 = (1 + cosW) / 2
	case BandPass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
	default:
		b0 = (1 - cosW) / 2
		b1 = 1 - cosW
		b2 = (1 - cosW) / 2
	}
	a0 := 1 + alpha
	f.b0 = b0 / a0
	f.b1 = b1 / a0
	f.b2 = b2 / a0
	f.a1 = -2 * cosW / a0
	f.a2 = (1 - alpha) / a0
}

// Process filters one sample.
func (f *Biquad) Process(x float64) float64 {
	y := f.b0*x + f.z1
	f.z1 = f.b1*x - f.a1*y + f.z2
	f.z2 = f.b2*x - f.a2*y
	return y
}

// Reset clears the filter memory.
func (f *Biquad) Reset() {
	f.z1, f.z2 = 0, 0
}
