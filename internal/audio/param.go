package audio

import "math"

// minTimeConstant keeps every gain change a ramp, even when callers pass zero.
const minTimeConstant = 0.005

// Param is a gain value that approaches its target exponentially, one sample
// at a time, the way setTargetAtTime does on a Web Audio AudioParam.
type Param struct {
	value  float64
	target float64
	coeff  float64
}

// NewParam returns a param resting at v.
func NewParam(v float64) Param {
	return Param{value: v, target: v}
}

// SetTarget starts an approach to target with time constant tau seconds.
func (p *Param) SetTarget(target, tau float64, sampleRate int) {
	if tau < minTimeConstant {
		tau = minTimeConstant
	}
	p.target = target
	p.coeff = 1 - math.Exp(-1/(tau*float64(sampleRate)))
}

// Next advances one sample and returns the new value.
func (p *Param) Next() float64 {
	d := p.target - p.value
	if d == 0 {
		return p.value
	}
	if math.Abs(d) < 1e-6 {
		p.value = p.target
		return p.value
	}
	p.value += d * p.coeff
	return p.value
}

// Value is the current (not target) value.
func (p *Param) Value() float64 { return p.value }

// Target is where the param is heading.
func (p *Param) Target() float64 { return p.target }

// MaxStep is the largest change a single sample can make toward the target.
func (p *Param) MaxStep() float64 {
	return math.Abs(p.target-p.value) * p.coeff
}
