package normative

import "strings"

// Nerve identifies one of the nerves with published reference values.
type Nerve int

const (
	UnknownNerve Nerve = iota
	Tibial
	Fibular
	Ulnar
	Sural
)

func (n Nerve) String() string {
	switch n {
	case Tibial:
		return "Tibial"
	case Fibular:
		return "Fibular"
	case Ulnar:
		return "Ulnar"
	case Sural:
		return "Sural"
	default:
		return "Unknown"
	}
}

// IdentifyNerve maps a free-form nerve label to a Nerve by substring, checking Tibial,
// Fibular, Ulnar and Sural in that order. Matching is case-sensitive.
func IdentifyNerve(name string) Nerve {
	for _, n := range []Nerve{Tibial, Fibular, Ulnar, Sural} {
		if strings.Contains(name, n.String()) {
			return n
		}
	}
	return UnknownNerve
}

// Stat is a reference mean and standard deviation.
type Stat struct {
	Mean float64
	SD   float64
}

// LowerLimit is mean - 2 SD, the conventional lower limit of normal.
func (s Stat) LowerLimit() float64 { return s.Mean - 2*s.SD }

// UpperLimit is mean + 2 SD, the conventional upper limit of normal.
func (s Stat) UpperLimit() float64 { return s.Mean + 2*s.SD }

// NerveStats is the reference bundle resolved for one nerve. It is either a MotorStats
// or a SensoryStats; no other implementations exist.
type NerveStats interface {
	Nerve() Nerve
	AmplitudeStat() Stat
	isNerveStats()
}

// MotorStats holds compound muscle action potential amplitude (mV) and conduction
// velocity (m/s) references.
type MotorStats struct {
	Of        Nerve
	Amplitude Stat
	Velocity  Stat
}

func (m MotorStats) Nerve() Nerve        { return m.Of }
func (m MotorStats) AmplitudeStat() Stat { return m.Amplitude }
func (MotorStats) isNerveStats()         {}

// SensoryStats holds sensory nerve action potential peak latency (ms) and amplitude (uV)
// references.
type SensoryStats struct {
	Of          Nerve
	PeakLatency Stat
	Amplitude   Stat
}

func (s SensoryStats) Nerve() Nerve        { return s.Of }
func (s SensoryStats) AmplitudeStat() Stat { return s.Amplitude }
func (SensoryStats) isNerveStats()         {}
