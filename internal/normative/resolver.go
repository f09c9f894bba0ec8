package normative

// Population defaults, used when the patient falls outside every stratified band.
var (
	tibialAmplitudeDefault  = Stat{Mean: 12.9, SD: 4.8}
	tibialVelocityDefault   = Stat{Mean: 47, SD: 6}
	fibularAmplitudeDefault = Stat{Mean: 5.9, SD: 2.6}
	fibularVelocityDefault  = Stat{Mean: 57, SD: 9}
)

// Fixed references, not adjusted for age or height.
var (
	UlnarStats = MotorStats{Of: Ulnar, Amplitude: Stat{Mean: 11.6, SD: 2.1}, Velocity: Stat{Mean: 61, SD: 5}}
	SuralStats = SensoryStats{Of: Sural, PeakLatency: Stat{Mean: 3.8, SD: 0.3}, Amplitude: Stat{Mean: 17, SD: 10}}
)

func inBand(v, lo, hi int) bool { return v >= lo && v <= hi }

// Resolve returns the reference bundle for a nerve and patient stratum. Ages are in
// years and heights in cm; all bands are inclusive. It reports false only for
// UnknownNerve: out-of-band patients get population defaults.
func Resolve(nerve Nerve, age int, height float64) (NerveStats, bool) {
	switch nerve {
	case Tibial:
		return TibialStats(age, height), true
	case Fibular:
		return FibularStats(age, height), true
	case Ulnar:
		return UlnarStats, true
	case Sural:
		return SuralStats, true
	default:
		return nil, false
	}
}

// ResolveByName identifies the nerve from its label before resolving.
func ResolveByName(name string, age int, height float64) (NerveStats, bool) {
	return Resolve(IdentifyNerve(name), age, height)
}

// TibialStats stratifies amplitude by age, and velocity by age band then height band.
func TibialStats(age int, height float64) MotorStats {
	amp := tibialAmplitudeDefault
	switch {
	case inBand(age, 19, 29):
		amp = Stat{Mean: 15.3, SD: 4.5}
	case inBand(age, 30, 59):
		amp = Stat{Mean: 12.9, SD: 4.5}
	case inBand(age, 60, 79):
		amp = Stat{Mean: 9.8, SD: 4.8}
	}

	vel := tibialVelocityDefault
	switch {
	case inBand(age, 19, 49):
		switch {
		case height < 160:
			vel = Stat{Mean: 51, SD: 4}
		case height >= 160 && height <= 169:
			vel = Stat{Mean: 49, SD: 6}
		case height >= 170:
			vel = Stat{Mean: 47, SD: 5}
		}
	case inBand(age, 50, 79):
		switch {
		case height < 160:
			vel = Stat{Mean: 49, SD: 5}
		case height >= 160 && height <= 169:
			vel = Stat{Mean: 45, SD: 5}
		case height >= 170:
			vel = Stat{Mean: 47, SD: 6}
		}
	}

	return MotorStats{Of: Tibial, Amplitude: amp, Velocity: vel}
}

// FibularStats stratifies amplitude by age, and velocity by height band then age band.
func FibularStats(age int, height float64) MotorStats {
	amp := fibularAmplitudeDefault
	switch {
	case inBand(age, 19, 39):
		amp = Stat{Mean: 6.8, SD: 2.5}
	case inBand(age, 40, 79):
		amp = Stat{Mean: 5.1, SD: 2.5}
	}

	vel := fibularVelocityDefault
	if height < 170 {
		switch {
		case inBand(age, 19, 39):
			vel = Stat{Mean: 49, SD: 4}
		case inBand(age, 40, 79):
			vel = Stat{Mean: 47, SD: 5}
		}
	} else {
		switch {
		case inBand(age, 19, 39):
			vel = Stat{Mean: 46, SD: 4}
		case inBand(age, 40, 79):
			vel = Stat{Mean: 44, SD: 4}
		}
	}

	return MotorStats{Of: Fibular, Amplitude: amp, Velocity: vel}
}
