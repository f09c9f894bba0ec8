package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// NerveType distinguishes motor from sensory conduction studies.
type NerveType int

const (
	Motor NerveType = iota
	Sensory
)

func (t NerveType) String() string {
	if t == Sensory {
		return "Sensory"
	}
	return "Motor"
}

// ParseNerveType accepts "motor"/"sensory" in any case. Anything else is motor.
func ParseNerveType(s string) NerveType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sensory", "sensitivo", "s":
		return Sensory
	default:
		return Motor
	}
}

// Symptom is the clinically reported distribution of neuropathic signs.
type Symptom int

const (
	SymptomNone Symptom = iota
	SymptomFeetLegs
	SymptomThigh
)

func (s Symptom) String() string {
	switch s {
	case SymptomFeetLegs:
		return "Signs of polyneuropathy in feet or legs"
	case SymptomThigh:
		return "Signs of thigh involvement"
	default:
		return "No signs of neuropathy"
	}
}

// Key is the short machine name used in case files and flags.
func (s Symptom) Key() string {
	switch s {
	case SymptomFeetLegs:
		return "feet_legs"
	case SymptomThigh:
		return "thigh"
	default:
		return "none"
	}
}

// ParseSymptom maps a case-file or flag value to a Symptom.
func ParseSymptom(s string) (Symptom, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SymptomNone, nil
	case "feet_legs", "feet-legs", "feet", "legs":
		return SymptomFeetLegs, nil
	case "thigh":
		return SymptomThigh, nil
	default:
		return SymptomNone, fmt.Errorf("unknown symptom category %q (want none, feet_legs or thigh)", s)
	}
}

type fieldKind int

const (
	kindMissing fieldKind = iota
	kindNotRecordable
	kindMeasured
)

// Field is one reading slot: not measured, not recordable (NR), or a positive measurement.
// The zero value is Missing.
type Field struct {
	kind  fieldKind
	value float64
}

// Missing is a field that was left empty or held nothing usable.
func Missing() Field { return Field{} }

// NotRecordable marks a nerve response that could not be elicited.
func NotRecordable() Field { return Field{kind: kindNotRecordable} }

// Measured returns a measurement. Non-positive values are not measurements and yield Missing.
func Measured(v float64) Field {
	if !(v > 0) {
		return Field{}
	}
	return Field{kind: kindMeasured, value: v}
}

func (f Field) IsMissing() bool       { return f.kind == kindMissing }
func (f Field) IsNotRecordable() bool { return f.kind == kindNotRecordable }

// Value returns the measurement and true when the field holds one.
func (f Field) Value() (float64, bool) {
	return f.value, f.kind == kindMeasured
}

// String renders the field the way a clinician would type it: "", "NR" or the number.
func (f Field) String() string {
	switch f.kind {
	case kindNotRecordable:
		return NRMarker
	case kindMeasured:
		return strconv.FormatFloat(f.value, 'f', -1, 64)
	default:
		return ""
	}
}

// MarshalJSON writes NR as the string "NR", measurements as numbers and Missing as null.
func (f Field) MarshalJSON() ([]byte, error) {
	switch f.kind {
	case kindNotRecordable:
		return []byte(`"` + NRMarker + `"`), nil
	case kindMeasured:
		return []byte(strconv.FormatFloat(f.value, 'g', -1, 64)), nil
	default:
		return []byte("null"), nil
	}
}

// NerveReading holds the conduction parameters entered for one nerve.
// PeakLatency applies to sensory nerves, Velocity to motor nerves.
type NerveReading struct {
	NerveName     string
	Type          NerveType
	DistalLatency Field
	PeakLatency   Field
	Amplitude     Field
	Velocity      Field
}

// PatientData is the per-study patient record. Weight is reported but never scored.
type PatientData struct {
	Name     string
	Age      int
	Height   float64
	Weight   float64
	Symptoms Symptom
}

// ParsedCase bundles what a loader produced, plus non-fatal problems found on the way.
type ParsedCase struct {
	Patient     PatientData
	Readings    []NerveReading
	ParseErrors []string
}

// TrackedNerves are the nerves of the standard diabetic polyneuropathy protocol.
var TrackedNerves = []struct {
	Name string
	Type NerveType
}{
	{"Tibial (Motor)", Motor},
	{"Fibular (Motor)", Motor},
	{"Ulnar (Motor)", Motor},
	{"Sural (Sensory)", Sensory},
}

// DefaultReadings returns one empty reading per tracked nerve.
func DefaultReadings() []NerveReading {
	readings := make([]NerveReading, 0, len(TrackedNerves))
	for _, n := range TrackedNerves {
		readings = append(readings, NerveReading{NerveName: n.Name, Type: n.Type})
	}
	return readings
}
