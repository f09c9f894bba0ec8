package analysis

import (
	"go.uber.org/zap"

	"github.com/user/dpn_scorer_go/internal/normative"
	"github.com/user/dpn_scorer_go/internal/parser"
)

// SuralLatencyLabel is the score #2 label of the sural peak latency observation.
const SuralLatencyLabel = "Sural (Latency)"

// scoreField turns one reading field into a detail. ok is false for Missing fields,
// which contribute nothing.
func scoreField(label string, f parser.Field, ref normative.Stat, upperTail bool) (ScoreDetail, bool) {
	if f.IsNotRecordable() {
		p := NRPercentileLowerTail
		if upperTail {
			p = NRPercentileUpperTail
		}
		return ScoreDetail{Nerve: label, Value: f, Percentile: p, Points: 2, UpperTail: upperTail}, true
	}

	v, ok := f.Value()
	if !ok {
		return ScoreDetail{}, false
	}
	z := ZScore(v, ref)
	p := NormCDF(z)
	points := LowerTailPoints(p)
	if upperTail {
		points = UpperTailPoints(p)
	}
	return ScoreDetail{Nerve: label, Value: f, Z: z, Percentile: p, Points: points, UpperTail: upperTail}, true
}

func newScore(details []ScoreDetail) Score {
	total := 0
	for _, d := range details {
		total += d.Points
	}
	if details == nil {
		details = make([]ScoreDetail, 0)
	}
	return Score{Total: total, IsAbnormal: total >= AbnormalThreshold, Details: details}
}

// Classify derives the severity level from the score #2 flag and the reported symptoms.
// An unrecognized symptom value never raises the level above N0.
func Classify(score2Abnormal bool, symptoms parser.Symptom) SeverityLevel {
	if !score2Abnormal {
		return N0
	}
	switch symptoms {
	case parser.SymptomNone:
		return N1
	case parser.SymptomFeetLegs:
		return N2
	case parser.SymptomThigh:
		return N3
	default:
		return N0
	}
}

// RunFullAnalysis scores the readings of one study against the patient's reference
// stratum. It never fails: unknown nerves and missing fields are skipped.
func RunFullAnalysis(readings []parser.NerveReading, patient parser.PatientData) *AnalysisResult {
	return NewAnalyzer(nil).Analyze(readings, patient)
}

// Analyzer runs analyses and logs what it skipped.
type Analyzer struct {
	log *zap.Logger
}

// NewAnalyzer returns an Analyzer. A nil logger discards output.
func NewAnalyzer(log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{log: log}
}

// Analyze is RunFullAnalysis with logging.
func (a *Analyzer) Analyze(readings []parser.NerveReading, patient parser.PatientData) *AnalysisResult {
	var score2Details, score4Details []ScoreDetail

	for _, r := range readings {
		stats, ok := normative.ResolveByName(r.NerveName, patient.Age, patient.Height)
		if !ok {
			a.log.Debug("Skipping reading for unrecognized nerve", zap.String("nerve", r.NerveName))
			continue
		}

		switch s := stats.(type) {
		case normative.MotorStats:
			if r.Type == parser.Motor {
				if d, ok := scoreField(r.NerveName, r.Velocity, s.Velocity, false); ok {
					score2Details = append(score2Details, d)
				}
			}
		case normative.SensoryStats:
			if d, ok := scoreField(SuralLatencyLabel, r.PeakLatency, s.PeakLatency, true); ok {
				score2Details = append(score2Details, d)
			}
		}

		if d, ok := scoreField(r.NerveName, r.Amplitude, stats.AmplitudeStat(), false); ok {
			score4Details = append(score4Details, d)
		}
	}

	result := &AnalysisResult{
		Score2: newScore(score2Details),
		Score4: newScore(score4Details),
	}
	result.Severity = Classify(result.Score2.IsAbnormal, patient.Symptoms)

	a.log.Info("Analysis complete",
		zap.Int("readings", len(readings)),
		zap.Int("score2", result.Score2.Total),
		zap.Int("score4", result.Score4.Total),
		zap.String("severity", result.Severity.Code()),
	)
	return result
}
