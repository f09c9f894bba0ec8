package analysis

import (
	"encoding/json"
	"strings"

	"github.com/user/dpn_scorer_go/internal/parser"
)

// AbnormalThreshold is the score total at which a score family is flagged abnormal.
const AbnormalThreshold = 2

// ScoreDetail is one scored observation.
type ScoreDetail struct {
	Nerve      string       `json:"nerve"`
	Value      parser.Field `json:"value"`
	Z          float64      `json:"z"` // zero when Value is NR
	Percentile float64      `json:"percentile"`
	Points     int          `json:"points"`
	UpperTail  bool         `json:"upperTail,omitempty"`
}

// Score is one score family: its total, the abnormal flag and the contributing details
// in reading order.
type Score struct {
	Total      int           `json:"total"`
	IsAbnormal bool          `json:"isAbnormal"`
	Details    []ScoreDetail `json:"details"`
}

// SeverityLevel is the N0..N3 staging. Levels are ordered.
type SeverityLevel int

const (
	N0 SeverityLevel = iota
	N1
	N2
	N3
)

var severityDescriptions = [...]string{
	N0: "N0: No abnormalities in nerve conduction",
	N1: "N1: Abnormal score #2 without signs of neuropathy",
	N2: "N2: Abnormal score #2 with signs in feet or legs",
	N3: "N3: Abnormal score #2 with signs of thigh involvement",
}

// String returns the full description, e.g. "N2: Abnormal score #2 with ...".
func (s SeverityLevel) String() string {
	if s < N0 || s > N3 {
		return "unknown severity"
	}
	return severityDescriptions[s]
}

// Code returns the short label, e.g. "N2".
func (s SeverityLevel) Code() string {
	code, _, _ := strings.Cut(s.String(), ":")
	return code
}

// Summary returns the description without the code.
func (s SeverityLevel) Summary() string {
	_, summary, _ := strings.Cut(s.String(), ": ")
	return summary
}

func (s SeverityLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Code())
}

// AnalysisResult is the outcome of one analysis run. Score4 is reported alongside the
// severity but never influences it.
type AnalysisResult struct {
	Score2   Score         `json:"score2"`
	Score4   Score         `json:"score4"`
	Severity SeverityLevel `json:"severity"`
}
