package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type caseFile struct {
	Patient  patientEntry   `yaml:"patient"`
	Readings []readingEntry `yaml:"readings"`
}

type patientEntry struct {
	Name     string  `yaml:"name,omitempty"`
	Age      int     `yaml:"age"`
	Height   float64 `yaml:"height"`
	Weight   float64 `yaml:"weight"`
	Symptoms string  `yaml:"symptoms"`
}

// Reading values are kept as text so "NR" and decimal commas reach ParseField intact.
type readingEntry struct {
	Nerve         string `yaml:"nerve"`
	Type          string `yaml:"type"`
	DistalLatency string `yaml:"distal_latency"`
	PeakLatency   string `yaml:"peak_latency"`
	Amplitude     string `yaml:"amplitude"`
	Velocity      string `yaml:"velocity"`
}

// LoadCase reads a YAML case file holding a patient block and a readings list.
func LoadCase(path string) (*ParsedCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read case file: %w", err)
	}
	return DecodeCase(bytes.NewReader(data))
}

// DecodeCase is LoadCase over an arbitrary reader.
func DecodeCase(r io.Reader) (*ParsedCase, error) {
	var cf caseFile
	if err := yaml.NewDecoder(r).Decode(&cf); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode case file: %w", err)
	}

	symptoms, err := ParseSymptom(cf.Patient.Symptoms)
	if err != nil {
		return nil, err
	}

	pc := &ParsedCase{
		Patient: PatientData{
			Name:     cf.Patient.Name,
			Age:      cf.Patient.Age,
			Height:   cf.Patient.Height,
			Weight:   cf.Patient.Weight,
			Symptoms: symptoms,
		},
		Readings: make([]NerveReading, 0, len(cf.Readings)),
	}

	for i, re := range cf.Readings {
		if strings.TrimSpace(re.Nerve) == "" {
			pc.ParseErrors = append(pc.ParseErrors, fmt.Sprintf("Warning: reading %d has no nerve name, skipped.", i+1))
			continue
		}
		pc.Readings = append(pc.Readings, NerveReading{
			NerveName:     strings.TrimSpace(re.Nerve),
			Type:          ParseNerveType(re.Type),
			DistalLatency: ParseField(re.DistalLatency),
			PeakLatency:   ParseField(re.PeakLatency),
			Amplitude:     ParseField(re.Amplitude),
			Velocity:      ParseField(re.Velocity),
		})
	}
	return pc, nil
}

// EncodeCase writes a case in the format LoadCase reads.
func EncodeCase(w io.Writer, patient PatientData, readings []NerveReading) error {
	cf := caseFile{
		Patient: patientEntry{
			Name:     patient.Name,
			Age:      patient.Age,
			Height:   patient.Height,
			Weight:   patient.Weight,
			Symptoms: patient.Symptoms.Key(),
		},
	}
	for _, r := range readings {
		cf.Readings = append(cf.Readings, readingEntry{
			Nerve:         r.NerveName,
			Type:          strings.ToLower(r.Type.String()),
			DistalLatency: r.DistalLatency.String(),
			PeakLatency:   r.PeakLatency.String(),
			Amplitude:     r.Amplitude.String(),
			Velocity:      r.Velocity.String(),
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cf); err != nil {
		return fmt.Errorf("failed to encode case file: %w", err)
	}
	return enc.Close()
}
