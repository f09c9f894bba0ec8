package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/dpn_scorer_go/internal/analysis"
	"github.com/user/dpn_scorer_go/internal/config"
	"github.com/user/dpn_scorer_go/internal/parser"
	"github.com/user/dpn_scorer_go/internal/report"
)

// App drives one load, analyze and report cycle.
type App struct {
	cfg *config.Config
	log *zap.Logger
	out io.Writer
	now func() time.Time
}

// NewApp creates an App writing reports to out.
func NewApp(cfg *config.Config, log *zap.Logger, out io.Writer) *App {
	return &App{cfg: cfg, log: log, out: out, now: time.Now}
}

// AnalyzeRequest describes where the case comes from and where the reports go.
type AnalyzeRequest struct {
	CasePath string
	PDFPath  string
	Format   string

	// Patient is used for CSV and XLSX input, which carry readings only.
	Patient parser.PatientData
	// PatientFlags names the patient flags the user set explicitly. YAML cases carry
	// their own patient block, so these are reported as ignored there.
	PatientFlags []string
}

func isYAMLCase(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// loadCase picks the loader by file extension.
func (a *App) loadCase(req AnalyzeRequest) (*parser.ParsedCase, error) {
	var parseSheet func(string) ([]parser.NerveReading, []string, error)
	if isYAMLCase(req.CasePath) {
		return parser.LoadCase(req.CasePath)
	}
	switch strings.ToLower(filepath.Ext(req.CasePath)) {
	case ".csv":
		parseSheet = parser.ParseReadingsCSV
	case ".xlsx":
		parseSheet = parser.ParseReadingsXLSX
	default:
		return nil, fmt.Errorf("unsupported case file %q (want .yaml, .yml, .csv or .xlsx)", req.CasePath)
	}

	readings, warnings, err := parseSheet(req.CasePath)
	if err != nil {
		return nil, err
	}
	return &parser.ParsedCase{Patient: req.Patient, Readings: readings, ParseErrors: warnings}, nil
}

// HandleAnalyze loads the case, scores it and writes the requested reports.
func (a *App) HandleAnalyze(req AnalyzeRequest) (*analysis.AnalysisResult, error) {
	log := a.log.With(zap.String("run_id", uuid.NewString()))
	log.Info("Loading case", zap.String("path", req.CasePath))
	pc, err := a.loadCase(req)
	if err != nil {
		return nil, fmt.Errorf("error loading case: %w", err)
	}
	if isYAMLCase(req.CasePath) && len(req.PatientFlags) > 0 {
		log.Warn("Patient flags ignored; YAML cases use their own patient block",
			zap.Strings("flags", req.PatientFlags))
	}
	for _, e := range pc.ParseErrors {
		log.Warn("Parse warning", zap.String("detail", e))
	}
	if len(pc.Readings) == 0 {
		log.Warn("Case has no readings; every score will be zero")
	}

	result := analysis.NewAnalyzer(log).Analyze(pc.Readings, pc.Patient)
	generatedAt := a.now()

	format := req.Format
	if format == "" {
		format = a.cfg.Report.Format
	}
	switch format {
	case "json":
		err = report.WriteJSON(a.out, result)
	default:
		err = report.WriteTextReport(a.out, pc.Patient, pc.Readings, result, generatedAt)
	}
	if err != nil {
		return nil, err
	}

	if req.PDFPath != "" {
		var plots map[string][]byte
		if a.cfg.Report.PDFPlots {
			plots = generatePlots(log, result)
		}
		log.Info("Generating PDF", zap.String("path", req.PDFPath))
		if err := report.BuildPDFReport(req.PDFPath, pc.Patient, pc.Readings, result, plots, generatedAt); err != nil {
			return nil, fmt.Errorf("error generating PDF report: %w", err)
		}
	}
	return result, nil
}

// generatePlots renders what it can; a failed plot is logged and left out of the PDF.
func generatePlots(log *zap.Logger, result *analysis.AnalysisResult) map[string][]byte {
	plotImages := make(map[string][]byte)
	plotConfigs := []struct {
		Name   string
		Render func() ([]byte, error)
	}{
		{report.PlotScore2, func() ([]byte, error) { return report.CreatePercentilePlot(result, "score2") }},
		{report.PlotScore4, func() ([]byte, error) { return report.CreatePercentilePlot(result, "score4") }},
		{report.PlotHeatmap, func() ([]byte, error) { return report.CreatePointsHeatmap(result) }},
	}
	for _, pc := range plotConfigs {
		imgBytes, err := pc.Render()
		if err != nil {
			log.Warn("Plot not generated", zap.String("plot", pc.Name), zap.Error(err))
			continue
		}
		plotImages[pc.Name] = imgBytes
	}
	return plotImages
}

// WriteTemplate prints an empty case file with the tracked nerves.
func (a *App) WriteTemplate(patient parser.PatientData) error {
	return parser.EncodeCase(a.out, patient, parser.DefaultReadings())
}
