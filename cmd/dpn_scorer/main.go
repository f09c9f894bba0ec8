package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/user/dpn_scorer_go/internal/config"
	"github.com/user/dpn_scorer_go/internal/logging"
	"github.com/user/dpn_scorer_go/internal/parser"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "dpn_scorer",
		Short:         "Stage diabetic polyneuropathy from nerve conduction readings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")

	// newApp is deferred until a command runs so --config is parsed.
	newApp := func(cmd *cobra.Command) (*App, func(), error) {
		// A .env file may carry DPN_* overrides; it is optional.
		_ = godotenv.Load()
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, nil, err
		}
		log, err := logging.New(cfg.Logging)
		if err != nil {
			return nil, nil, err
		}
		return NewApp(cfg, log, cmd.OutOrStdout()), func() { _ = log.Sync() }, nil
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(newApp),
		newTemplateCmd(newApp),
	)
	return rootCmd
}

type appFactory func(cmd *cobra.Command) (*App, func(), error)

// patientFlags are the patient attributes for CSV and XLSX input.
type patientFlags struct {
	name     string
	age      int
	height   float64
	weight   float64
	symptoms string
}

func (pf *patientFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&pf.name, "name", "", "Patient name (report only)")
	cmd.Flags().IntVar(&pf.age, "age", 0, "Patient age in years")
	cmd.Flags().Float64Var(&pf.height, "height", 0, "Patient height in cm")
	cmd.Flags().Float64Var(&pf.weight, "weight", 0, "Patient weight in kg")
	cmd.Flags().StringVar(&pf.symptoms, "symptoms", "none", "Symptoms: none, feet_legs or thigh")
}

// changed lists the patient flags given on the command line.
func (pf *patientFlags) changed(cmd *cobra.Command) []string {
	var names []string
	for _, name := range []string{"name", "age", "height", "weight", "symptoms"} {
		if cmd.Flags().Changed(name) {
			names = append(names, "--"+name)
		}
	}
	return names
}

func (pf *patientFlags) patient() (parser.PatientData, error) {
	symptoms, err := parser.ParseSymptom(pf.symptoms)
	if err != nil {
		return parser.PatientData{}, err
	}
	return parser.PatientData{Name: pf.name, Age: pf.age, Height: pf.height, Weight: pf.weight, Symptoms: symptoms}, nil
}

func newAnalyzeCmd(newApp appFactory) *cobra.Command {
	var pf patientFlags
	var pdfPath, format string

	cmd := &cobra.Command{
		Use:   "analyze [case-file]",
		Short: "Score a case and print the report",
		Long: `Score a nerve conduction study and print the severity report.

The case file is either YAML (patient block plus readings) or a CSV or XLSX sheet
(readings only, with the patient given by flags).

Example: dpn_scorer analyze case.yaml --pdf report.pdf
Example: dpn_scorer analyze readings.csv --age 45 --height 170 --symptoms feet_legs`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "" && format != "text" && format != "json" {
				return fmt.Errorf("invalid --format %q (use text or json)", format)
			}
			patient, err := pf.patient()
			if err != nil {
				return err
			}
			app, done, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer done()

			_, err = app.HandleAnalyze(AnalyzeRequest{
				CasePath:     args[0],
				Patient:      patient,
				PatientFlags: pf.changed(cmd),
				PDFPath:      pdfPath,
				Format:       format,
			})
			return err
		},
	}

	pf.register(cmd)
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "Also write a PDF report to this path")
	cmd.Flags().StringVar(&format, "format", "", "Report format: text or json (default from config)")
	return cmd
}

func newTemplateCmd(newApp appFactory) *cobra.Command {
	var pf patientFlags

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Print an empty YAML case with the tracked nerves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patient, err := pf.patient()
			if err != nil {
				return err
			}
			app, done, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer done()
			return app.WriteTemplate(patient)
		},
	}
	pf.register(cmd)
	return cmd
}
