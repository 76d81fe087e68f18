// Package main is the entry point for the Canvass CLI. Canvass runs an
// interactive terminal survey with model-driven follow-up questions,
// persists the results, and answers analyst questions grounded in the
// recorded responses.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nkemp/canvass/internal/analysis"
	"github.com/nkemp/canvass/internal/config"
	"github.com/nkemp/canvass/internal/llm"
	"github.com/nkemp/canvass/internal/logging"
	"github.com/nkemp/canvass/internal/results"
	"github.com/nkemp/canvass/internal/speech"
	"github.com/nkemp/canvass/internal/survey"
	"github.com/nkemp/canvass/internal/ui"
	"github.com/nkemp/canvass/pkg/types"
)

var (
	version = "0.1.0"

	cfgPath    string
	surveyPath string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "canvass",
		Short: "Canvass - interactive survey with model-driven follow-ups",
		Long: `Canvass runs a terminal survey that decides, per free-text answer,
whether a probing follow-up question is needed. Navigation past a
question is blocked until its follow-up is resolved. Completed runs are
saved locally and can be analysed with questions grounded in the
recorded responses.

Run the survey:        canvass
Analyse saved results: canvass ask "what did people dislike?"
Check a survey file:   canvass validate survey.txt`,
		RunE: runSurvey,
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path (default ~/.canvass/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&surveyPath, "survey", "s", "", "survey definition file (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newSpeakCmd())
	rootCmd.AddCommand(newTranscribeCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Canvass v%s\n", version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, honoring the --config override.
func loadConfig() (*config.Config, error) {
	if cfgPath != "" {
		return config.LoadFromPath(cfgPath)
	}
	return config.Load()
}

// setup loads config and initializes logging. interactive suppresses
// stderr logging so it cannot corrupt the TUI.
func setup(interactive bool) (*config.Config, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}

	closer, err := logging.Setup(level, cfg.Logging.File, interactive)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize logging: %w", err)
	}

	cleanup := func() {
		if closer != nil {
			closer.Close()
		}
	}
	return cfg, cleanup, nil
}

// loadDocument parses the survey definition, honoring the --survey flag.
func loadDocument(cfg *config.Config) (*survey.Document, error) {
	path := surveyPath
	if path == "" {
		path = cfg.Survey.File
	}
	doc, err := survey.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load survey %s: %w", path, err)
	}
	return doc, nil
}

func runSurvey(cmd *cobra.Command, args []string) error {
	cfg, cleanup, err := setup(true)
	if err != nil {
		return err
	}
	defer cleanup()

	doc, err := loadDocument(cfg)
	if err != nil {
		return err
	}

	provider, err := llm.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("initialize llm provider: %w", err)
	}

	store, err := results.Open(cfg.Results.DataDir)
	if err != nil {
		return fmt.Errorf("open results store: %w", err)
	}
	defer store.Close()

	lipgloss.SetColorProfile(termenv.TrueColor)

	prog, err := ui.New(ui.Config{
		Document: doc,
		Provider: provider,
		Store:    store,
	})
	if err != nil {
		return err
	}

	log.Info().Str("survey", doc.Title).Int("questions", doc.Len()).Msg("starting survey")
	_, err = prog.Run()
	return err
}

func newAskCmd() *cobra.Command {
	var surveyID string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question grounded in saved survey results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cleanup, err := setup(false)
			if err != nil {
				return err
			}
			defer cleanup()

			doc, err := loadDocument(cfg)
			if err != nil {
				return err
			}

			store, err := results.Open(cfg.Results.DataDir)
			if err != nil {
				return fmt.Errorf("open results store: %w", err)
			}
			defer store.Close()

			ctx := cmd.Context()
			var record *results.Record
			if surveyID != "" {
				record, err = store.Load(ctx, surveyID)
			} else {
				record, err = store.Latest(ctx)
			}
			if err != nil {
				return fmt.Errorf("load results: %w", err)
			}

			provider, err := llm.NewProvider(cfg)
			if err != nil {
				return fmt.Errorf("initialize llm provider: %w", err)
			}

			agent := analysis.NewAgent(provider, func(stage types.ProgressStage) {
				fmt.Fprintf(os.Stderr, "... %s\n", stage)
			})

			answer, err := agent.Answer(ctx, strings.Join(args, " "), record.Snapshot(doc))
			if err != nil {
				return err
			}

			fmt.Println(answer)
			return nil
		},
	}

	cmd.Flags().StringVar(&surveyID, "id", "", "survey id to analyse (default: most recent)")
	return cmd
}

func newStatsCmd() *cobra.Command {
	var surveyID string
	var maxTerms int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize saved survey results as response distributions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cleanup, err := setup(false)
			if err != nil {
				return err
			}
			defer cleanup()

			doc, err := loadDocument(cfg)
			if err != nil {
				return err
			}

			store, err := results.Open(cfg.Results.DataDir)
			if err != nil {
				return fmt.Errorf("open results store: %w", err)
			}
			defer store.Close()

			ctx := cmd.Context()
			var record *results.Record
			if surveyID != "" {
				record, err = store.Load(ctx, surveyID)
			} else {
				record, err = store.Latest(ctx)
			}
			if err != nil {
				return fmt.Errorf("load results: %w", err)
			}

			snap := record.Snapshot(doc)
			builder := analysis.NewChartBuilder(maxTerms)

			printChart(builder.CompletionSummary(snap))

			charts, err := builder.AllQuestionCharts(snap, analysis.ChartBar)
			if err != nil {
				return err
			}
			for _, chart := range charts {
				fmt.Println()
				printChart(chart)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&surveyID, "id", "", "survey id to summarize (default: most recent)")
	cmd.Flags().IntVar(&maxTerms, "max-terms", 0, "term count cap for free-text questions (default 10)")
	return cmd
}

// printChart writes one chart as an aligned label/value listing.
func printChart(chart analysis.ChartData) {
	fmt.Println(chart.Title)
	if chart.QuestionText != "" {
		fmt.Printf("  %s\n", chart.QuestionText)
	}
	for i, label := range chart.Labels {
		fmt.Printf("  %-28s %g\n", label, chart.Values[i])
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a survey definition file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := survey.LoadFile(args[0])
			if err != nil {
				return err
			}

			categorical := 0
			for _, q := range doc.Questions {
				if !q.IsFreeText() {
					categorical++
				}
			}

			fmt.Printf("OK: %d questions (%d categorical, %d free-text)\n",
				doc.Len(), categorical, doc.Len()-categorical)
			return nil
		},
	}
}

func newSpeakCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "speak <text>",
		Short: "Synthesize text to an audio file via the configured TTS endpoint",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cleanup, err := setup(false)
			if err != nil {
				return err
			}
			defer cleanup()

			engine := speechEngine(cfg)
			audio, err := engine.Synthesize(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			if err := os.WriteFile(outPath, audio, 0644); err != nil {
				return fmt.Errorf("write audio file: %w", err)
			}
			fmt.Printf("Wrote %d bytes to %s\n", len(audio), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "speech.wav", "output audio file")
	return cmd
}

func newTranscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe an audio file via the configured STT endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cleanup, err := setup(false)
			if err != nil {
				return err
			}
			defer cleanup()

			audio, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read audio file: %w", err)
			}

			engine := speechEngine(cfg)
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			text, err := engine.Transcribe(ctx, audio, args[0])
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}
}

// speechEngine builds the speech engine from config.
func speechEngine(cfg *config.Config) *speech.Engine {
	return speech.NewEngine(speech.Config{
		STTEndpoint: cfg.Speech.STTEndpoint,
		TTSEndpoint: cfg.Speech.TTSEndpoint,
		Voice:       cfg.Speech.Voice,
		Timeout:     time.Duration(cfg.Speech.TimeoutSec) * time.Second,
	})
}
