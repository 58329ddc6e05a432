package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ahrav/go-rolecall/infrastructure/middleware"
	"github.com/ahrav/go-rolecall/infrastructure/questionbank"
	"github.com/ahrav/go-rolecall/internal/domain"
)

// cli holds global flags and the collaborators built from them.
type cli struct {
	bankPath    string
	logLevel    string
	logFormat   string
	metricsFile string

	logger   *slog.Logger
	bank     *domain.QuestionBank
	registry *prometheus.Registry
	metrics  *middleware.PrometheusMetrics
}

func newRootCommand() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "rolecall",
		Short: "Score role questionnaires and analyze team composition",
		Long: `rolecall turns paired-statement questionnaire answers into role profiles.

It scores individual respondents, reports team and organization balance,
recommends complementary pairings, and runs declarative analysis graphs.

Examples:
  rolecall score answers.json
  rolecall team team-a.yaml team-b.yaml --org-name church
  rolecall match team.json --threshold 0.5
  rolecall graph examples/graphs/team_report.yaml --input team.json
  rolecall bank show --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.initialize(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return c.flushMetrics()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.bankPath, "bank", "", "Question bank file (YAML or JSON); the embedded reference bank when empty")
	flags.StringVar(&c.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flags.StringVar(&c.logFormat, "log-format", "text", "Log format: text or json")
	flags.StringVar(&c.metricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file on exit")

	root.AddCommand(
		newScoreCommand(c),
		newTeamCommand(c),
		newMatchCommand(c),
		newGraphCommand(c),
		newBankCommand(c),
	)
	return root
}

func (c *cli) initialize(cmd *cobra.Command) error {
	logger, err := newLogger(cmd.ErrOrStderr(), c.logLevel, c.logFormat)
	if err != nil {
		return err
	}
	c.logger = logger
	slog.SetDefault(logger)

	bank, err := questionbank.SourceFor(c.bankPath).Load()
	if err != nil {
		return fmt.Errorf("failed to load question bank: %w", err)
	}
	c.bank = bank

	c.registry = prometheus.NewRegistry()
	c.metrics = middleware.NewPrometheusMetrics(c.registry)

	logger.Debug("initialized", "questions", bank.Len(), "bank", c.bankPath)
	return nil
}

func (c *cli) flushMetrics() error {
	if c.metricsFile == "" || c.registry == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(c.metricsFile, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q: want text or json", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
