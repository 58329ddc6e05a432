package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ahrav/go-rolecall/infrastructure/middleware"
	"github.com/ahrav/go-rolecall/infrastructure/questionbank"
	"github.com/ahrav/go-rolecall/internal/application"
	"github.com/ahrav/go-rolecall/internal/domain"
	"github.com/ahrav/go-rolecall/internal/scoring"
)

func newScoreCommand(c *cli) *cobra.Command {
	var (
		requireComplete bool
		concurrency     int
	)

	cmd := &cobra.Command{
		Use:   "score FILE",
		Short: "Score respondents and classify their role profiles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rf, err := readResponses(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			sets, err := rf.respondents()
			if err != nil {
				return err
			}

			if requireComplete {
				for _, set := range sets {
					if p := scoring.Completeness(set.Answers, c.bank); !p.Complete() {
						return fmt.Errorf("respondent %s answered %d of %d questions", set.ID, p.Answered, p.Total)
					}
				}
			}

			start := time.Now()
			scored, err := application.ScoreRespondents(cmd.Context(), c.bank, sets, concurrency)
			c.metrics.RecordLatency("score", time.Since(start), map[string]string{"unit": "cli.score"})
			if err != nil {
				c.metrics.RecordCounter("unit_failures_total", 1, map[string]string{"unit": "cli.score"})
				return err
			}
			c.metrics.RecordCounter("respondents_scored", float64(len(scored)), map[string]string{"unit": "cli.score"})

			th := scoring.DefaultClassifierThresholds()
			results := make([]respondentResult, len(scored))
			for i, m := range scored {
				profile := scoring.Classify(m.Scores, th)
				middleware.RecordProfile(c.metrics, profile)
				results[i] = respondentResult{
					ID:       m.ID,
					Scores:   m.Scores,
					Profile:  profile,
					Progress: scoring.Completeness(sets[i].Answers, c.bank),
				}
			}

			c.logger.Info("scored respondents", "count", len(results))
			return writeJSON(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().BoolVar(&requireComplete, "require-complete", false, "Reject respondents who skipped questions")
	cmd.Flags().IntVar(&concurrency, "concurrency", application.DefaultScoringConcurrency, "Respondents scored in parallel")
	return cmd
}

// teamOutput is the result of the team command.
type teamOutput struct {
	Teams        []domain.GroupReport `json:"teams"`
	Organization *domain.GroupReport  `json:"organization,omitempty"`
}

func newTeamCommand(c *cli) *cobra.Command {
	var orgName string

	cmd := &cobra.Command{
		Use:   "team FILE...",
		Short: "Report role distribution, balance and gaps for teams",
		Long: `team reports each group found in the input files. When more than one
team is given an organization report is added; members appearing in
several teams are counted once.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			th := scoring.DefaultClassifierThresholds()

			var out teamOutput
			var teams [][]domain.MemberScores
			for _, path := range args {
				rf, err := readResponses(path, cmd.InOrStdin())
				if err != nil {
					return err
				}
				groups := rf.groups(path)
				if len(groups) == 0 {
					return fmt.Errorf("%s: %w", path, errNoResponses)
				}
				for _, g := range groups {
					scored, err := application.ScoreRespondents(cmd.Context(), c.bank, g.Members, 0)
					if err != nil {
						return fmt.Errorf("team %s: %w", g.Name, err)
					}
					report := scoring.AnalyzeGroup(g.Name, scored, th)
					middleware.RecordReport(c.metrics, report)
					out.Teams = append(out.Teams, report)
					teams = append(teams, scored)
				}
			}

			if len(teams) > 1 {
				org := scoring.AnalyzeGroup(orgName, scoring.MergeGroups(teams...), th)
				middleware.RecordReport(c.metrics, org)
				out.Organization = &org
			}

			c.logger.Info("analyzed teams", "teams", len(out.Teams), "organization", out.Organization != nil)
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&orgName, "org-name", "organization", "Name of the combined organization report")
	return cmd
}

func newMatchCommand(c *cli) *cobra.Command {
	var (
		threshold float64
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "match FILE",
		Short: "Recommend complementary pairings among respondents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if threshold < 0 || threshold >= 1 {
				return fmt.Errorf("--threshold must be in [0, 1), got %v", threshold)
			}
			rf, err := readResponses(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			sets, err := rf.respondents()
			if err != nil {
				return err
			}
			scored, err := application.ScoreRespondents(cmd.Context(), c.bank, sets, 0)
			if err != nil {
				return err
			}

			pairings := scoring.RecommendPairings(scoring.MergeGroups(scored), threshold)
			if limit > 0 && len(pairings) > limit {
				pairings = pairings[:limit]
			}
			c.logger.Info("recommended pairings", "respondents", len(scored), "pairings", len(pairings))
			return writeJSON(cmd.OutOrStdout(), pairings)
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", scoring.ComplementaryThreshold, "Distance above which two respondents complement each other")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum pairings to print; 0 prints all")
	return cmd
}

// graphInputKeys are state entries the graph command seeds and does not
// echo back.
var graphInputKeys = map[string]struct{}{
	domain.KeyQuestionBank.Name(): {},
	domain.KeyAnswers.Name():      {},
	domain.KeyMembers.Name():      {},
}

func newGraphCommand(c *cli) *cobra.Command {
	var (
		input string
		group string
	)

	cmd := &cobra.Command{
		Use:   "graph CONFIG",
		Short: "Run an analysis graph over respondents",
		Long: `graph loads an analysis graph from a YAML file and executes it. A single
respondent is placed in the state as answers; groups are placed as
members. Every state entry the graph produced is printed as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := middleware.NewGuardedRegistry(application.NewDefaultUnitRegistry(nil), c.metrics)
			loader, err := application.NewGraphLoader(registry)
			if err != nil {
				return err
			}
			graph, err := loader.LoadFromFile(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load graph: %w", err)
			}

			rf, err := readResponses(input, cmd.InOrStdin())
			if err != nil {
				return err
			}

			state := domain.With(domain.NewState(), domain.KeyQuestionBank, c.bank)
			switch {
			case len(rf.Answers) > 0:
				state = domain.With(state, domain.KeyAnswers, rf.Answers)
				if group == "" {
					group = rf.ID
				}
			default:
				sets, err := rf.respondents()
				if err != nil {
					return err
				}
				state = domain.With(state, domain.KeyMembers, sets)
				if group == "" {
					group = rf.Name
				}
			}
			if group == "" {
				group = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
			}

			execID := uuid.NewString()
			state = state.WithExecutionContext(domain.ExecutionContext{
				GraphID:     graph.Name(),
				GroupName:   group,
				ExecutionID: execID,
			})

			start := time.Now()
			result, err := graph.Execute(cmd.Context(), state)
			c.metrics.RecordLatency("graph", time.Since(start), map[string]string{"unit": graph.Name()})
			if err != nil {
				return err
			}

			if report, ok := reportFromState(result, group); ok {
				middleware.RecordReport(c.metrics, report)
			}
			if profile, ok := domain.Get(result, domain.KeyProfile); ok {
				middleware.RecordProfile(c.metrics, profile)
			}

			out := make(map[string]any)
			for _, key := range result.Keys() {
				if _, skip := graphInputKeys[key]; skip {
					continue
				}
				if v, ok := result.GetRaw(key); ok {
					out[key] = v
				}
			}
			c.logger.Info("graph executed", "graph", graph.Name(), "execution_id", execID, "keys", len(out))
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&input, "input", "-", "Respondent or group file; - reads standard input")
	cmd.Flags().StringVar(&group, "group", "", "Group name recorded in the execution context")
	return cmd
}

// reportFromState assembles a group report from the entries a team graph
// writes, when the balance score is among them.
func reportFromState(s domain.State, name string) (domain.GroupReport, bool) {
	balance, ok := domain.Get(s, domain.KeyBalanceScore)
	if !ok {
		return domain.GroupReport{}, false
	}
	report := domain.GroupReport{Name: name, Balance: balance}
	if dist, ok := domain.Get(s, domain.KeyDistribution); ok {
		report.Distribution = dist
		report.Percentages = scoring.Percentages(dist)
	}
	if members, ok := domain.Get(s, domain.KeyMemberScores); ok {
		report.Members = len(members)
	}
	if gaps, ok := domain.Get(s, domain.KeyGaps); ok {
		report.Gaps = gaps
	}
	if comp, ok := domain.Get(s, domain.KeyComposition); ok {
		report.Composition = comp
	}
	return report, true
}

func newBankCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bank",
		Short: "Inspect and validate question banks",
	}

	var format string
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the active question bank",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := questionbank.Marshal(c.bank, questionbank.Format(format))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	show.Flags().StringVar(&format, "format", string(questionbank.FormatYAML), "Output format: yaml or json")

	check := &cobra.Command{
		Use:   "check FILE...",
		Short: "Validate question bank files and print their role ceilings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed int
			for _, path := range args {
				bank, err := questionbank.LoadFile(path)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s: %d questions, ceiling %s\n", path, bank.Len(), formatScores(bank.Ceiling()))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d question banks invalid", failed, len(args))
			}
			return nil
		},
	}

	cmd.AddCommand(show, check)
	return cmd
}

func formatScores(s domain.RoleScores) string {
	parts := make([]string, 0, domain.RoleCount)
	for _, r := range domain.AllRoles() {
		parts = append(parts, fmt.Sprintf("%s=%g", r, s.Get(r)))
	}
	return strings.Join(parts, " ")
}
