package cli

import (
	"fmt"

	"github.com/silenceobjects/sentinel/internal/adapters/outbound/report"
	"github.com/silenceobjects/sentinel/internal/bootstrap"
	"github.com/silenceobjects/sentinel/internal/domain"
	"github.com/spf13/cobra"
)

const prettyWidth = 100

type reportFlags struct {
	minScore    int
	noConsole   bool
	noMarkdown  bool
	pretty      bool
	progress    bool
	metricsFile string
	natsURL     string
	build       bool
	noHistory   bool
}

func newReportCmd(g *globalFlags) *cobra.Command {
	f := &reportFlags{}

	cmd := &cobra.Command{
		Use:     "report",
		Aliases: []string{"all"},
		Short:   "Run every enabled guard and score the changes",
		Long: "Run every enabled guard in order, compute the compliance score and print the console " +
			"report and the Markdown PR comment. Exits 1 when the score is below the minimum and " +
			"ci.fail_on_violations is set.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := g.params(cmd)
			p.Progress = f.progress
			p.Metrics = f.metricsFile != ""
			p.Override = func(c *domain.SentinelConfig) {
				if cmd.Flags().Changed("min-score") {
					c.Scoring.MinimumScore = f.minScore
				}
				if f.build {
					c.Guards.Build = true
				}
				if f.natsURL != "" {
					c.Events.NATSURL = f.natsURL
				}
				if f.noConsole {
					c.Output.Console = false
				}
				if f.noMarkdown {
					c.Output.Markdown = false
				}
			}

			rt, err := bootstrap.Build(p)
			if err != nil {
				return err
			}
			defer rt.Close()

			rep, _, err := rt.Service.RunAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("running guards: %w", err)
			}

			if !f.noHistory {
				if err := rt.Service.Record(*rep); err != nil {
					rt.Logger.Warn("history not saved", "error", err)
				}
			}
			if rt.Metrics != nil {
				if err := rt.Metrics.WriteTextfile(f.metricsFile); err != nil {
					return err
				}
			}

			if err := printReport(cmd, g, f, rt.Config, *rep); err != nil {
				return err
			}

			if !rep.Passed && rt.Config.CI.FailOnViolations {
				return ErrGateFailed
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&f.minScore, "min-score", domain.DefaultMinimumScore, "Minimum passing score (overrides scoring.minimum_score)")
	cmd.Flags().BoolVar(&f.noConsole, "no-console", false, "Skip the console report")
	cmd.Flags().BoolVar(&f.noMarkdown, "no-markdown", false, "Skip the Markdown report")
	cmd.Flags().BoolVar(&f.pretty, "pretty", false, "Render the Markdown report for the terminal")
	cmd.Flags().BoolVar(&f.progress, "progress", false, "Show a progress bar on interactive terminals")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file")
	cmd.Flags().StringVar(&f.natsURL, "nats-url", "", "Publish run events to this NATS server")
	cmd.Flags().BoolVar(&f.build, "build", false, "Enable the build guard for this run")
	cmd.Flags().BoolVar(&f.noHistory, "no-history", false, "Do not append the score to the history")

	return cmd
}

func printReport(cmd *cobra.Command, g *globalFlags, f *reportFlags, cfg domain.SentinelConfig, rep domain.ComplianceReport) error {
	out := cmd.OutOrStdout()
	limit := cfg.Output.MaxViolationsPerGuard

	if g.json {
		return writeJSON(out, rep)
	}

	if cfg.Output.Console {
		fmt.Fprint(out, report.RenderConsole(rep, limit))
	}
	if cfg.Output.Markdown {
		md := report.RenderMarkdown(rep, limit)
		if f.pretty {
			fmt.Fprintln(out, report.RenderPretty(md, prettyWidth))
		} else {
			fmt.Fprint(out, report.WrapMarkdown(md))
		}
	}
	return nil
}
