package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/silenceobjects/sentinel/internal/adapters/outbound/report"
	"github.com/silenceobjects/sentinel/internal/bootstrap"
	"github.com/silenceobjects/sentinel/internal/domain"
	"github.com/spf13/cobra"
)

func newGuardCmd(g *globalFlags, name domain.GuardName) *cobra.Command {
	return &cobra.Command{
		Use:   name.String(),
		Short: name.Description(),
		Long: name.Description() + ".\n\nRuns this guard alone, even when it is disabled in the config, " +
			"and exits 1 if it fails.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap.Build(g.params(cmd))
			if err != nil {
				return err
			}
			defer rt.Close()

			run, err := rt.Service.RunGuard(cmd.Context(), name)
			if err != nil {
				return fmt.Errorf("%s guard: %w", name, err)
			}

			out := cmd.OutOrStdout()
			if g.json {
				if err := writeJSON(out, newGuardRunJSON(run)); err != nil {
					return err
				}
			} else {
				fmt.Fprint(out, report.FormatGuardResult(run.Result, rt.Config.Output.MaxViolationsPerGuard))
			}

			if !run.Result.Passed {
				return ErrGateFailed
			}
			return nil
		},
	}
}

type findingJSON struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

type guardRunJSON struct {
	domain.GuardResult
	Findings   []findingJSON `json:"findings"`
	DurationMS int64         `json:"duration_ms"`
}

func newGuardRunJSON(run domain.GuardRun) guardRunJSON {
	out := guardRunJSON{
		GuardResult: run.Result,
		Findings:    make([]findingJSON, 0, len(run.Findings)),
		DurationMS:  run.Duration.Milliseconds(),
	}
	for _, f := range run.Findings {
		out.Findings = append(out.Findings, findingJSON{Location: f.Location(), Message: f.Message()})
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
