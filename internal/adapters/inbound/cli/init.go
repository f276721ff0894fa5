package cli

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/silenceobjects/sentinel/internal/adapters/outbound/config"
	"github.com/silenceobjects/sentinel/internal/domain"
	"github.com/spf13/cobra"
)

func newInitCmd(g *globalFlags) *cobra.Command {
	var (
		force       bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .sentinel.yaml configuration file",
		Long:  "Create a commented .sentinel.yaml with the default guard, scoring and CI settings.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(g.path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			cfg := domain.DefaultConfig()
			if interactive {
				if cfg, err = promptConfig(cfg); err != nil {
					return err
				}
			}

			dest, err := config.WriteFile(absPath, cfg, force)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", dest)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing .sentinel.yaml")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Ask for the main settings")

	return cmd
}

func promptConfig(cfg domain.SentinelConfig) (domain.SentinelConfig, error) {
	scorePrompt := promptui.Prompt{
		Label:   "Minimum passing score (0-100)",
		Default: strconv.Itoa(cfg.Scoring.MinimumScore),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 || n > 100 {
				return fmt.Errorf("enter a number between 0 and 100")
			}
			return nil
		},
	}
	raw, err := scorePrompt.Run()
	if err != nil {
		return cfg, fmt.Errorf("minimum score input cancelled: %w", err)
	}
	cfg.Scoring.MinimumScore, _ = strconv.Atoi(raw)

	if cfg.Guards.Build, err = promptYesNo("Run the workspace build guard?", cfg.Guards.Build); err != nil {
		return cfg, err
	}
	if cfg.CI.FailOnViolations, err = promptYesNo("Fail CI when the score is below the minimum?", cfg.CI.FailOnViolations); err != nil {
		return cfg, err
	}
	if cfg.TypeSafety.CountUnknown, err = promptYesNo("Count ': unknown' annotations against the score?", cfg.TypeSafety.CountUnknown); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func promptYesNo(label string, current bool) (bool, error) {
	items := []string{"yes", "no"}
	cursor := 1
	if current {
		cursor = 0
	}

	prompt := promptui.Select{
		Label:     label,
		Items:     items,
		CursorPos: cursor,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "\U0001F449 {{ . | cyan }}",
			Inactive: "   {{ . | white }}",
			Selected: "\U00002705 {{ . | green }}",
		},
	}
	idx, _, err := prompt.Run()
	if err != nil {
		return current, fmt.Errorf("selection cancelled: %w", err)
	}
	return idx == 0, nil
}
