package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/silenceobjects/sentinel/internal/bootstrap"
	"github.com/silenceobjects/sentinel/internal/domain"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

var (
	// ErrGateFailed reports a failed guard or compliance report. The command
	// output already explains the failure.
	ErrGateFailed = errors.New("compliance gate failed")
	// ErrUsage reports a missing or unknown command after usage was printed.
	ErrUsage = errors.New("invalid usage")
)

// Reported tells whether err was already explained to the user.
func Reported(err error) bool {
	return errors.Is(err, ErrGateFailed) || errors.Is(err, ErrUsage)
}

type globalFlags struct {
	path    string
	config  string
	verbose bool
	json    bool
}

func (g *globalFlags) params(cmd *cobra.Command) bootstrap.Params {
	return bootstrap.Params{
		Path:       g.path,
		ConfigPath: g.config,
		LogOutput:  cmd.ErrOrStderr(),
		Verbose:    g.verbose,
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "sentinel <command>",
		Short: "Compliance gate for pending repository changes",
		Long: "Sentinel inspects staged changes (or the last commit) against the Silence " +
			"rulebook and scores them before a commit, pull request or deploy proceeds.",
		Args:               cobra.ArbitraryArgs,
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.ErrOrStderr()
			if len(args) == 0 {
				fmt.Fprintln(w, "Error: missing command")
			} else {
				fmt.Fprintf(w, "Error: unknown command %q\n", args[0])
				if s := suggest(cmd, args[0]); s != "" {
					fmt.Fprintf(w, "Did you mean %q?\n", s)
				}
			}
			fmt.Fprintln(w)
			fmt.Fprint(w, cmd.UsageString())
			return ErrUsage
		},
	}

	cmd.PersistentFlags().StringVar(&g.path, "path", ".", "Repository path")
	cmd.PersistentFlags().StringVar(&g.config, "config", "", "Config file (default <repo>/.sentinel.yaml)")
	cmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Debug logging on stderr")
	cmd.PersistentFlags().BoolVar(&g.json, "json", false, "Output JSON")

	for _, name := range domain.AllGuards {
		cmd.AddCommand(newGuardCmd(g, name))
	}
	cmd.AddCommand(newReportCmd(g))
	cmd.AddCommand(newInitCmd(g))
	cmd.AddCommand(newHistoryCmd(g))
	cmd.AddCommand(newMCPCmd(g))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// suggest returns the closest command name to typed, or "".
func suggest(root *cobra.Command, typed string) string {
	var names []string
	for _, c := range root.Commands() {
		if c.IsAvailableCommand() {
			names = append(names, c.Name())
			names = append(names, c.Aliases...)
		}
	}
	if matches := fuzzy.Find(strings.ToLower(typed), names); len(matches) > 0 {
		return matches[0].Str
	}
	for _, n := range names {
		if strings.HasPrefix(n, strings.ToLower(typed)) || strings.HasPrefix(strings.ToLower(typed), n) {
			return n
		}
	}
	return ""
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}
