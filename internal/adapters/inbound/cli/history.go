package cli

import (
	"fmt"

	"github.com/silenceobjects/sentinel/internal/adapters/outbound/report"
	"github.com/silenceobjects/sentinel/internal/bootstrap"
	"github.com/spf13/cobra"
)

func newHistoryCmd(g *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded compliance scores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap.Build(g.params(cmd))
			if err != nil {
				return err
			}
			defer rt.Close()

			entries, err := rt.Service.History()
			if err != nil {
				return err
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}

			if g.json {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			fmt.Fprint(cmd.OutOrStdout(), report.RenderHistory(entries))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Show at most this many recent entries (0 = all)")
	return cmd
}
