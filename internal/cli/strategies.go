package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStrategiesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List colour extraction strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := [][]string{}
			for _, e := range a.cfg.Registry().Entries() {
				deterministic := "no"
				if e.Deterministic {
					deterministic = "yes"
				}
				rows = append(rows, []string{string(e.Name), deterministic, e.Description})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Strategy", "Deterministic", "Description"}, rows, nil))
			return nil
		},
	}
}
