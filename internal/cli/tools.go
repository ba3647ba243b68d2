package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newToolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "list tools and their tabs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := loadTools(cmd)
			if err != nil {
				return err
			}

			if jsonOutput(cmd) {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(reg.All())
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, cfg := range reg.All() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", cfg.ID, cfg.Name, cfg.Category)
				for _, tab := range cfg.Tabs {
					fmt.Fprintf(w, "  %s\t%s\t%s\n", tab.ID, tab.Title, tab.Scenario)
				}
			}
			return w.Flush()
		},
	}
}
