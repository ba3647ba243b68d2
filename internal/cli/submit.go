package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"engcalc/internal/apiclient"
	"engcalc/internal/calculator"
	"engcalc/internal/config"
	"engcalc/internal/fan"
	"engcalc/internal/render"
	"engcalc/internal/tool"

	"github.com/spf13/cobra"
)

func newSubmitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit <tool> <tab> [field=value ...]",
		Short: "validate a tab's inputs and run its calculation",
		Long: "Validate the given field values the way the tool page does, send the\n" +
			"calculation to the backend and print the result card.",
		Args: requireArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadTools(cmd)
			if err != nil {
				return err
			}
			cfg, ok := reg.Lookup(args[0])
			if !ok {
				return &usageError{err: fmt.Errorf("unknown tool %q", args[0])}
			}
			tab, ok := cfg.Tab(args[1])
			if !ok {
				return &usageError{err: fmt.Errorf("tool %s has no tab %q", cfg.ID, args[1])}
			}
			raw, err := parseAssignments(args[2:])
			if err != nil {
				return err
			}

			backend, closeBackend, err := submitBackend(cmd)
			if err != nil {
				return err
			}
			defer closeBackend()

			var extra calculator.Params
			if tab.Diagram == tool.DiagramCurves {
				points, err := submitPoints(cmd)
				if err != nil {
					return err
				}
				if err := points.Valid(); err != nil {
					return err
				}
				extra = calculator.Params{"performance_points": points.Params()}
			}

			d := tool.NewDriver(cfg, backend, tool.WithLocal(tool.LocalBackend{Registry: calculator.NewRegistry()}))
			if err := d.Activate(tab.ID); err != nil {
				return err
			}
			sub, err := d.SubmitParams(cmd.Context(), tab.ID, raw, extra)
			if err != nil {
				return err
			}

			if jsonOutput(cmd) {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(sub.Response)
			}
			return printCard(cmd.OutOrStdout(), sub.Card)
		},
	}
	cmd.Flags().String("backend", "", "calculation backend URL (default $CALC_BACKEND_URL or the local server)")
	cmd.Flags().Bool("local", false, "compute in-process instead of calling a backend")
	cmd.Flags().StringArray("point", nil, "performance point as phi,psi_p,eta (repeatable)")
	cmd.Flags().String("fan-type", "", "use the stored preset points of this fan type")
	return cmd
}

func parseAssignments(args []string) (map[string]string, error) {
	raw := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, &usageError{err: fmt.Errorf("expected field=value, got %q", arg)}
		}
		raw[key] = value
	}
	return raw, nil
}

func submitBackend(cmd *cobra.Command) (tool.Backend, func(), error) {
	if local, _ := cmd.Flags().GetBool("local"); local {
		return tool.LocalBackend{Registry: calculator.NewRegistry()}, func() {}, nil
	}

	url, _ := cmd.Flags().GetString("backend")
	if url == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, nil, err
		}
		url = cfg.CalculationURL()
	}
	client := apiclient.New(url)
	return tool.Remote(client), client.Close, nil
}

func submitPoints(cmd *cobra.Command) (*fan.Points, error) {
	if fanType, _ := cmd.Flags().GetString("fan-type"); fanType != "" {
		path, err := fanDBPath(cmd)
		if err != nil {
			return nil, err
		}
		store, err := fan.Open(path)
		if err != nil {
			return nil, err
		}
		defer store.Close()

		stored, err := store.Points(cmd.Context(), fanType)
		if err != nil {
			return nil, err
		}
		return fan.NewPoints(stored...), nil
	}

	specs, _ := cmd.Flags().GetStringArray("point")
	if len(specs) == 0 {
		return fan.NewPoints(fan.DefaultPoints()...), nil
	}
	points := fan.NewPoints()
	for _, spec := range specs {
		parts := strings.Split(spec, ",")
		if len(parts) != 3 {
			return nil, &usageError{err: fmt.Errorf("expected phi,psi_p,eta, got %q", spec)}
		}
		p, err := fan.ParsePoint(parts[0], parts[1], parts[2])
		if err != nil {
			return nil, err
		}
		points.Add(p)
	}
	return points, nil
}

// printCard writes a result card as plain text.
func printCard(w io.Writer, card render.Card) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if card.ScenarioName != "" {
		fmt.Fprintf(tw, "%s\n", card.ScenarioName)
	}
	for _, v := range card.Values {
		fmt.Fprintf(tw, "%s:\t%s", v.Label, v.Text)
		if v.Unit != "" {
			fmt.Fprintf(tw, " %s", v.Unit)
		}
		fmt.Fprintln(tw)
	}
	if card.Table != nil {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, strings.Join(card.Table.Headers, "\t"))
		for _, row := range card.Table.Rows {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if card.Formula != nil {
		fmt.Fprintf(w, "\n%s\n", card.Formula.Plain())
	}
	for _, b := range card.Banners {
		fmt.Fprintf(w, "[%s] %s\n", b.Level, b.Text)
	}
	return nil
}

