package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"

	"engcalc/internal/fan"

	"github.com/spf13/cobra"
)

func newFansCommand() *cobra.Command {
	fans := &cobra.Command{
		Use:   "fans",
		Short: "manage fan performance presets",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list fan types with stored points",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(store *fan.Store) error {
				types, err := store.FanTypes(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput(cmd) {
					return json.NewEncoder(cmd.OutOrStdout()).Encode(fan.FanTypesResponse{FanTypes: types})
				}
				for _, t := range types {
					fmt.Fprintln(cmd.OutOrStdout(), t)
				}
				return nil
			})
		},
	}

	pointsCmd := &cobra.Command{
		Use:   "points <fan-type>",
		Short: "show the stored points of a fan type",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(store *fan.Store) error {
				points, err := store.Points(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if jsonOutput(cmd) {
					return json.NewEncoder(cmd.OutOrStdout()).Encode(fan.PointsResponse{FanType: args[0], Points: points})
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "#\tφ\tψp\tη")
				for i, p := range points {
					fmt.Fprintf(w, "%d\t%g\t%g\t%g\n", i, p.Phi, p.PsiP, p.Eta)
				}
				return w.Flush()
			})
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <fan-type> <index> <phi> <psi_p> <eta>",
		Short: "store or replace one point of a fan type",
		Args:  exactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil || index < 0 {
				return &usageError{err: fmt.Errorf("index must be a non-negative integer, got %q", args[1])}
			}
			p, err := fan.ParsePoint(args[2], args[3], args[4])
			if err != nil {
				return err
			}
			return withStore(cmd, func(store *fan.Store) error {
				if err := store.Upsert(cmd.Context(), args[0], index, p); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "stored %s point %d\n", args[0], index)
				return nil
			})
		},
	}

	fans.AddCommand(listCmd, pointsCmd, setCmd)
	return fans
}

func withStore(cmd *cobra.Command, fn func(*fan.Store) error) error {
	path, err := fanDBPath(cmd)
	if err != nil {
		return err
	}
	store, err := fan.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}
