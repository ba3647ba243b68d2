// Package cli implements calcctl, the terminal front end of the calculation
// tools.
package cli

import (
	"errors"
	"fmt"
	"io"

	"engcalc/internal/config"
	"engcalc/internal/tool"

	"github.com/spf13/cobra"
)

const (
	ExitSuccess      = 0
	ExitRuntimeError = 1
	ExitInvalidUsage = 2
)

// Execute runs the CLI with the provided args.
func Execute(args []string, out, errOut io.Writer) int {
	cmd := NewRootCommand(out, errOut)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			return ExitInvalidUsage
		}
		return ExitRuntimeError
	}
	return ExitSuccess
}

// NewRootCommand builds the root CLI command tree.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "calcctl",
		Short:         "engineering calculation tools",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return config.LoadDotEnv()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().Bool("json", false, "print raw JSON responses")
	root.PersistentFlags().String("tools-dir", "", "load tool definitions from this directory")
	root.PersistentFlags().String("fan-db", "", "fan preset database (default $FAN_DB_PATH)")

	root.AddCommand(newToolsCommand())
	root.AddCommand(newSubmitCommand())
	root.AddCommand(newFansCommand())

	return root
}

type usageError struct {
	err error
}

func (u *usageError) Error() string {
	if u.err == nil {
		return "invalid usage"
	}
	return u.err.Error()
}

func requireArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return &usageError{err: fmt.Errorf("requires %d argument(s)", n)}
		}
		return nil
	}
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return &usageError{err: fmt.Errorf("requires exactly %d argument(s)", n)}
		}
		return nil
	}
}

func loadTools(cmd *cobra.Command) (*tool.Registry, error) {
	dir, _ := cmd.Flags().GetString("tools-dir")
	if dir == "" {
		return tool.LoadEmbedded()
	}
	return tool.LoadDir(dir)
}

func fanDBPath(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("fan-db")
	if path != "" {
		return path, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	return cfg.FanDBPath, nil
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}
