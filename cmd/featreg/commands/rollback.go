package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/featreg/internal/app"
	"go.trai.ch/featreg/internal/core/domain"
)

func (c *CLI) newRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback <name> <version>",
		Short: "Record a rollback of a module to an earlier version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, func(s *app.Session) error {
				if err := s.Rollback(args[0], args[1]); err != nil {
					return err
				}
				history := s.History(args[0])
				last := history[len(history)-1]
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: rollback %s -> %s recorded\n", args[0], last.From, last.To)
				return nil
			})
		},
	}
}

func (c *CLI) newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <name>",
		Short: "Show the rollback history of a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, func(s *app.Session) error {
				history := s.History(args[0])
				if len(history) == 0 {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: no rollbacks recorded\n", args[0])
					return nil
				}
				for _, r := range history {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s -> %s\n",
						r.Timestamp.Format(time.RFC3339), r.From, r.To)
				}
				return nil
			})
		},
	}
}

func (c *CLI) newCheckCmd() *cobra.Command {
	var results []string
	cmd := &cobra.Command{
		Use:   "check <name> [version]",
		Short: "Evaluate test results against a module's rollback conditions",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseResults(results)
			if err != nil {
				return err
			}
			name, version := nameAndVersion(args)

			return c.withSession(cmd, func(s *app.Session) error {
				res, err := s.Check(name, version, domain.TestResults(parsed))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, cond := range res.Conditions {
					_, _ = fmt.Fprintf(out, "  %s\n", cond)
				}
				verdict := "healthy"
				if res.Rollback {
					verdict = "rollback recommended"
				}
				_, _ = fmt.Fprintf(out, "%s: %s\n", res.Key, verdict)
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&results, "result", nil, "Measured metric as name=value (repeatable)")
	return cmd
}
