package commands

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/featreg/internal/app"
	"go.trai.ch/featreg/internal/core/domain"
)

func (c *CLI) newPreloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preload",
		Short: "Load the configured critical modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd, func(s *app.Session) error {
				report := s.Preload(cmd.Context())
				out := cmd.OutOrStdout()
				for _, name := range report.Loaded {
					_, _ = fmt.Fprintf(out, "loaded  %s\n", name)
				}
				failed := make([]string, 0, len(report.Failed))
				for name := range report.Failed {
					failed = append(failed, name)
				}
				slices.Sort(failed)
				for _, name := range failed {
					_, _ = fmt.Fprintf(out, "failed  %s: %v\n", name, report.Failed[name])
				}
				return report.Err()
			})
		},
	}
}

func (c *CLI) newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reload modules as their files change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd, func(s *app.Session) error {
				var mu sync.Mutex
				out := cmd.OutOrStdout()
				err := s.Watch(cmd.Context(), func(key domain.ModuleKey, err error) {
					mu.Lock()
					defer mu.Unlock()
					if err != nil {
						_, _ = fmt.Fprintf(out, "reload %s failed: %v\n", key, err)
						return
					}
					_, _ = fmt.Fprintf(out, "reloaded %s\n", key)
				})
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
}

func (c *CLI) newMetricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show cache layer metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd, func(s *app.Session) error {
				m := s.Metrics()
				last := "never"
				if !m.LastCleanup.IsZero() {
					last = m.LastCleanup.Format(time.RFC3339)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(),
					"registered: %d\ncomponents: %d\nrenders: %d\nthrottles: %d\nin-flight: %d\n"+
						"hits: %d\nmisses: %d\nhit ratio: %.2f\nlast cleanup: %s\ncritical: %v\n",
					m.Registered, m.Components, m.Renders, m.Throttles, m.InFlight,
					m.Hits, m.Misses, m.HitRatio, last, m.CriticalModules)
				return nil
			})
		},
	}
}
