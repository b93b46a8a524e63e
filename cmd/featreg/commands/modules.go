package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.trai.ch/featreg/internal/app"
	"go.trai.ch/featreg/internal/core/domain"
)

func (c *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered modules and their versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd, func(s *app.Session) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				_, _ = fmt.Fprintln(w, "NAME\tLATEST\tVERSIONS")
				for _, m := range s.List() {
					_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", m.Name, m.LatestVersion, strings.Join(m.Versions, ","))
				}
				return w.Flush()
			})
		},
	}
}

func (c *CLI) newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <name> [version]",
		Short: "Load a module and report where it came from",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, version := nameAndVersion(args)
			return c.withSession(cmd, func(s *app.Session) error {
				mod, src, err := s.Load(cmd.Context(), name, version)
				if err != nil {
					return err
				}
				info := mod.Info()
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n",
					domain.NewModuleKey(info.Name, info.Version), src)
				if info.Description != "" {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), info.Description)
				}
				return nil
			})
		},
	}
}

func (c *CLI) newRouteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route <path>",
		Short: "Show which module serves a route",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, func(s *app.Session) error {
				mod, err := s.Route(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				info := mod.Info()
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n",
					args[0], domain.NewModuleKey(info.Name, info.Version))
				return nil
			})
		},
	}
}

func (c *CLI) newRenderCmd() *cobra.Command {
	var (
		props []string
		route string
	)
	cmd := &cobra.Command{
		Use:   "render [name] [version]",
		Short: "Render a module, or the module serving --route",
		Args:  cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && route == "" {
				_ = cmd.Help()
				return nil
			}
			p, err := parseAssignments(props)
			if err != nil {
				return err
			}

			return c.withSession(cmd, func(s *app.Session) error {
				out := cmd.OutOrStdout()
				if len(args) == 0 {
					err = s.RenderRoute(cmd.Context(), route, out, p)
				} else {
					name, version := nameAndVersion(args)
					err = s.Render(cmd.Context(), name, version, out, p)
				}
				_, _ = fmt.Fprintln(out)
				return err
			})
		},
	}
	cmd.Flags().StringArrayVarP(&props, "prop", "p", nil, "Render prop as key=value (repeatable)")
	cmd.Flags().StringVarP(&route, "route", "r", "", "Render the module serving this route")
	return cmd
}

func (c *CLI) newDispatchCmd() *cobra.Command {
	var data []string
	cmd := &cobra.Command{
		Use:   "dispatch <name> [version]",
		Short: "Send a request through a module",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := parseAssignments(data)
			if err != nil {
				return err
			}
			name, version := nameAndVersion(args)

			return c.withSession(cmd, func(s *app.Session) error {
				resp, err := s.Dispatch(cmd.Context(), name, version, req)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			})
		},
	}
	cmd.Flags().StringArrayVarP(&data, "data", "d", nil, "Request field as key=value (repeatable)")
	return cmd
}
