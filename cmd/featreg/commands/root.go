// Package commands implements the CLI commands for the featreg tool.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/featreg/internal/adapters/detector" //nolint:depguard // the CLI picks the log format
	"go.trai.ch/featreg/internal/app"
	"go.trai.ch/featreg/internal/build"
)

// CLI represents the command line interface for featreg.
type CLI struct {
	app       Application
	logs      LogFormatter
	rootCmd   *cobra.Command
	cwd       string
	logFormat string
}

// Application represents the application logic interface.
type Application interface {
	Start(ctx context.Context, cwd string) (*app.Session, app.BootstrapReport, error)
}

// LogFormatter switches the diagnostic log format.
type LogFormatter interface {
	SetJSON(enable bool)
}

// New creates a new CLI instance with the given app. logs may be nil.
func New(a Application, logs LogFormatter) *CLI {
	rootCmd := &cobra.Command{
		Use:           "featreg",
		Short:         "A versioned feature module registry",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		logs:    logs,
		rootCmd: rootCmd,
	}
	rootCmd.PersistentFlags().StringVarP(&c.cwd, "dir", "C", ".", "Directory to look up featreg.yaml from")
	rootCmd.PersistentFlags().StringVar(&c.logFormat, "log-format", "auto", "Log format: auto, pretty or json")
	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if c.logs == nil {
			return
		}
		mode := detector.ResolveMode(detector.DetectEnvironment(), c.logFormat)
		c.logs.SetJSON(mode == detector.ModeJSON)
	}

	rootCmd.AddCommand(
		c.newListCmd(),
		c.newLoadCmd(),
		c.newRouteCmd(),
		c.newRenderCmd(),
		c.newDispatchCmd(),
		c.newRollbackCmd(),
		c.newHistoryCmd(),
		c.newCheckCmd(),
		c.newPreloadCmd(),
		c.newWatchCmd(),
		c.newMetricsCmd(),
		c.newVersionCmd(),
	)

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// withSession starts a session for the command and closes it afterwards.
func (c *CLI) withSession(cmd *cobra.Command, fn func(*app.Session) error) error {
	s, _, err := c.app.Start(cmd.Context(), c.cwd)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

// nameAndVersion splits "name [version]" arguments.
func nameAndVersion(args []string) (string, string) {
	if len(args) > 1 {
		return args[0], args[1]
	}
	return args[0], ""
}
