package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/neexbeast/climascope/internal/app"
	"github.com/neexbeast/climascope/internal/config"
	"github.com/neexbeast/climascope/internal/state"
)

// cli carries the global flags and the application built from them.
type cli struct {
	configFile string
	logLevel   string
	logFormat  string

	app *app.App
}

func newRootCommand(c *cli) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "climascope",
		Short:         "Current weather for saved cities and the device location",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setupFlags(rootCmd, c)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return c.initialize(cmd)
	}
	rootCmd.PersistentPostRunE = func(*cobra.Command, []string) error {
		return c.close()
	}

	rootCmd.AddCommand(
		serveCommand(c),
		citiesCommand(c),
		weatherCommand(c),
		hereCommand(c),
		searchCommand(c),
		reverseCommand(c),
		overviewCommand(c),
		watchCommand(c),
	)

	return rootCmd
}

func setupFlags(rootCmd *cobra.Command, c *cli) {
	rootCmd.PersistentFlags().StringVar(&c.configFile, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&c.logFormat, "log-format", "", "Log format: json or text")
}

// initialize loads configuration and builds the composition root before any subcommand runs.
func (c *cli) initialize(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configFile, map[string]string{
		"log.level":  c.logLevel,
		"log.format": c.logFormat,
	})
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := app.NewLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	c.app = a
	return nil
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printState prints the data of a settled state, or turns its failure into an error.
func printState[T any](w io.Writer, st state.State[T]) error {
	if st.Failed() {
		if st.Affordance != state.AffordanceNone {
			return fmt.Errorf("%s (%s)", st.Error, st.Affordance)
		}
		return fmt.Errorf("%s", st.Error)
	}
	if st.Data == nil {
		return nil
	}
	return printJSON(w, *st.Data)
}
