package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/neexbeast/climascope/internal/domain"
)

func citiesCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cities",
		Short: "Manage saved cities",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved cities",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return printState(cmd.OutOrStdout(), c.app.Cities.Load(cmd.Context()))
			},
		},
		&cobra.Command{
			Use:   "add <name>",
			Short: "Save a city",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				city, st := c.app.Cities.Create(cmd.Context(), strings.Join(args, " "))
				if st.Failed() {
					return printState(cmd.OutOrStdout(), st)
				}
				if !city.Persisted() {
					return errors.New("city name must not be blank")
				}
				return printJSON(cmd.OutOrStdout(), city)
			},
		},
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Delete a saved city",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil || id <= 0 {
					return fmt.Errorf("invalid city id %q", args[0])
				}
				return printState(cmd.OutOrStdout(), c.app.Cities.Delete(cmd.Context(), domain.City{ID: id}))
			},
		},
	)

	return cmd
}

func weatherCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "weather <city>",
		Short: "Show current weather for a city",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printState(cmd.OutOrStdout(), c.app.Weather.LoadForCity(cmd.Context(), strings.Join(args, " ")))
		},
	}
}

func hereCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "here",
		Short: "Show current weather at the device location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printState(cmd.OutOrStdout(), c.app.LocationWeather.Load(cmd.Context()))
		},
	}
}

func searchCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search cities by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := c.app.Search.Search(cmd.Context(), strings.Join(args, " "))
			if st.Failed() || st.Data == nil {
				return printState(cmd.OutOrStdout(), st)
			}
			for _, r := range *st.Data {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.4f\t%.4f\n", r.DisplayName(), r.Latitude, r.Longitude)
			}
			return nil
		},
	}
}

func reverseCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "reverse <lat> <lon>",
		Short: "Resolve coordinates to a place name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, errLat := strconv.ParseFloat(args[0], 64)
			lon, errLon := strconv.ParseFloat(args[1], 64)
			if err := errors.Join(errLat, errLon); err != nil {
				return fmt.Errorf("parsing coordinates: %w", err)
			}
			name, err := c.app.CityName.Execute(cmd.Context(), lat, lon)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
}

func overviewCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show current weather for every saved city",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), c.app.Overview.Execute(cmd.Context()))
		},
	}
}

func watchCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream location updates until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			updates, err := c.app.Location.Updates(ctx)
			if err != nil {
				return err
			}
			for loc := range updates {
				if err := printJSON(cmd.OutOrStdout(), loc); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
