package command

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samirrijal/akureroute/internal/core/domain"
)

func newAreaCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "area",
		Short: "Print the service area",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			area := cfg.ServiceArea.Area()
			w := cmd.OutOrStdout()
			if opts.asJSON {
				return printJSON(w, area)
			}
			fmt.Fprintf(w, "%s, %s, %s\n", area.Name, area.Region, area.Country)
			fmt.Fprintf(w, "lat %.4f..%.4f  lng %.4f..%.4f\n", area.South, area.North, area.West, area.East)
			fmt.Fprintf(w, "center %.4f,%.4f  zoom %d\n", area.Center.Lat, area.Center.Lng, area.DefaultZoom)
			return nil
		},
	}
}

func newPlacesCmd(opts *options) *cobra.Command {
	var (
		remote  bool
		popular int
	)
	cmd := &cobra.Command{
		Use:   "places [query]",
		Short: "Search landmarks, optionally merged with remote geocoding",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.services()
			if err != nil {
				return err
			}
			query := ""
			if len(args) == 1 {
				query = args[0]
			}

			var places []domain.Place
			switch {
			case popular > 0:
				places = svc.places.Popular(popular)
			case remote:
				places = svc.places.Resolve(cmd.Context(), query)
			default:
				places = svc.places.Local(query)
			}

			w := cmd.OutOrStdout()
			if opts.asJSON {
				return printJSON(w, places)
			}
			if len(places) == 0 {
				fmt.Fprintf(w, "no places match %q\n", strings.TrimSpace(query))
				return nil
			}
			for _, p := range places {
				fmt.Fprintln(w, formatPlace(p))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&remote, "remote", "r", false, "also query the geocoder")
	cmd.Flags().IntVarP(&popular, "popular", "p", 0, "list the first N landmarks instead of searching")
	return cmd
}

func newLocateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "locate <lat,lng>",
		Short: "Resolve a device position to a start place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseCoordinate(args[0])
			if err != nil {
				return err
			}
			svc, err := opts.services()
			if err != nil {
				return err
			}
			res, err := svc.places.Locate(cmd.Context(), c)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if opts.asJSON {
				return printJSON(w, res)
			}
			fmt.Fprintln(w, formatPlace(res.Place))
			if res.Notice != "" {
				fmt.Fprintln(w, res.Notice)
			}
			if res.Nearest != nil {
				fmt.Fprintf(w, "nearest landmark: %s\n", res.Nearest.Name)
			}
			return nil
		},
	}
}
