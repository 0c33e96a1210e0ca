package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samirrijal/akureroute/internal/core/domain"
	"github.com/samirrijal/akureroute/internal/core/mapview"
)

func newRouteCmd(opts *options) *cobra.Command {
	var (
		alternatives bool
		asGeoJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "route <lat,lng> <lat,lng>",
		Short: "Fetch driving routes between two points in the service area",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			origin, err := parseCoordinate(args[0])
			if err != nil {
				return err
			}
			destination, err := parseCoordinate(args[1])
			if err != nil {
				return err
			}
			svc, err := opts.services()
			if err != nil {
				return err
			}
			if svc.cfg.ORS.APIKey == "" {
				return fmt.Errorf("%w: ors.api_key is not set", domain.ErrValidation)
			}

			set, err := svc.routes.FetchRoutes(cmd.Context(), origin, destination, alternatives)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asGeoJSON {
				start := domain.Place{Name: "Start", Coordinate: origin, Source: domain.SourceLocal}
				end := domain.Place{Name: "Destination", Coordinate: destination, Source: domain.SourceLocal}
				fc := mapview.FeatureCollection(svc.cfg.ServiceArea.Area(), &start, &end, set.Routes)
				return printJSON(w, fc)
			}
			if opts.asJSON {
				return printJSON(w, set)
			}
			for _, s := range mapview.Summarize(set.Routes) {
				fmt.Fprintf(w, "#%d  %-8s %-10s %s\n", s.Rank, s.Color, s.Distance, s.Duration)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&alternatives, "alternatives", "a", false, "ask for alternative routes")
	cmd.Flags().BoolVar(&asGeoJSON, "geojson", false, "print the map FeatureCollection")
	return cmd
}
