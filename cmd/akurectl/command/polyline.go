package command

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"

	"github.com/samirrijal/akureroute/internal/pkg/polyline"
)

func newPolylineCmd() *cobra.Command {
	var precision int
	cmd := &cobra.Command{
		Use:   "polyline",
		Short: "Encode or decode polyline strings",
	}
	cmd.PersistentFlags().IntVar(&precision, "precision", polyline.DefaultPrecision, "decimal places of the encoding")

	var asGeoJSON bool
	decode := &cobra.Command{
		Use:   "decode <encoded>",
		Short: "Print the lat,lng pairs of an encoded polyline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := polyline.Decode(args[0], precision)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if asGeoJSON {
				return printJSON(w, geojson.NewGeometry(path))
			}
			for _, p := range path {
				fmt.Fprintf(w, "%g,%g\n", p.Lat(), p.Lon())
			}
			return nil
		},
	}
	decode.Flags().BoolVar(&asGeoJSON, "geojson", false, "print a GeoJSON LineString")

	encode := &cobra.Command{
		Use:   "encode <lat,lng>...",
		Short: "Encode lat,lng pairs as a polyline",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := make(orb.LineString, 0, len(args))
			for _, a := range args {
				c, err := parseCoordinate(a)
				if err != nil {
					return err
				}
				path = append(path, c.Point())
			}
			s, err := polyline.Encode(path, precision)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}

	cmd.AddCommand(decode, encode)
	return cmd
}
