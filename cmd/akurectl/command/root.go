// Package command holds the akurectl sub-commands.
//
//	akurectl area
//	akurectl places [query] [--remote] [--popular N]
//	akurectl locate <lat,lng>
//	akurectl route <lat,lng> <lat,lng> [--alternatives] [--geojson]
//	akurectl polyline decode <encoded> [--precision 5]
//	akurectl polyline encode <lat,lng>... [--precision 5]
//
// Every command takes -c to name a config file; without it the usual
// search paths and AKUREROUTE_* environment variables apply.
package command

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/samirrijal/akureroute/internal/core/domain"
	"github.com/samirrijal/akureroute/internal/pkg/config"
	"github.com/samirrijal/akureroute/internal/pkg/logging"
)

// options are shared by every sub-command.
type options struct {
	cfgPath string
	asJSON  bool
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "akurectl",
		Short: "Query the Akure place resolver and route fetcher from a terminal",
		Long: `akurectl runs the same place resolver, geofence and route
fetcher as the API server without starting it. Place and location
commands work offline against the bundled gazetteer; remote search and
routing need ors.api_key.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), "warn", "text"))
		},
	}
	root.PersistentFlags().StringVarP(&opts.cfgPath, "config", "c", os.Getenv("AKUREROUTE_CONFIG"), "config file path")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print JSON instead of text")

	root.AddCommand(
		newAreaCmd(opts),
		newPlacesCmd(opts),
		newLocateCmd(opts),
		newRouteCmd(opts),
		newPolylineCmd(),
	)
	return root
}

// Execute runs the command tree against os.Args.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *options) load() (*config.Config, error) {
	cfg, err := config.LoadFile("akurectl", o.cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseCoordinate accepts "lat,lng".
func parseCoordinate(s string) (domain.Coordinate, error) {
	latStr, lngStr, ok := strings.Cut(s, ",")
	if !ok {
		return domain.Coordinate{}, fmt.Errorf("%w: %q is not lat,lng", domain.ErrValidation, s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("%w: bad latitude %q", domain.ErrValidation, latStr)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("%w: bad longitude %q", domain.ErrValidation, lngStr)
	}
	c := domain.Coordinate{Lat: lat, Lng: lng}
	if !c.Valid() {
		return domain.Coordinate{}, fmt.Errorf("%w: %q is out of range", domain.ErrValidation, s)
	}
	return c, nil
}

func formatPlace(p domain.Place) string {
	label := p.Name
	if p.Region != "" {
		label += ", " + p.Region
	}
	return fmt.Sprintf("%-40s %9.5f %9.5f  %s", label, p.Coordinate.Lat, p.Coordinate.Lng, p.Source)
}
