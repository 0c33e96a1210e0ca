package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/akureroute/internal/core/domain"
	"github.com/samirrijal/akureroute/internal/core/mapview"
	"github.com/samirrijal/akureroute/internal/pkg/polyline"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordinateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinate",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	coordinateInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CoordinateInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"lat": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"lng": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	placeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Place",
		Fields: graphql.Fields{
			"name":       &graphql.Field{Type: graphql.String},
			"region":     &graphql.Field{Type: graphql.String},
			"country":    &graphql.Field{Type: graphql.String},
			"source":     &graphql.Field{Type: graphql.String},
			"coordinate": &graphql.Field{Type: coordinateType},
		},
	})

	serviceAreaType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ServiceArea",
		Fields: graphql.Fields{
			"name":         &graphql.Field{Type: graphql.String},
			"region":       &graphql.Field{Type: graphql.String},
			"country":      &graphql.Field{Type: graphql.String},
			"country_code": &graphql.Field{Type: graphql.String},
			"north":        &graphql.Field{Type: graphql.Float},
			"south":        &graphql.Field{Type: graphql.Float},
			"east":         &graphql.Field{Type: graphql.Float},
			"west":         &graphql.Field{Type: graphql.Float},
			"center":       &graphql.Field{Type: coordinateType},
			"default_zoom": &graphql.Field{Type: graphql.Int},
		},
	})

	routeSummaryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RouteSummary",
		Fields: graphql.Fields{
			"rank":     &graphql.Field{Type: graphql.Int},
			"distance": &graphql.Field{Type: graphql.Float},
			"duration": &graphql.Field{Type: graphql.Float},
			"color": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return mapview.RouteColor(p.Source.(domain.RouteSummary).Rank), nil
				},
			},
			"distance_text": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return mapview.FormatDistance(p.Source.(domain.RouteSummary).Distance), nil
				},
			},
			"duration_text": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return mapview.FormatDuration(p.Source.(domain.RouteSummary).Duration), nil
				},
			},
			"coordinates": &graphql.Field{
				Type:        graphql.NewList(graphql.NewList(graphql.Float)),
				Description: "Path as [lng, lat] pairs",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					path := p.Source.(domain.RouteSummary).Path
					out := make([][]float64, len(path))
					for i, pt := range path {
						out[i] = []float64{pt.Lon(), pt.Lat()}
					}
					return out, nil
				},
			},
			"polyline": &graphql.Field{
				Type:        graphql.String,
				Description: "Path as an encoded polyline, precision 5",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return polyline.Encode(p.Source.(domain.RouteSummary).Path, polyline.DefaultPrecision)
				},
			},
		},
	})

	routeSetType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RouteSet",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"origin":       &graphql.Field{Type: coordinateType},
			"destination":  &graphql.Field{Type: coordinateType},
			"alternatives": &graphql.Field{Type: graphql.Boolean},
			"routes":       &graphql.Field{Type: graphql.NewList(routeSummaryType)},
			"computed_at": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.RouteSet).ComputedAt.Format(time.RFC3339), nil
				},
			},
		},
	})

	locationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LocationResult",
		Fields: graphql.Fields{
			"place":    &graphql.Field{Type: placeType},
			"fallback": &graphql.Field{Type: graphql.Boolean},
			"notice":   &graphql.Field{Type: graphql.String},
			"nearest":  &graphql.Field{Type: placeType},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"serviceArea": &graphql.Field{
				Type: serviceAreaType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Area, nil
				},
			},
			"places": &graphql.Field{
				Type: graphql.NewList(placeType),
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q, _ := p.Args["query"].(string)
					if len(q) > maxQueryLength {
						return nil, fmt.Errorf("query must be at most %d characters", maxQueryLength)
					}
					return deps.Places.Resolve(p.Context, q), nil
				},
			},
			"lookup": &graphql.Field{
				Type: placeType,
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q, _ := p.Args["query"].(string)
					return deps.Places.Lookup(p.Context, q)
				},
			},
			"popularPlaces": &graphql.Field{
				Type: graphql.NewList(placeType),
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					limit, _ := p.Args["limit"].(int)
					return deps.Places.Popular(limit), nil
				},
			},
			"locate": &graphql.Field{
				Type: locationType,
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat, _ := p.Args["lat"].(float64)
					lng, _ := p.Args["lng"].(float64)
					return deps.Places.Locate(p.Context, domain.Coordinate{Lat: lat, Lng: lng})
				},
			},
			"routes": &graphql.Field{
				Type: routeSetType,
				Args: graphql.FieldConfigArgument{
					"origin":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(coordinateInput)},
					"destination":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(coordinateInput)},
					"alternatives": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					alternatives, _ := p.Args["alternatives"].(bool)
					return deps.Routes.FetchRoutes(p.Context,
						coordinateArg(p.Args["origin"]), coordinateArg(p.Args["destination"]), alternatives)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
}

func coordinateArg(v interface{}) domain.Coordinate {
	m, _ := v.(map[string]interface{})
	lat, _ := m["lat"].(float64)
	lng, _ := m["lng"].(float64)
	return domain.Coordinate{Lat: lat, Lng: lng}
}

type gqlRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// GraphQLHandler executes queries against the place and route services.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Query == "" {
			return errBadRequest(c, "query is required")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
