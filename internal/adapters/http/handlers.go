package http

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/akureroute/internal/core/domain"
	"github.com/samirrijal/akureroute/internal/core/mapview"
)

const maxQueryLength = 200

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bind parses the JSON body into out and validates it. The returned
// message is empty on success.
func bind(c *fiber.Ctx, out any) string {
	if err := c.BodyParser(out); err != nil {
		return "invalid request body"
	}
	if err := validate.Struct(out); err != nil {
		return validationMessage(err)
	}
	return ""
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "latitude", "longitude":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid %s", field, fe.Tag()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// coordinateBody is a client supplied position, e.g. from browser geolocation.
type coordinateBody struct {
	Lat  *float64 `json:"lat" validate:"required,latitude"`
	Lng  *float64 `json:"lng" validate:"required,longitude"`
	Name string   `json:"name,omitempty" validate:"max=120"`
}

func (b *coordinateBody) coordinate() domain.Coordinate {
	return domain.Coordinate{Lat: *b.Lat, Lng: *b.Lng}
}

func (b *coordinateBody) place(fallbackName string) *domain.Place {
	name := b.Name
	if name == "" {
		name = fallbackName
	}
	return &domain.Place{Name: name, Coordinate: b.coordinate()}
}

type lookupRequest struct {
	Query string `json:"query" validate:"required,max=200"`
}

type routeRequest struct {
	Origin       *coordinateBody `json:"origin" validate:"required"`
	Destination  *coordinateBody `json:"destination" validate:"required"`
	Alternatives bool            `json:"alternatives"`
}

// PlacesResponse is the merged suggestion list for a query.
type PlacesResponse struct {
	Query  string         `json:"query"`
	Places []domain.Place `json:"places"`
}

// RoutesResponse is a computed route set with display summaries and a viewport.
type RoutesResponse struct {
	domain.RouteSet
	Summaries []mapview.Summary `json:"summaries"`
	View      mapview.View      `json:"view"`
}

// RouteMapResponse is the geojson rendition of a route set.
type RouteMapResponse struct {
	ID        string                     `json:"id"`
	Summaries []mapview.Summary          `json:"summaries"`
	View      mapview.View               `json:"view"`
	Map       *geojson.FeatureCollection `json:"map"`
}

// MapResponse is what a client needs to draw the initial map.
type MapResponse struct {
	Area domain.ServiceArea         `json:"area"`
	View mapview.View               `json:"view"`
	Map  *geojson.FeatureCollection `json:"map"`
}

// ServiceAreaResponse describes the bounding box the service answers for.
type ServiceAreaResponse struct {
	domain.ServiceArea
	Corners [4]domain.Coordinate `json:"corners"` // NW, NE, SE, SW
}

// ServiceAreaHandler returns the configured service area.
func ServiceAreaHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(ServiceAreaResponse{ServiceArea: deps.Area, Corners: deps.Area.Corners()})
	}
}

// SearchPlacesHandler returns local and remote suggestions for ?q=.
func SearchPlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := strings.TrimSpace(c.Query("q"))
		if len(q) > maxQueryLength {
			return errBadRequest(c, fmt.Sprintf("q must be at most %d characters", maxQueryLength))
		}

		places := deps.Places.Resolve(c.UserContext(), q)
		return c.JSON(PlacesResponse{Query: q, Places: places})
	}
}

// PopularPlacesHandler pages through the bundled landmarks.
// Without paging parameters it returns the default popular panel.
func PopularPlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 0)
		if offset < 0 || limit < 0 {
			return errBadRequest(c, "offset and limit must not be negative")
		}
		if limit == 0 {
			limit = len(deps.Places.Popular(0))
		}
		if limit > 100 {
			limit = 100
		}

		places, total := deps.Places.Catalog(offset, limit)
		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(Page[domain.Place]{Data: places, Pagination: pg})
	}
}

// LookupPlaceHandler resolves a submitted query to a single place.
func LookupPlaceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req lookupRequest
		if msg := bind(c, &req); msg != "" {
			return errBadRequest(c, msg)
		}

		p, err := deps.Places.Lookup(c.UserContext(), req.Query)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(p)
	}
}

// LocateHandler turns a device position into a start place.
func LocateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req coordinateBody
		if msg := bind(c, &req); msg != "" {
			return errBadRequest(c, msg)
		}

		res, err := deps.Places.Locate(c.UserContext(), req.coordinate())
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(res)
	}
}

// RoutesHandler computes routes between two points inside the service area.
// ?format=geojson returns a FeatureCollection ready for the map.
func RoutesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req routeRequest
		if msg := bind(c, &req); msg != "" {
			return errBadRequest(c, msg)
		}

		origin, destination := req.Origin.coordinate(), req.Destination.coordinate()
		set, err := deps.Routes.FetchRoutes(c.UserContext(), origin, destination, req.Alternatives)
		if err != nil {
			return errFromDomain(c, err)
		}

		summaries := mapview.Summarize(set.Routes)
		view := mapview.Frame(deps.Area, &origin, &destination, set.Routes)

		switch c.Query("format", "json") {
		case "json":
			return c.JSON(RoutesResponse{RouteSet: set, Summaries: summaries, View: view})
		case "geojson":
			fc := mapview.FeatureCollection(deps.Area,
				req.Origin.place("Start"), req.Destination.place("Destination"), set.Routes)
			return c.JSON(RouteMapResponse{ID: set.ID, Summaries: summaries, View: view, Map: fc})
		default:
			return errBadRequest(c, "format must be json or geojson")
		}
	}
}

// MapHandler returns the service area boundary and a viewport framing the
// optional start_lat/start_lng and end_lat/end_lng points.
func MapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start, err := queryCoordinate(c, "start")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		end, err := queryCoordinate(c, "end")
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		var startPlace, endPlace *domain.Place
		if start != nil {
			startPlace = &domain.Place{Name: "Start", Coordinate: *start}
		}
		if end != nil {
			endPlace = &domain.Place{Name: "Destination", Coordinate: *end}
		}

		return c.JSON(MapResponse{
			Area: deps.Area,
			View: mapview.Frame(deps.Area, start, end, nil),
			Map:  mapview.FeatureCollection(deps.Area, startPlace, endPlace, nil),
		})
	}
}

// queryCoordinate reads <prefix>_lat and <prefix>_lng. Both absent yields nil.
func queryCoordinate(c *fiber.Ctx, prefix string) (*domain.Coordinate, error) {
	latStr, lngStr := c.Query(prefix+"_lat"), c.Query(prefix+"_lng")
	if latStr == "" && lngStr == "" {
		return nil, nil
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, fmt.Errorf("%s_lat must be a number", prefix)
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil, fmt.Errorf("%s_lng must be a number", prefix)
	}
	coord := domain.Coordinate{Lat: lat, Lng: lng}
	if !coord.Valid() {
		return nil, fmt.Errorf("%s is not a valid coordinate", prefix)
	}
	return &coord, nil
}
