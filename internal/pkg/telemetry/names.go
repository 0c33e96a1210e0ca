package telemetry

// Instrumentation scope and span names.
const (
	TracerName = "github.com/samirrijal/akureroute"

	SpanResolvePlaces = "places.resolve"
	SpanLookupPlace   = "places.lookup"
	SpanRemoteSearch  = "places.remote_search"
	SpanLocate        = "places.locate"
	SpanFetchRoutes   = "routes.fetch"
)
