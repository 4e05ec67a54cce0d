// Package geo finds public-transit stops near a listing, using a
// static GTFS-flavoured stop dataset and great-circle distances.
package geo

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"regexp"
	"sort"

	"github.com/ewen-lbh/loca7/internal/entities"
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SchoolLocation is the reference point every listing is measured
// against (the ENSEEIHT campus).
var SchoolLocation = Point{Latitude: 43.60426, Longitude: 1.455074}

const (
	earthRadiusMeters = 6371e3

	// stationRadiusMeters bounds which stops count as "nearby".
	stationRadiusMeters = 500

	// referenceLatitude anchors the coordinate sanity check: legacy
	// geocoding occasionally produced points nowhere near the city.
	referenceLatitude = 43.0
)

// Distance returns the great-circle distance in meters between two
// points, treating the Earth as a sphere (standard haversine).
func Distance(a, b Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// ValidateCoordinates rejects coordinate pairs whose latitude strays
// more than a degree from the reference latitude. Returns nil, nil when
// the pair is aberrant or incomplete: the listing simply loses its
// position.
func ValidateCoordinates(latitude, longitude *float64) (*float64, *float64) {
	if latitude == nil || longitude == nil {
		return nil, nil
	}
	if math.Abs(*latitude-referenceLatitude) > 1 {
		return nil, nil
	}
	return latitude, longitude
}

// Stop is one row of the transit stop dataset.
type Stop struct {
	StopID         string  `json:"stop_id"`
	StopName       string  `json:"stop_name"`
	StopLat        float64 `json:"stop_lat"`
	StopLon        float64 `json:"stop_lon"`
	RouteType      string  `json:"route_type"`
	RouteShortName string  `json:"route_short_name"`
	RouteLongName  string  `json:"route_long_name"`
	RouteColor     string  `json:"route_color"`
}

// LoadStops reads the static transit stop dataset.
func LoadStops(path string) ([]Stop, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stops dataset %s: %w", path, err)
	}
	var stops []Stop
	if err := json.Unmarshal(raw, &stops); err != nil {
		return nil, fmt.Errorf("failed to parse stops dataset %s: %w", path, err)
	}
	return stops, nil
}

// recognizedRouteTypes are the GTFS route types we surface to users.
var recognizedRouteTypes = map[string]entities.PublicTransportType{
	"bus":        entities.TransportBus,
	"metro":      entities.TransportMetro,
	"tram":       entities.TransportTram,
	"cable_car":  entities.TransportTelepherique,
	"gondola":    entities.TransportTelepherique,
	"trolleybus": entities.TransportBus,
	"tad":        entities.TransportTAD,
}

// lineoRe matches Lineo high-frequency bus line names (L1, L12, ...).
var lineoRe = regexp.MustCompile(`L\d{1,3}`)

// NearbyStations returns the stops within 500m of location, closest
// first, one entry per distinct (line, route type) pair. Bus lines
// matching the Lineo naming are re-typed as high-frequency "bhnf".
func NearbyStations(location Point, stops []Stop) []entities.PublicTransportStation {
	type candidate struct {
		stop     Stop
		distance float64
	}

	var candidates []candidate
	for _, stop := range stops {
		if _, ok := recognizedRouteTypes[stop.RouteType]; !ok {
			continue
		}
		d := Distance(location, Point{Latitude: stop.StopLat, Longitude: stop.StopLon})
		if d >= stationRadiusMeters {
			continue
		}
		candidates = append(candidates, candidate{stop: stop, distance: d})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	// Keep the closest stop per line. Dedup keys on the raw route type;
	// the bhnf remap happens at projection time.
	type lineKey struct {
		shortName string
		routeType string
	}
	seen := make(map[lineKey]bool)

	var stations []entities.PublicTransportStation
	for _, c := range candidates {
		key := lineKey{shortName: c.stop.RouteShortName, routeType: c.stop.RouteType}
		if seen[key] {
			continue
		}
		seen[key] = true

		transportType := recognizedRouteTypes[c.stop.RouteType]
		if c.stop.RouteType == "bus" && lineoRe.MatchString(c.stop.RouteShortName) {
			transportType = entities.TransportBHNF
		}

		stations = append(stations, entities.PublicTransportStation{
			Name:      c.stop.StopName,
			Line:      c.stop.RouteShortName,
			Type:      transportType,
			Color:     "#" + c.stop.RouteColor,
			Latitude:  c.stop.StopLat,
			Longitude: c.stop.StopLon,
		})
	}

	return stations
}
