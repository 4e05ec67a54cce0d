package geo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewen-lbh/loca7/internal/entities"
)

func TestDistance(t *testing.T) {
	// ENSEEIHT to the Capitole, a bit under 900m as the crow flies.
	d := Distance(
		Point{Latitude: 43.60426, Longitude: 1.455074},
		Point{Latitude: 43.604652, Longitude: 1.444209},
	)
	assert.InDelta(t, 875, d, 30)

	assert.Zero(t, Distance(SchoolLocation, SchoolLocation))
}

func TestValidateCoordinates(t *testing.T) {
	lat, lon := 43.6, 1.45

	gotLat, gotLon := ValidateCoordinates(&lat, &lon)
	require.NotNil(t, gotLat)
	require.NotNil(t, gotLon)
	assert.Equal(t, lat, *gotLat)

	t.Run("aberrant latitude discarded", func(t *testing.T) {
		badLat := 48.85
		gotLat, gotLon := ValidateCoordinates(&badLat, &lon)
		assert.Nil(t, gotLat)
		assert.Nil(t, gotLon)
	})

	t.Run("incomplete pair discarded", func(t *testing.T) {
		gotLat, gotLon := ValidateCoordinates(&lat, nil)
		assert.Nil(t, gotLat)
		assert.Nil(t, gotLon)
	})
}

func TestLoadStops(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stops.json")
	content := `[
		{"stop_id": "s1", "stop_name": "François Verdier", "stop_lat": 43.6, "stop_lon": 1.45,
		 "route_type": "metro", "route_short_name": "B", "route_color": "ffcd00"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	stops, err := LoadStops(path)

	require.NoError(t, err)
	require.Len(t, stops, 1)
	assert.Equal(t, "François Verdier", stops[0].StopName)
	assert.Equal(t, "metro", stops[0].RouteType)
}

func TestLoadStops_MissingFile(t *testing.T) {
	_, err := LoadStops("/nonexistent/stops.json")
	require.Error(t, err)
}

func TestNearbyStations(t *testing.T) {
	// Near the campus; ~0.0045 degrees of latitude is ~500m.
	home := Point{Latitude: 43.60426, Longitude: 1.455074}

	stops := []Stop{
		{StopName: "far away", StopLat: 43.7, StopLon: 1.455074, RouteType: "metro", RouteShortName: "B", RouteColor: "ffcd00"},
		{StopName: "close metro", StopLat: 43.6045, StopLon: 1.4551, RouteType: "metro", RouteShortName: "B", RouteColor: "ffcd00"},
		{StopName: "closer metro same line", StopLat: 43.60427, StopLon: 1.455075, RouteType: "metro", RouteShortName: "B", RouteColor: "ffcd00"},
		{StopName: "lineo stop", StopLat: 43.6044, StopLon: 1.4552, RouteType: "bus", RouteShortName: "L1", RouteColor: "e2007a"},
		{StopName: "regular bus", StopLat: 43.6046, StopLon: 1.4553, RouteType: "bus", RouteShortName: "44", RouteColor: "878e91"},
		{StopName: "ignored type", StopLat: 43.60426, StopLon: 1.455074, RouteType: "rail", RouteShortName: "C", RouteColor: "000000"},
	}

	stations := NearbyStations(home, stops)

	require.Len(t, stations, 3)

	// Closest first, one station per line.
	assert.Equal(t, "closer metro same line", stations[0].Name)
	assert.Equal(t, entities.TransportMetro, stations[0].Type)
	assert.Equal(t, "#ffcd00", stations[0].Color)

	assert.Equal(t, "lineo stop", stations[1].Name)
	assert.Equal(t, entities.TransportBHNF, stations[1].Type)

	assert.Equal(t, "regular bus", stations[2].Name)
	assert.Equal(t, entities.TransportBus, stations[2].Type)
}

func TestNearbyStations_NoneInRange(t *testing.T) {
	stations := NearbyStations(SchoolLocation, []Stop{
		{StopName: "other side of town", StopLat: 43.55, StopLon: 1.40, RouteType: "tram", RouteShortName: "T1"},
	})
	assert.Empty(t, stations)
}
