package config

// Default paths used by the server and the import command.
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./loca7.db"

	// DefaultPhotosDir is where resized listing photos are written
	DefaultPhotosDir = "./public/photos/appartments"

	// DefaultLegacyDataDir contains the legacy JSON dumps and photo files
	DefaultLegacyDataDir = "./old-data"

	// DefaultStopsPath is the static public-transit stop dataset
	DefaultStopsPath = "./public/tisseo-stops.json"
)
