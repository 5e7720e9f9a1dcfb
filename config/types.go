package config

// ServerConfig contains server configuration
type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0"`
}

// GTFSConfig locates the static schedule feed
type GTFSConfig struct {
	// Path is a feed zip or an extracted feed directory.
	Path string `yaml:"path" validate:"required"`
	// SnapshotDB, when set, caches the parsed feed in a SQLite file so
	// repeated runs skip CSV parsing.
	SnapshotDB string `yaml:"snapshotDB"`
	AgencyID   string `yaml:"agency_id" validate:"omitempty"`
}

// SkipStopConfig names a skip-stop route pair and the exception stops that
// structurally distinguish the full-time route's express runs.
type SkipStopConfig struct {
	FullTimeRoute  string   `yaml:"fullTimeRoute"`
	PartTimeRoute  string   `yaml:"partTimeRoute"`
	ExceptionStops []string `yaml:"exceptionStops"`
}

// AnalysisConfig contains tuning for the analytics engine
type AnalysisConfig struct {
	// ExpressStopMinShare is the share of trips that must call at a stop
	// for it to survive the express-serving filter.
	ExpressStopMinShare float64 `yaml:"expressStopMinShare" validate:"gte=0,lte=1"`
	// RegionsFile overrides the built-in region boundary data.
	RegionsFile string `yaml:"regionsFile"`
	// DirectionLabelsFile overrides derived direction labels (CSV:
	// route_id, direction_id, label).
	DirectionLabelsFile string         `yaml:"directionLabelsFile"`
	SkipStop            SkipStopConfig `yaml:"skipStop"`
}

// ExportConfig contains output destinations for derived artifacts
type ExportConfig struct {
	// WindowCachePath is where the express-window JSON cache is written.
	WindowCachePath string `yaml:"windowCachePath"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	GTFS     GTFSConfig     `yaml:"gtfs" validate:"required"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Export   ExportConfig   `yaml:"export"`
}
