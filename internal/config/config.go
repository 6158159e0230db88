package config

import "github.com/tkanos/gonfig"

// Config holds the runtime configuration of the WinDaq data service.
// CLI flags fill the scalar fields; the config file supplies the
// location details.
type Config struct {
	Host                 string     `json:"host,omitempty"`
	Port                 int        `json:"port,omitempty"`
	Debug                bool       `json:"debug,omitempty"`
	ConfigFile           string     `json:"config_file,omitempty"`
	UseCache             bool       `json:"use_cache,omitempty"`
	CacheLocation        string     `json:"cache_location,omitempty"`
	CachePollingInterval int        `json:"cache_polling_interval,omitempty"`
	CacheMaxBytes        int64      `json:"cache_max_bytes,omitempty"`
	LocationDetails      []Location `json:"location_details,omitempty"`
}

// Location names a place WDQ recordings are read from: a local
// directory or a MinIO bucket.
type Location struct {
	LocationName   string `json:"location_name"`
	LocationType   string `json:"location_type"`
	Path           string `json:"path,omitempty"`
	MinioBucket    string `json:"minio_bucket,omitempty"`
	Location       string `json:"location,omitempty"`
	MinioAccessKey string `json:"minio_access_key,omitempty"`
	MinioSecretKey string `json:"minio_secret_key,omitempty"`
}

// Load reads a JSON service configuration file.
func Load(path string) (Config, error) {
	var cfg Config
	err := gonfig.GetConf(path, &cfg)
	return cfg, err
}
