package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/samirrijal/akureroute/internal/core/domain"
)

// Outside-area policies for the current-location button.
const (
	OutsidePolicyFallback = "fallback"
	OutsidePolicyReject   = "reject"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	ORS         ORSConfig         `mapstructure:"ors"`
	ServiceArea ServiceAreaConfig `mapstructure:"service_area"`
	Resolver    ResolverConfig    `mapstructure:"resolver"`
	Routing     RoutingConfig     `mapstructure:"routing"`
	Location    LocationConfig    `mapstructure:"location"`
	Database    DatabaseConfig    `mapstructure:"database"`
	NATS        NATSConfig        `mapstructure:"nats"`
	Valkey      ValkeyConfig      `mapstructure:"valkey"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port           int    `mapstructure:"port"`
	ReadTimeout    int    `mapstructure:"read_timeout"`
	WriteTimeout   int    `mapstructure:"write_timeout"`
	RequestTimeout int    `mapstructure:"request_timeout"`
	AllowOrigins   string `mapstructure:"allow_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ORSConfig points at an OpenRouteService deployment.
type ORSConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Profile string `mapstructure:"profile"`
	Timeout int    `mapstructure:"timeout"` // seconds
}

func (o ORSConfig) TimeoutDuration() time.Duration {
	return time.Duration(o.Timeout) * time.Second
}

type ServiceAreaConfig struct {
	Name        string  `mapstructure:"name"`
	Region      string  `mapstructure:"region"`
	Country     string  `mapstructure:"country"`
	CountryCode string  `mapstructure:"country_code"`
	North       float64 `mapstructure:"north"`
	South       float64 `mapstructure:"south"`
	East        float64 `mapstructure:"east"`
	West        float64 `mapstructure:"west"`
	CenterLat   float64 `mapstructure:"center_lat"`
	CenterLng   float64 `mapstructure:"center_lng"`
	DefaultZoom int     `mapstructure:"default_zoom"`
}

// Area builds the immutable service area value.
func (s ServiceAreaConfig) Area() domain.ServiceArea {
	return domain.ServiceArea{
		Name:        s.Name,
		Region:      s.Region,
		Country:     s.Country,
		CountryCode: s.CountryCode,
		North:       s.North,
		South:       s.South,
		East:        s.East,
		West:        s.West,
		Center:      domain.Coordinate{Lat: s.CenterLat, Lng: s.CenterLng},
		DefaultZoom: s.DefaultZoom,
	}
}

type ResolverConfig struct {
	LocalLimit     int `mapstructure:"local_limit"`
	MaxResults     int `mapstructure:"max_results"`
	MinRemoteChars int `mapstructure:"min_remote_chars"`
	RemoteSize     int `mapstructure:"remote_size"`
	PopularLimit   int `mapstructure:"popular_limit"`
	DebounceMS     int `mapstructure:"debounce_ms"`
	CacheTTL       int `mapstructure:"cache_ttl"` // seconds
}

func (r ResolverConfig) Debounce() time.Duration {
	return time.Duration(r.DebounceMS) * time.Millisecond
}

type RoutingConfig struct {
	Alternatives int     `mapstructure:"alternatives"`
	WeightFactor float64 `mapstructure:"weight_factor"`
	Precision    int     `mapstructure:"precision"`
	CacheTTL     int     `mapstructure:"cache_ttl"` // seconds
}

type LocationConfig struct {
	OutsidePolicy string `mapstructure:"outside_policy"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.request_timeout", 15)
	v.SetDefault("server.allow_origins", "http://localhost:3000, http://localhost:5173")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("ors.base_url", "https://api.openrouteservice.org")
	v.SetDefault("ors.api_key", "")
	v.SetDefault("ors.profile", "driving-car")
	v.SetDefault("ors.timeout", 10)

	v.SetDefault("service_area.name", "Akure")
	v.SetDefault("service_area.region", "Ondo State")
	v.SetDefault("service_area.country", "Nigeria")
	v.SetDefault("service_area.country_code", "NG")
	v.SetDefault("service_area.north", 7.32)
	v.SetDefault("service_area.south", 7.2)
	v.SetDefault("service_area.east", 5.32)
	v.SetDefault("service_area.west", 5.12)
	v.SetDefault("service_area.center_lat", 7.250771)
	v.SetDefault("service_area.center_lng", 5.2103)
	v.SetDefault("service_area.default_zoom", 13)

	v.SetDefault("resolver.local_limit", 5)
	v.SetDefault("resolver.max_results", 10)
	v.SetDefault("resolver.min_remote_chars", 3)
	v.SetDefault("resolver.remote_size", 5)
	v.SetDefault("resolver.popular_limit", 8)
	v.SetDefault("resolver.debounce_ms", 300)
	v.SetDefault("resolver.cache_ttl", 600)

	v.SetDefault("routing.alternatives", 3)
	v.SetDefault("routing.weight_factor", 1.6)
	v.SetDefault("routing.precision", 5)
	v.SetDefault("routing.cache_ttl", 300)

	v.SetDefault("location.outside_policy", OutsidePolicyFallback)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "akureroute")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "akureroute")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.enabled", true)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.enabled", true)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	return LoadFile(service, "")
}

// LoadFile is Load with an explicit config file. An empty path searches
// ./config.yaml and ./configs/config.yaml and tolerates neither existing;
// a named file must be readable.
func LoadFile(service, path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v, service)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		_ = v.ReadInConfig() // OK if missing
	}

	// Environment variables: AKUREROUTE_ORS_API_KEY → ors.api_key
	v.SetEnvPrefix("AKUREROUTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "server.request_timeout must be positive")
	}

	if c.ORS.BaseURL == "" {
		errs = append(errs, "ors.base_url is required")
	}
	if c.ORS.Profile == "" {
		errs = append(errs, "ors.profile is required")
	}
	if c.ORS.Timeout <= 0 {
		errs = append(errs, "ors.timeout must be positive")
	}

	sa := c.ServiceArea
	if sa.Name == "" {
		errs = append(errs, "service_area.name is required")
	}
	if sa.South >= sa.North {
		errs = append(errs, fmt.Sprintf("service_area.south (%g) must be below north (%g)", sa.South, sa.North))
	}
	if sa.West >= sa.East {
		errs = append(errs, fmt.Sprintf("service_area.west (%g) must be below east (%g)", sa.West, sa.East))
	}
	if !sa.Area().Contains(domain.Coordinate{Lat: sa.CenterLat, Lng: sa.CenterLng}) {
		errs = append(errs, "service_area center must lie inside the bounds")
	}
	if sa.DefaultZoom < 0 || sa.DefaultZoom > 20 {
		errs = append(errs, fmt.Sprintf("service_area.default_zoom must be 0-20, got %d", sa.DefaultZoom))
	}

	r := c.Resolver
	if r.LocalLimit <= 0 {
		errs = append(errs, "resolver.local_limit must be positive")
	}
	if r.MaxResults < r.LocalLimit {
		errs = append(errs, fmt.Sprintf("resolver.max_results (%d) must be >= local_limit (%d)", r.MaxResults, r.LocalLimit))
	}
	if r.MinRemoteChars < 1 {
		errs = append(errs, "resolver.min_remote_chars must be at least 1")
	}
	if r.RemoteSize <= 0 {
		errs = append(errs, "resolver.remote_size must be positive")
	}
	if r.DebounceMS < 0 {
		errs = append(errs, "resolver.debounce_ms must not be negative")
	}

	if c.Routing.Alternatives < 0 {
		errs = append(errs, "routing.alternatives must not be negative")
	}
	if c.Routing.WeightFactor < 1 {
		errs = append(errs, "routing.weight_factor must be >= 1")
	}
	if c.Routing.Precision < 0 || c.Routing.Precision > 10 {
		errs = append(errs, fmt.Sprintf("routing.precision must be 0-10, got %d", c.Routing.Precision))
	}

	switch c.Location.OutsidePolicy {
	case OutsidePolicyFallback, OutsidePolicyReject:
	default:
		errs = append(errs, fmt.Sprintf("location.outside_policy must be %q or %q, got %q",
			OutsidePolicyFallback, OutsidePolicyReject, c.Location.OutsidePolicy))
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
