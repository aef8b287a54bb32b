package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	RabbitMQ  RabbitMQConfig  `yaml:"rabbitmq"`
	Services  ServicesConfig  `yaml:"services"`
	JWT       JWTConfig       `yaml:"jwt"`
	Routing   RoutingConfig   `yaml:"routing"`
	Tracking  TrackingConfig  `yaml:"tracking"`
	Storage   StorageConfig   `yaml:"storage"`
	Simulator SimulatorConfig `yaml:"simulator"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" validate:"gte=1,lte=65535"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"database"`
}

type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" validate:"gte=1,lte=65535"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password" validate:"required"`
}

type ServicesConfig struct {
	TrackingServicePort int `yaml:"tracking_service" validate:"gte=1,lte=65535"`
}

type JWTConfig struct {
	SecretKey string `yaml:"secret_key"`
}

// RoutingConfig points at the directions, place-search and geocoding endpoints.
type RoutingConfig struct {
	RoutesURL  string `yaml:"routes_url" validate:"required,url"`
	PlacesURL  string `yaml:"places_url" validate:"required,url"`
	GeocodeURL string `yaml:"geocode_url" validate:"required,url"`
	APIKey     string `yaml:"api_key"`
	Language   string `yaml:"language"`
	TravelMode string `yaml:"travel_mode" validate:"oneof=DRIVE WALK BICYCLE TWO_WHEELER TRANSIT"`
	TimeoutMS  int    `yaml:"timeout_ms" validate:"gt=0"`
	Retries    int    `yaml:"retries" validate:"gte=0,lte=5"`
}

// TrackingConfig holds the arrival and rerouting thresholds of a session.
type TrackingConfig struct {
	ArrivalRadiusM      float64 `yaml:"arrival_radius_m" validate:"gt=0"`
	ArrivalCooldownMS   int     `yaml:"arrival_cooldown_ms" validate:"gt=0"`
	RerouteThresholdDeg float64 `yaml:"reroute_threshold_deg" validate:"gt=0"`
	GeocodeIntervalMS   int     `yaml:"geocode_interval_ms" validate:"gte=0"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" validate:"oneof=postgres file memory"`
	Dir    string `yaml:"dir"`
}

type SimulatorConfig struct {
	FrequencyMS int `yaml:"frequency_ms" validate:"gt=0"`
}

// Timeout returns the per-request timeout of the routing client.
func (r RoutingConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutMS) * time.Millisecond
}

// ArrivalCooldown returns how long arrival processing stays locked.
func (t TrackingConfig) ArrivalCooldown() time.Duration {
	return time.Duration(t.ArrivalCooldownMS) * time.Millisecond
}

// GeocodeInterval returns the minimum spacing between reverse-geocode requests.
func (t TrackingConfig) GeocodeInterval() time.Duration {
	return time.Duration(t.GeocodeIntervalMS) * time.Millisecond
}

// Frequency returns the simulator publish interval.
func (s SimulatorConfig) Frequency() time.Duration {
	return time.Duration(s.FrequencyMS) * time.Millisecond
}

// LoadFromFile loads config from a YAML file to a Config struct, applies defaults, and validates required fields.
func LoadFromFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := parseYAML(file, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets safe defaults for some fields.
func applyDefaults(cfg *Config) {
	// Database
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}

	// RabbitMQ
	if cfg.RabbitMQ.Host == "" {
		cfg.RabbitMQ.Host = "localhost"
	}
	if cfg.RabbitMQ.Port == 0 {
		cfg.RabbitMQ.Port = 5672
	}

	if cfg.Services.TrackingServicePort == 0 {
		cfg.Services.TrackingServicePort = 3010
	}

	// Routing
	if cfg.Routing.RoutesURL == "" {
		cfg.Routing.RoutesURL = "https://routes.googleapis.com/directions/v2:computeRoutes"
	}
	if cfg.Routing.PlacesURL == "" {
		cfg.Routing.PlacesURL = "https://places.googleapis.com/v1/places:searchText"
	}
	if cfg.Routing.GeocodeURL == "" {
		cfg.Routing.GeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"
	}
	if cfg.Routing.Language == "" {
		cfg.Routing.Language = "en"
	}
	if cfg.Routing.TravelMode == "" {
		cfg.Routing.TravelMode = "DRIVE"
	}
	if cfg.Routing.TimeoutMS == 0 {
		cfg.Routing.TimeoutMS = 12000
	}

	// Tracking
	if cfg.Tracking.ArrivalRadiusM == 0 {
		cfg.Tracking.ArrivalRadiusM = 100
	}
	if cfg.Tracking.ArrivalCooldownMS == 0 {
		cfg.Tracking.ArrivalCooldownMS = 5000
	}
	if cfg.Tracking.RerouteThresholdDeg == 0 {
		cfg.Tracking.RerouteThresholdDeg = 0.0001
	}
	if cfg.Tracking.GeocodeIntervalMS == 0 {
		cfg.Tracking.GeocodeIntervalMS = 1500
	}

	// Storage
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "postgres"
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = "./state"
	}

	if cfg.Simulator.FrequencyMS == 0 {
		cfg.Simulator.FrequencyMS = 1000
	}

	if cfg.JWT.SecretKey == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			// fallback: time-based bytes
			key = []byte(fmt.Sprintf("%d", time.Now().UnixNano()))
		}
		cfg.JWT.SecretKey = base64.StdEncoding.EncodeToString(key)
	}
}

var validate = validator.New()

// validate runs the struct tags, then the cross-field rules, and reports every problem at once.
func (c *Config) validate() error {
	var problems []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s failed %q (value %v)", fieldPath(fe.Namespace()), fe.Tag(), fe.Value()))
		}
	}

	// the database is only needed when completed stops live in postgres
	if c.Storage.Driver == "postgres" {
		if c.Database.User == "" {
			problems = append(problems, "database.user is required")
		}
		if c.Database.Password == "" {
			problems = append(problems, "database.password is required")
		}
		if c.Database.Name == "" {
			problems = append(problems, "database.database is required")
		}
	}
	if c.Storage.Driver == "file" && strings.TrimSpace(c.Storage.Dir) == "" {
		problems = append(problems, "storage.dir is required for the file driver")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// fieldPath turns "Config.Tracking.ArrivalRadiusM" into "tracking.arrivalradiusm".
func fieldPath(ns string) string {
	ns = strings.TrimPrefix(ns, "Config.")
	return strings.ToLower(ns)
}
