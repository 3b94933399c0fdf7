package config

import (
	"cargo-route-service/internal/domain"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yaml"

type Depot struct {
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat"`
	Lon  float64 `yaml:"lon"`
}

type Costs struct {
	FuelPricePerLiter         float64 `yaml:"fuel_price_per_liter"`
	KmCost                    float64 `yaml:"km_cost"`
	RentalCostPerVehicle      float64 `yaml:"rental_cost_per_vehicle"`
	RentalCapacityBufferRatio float64 `yaml:"rental_capacity_buffer_ratio"`
}

type RateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Config is the runtime configuration shared by the server and dbtool.
// Values come from defaults, then the YAML file, then the environment.
type Config struct {
	Port        string    `yaml:"port"`
	DBDriver    string    `yaml:"db_driver"`
	DBPath      string    `yaml:"db_path"`
	DatabaseURL string    `yaml:"database_url"`
	RedisURL    string    `yaml:"redis_url"`
	SeedPath    string    `yaml:"seed_path"`
	DefaultMode string    `yaml:"default_mode"`
	Depot       Depot     `yaml:"depot"`
	Costs       Costs     `yaml:"costs"`
	RateLimit   RateLimit `yaml:"rate_limit"`
}

func Default() Config {
	c := domain.DefaultCostParams()
	return Config{
		Port:        "8080",
		DBDriver:    "sqlite",
		DBPath:      "data/app.db",
		SeedPath:    "data/seeds/seed.json",
		DefaultMode: string(domain.FixedFleet),
		Depot:       Depot{Name: "Umuttepe Campus", Lat: 40.8667, Lon: 29.85},
		Costs: Costs{
			FuelPricePerLiter:         c.FuelPricePerLiter,
			KmCost:                    c.KmCost,
			RentalCostPerVehicle:      c.RentalCostPerVehicle,
			RentalCapacityBufferRatio: c.RentalCapacityBufferRatio,
		},
		RateLimit: RateLimit{RPS: 2, Burst: 4},
	}
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("load config: read %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("load config: parse %q: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Port = Get("PORT", c.Port)
	c.DBDriver = strings.ToLower(Get("DB_DRIVER", c.DBDriver))
	c.DBPath = Get("DB_PATH", c.DBPath)
	c.DatabaseURL = Get("DATABASE_URL", c.DatabaseURL)
	c.RedisURL = Get("REDIS_URL", c.RedisURL)
	c.SeedPath = Get("SEED_PATH", c.SeedPath)

	if v := os.Getenv("RATE_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse RATE_RPS %q: %w", v, err)
		}
		c.RateLimit.RPS = rps
	}
	if v := os.Getenv("RATE_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse RATE_BURST %q: %w", v, err)
		}
		c.RateLimit.Burst = burst
	}

	return nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres", "memory":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DBDriver == "postgres" && strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required for postgres")
	}
	if _, err := domain.ParseFleetMode(c.DefaultMode); err != nil {
		return fmt.Errorf("default_mode: %w", err)
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 1 {
		return fmt.Errorf("rate limit must be positive: rps=%v burst=%d", c.RateLimit.RPS, c.RateLimit.Burst)
	}
	return nil
}

func (c Config) DepotLocation() domain.Coordinates {
	return domain.Coordinates{Lat: c.Depot.Lat, Lon: c.Depot.Lon}
}

func (c Config) CostParams() domain.CostParams {
	return domain.CostParams{
		FuelPricePerLiter:         c.Costs.FuelPricePerLiter,
		KmCost:                    c.Costs.KmCost,
		RentalCostPerVehicle:      c.Costs.RentalCostPerVehicle,
		RentalCapacityBufferRatio: c.Costs.RentalCapacityBufferRatio,
	}
}

// Get returns the environment variable key, or fallback when it is unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
