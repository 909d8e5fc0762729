package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/RuslanFatikhov/q-ryer/internal/core/application/search"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/agent"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/economy"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/services"
	"github.com/RuslanFatikhov/q-ryer/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	Storage    string
	LogLevel   string

	CatalogDir             string
	Regions                []string
	DefaultRegion          string
	CatalogRefreshSchedule string

	KafkaBrokers          []string
	KafkaAgentEventsTopic string

	ExpirySweepSchedule string

	Search                search.Settings
	Dropoff               services.DropoffRange
	VendorTopK            int
	RadiusBounds          agent.RadiusBounds
	DefaultSearchRadiusKm float64
	Economy               economy.Config
}

// LoadConfig reads configuration in order: .env (if present), environment,
// then command-line flags in args.
func LoadConfig(args []string) (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	env := envReader{}
	cfg := Config{
		HTTPPort:   env.str("HTTP_PORT", "8080"),
		DBHost:     env.str("DB_HOST", "localhost"),
		DBPort:     env.str("DB_PORT", "5432"),
		DBUser:     env.str("DB_USER", "postgres"),
		DBPassword: env.str("DB_PASSWORD", ""),
		DBName:     env.str("DB_NAME", "qryer"),
		DBSslMode:  env.str("DB_SSLMODE", "disable"),
		Storage:    env.str("STORAGE", StoragePostgres),
		LogLevel:   env.str("LOG_LEVEL", "info"),

		CatalogDir:             env.str("CATALOG_DIR", "data/cities"),
		Regions:                env.list("REGIONS"),
		DefaultRegion:          env.str("DEFAULT_REGION", "almaty"),
		CatalogRefreshSchedule: env.str("CATALOG_REFRESH_SCHEDULE", ""),

		KafkaBrokers:          env.list("KAFKA_BROKERS"),
		KafkaAgentEventsTopic: env.str("KAFKA_AGENT_EVENTS_TOPIC", "agent-events"),

		ExpirySweepSchedule: env.str("EXPIRY_SWEEP_SCHEDULE", jobs.DefaultExpirySchedule),
	}

	searchDefaults := search.DefaultSettings()
	cfg.Search = search.Settings{
		Tick:     env.duration("SEARCH_TICK", searchDefaults.Tick),
		MinTicks: env.integer("SEARCH_MIN_TICKS", searchDefaults.MinTicks),
		MaxTicks: env.integer("SEARCH_MAX_TICKS", searchDefaults.MaxTicks),
	}

	dropoff := services.DefaultDropoffRange()
	cfg.Dropoff = services.DropoffRange{
		MinKm: env.float("MATCH_MIN_DROPOFF_KM", dropoff.MinKm),
		MaxKm: env.float("MATCH_MAX_DROPOFF_KM", dropoff.MaxKm),
	}
	cfg.VendorTopK = env.integer("MATCH_VENDOR_TOP_K", 1)

	bounds := agent.DefaultRadiusBounds()
	cfg.RadiusBounds = agent.RadiusBounds{
		MinKm: env.float("SEARCH_RADIUS_MIN_KM", bounds.MinKm),
		MaxKm: env.float("SEARCH_RADIUS_MAX_KM", bounds.MaxKm),
	}
	cfg.DefaultSearchRadiusKm = env.float("SEARCH_RADIUS_DEFAULT_KM", 5)

	cfg.Economy = loadEconomy(&env)

	flags := pflag.NewFlagSet("q-ryer", pflag.ContinueOnError)
	flags.StringVarP(&cfg.HTTPPort, "port", "p", cfg.HTTPPort, "port to listen on")
	flags.StringVar(&cfg.Storage, "storage", cfg.Storage, "storage backend: postgres or memory")
	flags.StringVar(&cfg.CatalogDir, "catalog-dir", cfg.CatalogDir, "directory with one GeoJSON folder per region")
	flags.StringSliceVar(&cfg.Regions, "regions", cfg.Regions, "regions to serve (default: every region in the catalog)")
	flags.StringVar(&cfg.DefaultRegion, "default-region", cfg.DefaultRegion, "region of agents registered without one")
	flags.StringSliceVar(&cfg.KafkaBrokers, "kafka-brokers", cfg.KafkaBrokers, "kafka brokers for agent events")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if err := errors.Join(env.errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if port, err := strconv.Atoi(c.HTTPPort); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port: %s", c.HTTPPort))
	}
	if c.Storage != StorageMemory && c.Storage != StoragePostgres {
		errs = append(errs, fmt.Errorf("invalid storage %q: want %s or %s", c.Storage, StoragePostgres, StorageMemory))
	}
	if c.DefaultRegion == "" {
		errs = append(errs, errors.New("default region is required"))
	}
	if c.Dropoff.MinKm < 0 || c.Dropoff.MaxKm < c.Dropoff.MinKm {
		errs = append(errs, fmt.Errorf("dropoff range [%v, %v] is invalid", c.Dropoff.MinKm, c.Dropoff.MaxKm))
	}
	if c.VendorTopK < 1 {
		errs = append(errs, fmt.Errorf("vendor top k must be at least 1, got %d", c.VendorTopK))
	}
	if err := c.RadiusBounds.Validate(); err != nil {
		errs = append(errs, err)
	} else if c.DefaultSearchRadiusKm < c.RadiusBounds.MinKm || c.DefaultSearchRadiusKm > c.RadiusBounds.MaxKm {
		errs = append(errs, fmt.Errorf("default search radius %v km is outside [%v, %v]",
			c.DefaultSearchRadiusKm, c.RadiusBounds.MinKm, c.RadiusBounds.MaxKm))
	}
	errs = append(errs, c.Search.Validate(), c.Economy.Validate())
	return errors.Join(errs...)
}

func (c Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func loadEconomy(env *envReader) economy.Config {
	d := economy.DefaultConfig()
	return economy.Config{
		BasePayment:         env.float("ECONOMY_BASE_PAYMENT", d.BasePayment),
		PickupFee:           env.float("ECONOMY_PICKUP_FEE", d.PickupFee),
		DropoffFee:          env.float("ECONOMY_DROPOFF_FEE", d.DropoffFee),
		DistanceRate:        env.float("ECONOMY_DISTANCE_RATE", d.DistanceRate),
		OnTimeBonus:         env.float("ECONOMY_ON_TIME_BONUS", d.OnTimeBonus),
		PickupRadiusM:       env.float("ECONOMY_PICKUP_RADIUS_M", d.PickupRadiusM),
		DropoffRadiusM:      env.float("ECONOMY_DROPOFF_RADIUS_M", d.DropoffRadiusM),
		DeliverySpeedKmh:    env.float("ECONOMY_DELIVERY_SPEED_KMH", d.DeliverySpeedKmh),
		DeliveryBaseTimeSec: env.integer("ECONOMY_DELIVERY_BASE_TIME_SEC", d.DeliveryBaseTimeSec),
		PickupTimeoutSec:    env.integer("ECONOMY_PICKUP_TIMEOUT_SEC", d.PickupTimeoutSec),
		MaxGpsAccuracyM:     env.float("MAX_GPS_ACCURACY_M", d.MaxGpsAccuracyM),
	}
}

// envReader collects parse failures instead of stopping at the first one.
type envReader struct {
	errs []error
}

func (r *envReader) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (r *envReader) list(key string) []string {
	var out []string
	for _, part := range strings.Split(r.str(key, ""), ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (r *envReader) integer(key string, def int) int {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (r *envReader) float(key string, def float64) float64 {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return f
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}
