package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Storage. STORE_DRIVER is "mongo" or "memory".
	StoreDriver  string `mapstructure:"STORE_DRIVER"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// External collaborators.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	StripeKey               string `mapstructure:"STRIPE_KEY"`
	FeeCurrency             string `mapstructure:"FEE_CURRENCY"`

	// Booking policy.
	DepositPercent        float64 `mapstructure:"DEPOSIT_PERCENT"`
	PlatformFeePercent    float64 `mapstructure:"PLATFORM_FEE_PERCENT"`
	LoyaltyPointsPerUnit  int64   `mapstructure:"LOYALTY_POINTS_PER_UNIT"`
	LoyaltyEarnPerUnit    float64 `mapstructure:"LOYALTY_EARN_PER_UNIT"`
	CancellationLeadHours int     `mapstructure:"CANCELLATION_LEAD_HOURS"`
	MaxBookingMinutes     int     `mapstructure:"MAX_BOOKING_MINUTES"`
	ReferralBonusPoints   int64   `mapstructure:"REFERRAL_BONUS_POINTS"`
	ReminderLeadMinutes   int     `mapstructure:"REMINDER_LEAD_MINUTES"`
	StatsCacheTTLSeconds  int     `mapstructure:"STATS_CACHE_TTL_SECONDS"`
}

var AppConfig Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("STORE_DRIVER", "mongo")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "bookly")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_QUEUE_DB", 3)
	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	v.SetDefault("STRIPE_KEY", "")
	v.SetDefault("FEE_CURRENCY", "usd")
	v.SetDefault("DEPOSIT_PERCENT", 20)
	v.SetDefault("PLATFORM_FEE_PERCENT", 5)
	v.SetDefault("LOYALTY_POINTS_PER_UNIT", 100)
	v.SetDefault("LOYALTY_EARN_PER_UNIT", 1)
	v.SetDefault("CANCELLATION_LEAD_HOURS", 24)
	v.SetDefault("MAX_BOOKING_MINUTES", 1440)
	v.SetDefault("REFERRAL_BONUS_POINTS", 500)
	v.SetDefault("REMINDER_LEAD_MINUTES", 60)
	v.SetDefault("STATS_CACHE_TTL_SECONDS", 60)
}

// Load reads configuration from an optional config.yaml in the given paths
// and from the environment.
func Load(paths ...string) (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	// Automatically use environment variables where available.
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig populates AppConfig from ./config.yaml, ./config/config.yaml and the environment.
func LoadConfig() {
	cfg, err := Load(".", "./config")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Policy is the set of booking rules the engine is constructed with.
type Policy struct {
	DepositPercent       float64
	PlatformFeePercent   float64
	LoyaltyPointsPerUnit int64
	LoyaltyEarnPerUnit   float64
	CancellationLead     time.Duration
	MaxBookingMinutes    int
	ReminderLead         time.Duration
	StatsCacheTTL        time.Duration
}

// DefaultPolicy mirrors the configuration defaults.
func DefaultPolicy() Policy {
	return Policy{
		DepositPercent:       20,
		PlatformFeePercent:   5,
		LoyaltyPointsPerUnit: 100,
		LoyaltyEarnPerUnit:   1,
		CancellationLead:     24 * time.Hour,
		MaxBookingMinutes:    1440,
		ReminderLead:         time.Hour,
		StatsCacheTTL:        time.Minute,
	}
}

// BookingPolicy derives the engine policy from cfg.
func (cfg Config) BookingPolicy() Policy {
	return Policy{
		DepositPercent:       cfg.DepositPercent,
		PlatformFeePercent:   cfg.PlatformFeePercent,
		LoyaltyPointsPerUnit: cfg.LoyaltyPointsPerUnit,
		LoyaltyEarnPerUnit:   cfg.LoyaltyEarnPerUnit,
		CancellationLead:     time.Duration(cfg.CancellationLeadHours) * time.Hour,
		MaxBookingMinutes:    cfg.MaxBookingMinutes,
		ReminderLead:         time.Duration(cfg.ReminderLeadMinutes) * time.Minute,
		StatsCacheTTL:        time.Duration(cfg.StatsCacheTTLSeconds) * time.Second,
	}
}
