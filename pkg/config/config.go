package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env  string
	Port int

	Database DatabaseConfig
	Redis    RedisConfig
	Token    TokenConfig
	CORS     CORSConfig
	Log      LogConfig

	Registration RegistrationConfig
	Offerings    OfferingsConfig
	Gateway      GatewayConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TokenConfig holds the shared signing secret and token lifetime. The secret
// must be identical across every service instance for verification to
// succeed anywhere in the mesh.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RegistrationConfig pins the institution domain used for role inference.
type RegistrationConfig struct {
	InstitutionDomain string
}

// OfferingsConfig governs cache behaviour for offering listings.
type OfferingsConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// GatewayConfig holds backend addresses and the retry discipline used by the
// presentation boundary.
type GatewayConfig struct {
	AuthAddr          string
	RegisterAddr      string
	OfferingAddr      string
	EnrollmentAddr    string
	StudentGradesAddr string
	FacultyGradesAddr string

	RetryMaxAttempts int
	RetryDelay       time.Duration
	CallTimeout      time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Token = TokenConfig{
		Secret: v.GetString("JWT_SECRET"),
		TTL:    parseDuration(v.GetString("JWT_EXPIRATION"), 7*24*time.Hour),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Registration = RegistrationConfig{
		InstitutionDomain: v.GetString("INSTITUTION_DOMAIN"),
	}

	cfg.Offerings = OfferingsConfig{
		CacheEnabled: v.GetBool("ENABLE_OFFERING_CACHE"),
		CacheTTL:     parseDuration(v.GetString("OFFERING_CACHE_TTL"), 30*time.Second),
	}

	cfg.Gateway = GatewayConfig{
		AuthAddr:          v.GetString("AUTH_ADDR"),
		RegisterAddr:      v.GetString("REGISTER_ADDR"),
		OfferingAddr:      v.GetString("OFFERING_ADDR"),
		EnrollmentAddr:    v.GetString("ENROLLMENT_ADDR"),
		StudentGradesAddr: v.GetString("STUDENT_GRADES_ADDR"),
		FacultyGradesAddr: v.GetString("FACULTY_GRADES_ADDR"),
		RetryMaxAttempts:  v.GetInt("GATEWAY_RETRY_MAX_ATTEMPTS"),
		RetryDelay:        parseDuration(v.GetString("GATEWAY_RETRY_DELAY"), 5*time.Second),
		CallTimeout:       parseDuration(v.GetString("GATEWAY_CALL_TIMEOUT"), 30*time.Second),
		RateLimitRPS:      v.GetFloat64("GATEWAY_RATE_LIMIT_RPS"),
		RateLimitBurst:    v.GetInt("GATEWAY_RATE_LIMIT_BURST"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	// Each binary supplies its own fallback when PORT is unset.
	v.SetDefault("PORT", 0)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "enlistment")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "168h")
	v.SetDefault("JWT_ISSUER", "enlistment-mesh")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("INSTITUTION_DOMAIN", "dlsu.edu.ph")

	v.SetDefault("ENABLE_OFFERING_CACHE", false)
	v.SetDefault("OFFERING_CACHE_TTL", "30s")

	v.SetDefault("AUTH_ADDR", "http://127.0.0.1:50051")
	v.SetDefault("REGISTER_ADDR", "http://127.0.0.1:50056")
	v.SetDefault("OFFERING_ADDR", "http://127.0.0.1:50052")
	v.SetDefault("ENROLLMENT_ADDR", "http://127.0.0.1:50053")
	v.SetDefault("STUDENT_GRADES_ADDR", "http://127.0.0.1:50054")
	v.SetDefault("FACULTY_GRADES_ADDR", "http://127.0.0.1:50055")

	v.SetDefault("GATEWAY_RETRY_MAX_ATTEMPTS", 5)
	v.SetDefault("GATEWAY_RETRY_DELAY", "5s")
	v.SetDefault("GATEWAY_CALL_TIMEOUT", "30s")
	v.SetDefault("GATEWAY_RATE_LIMIT_RPS", 0)
	v.SetDefault("GATEWAY_RATE_LIMIT_BURST", 0)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
