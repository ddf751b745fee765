package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port            int      `yaml:"port"`
	GinMode         string   `yaml:"gin_mode"`
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
	TrustedProxies  []string `yaml:"trusted_proxies"`
}

type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	LogLevel string `yaml:"log_level"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	Issuer     string `yaml:"issuer"`
	AccessTTL  string `yaml:"access_ttl"`
	RefreshTTL string `yaml:"refresh_ttl"`
}

type AuthConfig struct {
	Backends        []string `yaml:"backends"`
	BcryptCost      int      `yaml:"bcrypt_cost"`
	UpdateLastLogin bool     `yaml:"update_last_login"`
}

type LockoutConfig struct {
	Enabled      bool   `yaml:"enabled"`
	FailureLimit int    `yaml:"failure_limit"`
	Cooloff      string `yaml:"cooloff"`
	Prefix       string `yaml:"prefix"`
}

type RateLimitFile struct {
	Enabled        bool   `yaml:"enabled"`
	Capacity       int    `yaml:"capacity"`
	RefillTokens   int    `yaml:"refill_tokens"`
	RefillInterval string `yaml:"refill_interval"`
	TTL            string `yaml:"ttl"`
	Prefix         string `yaml:"prefix"`
}

type RabbitMQConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type CasbinConfig struct {
	ModelPath string `yaml:"model_path"`
}

type MetricsConfig struct {
	Prefix string `yaml:"prefix"`
}

type ConfigFile struct {
	App       AppConfig      `yaml:"app"`
	Database  DatabaseConfig `yaml:"database"`
	Redis     RedisConfig    `yaml:"redis"`
	JWT       JWTConfig      `yaml:"jwt"`
	Auth      AuthConfig     `yaml:"auth"`
	Lockout   LockoutConfig  `yaml:"lockout"`
	RateLimit RateLimitFile  `yaml:"rate_limit"`
	RabbitMQ  RabbitMQConfig `yaml:"rabbitmq"`
	Twilio    TwilioConfig   `yaml:"twilio"`
	Casbin    CasbinConfig   `yaml:"casbin"`
	Metrics   MetricsConfig  `yaml:"metrics"`
}

// RateLimitConfig drives the token bucket in front of the public endpoints
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
}

type Config struct {
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration
	TrustedProxies  []string
	DSN             string
	DBLogLevel      string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	JWTSecret       string
	JWTIssuer       string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	AuthBackends    []string
	BcryptCost      int
	UpdateLastLogin bool
	LockoutEnabled  bool
	LockoutLimit    int
	LockoutCooloff  time.Duration
	LockoutPrefix   string
	RateLimit       RateLimitConfig
	RabbitURL       string
	RabbitExchange  string
	TwilioSID       string
	TwilioToken     string
	TwilioFrom      string
	CasbinModelPath string
	MetricsPrefix   string
}

// Backend names accepted in auth.backends
const (
	BackendApproval = "approval"
	BackendModel    = "model"
)

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads .env (if present), the YAML file named by CONFIG_PATH
// (default config/config.yml) and applies environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFromFile(env("CONFIG_PATH", "config/config.yml"))
}

// LoadFromFile builds a Config from the YAML file at path plus environment overrides
func LoadFromFile(path string) (*Config, error) {
	configFile, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	applyEnv(configFile)
	return build(configFile)
}

func build(f *ConfigFile) (*Config, error) {
	accTTL, err := parseDuration(f.JWT.AccessTTL, 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT access TTL: %w", err)
	}
	refTTL, err := parseDuration(f.JWT.RefreshTTL, 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT refresh TTL: %w", err)
	}
	if refTTL <= accTTL {
		return nil, fmt.Errorf("JWT refresh TTL (%s) must exceed access TTL (%s)", refTTL, accTTL)
	}
	shutdown, err := parseDuration(f.App.ShutdownTimeout, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	cooloff, err := parseDuration(f.Lockout.Cooloff, 30*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid lockout cooloff: %w", err)
	}
	rl, err := buildRateLimit(f.RateLimit)
	if err != nil {
		return nil, err
	}

	if f.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is required")
	}

	backends := f.Auth.Backends
	if len(backends) == 0 {
		backends = []string{BackendApproval, BackendModel}
	}
	for _, b := range backends {
		if b != BackendApproval && b != BackendModel {
			return nil, fmt.Errorf("unknown auth backend %q", b)
		}
	}

	for _, p := range f.App.TrustedProxies {
		if !validProxy(p) {
			return nil, fmt.Errorf("invalid trusted proxy %q", p)
		}
	}

	port := f.App.Port
	if port == 0 {
		port = 8000
	}
	limit := f.Lockout.FailureLimit
	if limit < 1 {
		limit = 5
	}

	return &Config{
		Port:            strconv.Itoa(port),
		GinMode:         orDefault(f.App.GinMode, "release"),
		ShutdownTimeout: shutdown,
		TrustedProxies:  f.App.TrustedProxies,
		DSN:             f.Database.DSN,
		DBLogLevel:      orDefault(f.Database.LogLevel, "warn"),
		RedisAddr:       orDefault(f.Redis.Addr, "localhost:6379"),
		RedisPassword:   f.Redis.Password,
		RedisDB:         f.Redis.DB,
		JWTSecret:       f.JWT.Secret,
		JWTIssuer:       orDefault(f.JWT.Issuer, "xbpneus"),
		AccessTTL:       accTTL,
		RefreshTTL:      refTTL,
		AuthBackends:    backends,
		BcryptCost:      f.Auth.BcryptCost,
		UpdateLastLogin: f.Auth.UpdateLastLogin,
		LockoutEnabled:  f.Lockout.Enabled,
		LockoutLimit:    limit,
		LockoutCooloff:  cooloff,
		LockoutPrefix:   orDefault(f.Lockout.Prefix, "axes"),
		RateLimit:       rl,
		RabbitURL:       f.RabbitMQ.URL,
		RabbitExchange:  f.RabbitMQ.Exchange,
		TwilioSID:       f.Twilio.AccountSID,
		TwilioToken:     f.Twilio.AuthToken,
		TwilioFrom:      f.Twilio.FromNumber,
		CasbinModelPath: orDefault(f.Casbin.ModelPath, "casbin/model.conf"),
		MetricsPrefix:   orDefault(f.Metrics.Prefix, "metrics"),
	}, nil
}

func buildRateLimit(f RateLimitFile) (RateLimitConfig, error) {
	interval, err := parseDuration(f.RefillInterval, time.Second)
	if err != nil {
		return RateLimitConfig{}, fmt.Errorf("invalid rate limit refill interval: %w", err)
	}
	ttl, err := parseDuration(f.TTL, 10*time.Minute)
	if err != nil {
		return RateLimitConfig{}, fmt.Errorf("invalid rate limit ttl: %w", err)
	}
	rl := RateLimitConfig{
		Enabled:        f.Enabled,
		Capacity:       f.Capacity,
		RefillTokens:   f.RefillTokens,
		RefillInterval: interval,
		TTL:            ttl,
		Prefix:         orDefault(f.Prefix, "rl"),
	}
	if rl.Capacity < 1 {
		rl.Capacity = 10
	}
	if rl.RefillTokens < 1 {
		rl.RefillTokens = 1
	}
	if rl.RefillInterval <= 0 {
		rl.RefillInterval = time.Second
	}
	if minTTL := 5 * rl.RefillInterval; rl.TTL < minTTL {
		rl.TTL = minTTL
	}
	return rl, nil
}

// applyEnv overrides file values with environment variables when set
func applyEnv(f *ConfigFile) {
	if v := os.Getenv("APP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.App.Port = n
		}
	}
	f.App.GinMode = env("GIN_MODE", f.App.GinMode)
	if v, ok := os.LookupEnv("TRUSTED_PROXIES"); ok {
		f.App.TrustedProxies = splitList(v)
	}
	f.Database.DSN = env("DATABASE_DSN", f.Database.DSN)
	f.Redis.Addr = env("REDIS_ADDR", f.Redis.Addr)
	f.Redis.Password = env("REDIS_PASSWORD", f.Redis.Password)
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Redis.DB = n
		}
	}
	f.JWT.Secret = env("JWT_SECRET", f.JWT.Secret)
	f.JWT.Issuer = env("JWT_ISSUER", f.JWT.Issuer)
	f.JWT.AccessTTL = env("JWT_ACCESS_TTL", f.JWT.AccessTTL)
	f.JWT.RefreshTTL = env("JWT_REFRESH_TTL", f.JWT.RefreshTTL)
	if v := os.Getenv("AUTH_BACKENDS"); v != "" {
		f.Auth.Backends = splitList(v)
	}
	f.Auth.BcryptCost = envInt("BCRYPT_COST", f.Auth.BcryptCost)
	f.Auth.UpdateLastLogin = envBool("AUTH_UPDATE_LAST_LOGIN", f.Auth.UpdateLastLogin)
	f.Lockout.Enabled = envBool("LOCKOUT_ENABLED", f.Lockout.Enabled)
	f.Lockout.FailureLimit = envInt("LOCKOUT_FAILURE_LIMIT", f.Lockout.FailureLimit)
	f.Lockout.Cooloff = env("LOCKOUT_COOLOFF", f.Lockout.Cooloff)
	f.RateLimit.Enabled = envBool("RATE_LIMIT_ENABLED", f.RateLimit.Enabled)
	f.RateLimit.Capacity = envInt("RATE_LIMIT_CAPACITY", f.RateLimit.Capacity)
	f.RabbitMQ.URL = env("RABBITMQ_URL", f.RabbitMQ.URL)
	f.Twilio.AccountSID = env("TWILIO_ACCOUNT_SID", f.Twilio.AccountSID)
	f.Twilio.AuthToken = env("TWILIO_AUTH_TOKEN", f.Twilio.AuthToken)
	f.Twilio.FromNumber = env("TWILIO_FROM_NUMBER", f.Twilio.FromNumber)
	f.Casbin.ModelPath = env("CASBIN_MODEL", f.Casbin.ModelPath)
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// validProxy accepts a single IP or a CIDR block
func validProxy(p string) bool {
	if strings.Contains(p, "/") {
		_, _, err := net.ParseCIDR(p)
		return err == nil
	}
	return net.ParseIP(p) != nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}
