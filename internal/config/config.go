package config

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultAccessTTL      = "15m"
	defaultRefreshTTL     = "168h"
	defaultLockoutWindow  = "15m"
	defaultCookieSecure   = "false"
	defaultCookieSameSite = "Lax"
	defaultRefreshPath    = "/api/v1/auth/refresh"
	defaultTokenIssuer    = "wastetrack"
	defaultTokenAudience  = "wastetrack-api"
	defaultAccessSecret   = "change-me-access-secret"
	defaultRefreshSecret  = "change-me-refresh-secret"
)

// RateBudget is one endpoint class budget: at most Limit requests per
// identity within each fixed Window.
type RateBudget struct {
	Limit  int64
	Window time.Duration
}

type RateLimits struct {
	Login     RateBudget
	Refresh   RateBudget
	Read      RateBudget
	Write     RateBudget
	Delete    RateBudget
	Analytics RateBudget
	Export    RateBudget
}

type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	AccessTokenSecret  string
	RefreshTokenSecret string
	TokenIssuer        string
	TokenAudience      string
	AccessTokenTTL     time.Duration
	RefreshTTL         time.Duration

	BcryptCost       int
	LockoutThreshold int
	LockoutWindow    time.Duration

	CookieSecure      bool
	CookieSameSite    string
	RefreshCookiePath string

	CORSAllowedOrigins []string

	RateLimits RateLimits
}

func Load() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.Port = strings.TrimSpace(getEnv("PORT", "8080"))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", "wastetrack.db"))

	cfg.AccessTokenSecret = strings.TrimSpace(getEnv("ACCESS_TOKEN_SECRET", defaultAccessSecret))
	cfg.RefreshTokenSecret = strings.TrimSpace(getEnv("REFRESH_TOKEN_SECRET", defaultRefreshSecret))
	cfg.TokenIssuer = strings.TrimSpace(getEnv("TOKEN_ISSUER", defaultTokenIssuer))
	cfg.TokenAudience = strings.TrimSpace(getEnv("TOKEN_AUDIENCE", defaultTokenAudience))

	var err error
	cfg.AccessTokenTTL, err = parseDurationEnv("ACCESS_TOKEN_TTL", defaultAccessTTL)
	if err != nil {
		return nil, err
	}
	cfg.RefreshTTL, err = parseDurationEnv("REFRESH_TOKEN_TTL", defaultRefreshTTL)
	if err != nil {
		return nil, err
	}

	cfg.BcryptCost, err = parseIntEnv("BCRYPT_COST", 12)
	if err != nil {
		return nil, err
	}
	cfg.LockoutThreshold, err = parseIntEnv("LOCKOUT_THRESHOLD", 5)
	if err != nil {
		return nil, err
	}
	cfg.LockoutWindow, err = parseDurationEnv("LOCKOUT_WINDOW", defaultLockoutWindow)
	if err != nil {
		return nil, err
	}

	cfg.CookieSecure = parseBoolEnv("COOKIE_SECURE", defaultCookieSecure)
	cfg.CookieSameSite = strings.TrimSpace(getEnv("COOKIE_SAMESITE", defaultCookieSameSite))
	cfg.RefreshCookiePath = strings.TrimSpace(getEnv("REFRESH_COOKIE_PATH", defaultRefreshPath))

	if extra := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	}

	cfg.RateLimits, err = loadRateLimits()
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("config loaded: env=%s cookie_secure=%t same_site=%s refresh_path=%s",
		cfg.AppEnv, cfg.CookieSecure, cfg.CookieSameSite, cfg.RefreshCookiePath)

	return cfg, nil
}

func loadRateLimits() (RateLimits, error) {
	var rl RateLimits
	var err error
	if rl.Login, err = parseRateEnv("RATE_LOGIN", "5/15m"); err != nil {
		return rl, err
	}
	if rl.Refresh, err = parseRateEnv("RATE_REFRESH", "5/15m"); err != nil {
		return rl, err
	}
	if rl.Read, err = parseRateEnv("RATE_READ", "100/1m"); err != nil {
		return rl, err
	}
	if rl.Write, err = parseRateEnv("RATE_WRITE", "50/1m"); err != nil {
		return rl, err
	}
	if rl.Delete, err = parseRateEnv("RATE_DELETE", "20/1m"); err != nil {
		return rl, err
	}
	if rl.Analytics, err = parseRateEnv("RATE_ANALYTICS", "30/1m"); err != nil {
		return rl, err
	}
	if rl.Export, err = parseRateEnv("RATE_EXPORT", "5/5m"); err != nil {
		return rl, err
	}
	return rl, nil
}

func validateConfig(cfg *Config) error {
	if cfg.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be > 0")
	}
	if cfg.RefreshTTL <= 0 {
		return fmt.Errorf("REFRESH_TOKEN_TTL must be > 0")
	}
	if cfg.RefreshTTL <= cfg.AccessTokenTTL {
		return fmt.Errorf("REFRESH_TOKEN_TTL must be longer than ACCESS_TOKEN_TTL")
	}
	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if cfg.LockoutThreshold < 1 {
		return fmt.Errorf("LOCKOUT_THRESHOLD must be >= 1")
	}
	if cfg.LockoutWindow <= 0 {
		return fmt.Errorf("LOCKOUT_WINDOW must be > 0")
	}
	if cfg.RefreshCookiePath == "" {
		return fmt.Errorf("REFRESH_COOKIE_PATH must not be empty")
	}
	sameSite := strings.ToLower(strings.TrimSpace(cfg.CookieSameSite))
	if sameSite != "lax" && sameSite != "none" && sameSite != "strict" {
		return fmt.Errorf("COOKIE_SAMESITE must be one of: Lax, None, Strict")
	}
	if sameSite == "none" && !cfg.CookieSecure {
		return fmt.Errorf("COOKIE_SECURE must be true when COOKIE_SAMESITE=None")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.AccessTokenSecret, defaultAccessSecret) {
			return fmt.Errorf("in prod/release ACCESS_TOKEN_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.RefreshTokenSecret, defaultRefreshSecret) {
			return fmt.Errorf("in prod/release REFRESH_TOKEN_SECRET must be set and not default")
		}
		if !cfg.CookieSecure {
			return fmt.Errorf("in prod/release COOKIE_SECURE must be true")
		}
	}

	return nil
}

// SameSiteMode maps the validated COOKIE_SAMESITE string onto the
// net/http constant the cookie writers need.
func (c *Config) SameSiteMode() http.SameSite {
	switch strings.ToLower(strings.TrimSpace(c.CookieSameSite)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

// parseRateEnv reads budgets in the "limit/window" form, e.g. "100/1m".
func parseRateEnv(name, fallback string) (RateBudget, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	parts := strings.SplitN(value, "/", 2)
	if len(parts) != 2 {
		return RateBudget{}, fmt.Errorf("invalid %s value %q: want limit/window", name, value)
	}
	limit, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil || limit < 1 {
		return RateBudget{}, fmt.Errorf("invalid %s limit %q", name, parts[0])
	}
	window, err := time.ParseDuration(strings.TrimSpace(parts[1]))
	if err != nil || window <= 0 {
		return RateBudget{}, fmt.Errorf("invalid %s window %q", name, parts[1])
	}
	return RateBudget{Limit: limit, Window: window}, nil
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
