package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "match-center-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "match-center-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[0] != "https://a.example.com" {
			t.Fatalf("unexpected first CORS origin: %s", cfg.CORSAllowedOrigins[0])
		}
		if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected second CORS origin: %s", cfg.CORSAllowedOrigins[1])
		}
	})
}

func TestLoad_DBDisablePreparedBinaryResultParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default true", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.DBDisablePreparedBinary {
			t.Fatalf("expected DBDisablePreparedBinary=true by default")
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "not-bool")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid DB_DISABLE_PREPARED_BINARY_RESULT")
		}
	})
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CACHE_ENABLED", "")
		t.Setenv("CACHE_TTL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CacheEnabled {
			t.Fatalf("expected cache enabled by default")
		}
		if cfg.CacheTTL != 60*time.Second {
			t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})
}

func TestLoad_FootballConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("disabled by default", func(t *testing.T) {
		t.Setenv("FOOTBALL_API_ENABLED", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.FootballEnabled {
			t.Fatalf("expected FootballEnabled=false by default")
		}
	})

	t.Run("enabled requires api key", func(t *testing.T) {
		t.Setenv("FOOTBALL_API_ENABLED", "true")
		t.Setenv("FOOTBALL_API_KEY", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when FOOTBALL_API_ENABLED=true without FOOTBALL_API_KEY")
		}
	})

	t.Run("enabled with valid values", func(t *testing.T) {
		t.Setenv("FOOTBALL_API_ENABLED", "true")
		t.Setenv("FOOTBALL_API_KEY", "key-123")
		t.Setenv("FOOTBALL_API_TIMEOUT", "15s")
		t.Setenv("FOOTBALL_API_MAX_RETRIES", "2")
		t.Setenv("FOOTBALL_API_DEFAULT_SEASON", "2025")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.FootballEnabled {
			t.Fatalf("expected FootballEnabled=true")
		}
		if cfg.FootballTimeout != 15*time.Second {
			t.Fatalf("unexpected football timeout: %s", cfg.FootballTimeout)
		}
		if cfg.FootballMaxRetries != 2 {
			t.Fatalf("unexpected football max retries: %d", cfg.FootballMaxRetries)
		}
		if cfg.FootballDefaultSeason != 2025 {
			t.Fatalf("unexpected default season: %d", cfg.FootballDefaultSeason)
		}
	})
}

func TestLoad_NewsConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("disabled by default", func(t *testing.T) {
		t.Setenv("NEWS_API_ENABLED", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.NewsEnabled {
			t.Fatalf("expected NewsEnabled=false by default")
		}
		if cfg.NewsPageSize != 20 {
			t.Fatalf("unexpected default news page size: %d", cfg.NewsPageSize)
		}
		if cfg.NewsDefaultQuery != "football" {
			t.Fatalf("unexpected default news query: %q", cfg.NewsDefaultQuery)
		}
	})

	t.Run("enabled requires api key", func(t *testing.T) {
		t.Setenv("NEWS_API_ENABLED", "true")
		t.Setenv("NEWS_API_KEY", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when NEWS_API_ENABLED=true without NEWS_API_KEY")
		}
	})

	t.Run("stale ttl must cover cache ttl", func(t *testing.T) {
		t.Setenv("NEWS_API_ENABLED", "false")
		t.Setenv("NEWS_CACHE_TTL", "10m")
		t.Setenv("NEWS_STALE_TTL", "1m")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when NEWS_STALE_TTL < NEWS_CACHE_TTL")
		}
	})
}

func TestLoad_FeedConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("FEED_REFRESH_INTERVAL", "")
		t.Setenv("FEED_WORKER_POOL_SIZE", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.FeedRefreshInterval != 30*time.Second {
			t.Fatalf("unexpected default refresh interval: %s", cfg.FeedRefreshInterval)
		}
		if cfg.FeedWorkerPoolSize != 8 {
			t.Fatalf("unexpected default worker pool size: %d", cfg.FeedWorkerPoolSize)
		}
		if cfg.FeedSessionTTL != 30*time.Minute {
			t.Fatalf("unexpected default session ttl: %s", cfg.FeedSessionTTL)
		}
	})

	t.Run("invalid interval", func(t *testing.T) {
		t.Setenv("FEED_REFRESH_INTERVAL", "0s")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for non-positive FEED_REFRESH_INTERVAL")
		}
	})
}
