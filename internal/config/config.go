package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Auth        AuthConfig
	RemoteWrite RemoteWriteConfig
	Scheduler   SchedulerConfig
	Probe       ProbeConfig
	Retention   RetentionConfig
	Janitor     JanitorConfig
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	URL            string
	MaxConnections int
	MaxIdleConns   int
	MigrationsPath string
}

type RedisConfig struct {
	URL string
}

type AuthConfig struct {
	JWTSecret string
}

type RemoteWriteConfig struct {
	URL           string
	TenantHeader  string
	BatchSize     int
	FlushInterval time.Duration
	AuthToken     string
}

type SchedulerConfig struct {
	WorkerCount   int
	ScanInterval  time.Duration
	ProbeInterval time.Duration
	ProbeTimeout  time.Duration
}

type ProbeConfig struct {
	RatePerSecond           float64
	Burst                   int
	DNSResolver             string
	DomainExpiryWarningDays int
	DegradedThresholdMs     int
}

// RetentionConfig holds the cleanup windows. Defaults match the gateway's
// fixed retention policy; each window is overridable per deployment.
type RetentionConfig struct {
	SessionDays      int
	TokenDays        int
	AuditLogDays     int
	APIUsageDays     int
	ServerMetricDays int
}

type JanitorConfig struct {
	CleanupInterval     time.Duration
	ViewRefreshInterval time.Duration
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.SetEnvPrefix("INSIGHTS")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.maxconnections", 25)
	viper.SetDefault("database.maxidleconns", 5)
	viper.SetDefault("database.migrationspath", "migrations")
	viper.SetDefault("remotewrite.tenantheader", "X-Scope-OrgID")
	viper.SetDefault("remotewrite.batchsize", 1000)
	viper.SetDefault("remotewrite.flushinterval", "10s")
	viper.SetDefault("scheduler.workercount", 10)
	viper.SetDefault("scheduler.scaninterval", "10s")
	viper.SetDefault("scheduler.probeinterval", "60s")
	viper.SetDefault("scheduler.probetimeout", "30s")
	viper.SetDefault("probe.ratepersecond", 20)
	viper.SetDefault("probe.burst", 5)
	viper.SetDefault("probe.dnsresolver", "8.8.8.8:53")
	viper.SetDefault("probe.domainexpirywarningdays", 30)
	viper.SetDefault("probe.degradedthresholdms", 2000)
	viper.SetDefault("retention.sessiondays", 7)
	viper.SetDefault("retention.tokendays", 30)
	viper.SetDefault("retention.auditlogdays", 90)
	viper.SetDefault("retention.apiusagedays", 30)
	viper.SetDefault("retention.servermetricdays", 7)
	viper.SetDefault("janitor.cleanupinterval", "1h")
	viper.SetDefault("janitor.viewrefreshinterval", "5m")

	var cfg Config
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Override with environment variables
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if url := os.Getenv("REDIS_URL"); url != "" {
		cfg.Redis.URL = url
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if url := os.Getenv("REMOTE_WRITE_URL"); url != "" {
		cfg.RemoteWrite.URL = url
	}
	if token := os.Getenv("REMOTE_WRITE_AUTH_TOKEN"); token != "" {
		cfg.RemoteWrite.AuthToken = token
	}

	return &cfg, nil
}
